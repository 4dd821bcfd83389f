package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

type BookingFilter struct {
	Status domain.BookingStatus
	Search string
}

type BookingListResponse struct {
	Bookings []domain.Booking   `json:"bookings"`
	Stats    domain.BookingStats `json:"stats"`
}

type TrackingResponse struct {
	Booking  domain.Booking        `json:"booking"`
	Timeline []domain.TimelineStep `json:"timeline"`
}

type BookingService struct {
	repo   ports.BookingRepository
	policy domain.TransitionPolicy
	retry  RetryConfig
	logger *zap.Logger
}

func NewBookingService(repo ports.BookingRepository, policy domain.TransitionPolicy, retry RetryConfig, logger *zap.Logger) *BookingService {
	if policy == nil {
		policy = domain.PermissiveTransitions{}
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &BookingService{
		repo:   repo,
		policy: policy,
		retry:  retry,
		logger: logger,
	}
}

func (s *BookingService) Backend() string {
	return s.repo.Name()
}

// CreateBooking validates b and writes it, retrying transient store errors
// with exponential backoff. A duplicate id is returned immediately.
func (s *BookingService) CreateBooking(ctx context.Context, b *domain.Booking) error {
	if err := b.Validate(); err != nil {
		return err
	}

	delay := s.retry.BaseDelay
	var err error

	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		err = s.repo.CreateBooking(ctx, b)
		if err == nil {
			s.logger.Info("booking created",
				zap.String("bookingId", b.ID),
				zap.String("backend", s.repo.Name()),
				zap.Float64("totalAmount", b.TotalAmount))
			return nil
		}

		if errors.Is(err, domain.ErrDuplicateID) || ctx.Err() != nil {
			return err
		}

		s.logger.Warn("create booking failed",
			zap.String("bookingId", b.ID),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", s.retry.Attempts),
			zap.Error(err))

		if attempt == s.retry.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.repo.Get(ctx, id)
}

// FindByID matches id case-insensitively against the full list. Ids are
// expected unique; on a duplicate the newest record wins.
func (s *BookingService) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrNotFound
	}

	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	for i := range bookings {
		if strings.EqualFold(bookings[i].ID, id) {
			return &bookings[i], nil
		}
	}

	return nil, domain.ErrNotFound
}

func (s *BookingService) Track(ctx context.Context, id string) (*TrackingResponse, error) {
	b, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TrackingResponse{
		Booking:  *b,
		Timeline: domain.Timeline(b.Status),
	}, nil
}

// UpdateStatus moves booking id to status if the transition policy allows
// it. Unknown ids return domain.ErrNotFound.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.Allow(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.String("bookingId", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)))

	current.Status = status
	return current, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) (*BookingListResponse, error) {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return &BookingListResponse{
		Bookings: FilterBookings(bookings, filter),
		Stats:    domain.Aggregate(bookings),
	}, nil
}

// FilterBookings applies the dashboard status filter and the substring search
// over customer name and booking id.
func FilterBookings(bookings []domain.Booking, filter BookingFilter) []domain.Booking {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Booking, 0, len(bookings))

	for _, b := range bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), search) &&
			!strings.Contains(strings.ToLower(b.ID), search) {
			continue
		}
		out = append(out, b)
	}

	return out
}

func (s *BookingService) Subscribe(ctx context.Context, fn ports.BookingListener) (func(), error) {
	return s.repo.Subscribe(ctx, fn)
}
