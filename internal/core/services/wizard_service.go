package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

const (
	maxIDAttempts = 5
	// lockSlack covers the draft and store writes around a charge.
	lockSlack = 30 * time.Second
)

type CardDetails struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"cardExpiry"`
	CVC    string `json:"cardCvc"`
}

type DraftView struct {
	*domain.BookingDraft
	StepName string  `json:"stepName"`
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

func NewDraftView(d *domain.BookingDraft) *DraftView {
	return &DraftView{
		BookingDraft: d,
		StepName:     d.Step.String(),
		Subtotal:     d.Cart.Total(),
		Total:        domain.TotalWithTax(d.Cart.Total()),
	}
}

type WizardConfig struct {
	DraftTTL       time.Duration
	PaymentTimeout time.Duration
	Currency       string
	// LockTTL bounds how long one request may hold a session. Defaults to
	// PaymentTimeout plus lockSlack.
	LockTTL time.Duration
}

type WizardService struct {
	catalog  *domain.Catalog
	drafts   ports.DraftRepository
	bookings *BookingService
	gateway  ports.PaymentGateway
	cfg      WizardConfig
	logger   *zap.Logger

	now   func() time.Time
	newID func() (string, error)
}

func NewWizardService(
	catalog *domain.Catalog,
	drafts ports.DraftRepository,
	bookings *BookingService,
	gateway ports.PaymentGateway,
	cfg WizardConfig,
	logger *zap.Logger,
) *WizardService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.PaymentTimeout + lockSlack
	}
	return &WizardService{
		catalog:  catalog,
		drafts:   drafts,
		bookings: bookings,
		gateway:  gateway,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newID:    NewBookingID,
	}
}

func (s *WizardService) Start(ctx context.Context) (*domain.BookingDraft, error) {
	d := domain.NewBookingDraft(uuid.New().String())
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Debug("booking session started", zap.String("sessionId", d.ID))
	return d, nil
}

func (s *WizardService) Get(ctx context.Context, id string) (*domain.BookingDraft, error) {
	return s.drafts.Get(ctx, id)
}

func (s *WizardService) SelectService(ctx context.Context, id, serviceID string) (*domain.BookingDraft, error) {
	if serviceID != "" {
		if _, err := s.catalog.Service(serviceID); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.SelectService(serviceID)
	})
}

func (s *WizardService) AddItem(ctx context.Context, id, serviceID, packageID string) (*domain.BookingDraft, error) {
	svc, err := s.catalog.Service(serviceID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		_, err := d.AddItem(svc, packageID)
		return err
	})
}

// RemoveItem drops the cart line at index. An out of range index leaves the
// cart untouched and reports removed=false.
func (s *WizardService) RemoveItem(ctx context.Context, id string, index int) (*domain.BookingDraft, bool, error) {
	var removed bool
	d, err := s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		var err error
		removed, err = d.RemoveItem(index)
		return err
	})
	return d, removed, err
}

func (s *WizardService) SetSchedule(ctx context.Context, id, date, slot string) (*domain.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.SetSchedule(date, slot)
	})
}

func (s *WizardService) SetContact(ctx context.Context, id, name, email, phone, address string) (*domain.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.SetContact(name, email, phone, address)
	})
}

func (s *WizardService) SetPaymentMethod(ctx context.Context, id string, method domain.PaymentMethod) (*domain.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.SetPaymentMethod(method)
	})
}

func (s *WizardService) Continue(ctx context.Context, id string) (*domain.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.Continue()
	})
}

func (s *WizardService) Back(ctx context.Context, id string) (*domain.BookingDraft, error) {
	return s.mutate(ctx, id, func(d *domain.BookingDraft) error {
		return d.Back()
	})
}

// Submit runs the payment step and persists the booking. On a storage
// failure the draft keeps the captured payment and the assembled record, so
// calling Submit again neither charges twice nor changes the booking id.
// A second Submit for the same session while one is in flight fails with
// domain.ErrSessionBusy.
func (s *WizardService) Submit(ctx context.Context, id string, card CardDetails) (*domain.Booking, error) {
	release, err := s.drafts.Lock(ctx, id, s.cfg.LockTTL)
	if err != nil {
		return nil, s.lockError(id, err)
	}
	defer release()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.CheckSubmit(card.Number); err != nil {
		return nil, err
	}

	if d.Payment == nil {
		payment, err := s.charge(ctx, d, card)
		if err != nil {
			d.LastError = err.Error()
			s.saveQuietly(ctx, d)
			return nil, err
		}
		d.Payment = payment
		d.LastError = ""
		if err := s.save(ctx, d); err != nil {
			return nil, err
		}
	}

	booking, err := s.persist(ctx, d)
	if err != nil {
		d.LastError = err.Error()
		s.saveQuietly(ctx, d)
		return nil, err
	}

	d.Complete(booking.ID)
	if err := s.drafts.Delete(ctx, d.ID); err != nil {
		s.logger.Warn("failed to discard completed booking session", zap.String("sessionId", d.ID), zap.Error(err))
	}

	s.logger.Info("booking submitted",
		zap.String("sessionId", d.ID),
		zap.String("bookingId", booking.ID),
		zap.String("paymentMethod", string(booking.PaymentMethod)),
		zap.String("paymentStatus", string(booking.PaymentStatus)))

	return booking, nil
}

func (s *WizardService) charge(ctx context.Context, d *domain.BookingDraft, card CardDetails) (*domain.CapturedPayment, error) {
	if s.cfg.PaymentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PaymentTimeout)
		defer cancel()
	}

	res, err := s.gateway.Charge(ctx, ports.ChargeRequest{
		Reference:  d.ID,
		Amount:     domain.TotalWithTax(d.Cart.Total()),
		Currency:   s.cfg.Currency,
		Method:     d.PaymentMethod,
		CardNumber: card.Number,
		CardExpiry: card.Expiry,
		CardCVC:    card.CVC,
		Email:      d.CustomerEmail,
	})
	if err != nil {
		s.logger.Warn("payment failed",
			zap.String("sessionId", d.ID),
			zap.String("gateway", s.gateway.Name()),
			zap.Error(err))
		return nil, fmt.Errorf("payment failed: %w", err)
	}

	if d.PaymentMethod == domain.PaymentOnline && res.Status != domain.PaymentPaid {
		return nil, fmt.Errorf("payment failed: %w", domain.ErrPaymentDeclined)
	}

	return &domain.CapturedPayment{Status: res.Status, TransactionID: res.TransactionID}, nil
}

func (s *WizardService) persist(ctx context.Context, d *domain.BookingDraft) (*domain.Booking, error) {
	if d.Pending == nil {
		bookingID, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate booking id: %w", err)
		}
		d.Pending = d.NewBooking(bookingID, *d.Payment, s.now())
		if err := s.save(ctx, d); err != nil {
			return nil, err
		}
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		err := s.bookings.CreateBooking(ctx, d.Pending)
		if err == nil {
			return d.Pending, nil
		}
		if !errors.Is(err, domain.ErrDuplicateID) {
			return nil, err
		}

		// An earlier submit may have written this very record before failing.
		existing, getErr := s.bookings.Get(ctx, d.Pending.ID)
		if getErr == nil && existing.CreatedAt.Equal(d.Pending.CreatedAt) && existing.CustomerPhone == d.Pending.CustomerPhone {
			return existing, nil
		}

		bookingID, idErr := s.newID()
		if idErr != nil {
			return nil, fmt.Errorf("failed to generate booking id: %w", idErr)
		}
		s.logger.Warn("booking id collision, regenerating", zap.String("bookingId", d.Pending.ID))
		d.Pending.ID = bookingID
	}

	return nil, fmt.Errorf("could not allocate a unique booking id: %w", domain.ErrDuplicateID)
}

func (s *WizardService) mutate(ctx context.Context, id string, fn func(d *domain.BookingDraft) error) (*domain.BookingDraft, error) {
	release, err := s.drafts.Lock(ctx, id, s.cfg.LockTTL)
	if err != nil {
		return nil, s.lockError(id, err)
	}
	defer release()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(d); err != nil {
		return nil, err
	}

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *WizardService) lockError(id string, err error) error {
	if errors.Is(err, domain.ErrSessionBusy) {
		s.logger.Debug("booking session busy", zap.String("sessionId", id))
		return err
	}
	return fmt.Errorf("failed to lock booking session: %w", err)
}

func (s *WizardService) save(ctx context.Context, d *domain.BookingDraft) error {
	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, d, s.cfg.DraftTTL); err != nil {
		return fmt.Errorf("failed to save booking session: %w", err)
	}
	return nil
}

func (s *WizardService) saveQuietly(ctx context.Context, d *domain.BookingDraft) {
	if err := s.save(ctx, d); err != nil {
		s.logger.Error("failed to record submit failure", zap.String("sessionId", d.ID), zap.Error(err))
	}
}
