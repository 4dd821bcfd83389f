package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

// BookingRepository keeps every booking as one JSON array inside a Blob.
// Writers notify in-process subscribers synchronously once the write landed.
type BookingRepository struct {
	blob   Blob
	logger *zap.Logger

	mu sync.Mutex

	lmu       sync.Mutex
	listeners map[int]ports.BookingListener
	nextID    int
	stopFeed  func()

	// held from the end of a write until its notification was delivered,
	// so listeners never see an older list after a newer one.
	nmu sync.Mutex
}

func NewBookingRepository(blob Blob, logger *zap.Logger) *BookingRepository {
	return &BookingRepository{
		blob:      blob,
		logger:    logger,
		listeners: make(map[int]ports.BookingListener),
	}
}

func (r *BookingRepository) Name() string {
	return "local-" + r.blob.Name()
}

func decode(data []byte) ([]domain.Booking, error) {
	if len(data) == 0 {
		return []domain.Booking{}, nil
	}
	var list []domain.Booking
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("corrupt booking collection: %w", err)
	}
	if list == nil {
		list = []domain.Booking{}
	}
	return list, nil
}

func newestFirst(list []domain.Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	data, err := r.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	list, err := decode(data)
	if err != nil {
		return nil, err
	}
	newestFirst(list)
	return list, nil
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	list, err := r.write(ctx, func(list []domain.Booking) ([]domain.Booking, error) {
		for _, existing := range list {
			if existing.ID == b.ID {
				return nil, domain.ErrDuplicateID
			}
		}
		return append([]domain.Booking{*b}, list...), nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("booking stored", zap.String("booking_id", b.ID), zap.String("backend", r.Name()))
	r.notify(list)
	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	list, err := r.write(ctx, func(list []domain.Booking) ([]domain.Booking, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
				return list, nil
			}
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return err
	}

	r.notify(list)
	return nil
}

// write rewrites the whole collection and returns the stored list sorted
// newest first. On success the caller must call notify.
func (r *BookingRepository) write(ctx context.Context, change func([]domain.Booking) ([]domain.Booking, error)) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stored []domain.Booking
	err := r.blob.Update(ctx, func(current []byte) ([]byte, error) {
		list, err := decode(current)
		if err != nil {
			return nil, err
		}
		next, err := change(list)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, err
		}
		stored = next
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	r.nmu.Lock()

	out := make([]domain.Booking, len(stored))
	copy(out, stored)
	newestFirst(out)
	return out, nil
}

func (r *BookingRepository) Subscribe(ctx context.Context, fn ports.BookingListener) (func(), error) {
	// a write that lands between the first read and registration must still
	// reach fn.
	r.nmu.Lock()
	defer r.nmu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	fn(list)

	r.lmu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	if len(r.listeners) == 1 {
		if feed, ok := r.blob.(ChangeFeed); ok {
			stop, err := feed.Watch(context.Background(), r.reload)
			if err != nil {
				r.logger.Warn("cross-instance change feed unavailable", zap.Error(err))
			} else {
				r.stopFeed = stop
			}
		}
	}
	r.lmu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			r.lmu.Lock()
			delete(r.listeners, id)
			if len(r.listeners) == 0 && r.stopFeed != nil {
				r.stopFeed()
				r.stopFeed = nil
			}
			r.lmu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	return unsubscribe, nil
}

// reload re-reads the blob after another instance changed it. nmu is taken
// before the read so a local write landing meanwhile notifies after it.
func (r *BookingRepository) reload() {
	r.nmu.Lock()
	list, err := r.List(context.Background())
	if err != nil {
		r.nmu.Unlock()
		r.logger.Error("failed to reload bookings after remote change", zap.Error(err))
		return
	}
	r.notify(list)
}

// notify delivers list to every listener and releases nmu.
func (r *BookingRepository) notify(list []domain.Booking) {
	defer r.nmu.Unlock()

	r.lmu.Lock()
	fns := make([]ports.BookingListener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.lmu.Unlock()

	for _, fn := range fns {
		snapshot := make([]domain.Booking, len(list))
		copy(snapshot, list)
		fn(snapshot)
	}
}
