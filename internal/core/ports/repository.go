package ports

import (
	"context"
	"time"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

// BookingListener receives the full booking list, newest first. It runs on
// the writer's goroutine and must not write to the store.
type BookingListener func(bookings []domain.Booking)

// BookingRepository is the durable booking store. Every implementation lists
// newest-first by CreatedAt and makes a created or updated record visible to
// List, Get and all subscribers.
type BookingRepository interface {
	// CreateBooking inserts b keyed by its id and fails with
	// domain.ErrDuplicateID if the id is taken.
	CreateBooking(ctx context.Context, b *domain.Booking) error
	List(ctx context.Context) ([]domain.Booking, error)
	// Get matches the id exactly and returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, id string) (*domain.Booking, error)
	// UpdateStatus changes only the status field and returns
	// domain.ErrNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
	// Subscribe calls fn with the current list before returning and again
	// after every change. The returned func stops notifications and releases
	// the backend's live channel.
	Subscribe(ctx context.Context, fn BookingListener) (func(), error)
	Name() string
}

type DraftRepository interface {
	Save(ctx context.Context, d *domain.BookingDraft, ttl time.Duration) error
	// Get returns domain.ErrDraftNotFound when the session expired or never
	// existed.
	Get(ctx context.Context, id string) (*domain.BookingDraft, error)
	Delete(ctx context.Context, id string) error
	// Lock claims the session for one read-modify-write and returns
	// domain.ErrSessionBusy while another holder has it. The claim lapses
	// after ttl if release is never called.
	Lock(ctx context.Context, id string, ttl time.Duration) (release func(), err error)
}

type AdminSessionRepository interface {
	Grant(ctx context.Context, token string, ttl time.Duration) error
	Valid(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}
