package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

const DefaultCollection = "bookings"

// BookingRepository stores one document per booking, keyed by booking id.
type BookingRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

func NewBookingRepository(client *firestore.Client, collection string, logger *zap.Logger) *BookingRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &BookingRepository{client: client, collection: collection, logger: logger}
}

func (r *BookingRepository) Name() string {
	return "firestore"
}

func (r *BookingRepository) newestFirst() firestore.Query {
	return r.client.Collection(r.collection).OrderBy("createdAt", firestore.Desc)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	_, err := r.client.Collection(r.collection).Doc(b.ID).Create(ctx, b)
	if status.Code(err) == codes.AlreadyExists {
		return domain.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("failed to create booking document: %w", err)
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	docs, err := r.newestFirst().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return decodeAll(docs)
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	var b domain.Booking
	if err := snap.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to decode booking %s: %w", id, err)
	}
	if b.ID == "" {
		b.ID = snap.Ref.ID
	}
	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, st domain.BookingStatus) error {
	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// Subscribe opens a realtime query listener. The first snapshot is delivered
// before Subscribe returns.
func (r *BookingRepository) Subscribe(ctx context.Context, fn ports.BookingListener) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	it := r.newestFirst().Snapshots(ctx)

	first, err := it.Next()
	if err != nil {
		it.Stop()
		cancel()
		return nil, fmt.Errorf("failed to open booking listener: %w", err)
	}
	list, err := decodeSnapshot(first)
	if err != nil {
		it.Stop()
		cancel()
		return nil, err
	}
	fn(list)

	go func() {
		for {
			snap, err := it.Next()
			if err != nil {
				if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				r.logger.Error("booking listener stopped", zap.Error(err))
				return
			}
			list, err := decodeSnapshot(snap)
			if err != nil {
				r.logger.Error("failed to decode booking snapshot", zap.Error(err))
				continue
			}
			if ctx.Err() != nil {
				return
			}
			fn(list)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			it.Stop()
		})
	}, nil
}

func decodeSnapshot(snap *firestore.QuerySnapshot) ([]domain.Booking, error) {
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

func decodeAll(docs []*firestore.DocumentSnapshot) ([]domain.Booking, error) {
	list := make([]domain.Booking, 0, len(docs))
	for _, doc := range docs {
		var b domain.Booking
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking %s: %w", doc.Ref.ID, err)
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		list = append(list, b)
	}
	return list, nil
}
