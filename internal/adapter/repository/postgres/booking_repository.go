package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

// ChangeChannel is the LISTEN/NOTIFY channel every write signals on.
const ChangeChannel = "bookings_changed"

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id             TEXT PRIMARY KEY,
	items          JSONB NOT NULL,
	total_amount   NUMERIC(12,2) NOT NULL,
	date           TEXT NOT NULL,
	time           TEXT NOT NULL,
	customer_name  TEXT NOT NULL,
	customer_email TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL,
	address        TEXT NOT NULL,
	status         TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	transaction_id TEXT,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS bookings_created_at_idx ON bookings (created_at DESC);
`

const selectBookings = `
SELECT id, items, total_amount, date, time, customer_name, customer_email, customer_phone,
	address, status, payment_status, payment_method, transaction_id, created_at
FROM bookings
`

type BookingRepository struct {
	db     *sql.DB
	dsn    string
	logger *zap.Logger
}

// NewBookingRepository needs the connection string as well as the pool:
// subscriptions hold their own LISTEN connection.
func NewBookingRepository(db *sql.DB, dsn string, logger *zap.Logger) *BookingRepository {
	return &BookingRepository{db: db, dsn: dsn, logger: logger}
}

func (r *BookingRepository) Name() string {
	return "postgres"
}

func (r *BookingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create bookings schema: %w", err)
	}
	return nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	items, err := json.Marshal(booking.Items)
	if err != nil {
		return fmt.Errorf("failed to encode booking items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	query := `
	INSERT INTO bookings (id, items, total_amount, date, time, customer_name, customer_email,
		customer_phone, address, status, payment_status, payment_method, transaction_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = tx.ExecContext(ctx, query,
		booking.ID, items, booking.TotalAmount, booking.Date, booking.Time,
		booking.CustomerName, booking.CustomerEmail, booking.CustomerPhone, booking.Address,
		string(booking.Status), string(booking.PaymentStatus), string(booking.PaymentMethod),
		nullable(booking.TransactionID), booking.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := r.signal(ctx, tx, booking.ID); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, string(status), bookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	if err := r.signal(ctx, tx, bookingID); err != nil {
		return err
	}

	return tx.Commit()
}

// signal queues a notification that postgres delivers on commit.
func (r *BookingRepository) signal(ctx context.Context, tx *sql.Tx, bookingID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, ChangeChannel, bookingID); err != nil {
		return fmt.Errorf("failed to signal booking change: %w", err)
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, selectBookings+`ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, selectBookings+`WHERE id = $1`, id)

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var (
		b             domain.Booking
		items         []byte
		status        string
		paymentStatus string
		paymentMethod string
		transactionID sql.NullString
	)

	err := s.Scan(
		&b.ID,
		&items,
		&b.TotalAmount,
		&b.Date,
		&b.Time,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.Address,
		&status,
		&paymentStatus,
		&paymentMethod,
		&transactionID,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of booking %s: %w", b.ID, err)
	}

	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(paymentStatus)
	b.PaymentMethod = domain.PaymentMethod(paymentMethod)
	if transactionID.Valid {
		b.TransactionID = transactionID.String
	}
	b.CreatedAt = b.CreatedAt.UTC()

	return &b, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Subscribe delivers the current list, then re-lists on every
// notification from ChangeChannel.
func (r *BookingRepository) Subscribe(ctx context.Context, fn ports.BookingListener) (func(), error) {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("booking listener connection event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})

	if err := listener.Listen(ChangeChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}

	list, err := r.List(ctx)
	if err != nil {
		listener.Close()
		return nil, err
	}
	fn(list)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-listener.Notify:
				if !ok {
					return
				}
				// a nil notification means the connection was re-established
				// and changes may have been missed; re-list either way.
				list, err := r.List(context.Background())
				if err != nil {
					r.logger.Error("failed to reload bookings after notification", zap.Error(err))
					continue
				}
				fn(list)
			case <-time.After(90 * time.Second):
				go listener.Ping()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			listener.Close()
		})
	}, nil
}
