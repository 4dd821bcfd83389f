package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/adapter/repository/postgres"
	"github.com/srgjo27/urban_spark/internal/core/domain"
)

var columns = []string{
	"id", "items", "total_amount", "date", "time", "customer_name", "customer_email", "customer_phone",
	"address", "status", "payment_status", "payment_method", "transaction_id", "created_at",
}

func newMockRepo(t *testing.T) (*postgres.BookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewBookingRepository(db, "", zap.NewNop()), mock
}

func sample() *domain.Booking {
	return &domain.Booking{
		ID:            "ABC123XYZ",
		Items:         []domain.CartItem{{ServiceID: "home-deep", PackageID: "h-basic", Price: 99}},
		TotalAmount:   103.95,
		Date:          "2026-11-02",
		Time:          "10:00 AM",
		CustomerName:  "Jane Doe",
		CustomerPhone: "5551234567",
		Address:       "1 Main St",
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: domain.PaymentCash,
		CreatedAt:     time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC),
	}
}

var notifyQuery = regexp.QuoteMeta(`SELECT pg_notify($1, $2)`)

func TestCreateBooking_Success(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := sample()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ID, sqlmock.AnyArg(), b.TotalAmount, b.Date, b.Time, b.CustomerName, b.CustomerEmail,
			b.CustomerPhone, b.Address, "Pending", "Pending", "Cash", nil, b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(notifyQuery).
		WithArgs(postgres.ChangeChannel, b.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBooking(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_DuplicateID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.CreateBooking(context.Background(), sample())

	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1 WHERE id = $2`)).
		WithArgs("Confirmed", "ABC123XYZ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(notifyQuery).
		WithArgs(postgres.ChangeChannel, "ABC123XYZ").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateStatus(context.Background(), "ABC123XYZ", domain.BookingConfirmed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_UnknownID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs("Completed", "MISSING00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), "MISSING00", domain.BookingCompleted)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_ScansRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2026, 10, 16, 10, 0, 0, 0, time.FixedZone("X", 7200))
	older := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow("NEW000002", []byte(`[{"serviceId":"veh-bike","packageId":"b-wash","price":15}]`), 15.75,
			"2026-11-03", "09:00 AM", "Bob", "", "5550000000", "2 Side St",
			"Confirmed", "Paid", "Online", "TXN000000000001", newer).
		AddRow("OLD000001", []byte(`[{"serviceId":"home-deep","packageId":"h-basic","price":99}]`), 103.95,
			"2026-11-02", "10:00 AM", "Jane", "jane@example.com", "5551234567", "1 Main St",
			"Pending", "Pending", "Cash", nil, older)

	mock.ExpectQuery("ORDER BY created_at DESC").WillReturnRows(rows)

	list, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "NEW000002", list[0].ID)
	assert.Equal(t, domain.BookingConfirmed, list[0].Status)
	assert.Equal(t, "TXN000000000001", list[0].TransactionID)
	assert.Equal(t, time.UTC, list[0].CreatedAt.Location())
	assert.Equal(t, "b-wash", list[0].Items[0].PackageID)

	assert.Empty(t, list[1].TransactionID)
	assert.Equal(t, domain.PaymentCash, list[1].PaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("WHERE id = ").WithArgs("MISSING00").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "MISSING00")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bookings").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
