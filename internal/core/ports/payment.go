package ports

import (
	"context"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

// ChargeRequest.Reference identifies the booking session and doubles as the
// idempotency key for processors that support one.
type ChargeRequest struct {
	Reference  string
	Amount     float64
	Currency   string
	Method     domain.PaymentMethod
	CardNumber string
	CardExpiry string
	CardCVC    string
	Email      string
}

type ChargeResult struct {
	Status        domain.PaymentStatus
	TransactionID string
}

// PaymentGateway settles the payment step. An online charge must only report
// domain.PaymentPaid once the processor confirmed it; a decline is returned
// as domain.ErrPaymentDeclined.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Name() string
}
