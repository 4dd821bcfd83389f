package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

const transactionDigits = 12

// SimulatedGateway approves every charge after a fixed delay. Online charges
// come back Paid with a TXN id, cash stays Pending until collected on site.
type SimulatedGateway struct {
	onlineDelay time.Duration
	cashDelay   time.Duration
	logger      *zap.Logger
}

func NewSimulatedGateway(onlineDelay, cashDelay time.Duration, logger *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{onlineDelay: onlineDelay, cashDelay: cashDelay, logger: logger}
}

func (g *SimulatedGateway) Name() string {
	return "simulated"
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.ChargeResult, error) {
	delay := g.cashDelay
	if req.Method == domain.PaymentOnline {
		delay = g.onlineDelay
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if req.Method != domain.PaymentOnline {
		return &ports.ChargeResult{Status: domain.PaymentPending}, nil
	}

	txn, err := NewTransactionID()
	if err != nil {
		return nil, err
	}

	g.logger.Info("simulated online charge approved",
		zap.String("reference", req.Reference),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", txn),
	)

	return &ports.ChargeResult{Status: domain.PaymentPaid, TransactionID: txn}, nil
}

// NewTransactionID returns "TXN" followed by 12 random digits.
func NewTransactionID() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(transactionDigits), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN%0*d", transactionDigits, n), nil
}
