package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

func TestSimulatedGateway_Online(t *testing.T) {
	gateway := NewSimulatedGateway(0, 0, zap.NewNop())

	res, err := gateway.Charge(context.Background(), ports.ChargeRequest{
		Reference:  "s-1",
		Amount:     119.7,
		Method:     domain.PaymentOnline,
		CardNumber: "4242424242424242",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, res.Status)
	assert.Regexp(t, `^TXN[0-9]{12}$`, res.TransactionID)
}

func TestSimulatedGateway_Cash(t *testing.T) {
	gateway := NewSimulatedGateway(0, 0, zap.NewNop())

	res, err := gateway.Charge(context.Background(), ports.ChargeRequest{Reference: "s-1", Method: domain.PaymentCash})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, res.Status)
	assert.Empty(t, res.TransactionID)
}

func TestSimulatedGateway_HonoursContext(t *testing.T) {
	gateway := NewSimulatedGateway(time.Minute, time.Minute, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gateway.Charge(ctx, ports.ChargeRequest{Method: domain.PaymentOnline})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewTransactionID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id, err := NewTransactionID()
		require.NoError(t, err)
		assert.Len(t, id, 15)
		assert.Regexp(t, `^TXN[0-9]{12}$`, id)
	}
}

func TestStripeGateway_CashSkipsProcessor(t *testing.T) {
	gateway := NewStripeGateway("sk_test_unused", zap.NewNop())

	res, err := gateway.Charge(context.Background(), ports.ChargeRequest{Method: domain.PaymentCash, Amount: 20})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, res.Status)
	assert.Equal(t, "stripe", gateway.Name())
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(11970), toMinorUnits(119.7))
	assert.Equal(t, int64(10395), toMinorUnits(103.95))
	assert.Equal(t, int64(0), toMinorUnits(0))
	assert.Equal(t, int64(1), toMinorUnits(0.005))
}
