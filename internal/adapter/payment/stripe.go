package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

// StripeGateway confirms online payments as Stripe PaymentIntents. The card
// field carries a Stripe payment method id (pm_...) collected client side.
type StripeGateway struct {
	api    *client.API
	logger *zap.Logger
}

func NewStripeGateway(key string, logger *zap.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(key, nil)
	return &StripeGateway{api: api, logger: logger}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.ChargeResult, error) {
	if req.Method != domain.PaymentOnline {
		return &ports.ChargeResult{Status: domain.PaymentPending}, nil
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(toMinorUnits(req.Amount)),
		Currency:           stripe.String(currency),
		PaymentMethod:      stripe.String(req.CardNumber),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("session_id", req.Reference)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			g.logger.Info("card declined", zap.String("reference", req.Reference), zap.String("code", string(stripeErr.Code)))
			return nil, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		g.logger.Warn("payment intent not settled", zap.String("reference", req.Reference), zap.String("status", string(pi.Status)))
		return nil, fmt.Errorf("%w: payment intent %s", domain.ErrPaymentDeclined, pi.Status)
	}

	return &ports.ChargeResult{Status: domain.PaymentPaid, TransactionID: pi.ID}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
