package stripe

import (
	"context"
	"math"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type (
	PaymentIntent = stripe.PaymentIntent
	Refund        = stripe.Refund
)

const PaymentIntentSucceeded = stripe.PaymentIntentStatusSucceeded

// Client is the subset of the Stripe API the order flow depends on.
type Client interface {
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
	// RefundPayment refunds amount minor units of the intent's charge. Calls
	// repeating an idempotencyKey return the first refund instead of issuing
	// another.
	RefundPayment(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*Refund, error)
	// Ping checks that the API is reachable with the configured key.
	Ping(ctx context.Context) error
}

type stripeClient struct {
	api *client.API
}

// NewStripeClient builds a client for apiKey. A non-empty baseURL replaces
// the Stripe API endpoint and disables retries.
func NewStripeClient(apiKey, baseURL string) Client {
	var backends *stripe.Backends

	if baseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(baseURL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	api := &client.API{}
	api.Init(apiKey, backends)

	return &stripeClient{api: api}
}

func (s *stripeClient) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := s.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return nil, err
	}

	return intent, nil
}

func (s *stripeClient) RefundPayment(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx

	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	refund, err := s.api.Refunds.New(params)
	if err != nil {
		return nil, err
	}

	return refund, nil
}

// ToMinorUnits converts a decimal amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *stripeClient) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx

	_, err := s.api.Balance.Get(params)

	return err
}
