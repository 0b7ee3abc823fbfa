package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	stripeClient "github.com/aaravmahajanofficial/storefront-api/pkg/stripe"
	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

type Endpoints struct {
	DB          *sql.DB
	RedisClient *redis.Client
	// Stripe is optional. Its check is skipped when nil and never marks the
	// service unavailable, since cash-on-delivery checkouts still work.
	Stripe stripeClient.Client
}

func NewHealthHandler(serviceName, version string, endpoints *Endpoints) (*health.Health, error) {
	checks := []health.Config{
		{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check: func(ctx context.Context) error {
				if err := endpoints.DB.PingContext(ctx); err != nil {
					return fmt.Errorf("postgres ping failed: %w", err)
				}

				return nil
			},
		},
		{
			Name:    "redis",
			Timeout: 2 * time.Second,
			Check: func(ctx context.Context) error {
				if err := endpoints.RedisClient.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("redis ping failed: %w", err)
				}

				return nil
			},
		},
		{
			Name:      "stripe",
			Timeout:   5 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				if endpoints.Stripe == nil {
					return errors.New("stripe client is not configured")
				}

				if err := endpoints.Stripe.Ping(ctx); err != nil {
					return fmt.Errorf("failed to connect to stripe: %w", err)
				}

				return nil
			},
		},
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    serviceName,
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
