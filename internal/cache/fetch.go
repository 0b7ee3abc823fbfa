package cache

import (
	"context"
	"log/slog"
	"time"
)

// Fetch returns the cached value for key, or calls load and caches its
// result. Cache failures are logged and never fail the call.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T

	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		slog.WarnContext(ctx, "Cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if found {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "Cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	return value, nil
}
