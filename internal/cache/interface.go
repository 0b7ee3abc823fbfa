package cache

import (
	"context"
	"strings"
	"time"
)

type Cache interface {
	// Get decodes the cached value into value and reports whether the key
	// was present.
	Get(ctx context.Context, key string, value any) (bool, error)
	// Set stores value under key. A non-positive ttl uses the configured default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

const (
	ProductKeyPrefix = "product"
	UserKeyPrefix    = "user"
)

func Key(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}
