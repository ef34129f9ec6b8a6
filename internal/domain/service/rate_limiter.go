package service

import "context"

// RateLimiter counts attempts per key within a fixed window.
type RateLimiter interface {
	// Allow records an attempt and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)
}
