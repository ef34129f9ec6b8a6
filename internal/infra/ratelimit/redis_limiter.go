// Package ratelimit throttles login attempts with a fixed window counter in Redis.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"bazaar/config"
	"bazaar/internal/domain/lifecycle"
	"bazaar/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const keyPrefix = "bazaar:ratelimit:"

type redisLimiter struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

// NewRedisLimiter counts attempts in Redis. The first attempt of a window sets its expiry.
func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) service.RateLimiter {
	return &redisLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to increment attempt counter")
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, errors.Wrap(err, "failed to set attempt window")
		}
	}

	return count <= l.maxAttempts, nil
}

type unlimited struct{}

// NewUnlimited returns a limiter that allows every attempt.
func NewUnlimited() service.RateLimiter {
	return unlimited{}
}

func (unlimited) Allow(context.Context, string) (bool, error) {
	return true, nil
}

// Params holds dependencies for the limiter, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// New builds the login limiter. Without rateLimit configuration every attempt is allowed.
func New(params Params) service.RateLimiter {
	cfg := params.Config.RateLimit
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Rate limiting not configured, login attempts are not throttled")

		return NewUnlimited()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	params.Logger.Info("Login rate limiting enabled",
		slog.Int("max_attempts", cfg.MaxAttempts),
		slog.Duration("window", cfg.Window),
	)

	return NewRedisLimiter(client, cfg.MaxAttempts, cfg.Window)
}
