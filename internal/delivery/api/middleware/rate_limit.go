package middleware

import (
	"log/slog"

	"bazaar/internal/delivery/api/response"
	deliverycontext "bazaar/internal/delivery/context"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// RateLimitMiddleware throttles attempts per client IP.
type RateLimitMiddleware struct {
	limiter service.RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter service.RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit counts the request under scope and rejects it with 429 once the
// window is exhausted. Limiter failures let the request through.
func (m *RateLimitMiddleware) Limit(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := scope + ":" + c.RealIP()

			allowed, err := m.limiter.Allow(ctx, key)
			if err != nil {
				deliverycontext.GetLoggerOrDefault(ctx, m.logger).Warn("Rate limiter unavailable",
					slog.String("scope", scope),
					slog.Any("error", err),
				)

				return next(c)
			}

			if !allowed {
				deliverycontext.GetLoggerOrDefault(ctx, m.logger).Info("Rate limit exceeded",
					slog.String("scope", scope),
					slog.String("remote_ip", c.RealIP()),
				)

				return response.HandleAppError(c, domainerrors.ErrRateLimited)
			}

			return next(c)
		}
	}
}
