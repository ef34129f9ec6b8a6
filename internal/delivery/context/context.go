// Package context carries request-scoped values between the HTTP layer and
// the use cases: the request ID, the request logger and the caller identity.
package context

import (
	"context"
	"log/slog"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRequestID is the key for storing request ID in context.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger is the key for storing request-scoped logger in context.
	KeyLogger ContextKey = "logger"

	// KeyIdentity is the key for the authenticated caller in echo.Context.
	KeyIdentity ContextKey = "identity"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID extracts the request ID from echo.Context.
// Requests that skipped the request ID middleware get a fresh UUID.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// GetRequestIDFromContext extracts the request ID from context.Context, or "".
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetLogger extracts the request-scoped logger, or nil.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(KeyLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault extracts the request-scoped logger from context.Context.
// If not found, returns the provided fallback logger.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// SetIdentity stores the authenticated caller.
func SetIdentity(c echo.Context, identity *entity.Identity) {
	c.Set(string(KeyIdentity), identity)
}

// GetIdentity returns the authenticated caller set by the auth middleware.
func GetIdentity(c echo.Context) (*entity.Identity, bool) {
	identity, ok := c.Get(string(KeyIdentity)).(*entity.Identity)

	return identity, ok && identity != nil
}
