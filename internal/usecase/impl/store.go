// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"strings"
	"time"

	"bazaar/config"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/errors"
)

// storeTimeout returns the bound applied to every store round trip.
func storeTimeout(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Storage == nil {
		return 0
	}

	return cfg.Storage.Timeout
}

// withStoreTimeout derives the context for a store round trip.
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

// storeError passes application errors through and reports anything else
// coming back from the store as StorageUnavailable.
func storeError(err error, details string) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	return domainerrors.NewStorageUnavailableError(err, details)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
