package postgres

import (
	"context"

	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	notNullViolation    = "23502"
	checkViolation      = "23514"
	stringTooLong       = "22001"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func isUniqueConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgErrorCode(err) == uniqueViolation
}

func isForeignKeyConstraintViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgErrorCode(err) == foreignKeyViolation
}

// isInvalidValue reports a row the caller can fix by changing its input.
func isInvalidValue(err error) bool {
	switch pgErrorCode(err) {
	case stringTooLong, checkViolation, notNullViolation:
		return true
	default:
		return errors.Is(err, gorm.ErrCheckConstraintViolated)
	}
}

// invalidValueError keeps the driver message for the logs behind the sentinel.
func invalidValueError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ColumnName != "" {
		return errors.Wrapf(repository.ErrInvalidValue, "column %s: %s", pgErr.ColumnName, pgErr.Message)
	}

	return errors.Wrap(repository.ErrInvalidValue, err.Error())
}

// storageError converts a driver failure into the transient storage error.
// Context expiry counts as unavailability too.
func storageError(err error, details string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.NewStorageUnavailableError(err, details+": deadline exceeded")
	}

	return domainerrors.NewStorageUnavailableError(err, details)
}
