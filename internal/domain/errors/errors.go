package errors

import (
	"context"
	"net/http"

	"bazaar/internal/errors"
)

// Kind discriminates expected, user-facing failures from transient ones.
type Kind string

const (
	KindInvalidCredentials     Kind = "INVALID_CREDENTIALS"
	KindDuplicateEmail         Kind = "DUPLICATE_EMAIL"
	KindValidation             Kind = "VALIDATION_FAILED"
	KindUnauthenticated        Kind = "UNAUTHENTICATED"
	KindInsufficientRole       Kind = "INSUFFICIENT_ROLE"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindConflict               Kind = "CONFLICT"
	KindStorageUnavailable     Kind = "STORAGE_UNAVAILABLE"
	KindNotFound               Kind = "NOT_FOUND"
	KindIdentityNotFound       Kind = "IDENTITY_NOT_FOUND"
	KindProviderNotFound       Kind = "PROVIDER_NOT_FOUND"
	KindVerificationNotFound   Kind = "VERIFICATION_NOT_FOUND"
	KindVerificationPending    Kind = "VERIFICATION_PENDING"
	KindProviderNotVerified    Kind = "PROVIDER_NOT_VERIFIED"
	KindRateLimited            Kind = "RATE_LIMITED"
	KindInternal               Kind = "INTERNAL_ERROR"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same error code, so sentinels still
// match after WithDetails.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Kind returns the discriminator of the error.
func (e *BaseError) Kind() Kind {
	return Kind(e.errorCode)
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Authentication errors. The credentials message is deliberately generic.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		string(KindInvalidCredentials),
		"Invalid email or password",
		"",
	)

	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		string(KindUnauthenticated),
		"Authentication required",
		"",
	)

	ErrInsufficientRole = NewBaseError(
		http.StatusForbidden,
		string(KindInsufficientRole),
		"You do not have permission to perform this action",
		"",
	)

	ErrRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		string(KindRateLimited),
		"Too many attempts, please try again later",
		"",
	)

	// Registration errors
	ErrDuplicateEmail = NewBaseError(
		http.StatusConflict,
		string(KindDuplicateEmail),
		"This email is already registered",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		string(KindValidation),
		"Input validation failed",
		"",
	)

	// Lookup errors
	ErrIdentityNotFound = NewBaseError(
		http.StatusNotFound,
		string(KindIdentityNotFound),
		"Identity not found",
		"",
	)

	ErrProviderNotFound = NewBaseError(
		http.StatusNotFound,
		string(KindProviderNotFound),
		"Provider not found",
		"",
	)

	ErrVerificationNotFound = NewBaseError(
		http.StatusNotFound,
		string(KindVerificationNotFound),
		"Verification request not found",
		"",
	)

	// Verification workflow errors
	ErrInvalidStateTransition = NewBaseError(
		http.StatusBadRequest,
		string(KindInvalidStateTransition),
		"Verification request has already been reviewed",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		string(KindConflict),
		"Verification request was reviewed concurrently",
		"",
	)

	ErrVerificationPending = NewBaseError(
		http.StatusConflict,
		string(KindVerificationPending),
		"A verification request is already pending for this provider",
		"",
	)

	ErrProviderNotVerified = NewBaseError(
		http.StatusConflict,
		string(KindProviderNotVerified),
		"Provider is not verified",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		string(KindInternal),
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		string(KindNotFound),
		"Resource not found",
		"",
	)
)

// StorageUnavailableError represents a failed or timed out store round trip.
// It is transient and retryable by the caller.
type StorageUnavailableError struct {
	err     error
	details string
}

// NewStorageUnavailableError creates a storage error. Callers should not
// pass domain sentinels here.
func NewStorageUnavailableError(err error, details string) AppError {
	return &StorageUnavailableError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StorageUnavailableError) Error() string {
	return errors.Wrap(e.err, "storage unavailable: "+e.details).Error()
}

// Unwrap exposes the driver error.
func (e *StorageUnavailableError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StorageUnavailableError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StorageUnavailableError) ErrorCode() string {
	return string(KindStorageUnavailable)
}

// Message returns the user-friendly error message
func (e *StorageUnavailableError) Message() string {
	return "Storage is temporarily unavailable"
}

// Details returns detailed error information
func (e *StorageUnavailableError) Details() string {
	return e.details
}

// KindOf resolves the discriminator of err through any wrapping.
// Context deadlines and cancellations count as storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return Kind(appErr.ErrorCode())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindStorageUnavailable
	}

	return KindInternal
}

// IsStorageUnavailable reports whether err is a transient storage failure.
func IsStorageUnavailable(err error) bool {
	return KindOf(err) == KindStorageUnavailable
}
