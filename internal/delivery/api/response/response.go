// Package response writes the JSON envelope shared by every API endpoint:
// {data, meta} on success and {error, meta} on failure.
package response

import (
	"net/http"

	deliverycontext "bazaar/internal/delivery/context"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/errors"

	"github.com/labstack/echo/v4"
)

// Error codes owned by the transport layer.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeInvalidID    = "INVALID_ID"
)

// SuccessResponse defines the structure for successful responses
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse defines the structure for error responses
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

// ErrorInfo describes a failure. Details are omitted for 401, 403 and 5xx.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MetaInfo represents response metadata
type MetaInfo struct {
	RequestID string `json:"request_id"`
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}

// detailsVisible reports whether a status may carry details. Authentication
// failures stay indistinguishable and storage faults stay internal.
func detailsVisible(statusCode int) bool {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return false
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return false
	default:
		return true
	}
}

// Success returns a successful response
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{
		Data: data,
		Meta: meta(c),
	})
}

// Error returns an error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details any) error {
	if !detailsVisible(statusCode) {
		details = nil
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
		Meta: meta(c),
	})
}

// InvalidInput rejects a body that could not be bound, e.g. "Invalid login input".
func InvalidInput(c echo.Context, subject string) error {
	return Error(c, http.StatusBadRequest, CodeInvalidInput, "Invalid "+subject+" input", nil)
}

// InvalidID rejects a malformed UUID in the path or body.
func InvalidID(c echo.Context, subject string) error {
	return Error(c, http.StatusBadRequest, CodeInvalidID, "Invalid "+subject+" ID", nil)
}

// ValidationFailed reports per-field messages keyed by JSON field name.
func ValidationFailed(c echo.Context, fields map[string]string) error {
	return Error(c, http.StatusBadRequest,
		domainerrors.ErrValidationFailed.ErrorCode(),
		domainerrors.ErrValidationFailed.Message(),
		fields,
	)
}

// Unauthenticated is the response for a request without a usable session.
func Unauthenticated(c echo.Context) error {
	return HandleAppError(c, domainerrors.ErrUnauthenticated)
}

// Internal hides the cause of an unexpected failure.
func Internal(c echo.Context) error {
	return Error(c, http.StatusInternalServerError,
		string(domainerrors.KindInternal),
		"Internal server error, please try again later",
		nil,
	)
}

// PNG writes raw image bytes. Images carry no envelope.
func PNG(c echo.Context, data []byte) error {
	return c.Blob(http.StatusOK, "image/png", data)
}

// HandleAppError renders an AppError with its own status, code and details.
// Anything else is returned to echo's error handler.
func HandleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if !errors.As(err, &appErr) {
		return errors.WithStack(err)
	}

	var details any
	if d := appErr.Details(); d != "" {
		details = d
	}

	return Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), details)
}
