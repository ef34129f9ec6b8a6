package middleware

import (
	"log/slog"
	"net/http"

	"bazaar/internal/delivery/api/response"
	deliverycontext "bazaar/internal/delivery/context"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			logger.Error("Request failed",
				slog.String("code", appErr.ErrorCode()),
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
			)
		}
		_ = response.HandleAppError(c, appErr)

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, httpErrorCode(httpErr.Code), message, nil)

		return
	}

	// Default to internal error, log the error but return a generic message (do not expose internal details)
	logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	_ = response.Internal(c)
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(domainerrors.KindNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case http.StatusUnauthorized:
		return string(domainerrors.KindUnauthenticated)
	default:
		return "HTTP_ERROR"
	}
}
