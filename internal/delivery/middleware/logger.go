package middleware

import (
	"log/slog"
	"time"

	"bazaar/config"
	deliverycontext "bazaar/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware writes one access log line per request. Outside debug
// mode only failed requests are logged.
type LoggerMiddleware struct {
	logger    *slog.Logger
	debug     bool
	skipPaths map[string]struct{}
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:    logger,
		debug:     config.Env.Debug,
		skipPaths: map[string]struct{}{"/health": {}},
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, skip := m.skipPaths[c.Path()]; skip {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		if err != nil {
			// Render now so the logged status is the one sent.
			c.Error(err)
		}
		m.logRequest(c, start, err)

		return nil
	}
}

// logRequest logs request details
func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, err error) {
	req := c.Request()
	res := c.Response()

	logLevel := slog.LevelInfo
	switch {
	case res.Status >= 500:
		logLevel = slog.LevelError
	case res.Status >= 400:
		logLevel = slog.LevelWarn
	}
	if !m.debug && logLevel < slog.LevelWarn {
		return
	}

	fields := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.String("route", c.Path()),
		slog.Int("status", res.Status),
		slog.Duration("latency", time.Since(start)),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
	}

	if len(req.URL.RawQuery) > 0 {
		fields = append(fields, slog.String("query", req.URL.RawQuery))
	}

	if identity, ok := deliverycontext.GetIdentity(c); ok {
		fields = append(fields, slog.String("identity_id", identity.ID.String()))
	}

	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	// The request logger already carries request_id.
	logger := deliverycontext.GetLoggerOrDefault(req.Context(), m.logger)
	logger.LogAttrs(req.Context(), logLevel, "HTTP Request", fields...)
}
