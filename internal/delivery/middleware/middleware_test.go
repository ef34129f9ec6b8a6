package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"bazaar/config"
	deliverycontext "bazaar/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"reuses client id", "client-req-42", true},
		{"generates when missing", "", false},
		{"rejects control characters", "bad\nid", false},
		{"rejects oversized ids", strings.Repeat("a", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var fromCtx string
			handler := NewRequestIDMiddleware(slog.Default()).Process(func(c echo.Context) error {
				fromCtx = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				assert.NotNil(t, deliverycontext.GetLogger(c.Request().Context()))

				return nil
			})
			assert.NoError(t, handler(c))

			got := rec.Header().Get(deliverycontext.HeaderXRequestID)
			assert.Equal(t, got, fromCtx)
			assert.Equal(t, got, deliverycontext.GetRequestID(c))
			if tt.keep {
				assert.Equal(t, tt.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		status  int
		logged  bool
		level   string
		handler echo.HandlerFunc
	}{
		{
			name:    "success hidden outside debug",
			status:  http.StatusOK,
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		},
		{
			name:    "success logged in debug",
			debug:   true,
			status:  http.StatusOK,
			logged:  true,
			level:   "INFO",
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		},
		{
			name:    "client error logged as warning",
			status:  http.StatusNotFound,
			logged:  true,
			level:   "WARN",
			handler: func(echo.Context) error { return echo.ErrNotFound },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			cfg := &config.Config{}
			cfg.Env.Debug = tt.debug

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), rec)

			err := NewLoggerMiddleware(logger, cfg).Handle(tt.handler)(c)
			assert.NoError(t, err)
			assert.Equal(t, tt.status, rec.Code)

			if !tt.logged {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), "level="+tt.level)
			assert.Contains(t, buf.String(), "status="+strconv.Itoa(tt.status))
		})
	}
}
