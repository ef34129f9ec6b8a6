package context

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newEchoContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequestID(t *testing.T) {
	c := newEchoContext()

	generated := GetRequestID(c)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	SetRequestID(c, "req-1")
	assert.Equal(t, "req-1", GetRequestID(c))

	ctx := WithRequestID(context.Background(), "req-2")
	assert.Equal(t, "req-2", GetRequestIDFromContext(ctx))
	assert.Empty(t, GetRequestIDFromContext(context.Background()))
}

func TestLoggerOrDefault(t *testing.T) {
	fallback := slog.Default()
	scoped := slog.Default().With(slog.String("request_id", "req-1"))

	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(context.Background(), scoped), fallback))
}

func TestIdentity(t *testing.T) {
	c := newEchoContext()

	_, ok := GetIdentity(c)
	assert.False(t, ok)

	identity := &entity.Identity{ID: uuid.New(), Role: entity.RoleAdmin}
	SetIdentity(c, identity)

	got, ok := GetIdentity(c)
	assert.True(t, ok)
	assert.Same(t, identity, got)
}
