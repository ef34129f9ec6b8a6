package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bazaar/config"
	apimiddleware "bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/router/handler"
	"bazaar/internal/delivery/api/validator"
	"bazaar/internal/delivery/middleware"
	"bazaar/internal/domain/constants"
	"bazaar/internal/domain/service"
	"bazaar/internal/infra/auth"
	"bazaar/internal/infra/persistence/memory"
	"bazaar/internal/infra/pubsub"
	"bazaar/internal/infra/qrcode"
	"bazaar/internal/infra/ratelimit"
	"bazaar/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "root@bazaar.test"
	adminPassword = "Admin-pass-123"
	password      = "Password123!"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T, limiter service.RateLimiter) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
			BootstrapAdmin: &config.BootstrapAdminConfig{
				Email:    adminEmail,
				Password: adminPassword,
			},
		},
		PasswordStrength: &config.PasswordStrengthConfig{MinLength: 8},
		Storage:          &config.StorageConfig{Driver: constants.StorageDriverMemory, Timeout: time.Second},
	}
	cfg.SecretKey.Token = "0123456789abcdef0123456789abcdef"

	store := memory.NewStore()
	txManager := memory.NewTransactionManager(store)
	identities := memory.NewIdentityRepository(store)
	verifications := memory.NewVerificationRepository(store)

	hasher, err := auth.NewHasherFromConfig(cfg)
	require.NoError(t, err)
	tokens, err := auth.NewTokenServiceFromConfig(cfg)
	require.NoError(t, err)

	authUC, err := impl.NewAuthService(impl.AuthServiceParams{
		TxManager:    txManager,
		IdentityRepo: identities,
		Hasher:       hasher,
		TokenService: tokens,
		Config:       cfg,
		Logger:       logger,
	})
	require.NoError(t, err)
	require.NoError(t, authUC.EnsureBootstrapAdmin(t.Context()))

	verificationUC := impl.NewVerificationService(impl.VerificationServiceParams{
		TxManager:        txManager,
		IdentityRepo:     identities,
		VerificationRepo: verifications,
		Publisher:        pubsub.NewNoopPublisher(logger),
		QRCodeService:    qrcode.NewQRCodeService(256, "medium", "https://bazaar.example"),
		Config:           cfg,
		Logger:           logger,
	})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{
		TxManager:    txManager,
		IdentityRepo: identities,
		Config:       cfg,
		Logger:       logger,
	})

	e := echo.New()
	e.Use(middleware.NewRequestIDMiddleware(logger).Process)
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.Validator = validator.New()

	NewRouter(RouterParams{
		AuthHandler:         handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Config: cfg, Logger: logger}),
		ProfileHandler:      handler.NewProfileHandler(handler.ProfileHandlerParams{ProfileUC: profileUC, Logger: logger}),
		VerificationHandler: handler.NewVerificationHandler(handler.VerificationHandlerParams{VerificationUC: verificationUC, Logger: logger}),
		AuthMiddleware:      apimiddleware.NewAuthMiddleware(authUC),
		RateLimitMiddleware: apimiddleware.NewRateLimitMiddleware(limiter, logger),
	}).RegisterRoutes(e)

	return &testAPI{t: t, e: e}
}

func (api *testAPI) do(method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	api.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}

	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	env := decode(t, rec, nil)
	require.NotNil(t, env.Error, rec.Body.String())

	return env.Error.Code
}

func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == constants.AuthCookieName {
			return cookie
		}
	}

	return nil
}

func artisanBody(email string) map[string]string {
	return map[string]string{
		"email":          email,
		"password":       password,
		"fullName":       "Tunde Tailor",
		"role":           "artisan",
		"businessName":   "Tunde Stitches",
		"location":       "Hall 3",
		"specialization": "Tailoring",
		"experience":     "5 years",
	}
}

func (api *testAPI) register(body map[string]string) handler.AuthResponse {
	api.t.Helper()

	rec := api.do(http.MethodPost, "/auth/register", body, "")
	require.Equal(api.t, http.StatusCreated, rec.Code, rec.Body.String())

	var out handler.AuthResponse
	decode(api.t, rec, &out)

	return out
}

func (api *testAPI) login(email, pass string) string {
	api.t.Helper()

	rec := api.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": pass}, "")
	require.Equal(api.t, http.StatusOK, rec.Code, rec.Body.String())

	var out handler.AuthResponse
	decode(api.t, rec, &out)

	return out.Token
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())

	rec := api.do(http.MethodPost, "/auth/register", artisanBody("tunde@example.com"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out handler.AuthResponse
	env := decode(t, rec, &out)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "artisan", out.Identity.Role)
	assert.Equal(t, "pending", out.Identity.VerificationStatus)
	require.NotNil(t, out.Identity.Verified)
	assert.False(t, *out.Identity.Verified)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	cookie := authCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, out.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())

	body := artisanBody("tunde@example.com")
	delete(body, "businessName")
	rec := api.do(http.MethodPost, "/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "businessName")

	body = artisanBody("root2@example.com")
	body["role"] = "admin"
	rec = api.do(http.MethodPost, "/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.register(artisanBody("tunde@example.com"))
	rec = api.do(http.MethodPost, "/auth/register", artisanBody("TUNDE@example.com"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, rec))
}

func TestOverlongFieldsAreValidationErrors(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())

	tests := []struct {
		field string
		size  int
	}{
		{field: "fullName", size: 101},
		{field: "businessName", size: 101},
		{field: "specialization", size: 101},
		{field: "location", size: 256},
		{field: "experience", size: 256},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			body := artisanBody(tt.field + "@example.com")
			body[tt.field] = strings.Repeat("a", tt.size)

			rec := api.do(http.MethodPost, "/auth/register", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode(t, rec, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
			assert.Contains(t, env.Error.Details, tt.field)
		})
	}

	t.Run("column width is accepted", func(t *testing.T) {
		body := artisanBody("wide@example.com")
		body["fullName"] = strings.Repeat("a", 100)
		api.register(body)
	})

	t.Run("profile update", func(t *testing.T) {
		out := api.register(artisanBody("profile@example.com"))

		rec := api.do(http.MethodPut, "/me", map[string]string{"fullName": strings.Repeat("a", 150)}, out.Token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
	})
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())
	api.register(artisanBody("tunde@example.com"))

	wrong := api.do(http.MethodPost, "/auth/login", map[string]string{"email": "tunde@example.com", "password": "wrongpass"}, "")
	unknown := api.do(http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com", "password": password}, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	wrongEnv := decode(t, wrong, nil)
	unknownEnv := decode(t, unknown, nil)
	assert.Equal(t, wrongEnv.Error, unknownEnv.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", wrongEnv.Error.Code)
	assert.Nil(t, authCookie(wrong))
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := newTestAPI(t, ratelimit.NewRedisLimiter(client, 2, time.Minute))
	creds := map[string]string{"email": "ghost@example.com", "password": password}

	for range 2 {
		rec := api.do(http.MethodPost, "/auth/login", creds, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := api.do(http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))

	mr.FastForward(time.Minute + time.Second)
	rec = api.do(http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileWithCookieAndLogout(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())
	api.register(artisanBody("tunde@example.com"))

	login := api.do(http.MethodPost, "/auth/login", map[string]string{"email": "tunde@example.com", "password": password}, "")
	require.Equal(t, http.StatusOK, login.Code)
	cookie := authCookie(login)
	require.NotNil(t, cookie)

	rec := api.do(http.MethodGet, "/me", nil, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me handler.IdentityResponse
	decode(t, rec, &me)
	assert.Equal(t, "tunde@example.com", me.Email)

	rec = api.do(http.MethodPut, "/me", map[string]string{"location": "Main Gate"}, "", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &me)
	assert.Equal(t, "Main Gate", me.Location)

	rec = api.do(http.MethodPut, "/me", map[string]string{"department": "Art"}, "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, rec))

	logout := api.do(http.MethodPost, "/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, logout.Code)
	cleared := authCookie(logout)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestVerificationWorkflow(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())
	artisan := api.register(artisanBody("tunde@example.com"))
	student := api.register(map[string]string{
		"email":      "ada@example.com",
		"password":   password,
		"fullName":   "Ada Student",
		"role":       "student",
		"studentId":  "CSC/2021/001",
		"department": "Computer Science",
		"level":      "300",
	})
	adminToken := api.login(adminEmail, adminPassword)

	submission := map[string]any{
		"evidence": []map[string]string{{"url": "https://files.bazaar.test/cert.pdf", "kind": "certificate"}},
	}

	// Role gates
	rec := api.do(http.MethodPost, "/provider/verifications", submission, student.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = api.do(http.MethodGet, "/admin/verifications", nil, artisan.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", errorCode(t, rec))

	rec = api.do(http.MethodPost, "/provider/verifications", map[string]any{"evidence": []any{}}, artisan.Token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/provider/verifications", submission, artisan.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var submitted handler.VerificationRequestResponse
	decode(t, rec, &submitted)
	assert.Equal(t, "pending", submitted.Status)
	assert.Equal(t, artisan.Identity.ID, submitted.ProviderID)

	rec = api.do(http.MethodPost, "/provider/verifications", submission, artisan.Token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VERIFICATION_PENDING", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/admin/verifications?status=pending", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []handler.VerificationRequestResponse
	decode(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, submitted.ID, listed[0].ID)

	rec = api.do(http.MethodGet, "/admin/verifications/"+uuid.NewString(), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(http.MethodGet, "/admin/verifications/not-a-uuid", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/providers/"+artisan.Identity.ID.String()+"/badge", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "PROVIDER_NOT_VERIFIED", errorCode(t, rec))

	review := map[string]string{"requestId": submitted.ID.String(), "status": "approved", "adminNotes": "looks good"}
	rec = api.do(http.MethodPut, "/admin/verifications", review, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reviewed handler.VerificationRequestResponse
	decode(t, rec, &reviewed)
	assert.Equal(t, "approved", reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	require.NotNil(t, reviewed.AdminNotes)
	assert.Equal(t, "looks good", *reviewed.AdminNotes)

	review["status"] = "rejected"
	rec = api.do(http.MethodPut, "/admin/verifications", review, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", errorCode(t, rec))

	rec = api.do(http.MethodPut, "/admin/verifications", map[string]string{"requestId": submitted.ID.String(), "status": "pending"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))

	rec = api.do(http.MethodGet, "/admin/verifications/"+submitted.ID.String(), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched handler.VerificationRequestResponse
	decode(t, rec, &fetched)
	assert.Equal(t, "approved", fetched.Status)

	rec = api.do(http.MethodGet, "/providers/"+artisan.Identity.ID.String()+"/verification", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status handler.ProviderStatusResponse
	decode(t, rec, &status)
	assert.True(t, status.Verified)
	assert.Equal(t, "approved", status.VerificationStatus)

	rec = api.do(http.MethodGet, "/providers/"+artisan.Identity.ID.String()+"/badge", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, ratelimit.NewUnlimited())

	rec := api.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(decode(t, rec, nil).Data))
}
