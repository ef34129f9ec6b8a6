package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bazaar/config"
	"bazaar/internal/delivery/api/response"
	"bazaar/internal/delivery/api/validator"
	"bazaar/internal/domain/constants"
	"bazaar/internal/domain/entity"
	"bazaar/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultCookieMaxAge = 7 * 24 * time.Hour

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
	Logger *slog.Logger
}

// AuthHandler holds dependencies for login, registration and logout
type AuthHandler struct {
	authUC       usecase.AuthUsecase
	secureCookie bool
	cookieMaxAge int
	logger       *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	maxAge := defaultCookieMaxAge
	if params.Config.Auth != nil && params.Config.Auth.TokenTTL > 0 {
		maxAge = params.Config.Auth.TokenTTL
	}

	return &AuthHandler{
		authUC:       params.AuthUC,
		secureCookie: params.Config.IsProduction(),
		cookieMaxAge: int(maxAge.Seconds()),
		logger:       params.Logger,
	}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration.
// Role specific fields are checked again by the use case.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=student artisan"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`

	StudentID  string `json:"studentId" validate:"required_if=Role student,max=64"`
	Department string `json:"department" validate:"required_if=Role student,max=100"`
	Level      string `json:"level" validate:"required_if=Role student,max=32"`

	BusinessName   string `json:"businessName" validate:"required_if=Role artisan,max=100"`
	Location       string `json:"location" validate:"required_if=Role artisan,max=255"`
	Specialization string `json:"specialization" validate:"required_if=Role artisan,max=100"`
	Experience     string `json:"experience" validate:"required_if=Role artisan,max=255"`
}

// Login handles credential login and sets the session cookie
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidInput(c, "login")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	out, err := h.authUC.Authenticate(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setAuthCookie(c, out.Token)

	return response.Success(c, http.StatusOK, toAuthResponse(out))
}

// Register handles student and artisan sign-up and sets the session cookie
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.InvalidInput(c, "registration")
	}

	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           entity.Role(req.Role),
		Phone:          req.Phone,
		StudentID:      req.StudentID,
		Department:     req.Department,
		Level:          req.Level,
		BusinessName:   req.BusinessName,
		Location:       req.Location,
		Specialization: req.Specialization,
		Experience:     req.Experience,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setAuthCookie(c, out.Token)

	return response.Success(c, http.StatusCreated, toAuthResponse(out))
}

// Logout clears the session cookie. Tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.authCookie("", -1))

	return response.Success(c, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) setAuthCookie(c echo.Context, token string) {
	c.SetCookie(h.authCookie(token, h.cookieMaxAge))
}

func (h *AuthHandler) authCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// validationError renders request validation failures with per-field details.
func validationError(c echo.Context, err error) error {
	return response.ValidationFailed(c, validator.FieldErrors(err))
}
