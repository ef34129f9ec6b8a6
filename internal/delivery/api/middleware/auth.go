package middleware

import (
	"strings"

	"bazaar/internal/delivery/api/response"
	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/constants"
	"bazaar/internal/domain/entity"
	"bazaar/internal/usecase"

	"github.com/labstack/echo/v4"
)

const bearerScheme = "bearer"

// AuthMiddleware resolves the caller from the session token.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC}
}

// Authenticate accepts any valid token and stores the caller on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return m.authorize("", next)
}

// RequireRole accepts only tokens carrying exactly the given role.
// It does not need Authenticate in front of it.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.authorize(role, next)
	}
}

func (m *AuthMiddleware) authorize(role entity.Role, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.authUC.Authorize(c.Request().Context(), TokenFromRequest(c), role)
		if err != nil {
			return response.HandleAppError(c, err)
		}

		deliverycontext.SetIdentity(c, identity)

		return next(c)
	}
}

// TokenFromRequest reads the bearer token, falling back to the auth cookie.
func TokenFromRequest(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, bearerScheme) {
			return ""
		}

		return strings.TrimSpace(token)
	}

	if cookie, err := c.Cookie(constants.AuthCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// GetIdentity returns the caller stored by Authenticate or RequireRole.
func GetIdentity(c echo.Context) (*entity.Identity, bool) {
	return deliverycontext.GetIdentity(c)
}
