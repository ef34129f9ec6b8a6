// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bazaar/internal/delivery/api/middleware"
	"bazaar/internal/delivery/api/router/handler"
	"bazaar/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const (
	loginRateLimitScope    = "login"
	registerRateLimitScope = "register"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	VerificationHandler *handler.VerificationHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	verificationHandler *handler.VerificationHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		profileHandler:      params.ProfileHandler,
		verificationHandler: params.VerificationHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login, r.rateLimitMiddleware.Limit(loginRateLimitScope))
		authGroup.POST("/register", r.authHandler.Register, r.rateLimitMiddleware.Limit(registerRateLimitScope))
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Own profile, any role
	meGroup := e.Group("/me", r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.profileHandler.GetMe)
		meGroup.PUT("", r.profileHandler.UpdateMe)
	}

	// Artisan routes
	providerGroup := e.Group("/provider", r.authMiddleware.RequireRole(entity.RoleArtisan))
	{
		providerGroup.POST("/verifications", r.verificationHandler.Submit)
	}

	// Admin routes
	adminGroup := e.Group("/admin", r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/verifications", r.verificationHandler.List)
		adminGroup.GET("/verifications/:id", r.verificationHandler.Get)
		adminGroup.PUT("/verifications", r.verificationHandler.Review)
	}

	// Public provider pages
	providersGroup := e.Group("/providers")
	{
		providersGroup.GET("/:id/verification", r.verificationHandler.ProviderStatus)
		providersGroup.GET("/:id/badge", r.verificationHandler.Badge)
	}
}
