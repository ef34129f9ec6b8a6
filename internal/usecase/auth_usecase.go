// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"bazaar/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the data required for an identity to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput defines the data required to register a student or an artisan.
// Student fields are required for students, business fields for artisans.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     entity.Role
	Phone    string

	StudentID  string
	Department string
	Level      string

	BusinessName   string
	Location       string
	Specialization string
	Experience     string
}

// --- Output DTOs ---

// AuthOutput returns the identity and its freshly issued session token.
type AuthOutput struct {
	Identity *entity.Identity
	Token    string
}

// AuthUsecase defines the interface for authentication and authorization.
type AuthUsecase interface {
	// Authenticate checks credentials and issues a token. Unknown emails and
	// wrong passwords fail with the same error.
	Authenticate(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Register creates a student or artisan identity and issues a token.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Authorize verifies a token and, when requiredRole is not empty, checks
	// that the caller holds exactly that role.
	Authorize(ctx context.Context, token string, requiredRole entity.Role) (*entity.Identity, error)

	// EnsureBootstrapAdmin creates the configured administrator if absent.
	EnsureBootstrapAdmin(ctx context.Context) error
}
