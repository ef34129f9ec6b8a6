// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrProviderNotFound is returned when the identity has no provider row.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidValue is returned when the store rejects a column value,
	// such as a string longer than its column or a failed CHECK.
	ErrInvalidValue = errors.New("value rejected by the store")
)

// IdentityRepository defines the operations for identity persistence.
// Emails are stored and matched in their normalized form.
type IdentityRepository interface {
	// FindByID retrieves an identity, including its student or provider profile.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByEmail retrieves an identity by its normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)

	// FindProvider retrieves the provider profile of an artisan identity.
	FindProvider(ctx context.Context, identityID uuid.UUID) (*entity.Provider, error)

	// Create persists a new identity and, for artisans, its provider row.
	Create(ctx context.Context, identity *entity.Identity) error

	// UpdateProfile updates the mutable profile fields.
	// Email, role, password hash and the verification pair are never written.
	UpdateProfile(ctx context.Context, identity *entity.Identity) error

	// UpdateProviderVerification writes the verified flag and status together.
	UpdateProviderVerification(ctx context.Context, identityID uuid.UUID, status entity.VerificationStatus) error
}
