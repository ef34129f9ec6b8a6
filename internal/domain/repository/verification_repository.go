package repository

import (
	"context"
	"errors"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrVerificationNotFound is returned when no request matches the lookup.
	ErrVerificationNotFound = errors.New("verification request not found")

	// ErrPendingExists is returned when the provider already has a pending request.
	ErrPendingExists = errors.New("pending verification request already exists")

	// ErrTransitionConflict is returned when a conditional transition matched no
	// pending row, meaning another writer moved the request first.
	ErrTransitionConflict = errors.New("verification request is no longer pending")
)

// VerificationRepository defines the operations for verification request persistence.
type VerificationRepository interface {
	// Create persists a new pending request.
	Create(ctx context.Context, request *entity.VerificationRequest) error

	// FindByID retrieves a request. Reads go to the primary.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error)

	// FindPendingByProvider returns the provider's pending request, if any.
	FindPendingByProvider(ctx context.Context, providerID uuid.UUID) (*entity.VerificationRequest, error)

	// List returns requests ordered by submission time, newest first.
	// A nil status returns every request.
	List(ctx context.Context, status *entity.VerificationStatus) ([]*entity.VerificationRequest, error)

	// Transition moves a pending request to the review's decision.
	// It returns ErrTransitionConflict when the request was not pending at write time.
	Transition(ctx context.Context, id uuid.UUID, review entity.Review) error
}
