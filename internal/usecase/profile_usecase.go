package usecase

import (
	"context"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error)
	UpdateProfile(ctx context.Context, identityID uuid.UUID, input *UpdateProfileInput) (*entity.Identity, error)
}

// --- Input DTOs ---

// UpdateProfileInput defines a partial profile update. Nil fields are left untouched.
// Student fields apply to students only, business fields to artisans only.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string

	Department *string
	Level      *string

	BusinessName   *string
	Location       *string
	Specialization *string
	Experience     *string
}
