package usecase

import (
	"context"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SubmitVerificationInput defines the evidence a provider submits for review.
type SubmitVerificationInput struct {
	ProviderID uuid.UUID
	Evidence   []entity.EvidenceArtifact
}

// ReviewInput defines an administrator's decision on a pending request.
// Reviewer is the identity returned by AuthUsecase.Authorize.
type ReviewInput struct {
	RequestID uuid.UUID
	Decision  entity.VerificationStatus
	Notes     *string
	Reviewer  *entity.Identity
}

// --- Output DTOs ---

// ProviderStatusOutput is the public view of a provider's verification.
type ProviderStatusOutput struct {
	ProviderID         uuid.UUID
	BusinessName       string
	Verified           bool
	VerificationStatus entity.VerificationStatus
}

// VerificationUsecase defines the verification workflow.
type VerificationUsecase interface {
	Submit(ctx context.Context, input *SubmitVerificationInput) (*entity.VerificationRequest, error)
	Review(ctx context.Context, input *ReviewInput) (*entity.VerificationRequest, error)
	List(ctx context.Context, status *entity.VerificationStatus) ([]*entity.VerificationRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error)
	ProviderStatus(ctx context.Context, providerID uuid.UUID) (*ProviderStatusOutput, error)
	VerificationBadge(ctx context.Context, providerID uuid.UUID) ([]byte, error)
}
