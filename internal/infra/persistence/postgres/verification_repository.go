package postgres

import (
	"context"

	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// verificationRepository implements the repository.VerificationRepository interface.
type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository is the constructor for verificationRepository.
func NewVerificationRepository(db *gorm.DB) repository.VerificationRepository {
	return &verificationRepository{
		db: db,
	}
}

// Create persists a new request. The partial unique index on
// (provider_id) WHERE status = 'pending' rejects a second pending row.
func (repo *verificationRepository) Create(ctx context.Context, request *entity.VerificationRequest) error {
	requestM := fromVerificationDomain(request)

	if err := repo.db.WithContext(ctx).Create(requestM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrPendingExists
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrProviderNotFound
		}

		return storageError(err, "failed to create verification request")
	}

	return nil
}

// FindByID reads from the primary so a review never acts on a stale replica row.
func (repo *verificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	var requestM model.VerificationRequestModel

	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", id).
		First(&requestM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVerificationNotFound
		}

		return nil, storageError(err, "failed to find verification request by ID")
	}

	return toVerificationDomain(&requestM), nil
}

// FindPendingByProvider returns ErrVerificationNotFound when nothing is pending.
func (repo *verificationRepository) FindPendingByProvider(ctx context.Context, providerID uuid.UUID) (*entity.VerificationRequest, error) {
	var requestM model.VerificationRequestModel

	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("provider_id = ? AND status = ?", providerID, entity.VerificationPending.String()).
		First(&requestM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVerificationNotFound
		}

		return nil, storageError(err, "failed to find pending verification request")
	}

	return toVerificationDomain(&requestM), nil
}

// List returns requests newest first, optionally filtered by status.
func (repo *verificationRepository) List(ctx context.Context, status *entity.VerificationStatus) ([]*entity.VerificationRequest, error) {
	var requestModels []*model.VerificationRequestModel

	query := repo.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", status.String())
	}

	if err := query.
		Order("submitted_at DESC").
		Find(&requestModels).Error; err != nil {
		return nil, storageError(err, "failed to list verification requests")
	}

	requests := make([]*entity.VerificationRequest, 0, len(requestModels))
	for _, requestM := range requestModels {
		requests = append(requests, toVerificationDomain(requestM))
	}

	return requests, nil
}

// Transition is a compare-and-set on status: it only matches a pending row.
func (repo *verificationRepository) Transition(ctx context.Context, id uuid.UUID, review entity.Review) error {
	result := repo.db.WithContext(ctx).
		Model(&model.VerificationRequestModel{}).
		Where("id = ? AND status = ?", id, entity.VerificationPending.String()).
		Updates(map[string]any{
			"status":      review.Decision.String(),
			"reviewed_at": review.ReviewedAt,
			"reviewed_by": review.ReviewedBy,
			"admin_notes": review.Notes,
		})
	if result.Error != nil {
		return storageError(result.Error, "failed to transition verification request")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTransitionConflict
	}

	return nil
}

func toVerificationDomain(data *model.VerificationRequestModel) *entity.VerificationRequest {
	evidence := make([]entity.EvidenceArtifact, 0, len(data.Evidence))
	for _, item := range data.Evidence {
		evidence = append(evidence, entity.EvidenceArtifact{
			URL:  item.URL,
			Kind: entity.EvidenceKind(item.Kind),
		})
	}

	return &entity.VerificationRequest{
		ID:          data.ID,
		ProviderID:  data.ProviderID,
		Status:      entity.VerificationStatus(data.Status),
		Evidence:    evidence,
		SubmittedAt: data.SubmittedAt,
		ReviewedAt:  data.ReviewedAt,
		ReviewedBy:  data.ReviewedBy,
		AdminNotes:  data.AdminNotes,
	}
}

func fromVerificationDomain(data *entity.VerificationRequest) *model.VerificationRequestModel {
	evidence := make([]model.EvidenceModel, 0, len(data.Evidence))
	for _, item := range data.Evidence {
		evidence = append(evidence, model.EvidenceModel{
			URL:  item.URL,
			Kind: string(item.Kind),
		})
	}

	return &model.VerificationRequestModel{
		ID:          data.ID,
		ProviderID:  data.ProviderID,
		Status:      data.Status.String(),
		Evidence:    evidence,
		SubmittedAt: data.SubmittedAt,
		ReviewedAt:  data.ReviewedAt,
		ReviewedBy:  data.ReviewedBy,
		AdminNotes:  data.AdminNotes,
	}
}
