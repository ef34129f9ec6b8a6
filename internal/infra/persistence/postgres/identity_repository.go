package postgres

import (
	"context"
	"time"

	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// identityRepository implements the repository.IdentityRepository interface.
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository is the constructor for identityRepository.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{
		db: db,
	}
}

// FindByID retrieves an identity with its provider row preloaded.
func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	var identityM model.IdentityModel

	if err := repo.db.WithContext(ctx).
		Preload("Provider").
		Where("id = ?", id).
		First(&identityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, storageError(err, "failed to find identity by ID")
	}

	return toIdentityDomain(&identityM), nil
}

// FindByEmail retrieves an identity by normalized email. Credential checks
// read from the primary so a fresh registration can log in immediately.
func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	var identityM model.IdentityModel

	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Preload("Provider").
		Where("email = ?", email).
		First(&identityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, storageError(err, "failed to find identity by email")
	}

	return toIdentityDomain(&identityM), nil
}

// FindProvider retrieves the provider extension of an artisan.
func (repo *identityRepository) FindProvider(ctx context.Context, identityID uuid.UUID) (*entity.Provider, error) {
	var providerM model.ProviderModel

	if err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		First(&providerM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProviderNotFound
		}

		return nil, storageError(err, "failed to find provider")
	}

	return toProviderDomain(&providerM), nil
}

// Create persists the identity and, through the association, its provider row.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateEmail
		}
		if isInvalidValue(err) {
			return invalidValueError(err)
		}

		return storageError(err, "failed to create identity")
	}

	identity.CreatedAt = identityM.CreatedAt
	identity.UpdatedAt = identityM.UpdatedAt
	if identity.Provider != nil && identityM.Provider != nil {
		identity.Provider.UpdatedAt = identityM.Provider.UpdatedAt
	}

	return nil
}

// UpdateProfile writes the mutable profile columns only.
func (repo *identityRepository) UpdateProfile(ctx context.Context, identity *entity.Identity) error {
	now := time.Now()
	updates := map[string]any{
		"full_name":  identity.FullName,
		"phone":      identity.Phone,
		"updated_at": now,
	}
	if identity.Student != nil {
		updates["department"] = identity.Student.Department
		updates["level"] = identity.Student.Level
	}

	result := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("id = ?", identity.ID).
		Updates(updates)
	if result.Error != nil {
		if isInvalidValue(result.Error) {
			return invalidValueError(result.Error)
		}

		return storageError(result.Error, "failed to update identity profile")
	}
	if result.RowsAffected == 0 {
		return repository.ErrIdentityNotFound
	}

	if identity.Provider != nil {
		result = repo.db.WithContext(ctx).
			Model(&model.ProviderModel{}).
			Where("identity_id = ?", identity.ID).
			Updates(map[string]any{
				"business_name":  identity.Provider.BusinessName,
				"location":       identity.Provider.Location,
				"specialization": identity.Provider.Specialization,
				"experience":     identity.Provider.Experience,
				"updated_at":     now,
			})
		if result.Error != nil {
			if isInvalidValue(result.Error) {
				return invalidValueError(result.Error)
			}

			return storageError(result.Error, "failed to update provider profile")
		}
		if result.RowsAffected == 0 {
			return repository.ErrProviderNotFound
		}
		identity.Provider.UpdatedAt = now
	}

	identity.UpdatedAt = now

	return nil
}

// UpdateProviderVerification writes verified and verification_status in one statement.
func (repo *identityRepository) UpdateProviderVerification(ctx context.Context, identityID uuid.UUID, status entity.VerificationStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProviderModel{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]any{
			"verified":            status == entity.VerificationApproved,
			"verification_status": string(status),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return storageError(result.Error, "failed to update provider verification")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProviderNotFound
	}

	return nil
}

func toIdentityDomain(data *model.IdentityModel) *entity.Identity {
	if data == nil {
		return nil
	}

	identity := &entity.Identity{
		ID:           data.ID,
		Email:        data.Email,
		FullName:     data.FullName,
		PasswordHash: data.PasswordHash,
		Role:         entity.Role(data.Role),
		Phone:        data.Phone,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}

	if identity.Role == entity.RoleStudent {
		identity.Student = &entity.StudentProfile{
			StudentID:  derefString(data.StudentID),
			Department: derefString(data.Department),
			Level:      derefString(data.Level),
		}
	}

	if data.Provider != nil {
		identity.Provider = toProviderDomain(data.Provider)
	}

	return identity
}

func fromIdentityDomain(data *entity.Identity) *model.IdentityModel {
	if data == nil {
		return nil
	}

	identityM := &model.IdentityModel{
		ID:           data.ID,
		Email:        data.Email,
		FullName:     data.FullName,
		PasswordHash: data.PasswordHash,
		Role:         data.Role.String(),
		Phone:        data.Phone,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}

	if data.Student != nil {
		identityM.StudentID = &data.Student.StudentID
		identityM.Department = &data.Student.Department
		identityM.Level = &data.Student.Level
	}

	if data.Provider != nil {
		identityM.Provider = fromProviderDomain(data.Provider)
	}

	return identityM
}

func toProviderDomain(data *model.ProviderModel) *entity.Provider {
	return &entity.Provider{
		IdentityID:         data.IdentityID,
		BusinessName:       data.BusinessName,
		Location:           data.Location,
		Specialization:     data.Specialization,
		Experience:         data.Experience,
		Verified:           data.Verified,
		VerificationStatus: entity.VerificationStatus(data.VerificationStatus),
		UpdatedAt:          data.UpdatedAt,
	}
}

func fromProviderDomain(data *entity.Provider) *model.ProviderModel {
	return &model.ProviderModel{
		IdentityID:         data.IdentityID,
		BusinessName:       data.BusinessName,
		Location:           data.Location,
		Specialization:     data.Specialization,
		Experience:         data.Experience,
		Verified:           data.Verified,
		VerificationStatus: data.VerificationStatus.String(),
		UpdatedAt:          data.UpdatedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
