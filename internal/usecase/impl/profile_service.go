package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bazaar/config"
	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/errors"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type profileService struct {
	txManager    repository.TransactionManager
	identityRepo repository.IdentityRepository
	storeTimeout time.Duration
	logger       *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	IdentityRepo repository.IdentityRepository
	Config       *config.Config
	Logger       *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager:    params.TxManager,
		identityRepo: params.IdentityRepo,
		storeTimeout: storeTimeout(params.Config),
		logger:       params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the stored identity.
func (srv *profileService) GetProfile(ctx context.Context, identityID uuid.UUID) (*entity.Identity, error) {
	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	identity, err := srv.identityRepo.FindByID(storeCtx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, domainerrors.ErrIdentityNotFound
		}
		srv.log(ctx).Error("Failed to load profile", slog.Any("error", err))

		return nil, storeError(err, "failed to load profile")
	}

	return identity, nil
}

// UpdateProfile applies a partial update of the mutable profile fields.
func (srv *profileService) UpdateProfile(ctx context.Context, identityID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.Identity, error) {
	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	var updated *entity.Identity
	err := srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		identities := repoFactory.NewIdentityRepository()

		identity, err := identities.FindByID(storeCtx, identityID)
		if err != nil {
			if errors.Is(err, repository.ErrIdentityNotFound) {
				return domainerrors.ErrIdentityNotFound
			}

			return storeError(err, "failed to load profile")
		}

		if err := applyProfileUpdate(identity, input); err != nil {
			return err
		}

		if err := identities.UpdateProfile(storeCtx, identity); err != nil {
			switch {
			case errors.Is(err, repository.ErrIdentityNotFound):
				return domainerrors.ErrIdentityNotFound
			case errors.Is(err, repository.ErrProviderNotFound):
				return domainerrors.ErrProviderNotFound
			case errors.Is(err, repository.ErrInvalidValue):
				return domainerrors.ErrValidationFailed.WithDetails(err.Error())
			default:
				return storeError(err, "failed to update profile")
			}
		}
		updated = identity

		return nil
	})
	if err != nil {
		err = storeError(err, "failed to update profile")
		if domainerrors.IsStorageUnavailable(err) {
			srv.log(ctx).Error("Failed to update profile", slog.Any("error", err))
		}

		return nil, err
	}

	srv.log(ctx).Info("Profile updated", slog.String("identity_id", identityID.String()))

	return updated, nil
}

func applyProfileUpdate(identity *entity.Identity, input *usecase.UpdateProfileInput) error {
	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if fullName == "" {
			return domainerrors.ErrValidationFailed.WithDetails("fullName cannot be empty")
		}
		identity.FullName = fullName
	}
	if input.Phone != nil {
		identity.Phone = strings.TrimSpace(*input.Phone)
	}

	if input.Department != nil || input.Level != nil {
		if identity.Student == nil {
			return domainerrors.ErrValidationFailed.WithDetails("department and level apply to students only")
		}
		setTrimmed(&identity.Student.Department, input.Department)
		setTrimmed(&identity.Student.Level, input.Level)
		if identity.Student.Department == "" || identity.Student.Level == "" {
			return domainerrors.ErrValidationFailed.WithDetails("department and level cannot be empty")
		}
	}

	if input.BusinessName != nil || input.Location != nil || input.Specialization != nil || input.Experience != nil {
		if identity.Provider == nil {
			return domainerrors.ErrValidationFailed.WithDetails("business fields apply to artisans only")
		}
		setTrimmed(&identity.Provider.BusinessName, input.BusinessName)
		setTrimmed(&identity.Provider.Location, input.Location)
		setTrimmed(&identity.Provider.Specialization, input.Specialization)
		setTrimmed(&identity.Provider.Experience, input.Experience)
		if missing := missingFields([]requiredField{
			{"businessName", identity.Provider.BusinessName},
			{"location", identity.Provider.Location},
			{"specialization", identity.Provider.Specialization},
			{"experience", identity.Provider.Experience},
		}); len(missing) > 0 {
			return domainerrors.ErrValidationFailed.WithDetails("cannot clear required fields: " + strings.Join(missing, ", "))
		}
	}

	return nil
}

func setTrimmed(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
