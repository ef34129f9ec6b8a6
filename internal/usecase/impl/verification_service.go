package impl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"bazaar/config"
	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"
	"bazaar/internal/errors"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// verificationService implements the VerificationUsecase interface.
type verificationService struct {
	txManager        repository.TransactionManager
	identityRepo     repository.IdentityRepository
	verificationRepo repository.VerificationRepository
	publisher        service.EventPublisher
	qrCodeService    service.QRCodeService
	storeTimeout     time.Duration
	logger           *slog.Logger
}

// VerificationServiceParams holds dependencies for VerificationService, injected by Fx.
type VerificationServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	IdentityRepo     repository.IdentityRepository
	VerificationRepo repository.VerificationRepository
	Publisher        service.EventPublisher
	QRCodeService    service.QRCodeService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	return &verificationService{
		txManager:        params.TxManager,
		identityRepo:     params.IdentityRepo,
		verificationRepo: params.VerificationRepo,
		publisher:        params.Publisher,
		qrCodeService:    params.QRCodeService,
		storeTimeout:     storeTimeout(params.Config),
		logger:           params.Logger,
	}
}

func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Submit opens a pending request for a provider that has none.
func (srv *verificationService) Submit(ctx context.Context, input *usecase.SubmitVerificationInput) (*entity.VerificationRequest, error) {
	if err := validateEvidence(input.Evidence); err != nil {
		return nil, err
	}

	request := &entity.VerificationRequest{
		ID:          uuid.New(),
		ProviderID:  input.ProviderID,
		Status:      entity.VerificationPending,
		Evidence:    slices.Clone(input.Evidence),
		SubmittedAt: time.Now().UTC(),
	}

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	err := srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		identities := repoFactory.NewIdentityRepository()
		requests := repoFactory.NewVerificationRepository()

		provider, err := identities.FindProvider(storeCtx, input.ProviderID)
		if err != nil {
			if errors.Is(err, repository.ErrProviderNotFound) {
				return domainerrors.ErrProviderNotFound
			}

			return storeError(err, "failed to load provider")
		}
		if provider.VerificationStatus == entity.VerificationApproved {
			return domainerrors.ErrInvalidStateTransition.WithDetails("provider is already verified")
		}

		_, err = requests.FindPendingByProvider(storeCtx, input.ProviderID)
		switch {
		case err == nil:
			return domainerrors.ErrVerificationPending
		case !errors.Is(err, repository.ErrVerificationNotFound):
			return storeError(err, "failed to check pending requests")
		}

		if err := requests.Create(storeCtx, request); err != nil {
			switch {
			case errors.Is(err, repository.ErrPendingExists):
				return domainerrors.ErrVerificationPending
			case errors.Is(err, repository.ErrProviderNotFound):
				return domainerrors.ErrProviderNotFound
			default:
				return storeError(err, "failed to create verification request")
			}
		}

		if err := identities.UpdateProviderVerification(storeCtx, input.ProviderID, entity.VerificationPending); err != nil {
			return providerError(err, "failed to reset provider verification")
		}

		return nil
	})
	if err != nil {
		return nil, srv.failure(ctx, err, "failed to submit verification request")
	}

	srv.log(ctx).Info("Verification request submitted",
		slog.String("verification_request_id", request.ID.String()),
		slog.String("provider_id", request.ProviderID.String()),
		slog.Int("evidence_count", len(request.Evidence)),
	)

	return request, nil
}

// Review applies an administrator's terminal decision to a pending request.
func (srv *verificationService) Review(ctx context.Context, input *usecase.ReviewInput) (*entity.VerificationRequest, error) {
	if input.Reviewer == nil || input.Reviewer.Role != entity.RoleAdmin {
		return nil, domainerrors.ErrInsufficientRole
	}
	if !input.Decision.IsTerminal() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("status must be approved or rejected")
	}

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	current, err := srv.verificationRepo.FindByID(storeCtx, input.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, domainerrors.ErrVerificationNotFound
		}

		return nil, srv.failure(ctx, err, "failed to load verification request")
	}
	if !current.Status.CanTransitionTo(input.Decision) {
		return nil, domainerrors.ErrInvalidStateTransition
	}

	review := entity.Review{
		Decision:   input.Decision,
		ReviewedBy: input.Reviewer.ID,
		ReviewedAt: time.Now().UTC(),
		Notes:      input.Notes,
	}

	err = srv.txManager.Execute(storeCtx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewVerificationRepository().Transition(storeCtx, input.RequestID, review); err != nil {
			switch {
			case errors.Is(err, repository.ErrTransitionConflict):
				return domainerrors.ErrConflict
			case errors.Is(err, repository.ErrVerificationNotFound):
				return domainerrors.ErrVerificationNotFound
			default:
				return storeError(err, "failed to transition verification request")
			}
		}

		if err := repoFactory.NewIdentityRepository().UpdateProviderVerification(storeCtx, current.ProviderID, input.Decision); err != nil {
			return providerError(err, "failed to update provider verification")
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			srv.log(ctx).Warn("Verification request reviewed concurrently",
				slog.String("verification_request_id", input.RequestID.String()),
			)
		}

		return nil, srv.failure(ctx, err, "failed to review verification request")
	}

	reviewed := current.Clone()
	reviewed.Status = review.Decision
	reviewed.ReviewedAt = &review.ReviewedAt
	reviewed.ReviewedBy = &review.ReviewedBy
	reviewed.AdminNotes = review.Notes

	srv.log(ctx).Info("Verification request reviewed",
		slog.String("verification_request_id", reviewed.ID.String()),
		slog.String("provider_id", reviewed.ProviderID.String()),
		slog.String("decision", review.Decision.String()),
		slog.String("reviewer_id", review.ReviewedBy.String()),
	)

	srv.publishReviewed(ctx, reviewed)

	return reviewed, nil
}

// List returns requests newest first, optionally filtered by status.
func (srv *verificationService) List(ctx context.Context, status *entity.VerificationStatus) ([]*entity.VerificationRequest, error) {
	if status != nil && !status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("unknown status %q", *status))
	}

	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	requests, err := srv.verificationRepo.List(storeCtx, status)
	if err != nil {
		return nil, srv.failure(ctx, err, "failed to list verification requests")
	}

	return requests, nil
}

// Get returns a single request.
func (srv *verificationService) Get(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	request, err := srv.verificationRepo.FindByID(storeCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVerificationNotFound) {
			return nil, domainerrors.ErrVerificationNotFound
		}

		return nil, srv.failure(ctx, err, "failed to load verification request")
	}

	return request, nil
}

// ProviderStatus returns the public verification state of a provider.
func (srv *verificationService) ProviderStatus(ctx context.Context, providerID uuid.UUID) (*usecase.ProviderStatusOutput, error) {
	provider, err := srv.findProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	return &usecase.ProviderStatusOutput{
		ProviderID:         provider.IdentityID,
		BusinessName:       provider.BusinessName,
		Verified:           provider.Verified,
		VerificationStatus: provider.VerificationStatus,
	}, nil
}

// VerificationBadge renders the QR badge of a verified provider.
func (srv *verificationService) VerificationBadge(ctx context.Context, providerID uuid.UUID) ([]byte, error) {
	provider, err := srv.findProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !provider.Verified {
		return nil, domainerrors.ErrProviderNotVerified
	}

	png, err := srv.qrCodeService.GenerateVerificationBadge(provider.IdentityID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate verification badge",
			slog.String("provider_id", providerID.String()),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to generate verification badge")
	}

	return png, nil
}

func (srv *verificationService) findProvider(ctx context.Context, providerID uuid.UUID) (*entity.Provider, error) {
	storeCtx, cancel := withStoreTimeout(ctx, srv.storeTimeout)
	defer cancel()

	provider, err := srv.identityRepo.FindProvider(storeCtx, providerID)
	if err != nil {
		return nil, srv.failure(ctx, providerError(err, "failed to load provider"), "failed to load provider")
	}

	return provider, nil
}

func providerError(err error, details string) error {
	if errors.Is(err, repository.ErrProviderNotFound) {
		return domainerrors.ErrProviderNotFound
	}

	return storeError(err, details)
}

// failure logs storage failures and resolves err to an application error.
func (srv *verificationService) failure(ctx context.Context, err error, details string) error {
	err = storeError(err, details)
	if domainerrors.IsStorageUnavailable(err) {
		srv.log(ctx).Error("Verification store failure", slog.String("operation", details), slog.Any("error", err))
	}

	return err
}

// publishReviewed emits the review outcome. Failures are logged only; the
// review has already committed.
func (srv *verificationService) publishReviewed(ctx context.Context, request *entity.VerificationRequest) {
	event := &service.VerificationReviewedEvent{
		RequestID:        deliverycontext.GetRequestIDFromContext(ctx),
		ReviewID:         request.ID.String(),
		ProviderID:       request.ProviderID.String(),
		Decision:         request.Status.String(),
		ProviderVerified: request.Status == entity.VerificationApproved,
	}
	if request.ReviewedBy != nil {
		event.ReviewerID = request.ReviewedBy.String()
	}
	if request.ReviewedAt != nil {
		event.ReviewedAt = request.ReviewedAt.Format(time.RFC3339)
	}
	if request.AdminNotes != nil {
		event.AdminNotes = *request.AdminNotes
	}

	if err := srv.publisher.PublishVerificationReviewed(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish verification reviewed event",
			slog.String("verification_request_id", event.ReviewID),
			slog.Any("error", err),
		)
	}
}

func validateEvidence(evidence []entity.EvidenceArtifact) error {
	if len(evidence) == 0 {
		return domainerrors.ErrValidationFailed.WithDetails("at least one evidence artifact is required")
	}

	for i, artifact := range evidence {
		if strings.TrimSpace(artifact.URL) == "" {
			return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("evidence[%d]: url is required", i))
		}
		if !artifact.Kind.IsValid() {
			return domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("evidence[%d]: unknown kind %q", i, artifact.Kind))
		}
	}

	return nil
}
