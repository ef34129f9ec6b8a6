package memory

import (
	"context"
	"sort"

	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"

	"github.com/google/uuid"
)

type verificationRepository struct {
	acc accessor
}

// NewVerificationRepository returns a VerificationRepository over the live state.
func NewVerificationRepository(store *Store) repository.VerificationRepository {
	return &verificationRepository{acc: accessor{store: store}}
}

func (repo *verificationRepository) Create(ctx context.Context, request *entity.VerificationRequest) error {
	return repo.acc.write(ctx, func(s *state) error {
		provider, ok := s.identities[request.ProviderID]
		if !ok || provider.Provider == nil {
			return repository.ErrProviderNotFound
		}
		if request.Status == entity.VerificationPending && pendingFor(s, request.ProviderID) != nil {
			return repository.ErrPendingExists
		}

		s.requests[request.ID] = request.Clone()

		return nil
	})
}

func (repo *verificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VerificationRequest, error) {
	var found *entity.VerificationRequest
	err := repo.acc.read(ctx, func(s *state) error {
		request, ok := s.requests[id]
		if !ok {
			return repository.ErrVerificationNotFound
		}
		found = request.Clone()

		return nil
	})

	return found, err
}

func (repo *verificationRepository) FindPendingByProvider(ctx context.Context, providerID uuid.UUID) (*entity.VerificationRequest, error) {
	var found *entity.VerificationRequest
	err := repo.acc.read(ctx, func(s *state) error {
		request := pendingFor(s, providerID)
		if request == nil {
			return repository.ErrVerificationNotFound
		}
		found = request.Clone()

		return nil
	})

	return found, err
}

func (repo *verificationRepository) List(ctx context.Context, status *entity.VerificationStatus) ([]*entity.VerificationRequest, error) {
	var requests []*entity.VerificationRequest
	err := repo.acc.read(ctx, func(s *state) error {
		requests = make([]*entity.VerificationRequest, 0, len(s.requests))
		for _, request := range s.requests {
			if status != nil && request.Status != *status {
				continue
			}
			requests = append(requests, request.Clone())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(requests, func(i, j int) bool {
		if requests[i].SubmittedAt.Equal(requests[j].SubmittedAt) {
			return requests[i].ID.String() > requests[j].ID.String()
		}

		return requests[i].SubmittedAt.After(requests[j].SubmittedAt)
	})

	return requests, nil
}

// Transition only matches a pending row, like the conditional UPDATE in PostgreSQL.
func (repo *verificationRepository) Transition(ctx context.Context, id uuid.UUID, review entity.Review) error {
	return repo.acc.write(ctx, func(s *state) error {
		request, ok := s.requests[id]
		if !ok || request.Status != entity.VerificationPending {
			return repository.ErrTransitionConflict
		}

		reviewedAt := review.ReviewedAt
		reviewedBy := review.ReviewedBy
		request.Status = review.Decision
		request.ReviewedAt = &reviewedAt
		request.ReviewedBy = &reviewedBy
		request.AdminNotes = nil
		if review.Notes != nil {
			notes := *review.Notes
			request.AdminNotes = &notes
		}

		return nil
	})
}

func pendingFor(s *state, providerID uuid.UUID) *entity.VerificationRequest {
	for _, request := range s.requests {
		if request.ProviderID == providerID && request.Status == entity.VerificationPending {
			return request
		}
	}

	return nil
}
