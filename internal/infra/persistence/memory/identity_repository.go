package memory

import (
	"context"
	"time"

	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"

	"github.com/google/uuid"
)

type identityRepository struct {
	acc accessor
}

// NewIdentityRepository returns an IdentityRepository over the live state.
func NewIdentityRepository(store *Store) repository.IdentityRepository {
	return &identityRepository{acc: accessor{store: store}}
}

func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	var found *entity.Identity
	err := repo.acc.read(ctx, func(s *state) error {
		identity, ok := s.identities[id]
		if !ok {
			return repository.ErrIdentityNotFound
		}
		found = identity.Clone()

		return nil
	})

	return found, err
}

func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	var found *entity.Identity
	err := repo.acc.read(ctx, func(s *state) error {
		id, ok := s.emails[email]
		if !ok {
			return repository.ErrIdentityNotFound
		}
		found = s.identities[id].Clone()

		return nil
	})

	return found, err
}

func (repo *identityRepository) FindProvider(ctx context.Context, identityID uuid.UUID) (*entity.Provider, error) {
	var found *entity.Provider
	err := repo.acc.read(ctx, func(s *state) error {
		identity, ok := s.identities[identityID]
		if !ok || identity.Provider == nil {
			return repository.ErrProviderNotFound
		}
		provider := *identity.Provider
		found = &provider

		return nil
	})

	return found, err
}

func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	return repo.acc.write(ctx, func(s *state) error {
		if _, taken := s.emails[identity.Email]; taken {
			return repository.ErrDuplicateEmail
		}

		now := time.Now()
		identity.CreatedAt = now
		identity.UpdatedAt = now
		if identity.Provider != nil {
			identity.Provider.IdentityID = identity.ID
			identity.Provider.UpdatedAt = now
		}

		s.identities[identity.ID] = identity.Clone()
		s.emails[identity.Email] = identity.ID

		return nil
	})
}

func (repo *identityRepository) UpdateProfile(ctx context.Context, identity *entity.Identity) error {
	return repo.acc.write(ctx, func(s *state) error {
		stored, ok := s.identities[identity.ID]
		if !ok {
			return repository.ErrIdentityNotFound
		}
		if identity.Provider != nil && stored.Provider == nil {
			return repository.ErrProviderNotFound
		}

		now := time.Now()
		stored.FullName = identity.FullName
		stored.Phone = identity.Phone
		stored.UpdatedAt = now
		if identity.Student != nil && stored.Student != nil {
			stored.Student.Department = identity.Student.Department
			stored.Student.Level = identity.Student.Level
		}
		if identity.Provider != nil {
			stored.Provider.BusinessName = identity.Provider.BusinessName
			stored.Provider.Location = identity.Provider.Location
			stored.Provider.Specialization = identity.Provider.Specialization
			stored.Provider.Experience = identity.Provider.Experience
			stored.Provider.UpdatedAt = now
			identity.Provider.UpdatedAt = now
		}
		identity.UpdatedAt = now

		return nil
	})
}

func (repo *identityRepository) UpdateProviderVerification(ctx context.Context, identityID uuid.UUID, status entity.VerificationStatus) error {
	return repo.acc.write(ctx, func(s *state) error {
		stored, ok := s.identities[identityID]
		if !ok || stored.Provider == nil {
			return repository.ErrProviderNotFound
		}

		stored.Provider.ApplyDecision(status)
		stored.Provider.UpdatedAt = time.Now()

		return nil
	})
}
