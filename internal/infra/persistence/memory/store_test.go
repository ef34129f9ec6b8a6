package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedArtisan(t *testing.T, store *Store) *entity.Identity {
	t.Helper()

	id := uuid.New()
	identity := &entity.Identity{
		ID:       id,
		Email:    "weaver@example.com",
		FullName: "Kemi Weaver",
		Role:     entity.RoleArtisan,
		Provider: entity.NewProvider(id, "Kemi Looms", "Ibadan", "weaving", "8 years"),
	}
	require.NoError(t, NewIdentityRepository(store).Create(context.Background(), identity))

	return identity
}

func seedPending(t *testing.T, store *Store, providerID uuid.UUID, submittedAt time.Time) *entity.VerificationRequest {
	t.Helper()

	request := &entity.VerificationRequest{
		ID:          uuid.New(),
		ProviderID:  providerID,
		Status:      entity.VerificationPending,
		Evidence:    []entity.EvidenceArtifact{{URL: "https://example.com/loom.jpg", Kind: entity.EvidencePortfolio}},
		SubmittedAt: submittedAt,
	}
	require.NoError(t, NewVerificationRepository(store).Create(context.Background(), request))

	return request
}

func TestIdentityRepository_DuplicateEmail(t *testing.T) {
	store := NewStore()
	seedArtisan(t, store)

	err := NewIdentityRepository(store).Create(context.Background(), &entity.Identity{
		ID:    uuid.New(),
		Email: "weaver@example.com",
		Role:  entity.RoleStudent,
	})

	assert.True(t, errors.Is(err, repository.ErrDuplicateEmail))
}

func TestIdentityRepository_ReturnsCopies(t *testing.T) {
	store := NewStore()
	identity := seedArtisan(t, store)
	repo := NewIdentityRepository(store)

	loaded, err := repo.FindByID(context.Background(), identity.ID)
	require.NoError(t, err)
	loaded.Provider.Verified = true
	loaded.Provider.VerificationStatus = entity.VerificationApproved

	reloaded, err := repo.FindByID(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Provider.Verified)
	assert.Equal(t, entity.VerificationPending, reloaded.Provider.VerificationStatus)
}

func TestIdentityRepository_UpdateProviderVerificationMovesPair(t *testing.T) {
	store := NewStore()
	identity := seedArtisan(t, store)
	repo := NewIdentityRepository(store)

	require.NoError(t, repo.UpdateProviderVerification(context.Background(), identity.ID, entity.VerificationApproved))
	provider, err := repo.FindProvider(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.True(t, provider.Verified)
	assert.Equal(t, entity.VerificationApproved, provider.VerificationStatus)

	require.NoError(t, repo.UpdateProviderVerification(context.Background(), identity.ID, entity.VerificationRejected))
	provider, err = repo.FindProvider(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.False(t, provider.Verified)
	assert.Equal(t, entity.VerificationRejected, provider.VerificationStatus)
}

func TestVerificationRepository_OnePendingPerProvider(t *testing.T) {
	store := NewStore()
	identity := seedArtisan(t, store)
	seedPending(t, store, identity.ID, time.Now())

	err := NewVerificationRepository(store).Create(context.Background(), &entity.VerificationRequest{
		ID:          uuid.New(),
		ProviderID:  identity.ID,
		Status:      entity.VerificationPending,
		SubmittedAt: time.Now(),
	})

	assert.True(t, errors.Is(err, repository.ErrPendingExists))
}

func TestVerificationRepository_ListOrdersNewestFirst(t *testing.T) {
	store := NewStore()
	repo := NewVerificationRepository(store)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		identity := &entity.Identity{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Role: entity.RoleArtisan}
		identity.Provider = entity.NewProvider(identity.ID, "Shop", "Abuja", "pottery", "2 years")
		require.NoError(t, NewIdentityRepository(store).Create(context.Background(), identity))
		ids = append(ids, seedPending(t, store, identity.ID, base.Add(time.Duration(i)*time.Hour)).ID)
	}
	require.NoError(t, repo.Transition(context.Background(), ids[0], entity.Review{
		Decision:   entity.VerificationRejected,
		ReviewedBy: uuid.New(),
		ReviewedAt: base.Add(4 * time.Hour),
	}))

	all, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	pending := entity.VerificationPending
	filtered, err := repo.List(context.Background(), &pending)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	store := NewStore()
	identity := seedArtisan(t, store)
	request := seedPending(t, store, identity.ID, time.Now())
	txManager := NewTransactionManager(store)
	boom := errors.New("boom")

	err := txManager.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		if err := f.NewVerificationRepository().Transition(context.Background(), request.ID, entity.Review{
			Decision:   entity.VerificationApproved,
			ReviewedBy: uuid.New(),
			ReviewedAt: time.Now(),
		}); err != nil {
			return err
		}

		return boom
	})
	assert.Equal(t, boom, err)

	loaded, err := NewVerificationRepository(store).FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VerificationPending, loaded.Status)
	assert.Nil(t, loaded.ReviewedAt)
}

func TestTransactionManager_ConcurrentTransitionsHaveOneWinner(t *testing.T) {
	store := NewStore()
	identity := seedArtisan(t, store)
	request := seedPending(t, store, identity.ID, time.Now())
	txManager := NewTransactionManager(store)

	const reviewers = 8
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := txManager.Execute(context.Background(), func(f repository.RepositoryFactory) error {
				return f.NewVerificationRepository().Transition(context.Background(), request.ID, entity.Review{
					Decision:   entity.VerificationApproved,
					ReviewedBy: uuid.New(),
					ReviewedAt: time.Now(),
				})
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, repository.ErrTransitionConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(reviewers-1), conflicts.Load())
}

func TestStore_CanceledContextIsStorageUnavailable(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIdentityRepository(store).FindByEmail(ctx, "anyone@example.com")
	assert.True(t, domainerrors.IsStorageUnavailable(err))

	err = NewTransactionManager(store).Execute(ctx, func(repository.RepositoryFactory) error { return nil })
	assert.True(t, domainerrors.IsStorageUnavailable(err))
}
