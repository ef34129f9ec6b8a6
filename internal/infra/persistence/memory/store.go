// Package memory implements the persistence layer in process memory.
// It backs the "memory" storage driver and the use case tests.
package memory

import (
	"context"
	"sync"

	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"

	"github.com/google/uuid"
)

type state struct {
	identities map[uuid.UUID]*entity.Identity
	emails     map[string]uuid.UUID
	requests   map[uuid.UUID]*entity.VerificationRequest
}

func newState() *state {
	return &state{
		identities: make(map[uuid.UUID]*entity.Identity),
		emails:     make(map[string]uuid.UUID),
		requests:   make(map[uuid.UUID]*entity.VerificationRequest),
	}
}

func (s *state) clone() *state {
	cloned := &state{
		identities: make(map[uuid.UUID]*entity.Identity, len(s.identities)),
		emails:     make(map[string]uuid.UUID, len(s.emails)),
		requests:   make(map[uuid.UUID]*entity.VerificationRequest, len(s.requests)),
	}
	for id, identity := range s.identities {
		cloned.identities[id] = identity.Clone()
	}
	for email, id := range s.emails {
		cloned.emails[email] = id
	}
	for id, request := range s.requests {
		cloned.requests[id] = request.Clone()
	}

	return cloned
}

// Store holds all tables. Writers are serialized by txMu; a transaction
// works on a private copy that replaces the live state on commit.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// accessor routes reads and writes either to the live state or to a
// transaction's staged copy.
type accessor struct {
	store  *Store
	staged *state
}

func (a accessor) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewStorageUnavailableError(err, "memory store read aborted")
	}
	if a.staged != nil {
		return fn(a.staged)
	}

	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	return fn(a.store.state)
}

func (a accessor) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewStorageUnavailableError(err, "memory store write aborted")
	}
	if a.staged != nil {
		return fn(a.staged)
	}

	a.store.txMu.Lock()
	defer a.store.txMu.Unlock()
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	return fn(a.store.state)
}

type transactionManager struct {
	store *Store
}

// NewTransactionManager returns a TransactionManager over the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

type repositoryFactory struct {
	acc accessor
}

func (f *repositoryFactory) NewIdentityRepository() repository.IdentityRepository {
	return &identityRepository{acc: f.acc}
}

func (f *repositoryFactory) NewVerificationRepository() repository.VerificationRepository {
	return &verificationRepository{acc: f.acc}
}

// Execute runs fn against a staged copy and publishes it only when fn succeeds.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewStorageUnavailableError(err, "failed to begin transaction")
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	tm.store.mu.RLock()
	staged := tm.store.state.clone()
	tm.store.mu.RUnlock()

	if err := fn(&repositoryFactory{acc: accessor{store: tm.store, staged: staged}}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return domainerrors.NewStorageUnavailableError(err, "failed to commit transaction")
	}

	tm.store.mu.Lock()
	tm.store.state = staged
	tm.store.mu.Unlock()

	return nil
}
