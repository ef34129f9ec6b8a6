// Package persistence selects the storage driver configured for the process.
package persistence

import (
	"log/slog"

	"bazaar/config"
	"bazaar/internal/domain/constants"
	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/memory"
	"bazaar/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the storage provider, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the repositories of the selected driver
type Result struct {
	fx.Out

	TxManager     repository.TransactionManager
	Identities    repository.IdentityRepository
	Verifications repository.VerificationRepository
}

// NewStorage builds the repositories for storage.driver.
func NewStorage(params Params) (Result, error) {
	driver := constants.StorageDriverPostgres
	if params.Config.Storage != nil && params.Config.Storage.Driver != "" {
		driver = params.Config.Storage.Driver
	}

	switch driver {
	case constants.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Result{}, err
		}
		params.Logger.Info("Using PostgreSQL storage")

		return Result{
			TxManager:     postgres.NewTransactionManager(db),
			Identities:    postgres.NewIdentityRepository(db),
			Verifications: postgres.NewVerificationRepository(db),
		}, nil

	case constants.StorageDriverMemory:
		store := memory.NewStore()
		params.Logger.Warn("Using in-memory storage, data is lost on restart")

		return Result{
			TxManager:     memory.NewTransactionManager(store),
			Identities:    memory.NewIdentityRepository(store),
			Verifications: memory.NewVerificationRepository(store),
		}, nil

	default:
		return Result{}, errors.Errorf("unknown storage driver: %s", driver)
	}
}

// Module provides the storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewStorage),
)
