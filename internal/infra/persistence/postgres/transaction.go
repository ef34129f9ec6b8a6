// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bazaar/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory creates repositories bound to a single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB
}

// NewIdentityRepository creates an identity repository bound to the transaction.
func (f *gormRepositoryFactory) NewIdentityRepository() repository.IdentityRepository {
	return NewIdentityRepository(f.tx)
}

// NewVerificationRepository creates a verification repository bound to the transaction.
func (f *gormRepositoryFactory) NewVerificationRepository() repository.VerificationRepository {
	return NewVerificationRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs fn within a single database transaction on the primary.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storageError(tx.Error, "failed to begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, gorm.ErrInvalidTransaction) {
			// The original error is more meaningful than the rollback failure.
			return errors.Wrapf(err, "transaction rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return storageError(err, "failed to commit transaction")
	}

	return nil
}
