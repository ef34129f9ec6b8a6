// Package migrations embeds the PostgreSQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	return nil
}
