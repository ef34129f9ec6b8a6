package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"bazaar/config"
	"bazaar/internal/domain/lifecycle"
	"bazaar/internal/errors"
	"bazaar/internal/infra/persistence/migrations"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolSampleInterval  = 5 * time.Second
	poolSlowWaitAverage = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the identity store. On start it pings the primary, applies the
// embedded migrations when storage.migrate is set and starts sampling the pool.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is required for the postgres storage driver")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open identity store")
	}
	// Multi-step writes go through txManager.Execute, so single statements
	// skip GORM's implicit transaction.
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newQueryLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get identity store sql.DB")
	}

	migrate := params.Config.Storage != nil && params.Config.Storage.Migrate
	sampler := &poolSampler{logger: params.Logger, stats: sqlDB.Stats}
	samplerCtx, stopSampler := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := prepareStore(ctx, sqlDB, migrate, params.Logger); err != nil {
				return err
			}

			go sampler.run(samplerCtx, poolSampleInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			stopSampler()

			return sqlDB.Close()
		},
	})

	return db, nil
}

func prepareStore(ctx context.Context, sqlDB *sql.DB, migrate bool, logger *slog.Logger) error {
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "identity store is unreachable")
	}

	if !migrate {
		return nil
	}

	if err := migrations.Up(ctx, sqlDB); err != nil {
		return err
	}
	logger.Info("Identity store schema is up to date")

	return nil
}

// poolSampler reports connection waits between samples. Requests that wait
// for a connection eat into storage.timeout, so sustained waits show up as
// STORAGE_UNAVAILABLE responses.
type poolSampler struct {
	logger *slog.Logger
	stats  func() sql.DBStats
	prev   sql.DBStats
}

func (s *poolSampler) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.prev = s.stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

func (s *poolSampler) sample(ctx context.Context) {
	cur := s.stats()
	defer func() { s.prev = cur }()

	waits := cur.WaitCount - s.prev.WaitCount
	if waits <= 0 {
		return
	}

	waited := cur.WaitDuration - s.prev.WaitDuration
	avg := waited / time.Duration(waits)

	level := slog.LevelDebug
	if avg >= poolSlowWaitAverage {
		level = slog.LevelWarn
	}

	s.logger.LogAttrs(ctx, level, "Requests waited for an identity store connection",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avg_wait", avg),
		slog.Int("open_conns", cur.OpenConnections),
		slog.Int("in_use_conns", cur.InUse),
		slog.Int("max_open_conns", cur.MaxOpenConnections),
	)
}
