package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bazaar/config"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// queryLogger routes GORM output through slog. Lookups that find nothing and
// duplicate-key inserts are expected outcomes, so they are not logged as errors.
type queryLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newQueryLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	if cfg != nil && cfg.Env.Debug {
		level = logger.Info
	}

	threshold := defaultSlowQueryThreshold
	if cfg != nil && cfg.Storage != nil && cfg.Storage.SlowQueryThreshold > 0 {
		threshold = cfg.Storage.SlowQueryThreshold
	}

	return &queryLogger{
		logger:        baseLogger,
		level:         level,
		slowThreshold: threshold,
	}
}

func (l *queryLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.message(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *queryLogger) message(ctx context.Context, min logger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.logger == nil || l.level < min {
		return
	}

	l.logger.LogAttrs(ctx, level, "gorm", slog.String("message", fmt.Sprintf(msg, args...)))
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return
	case err != nil && isUniqueConstraintViolation(err) && l.level >= logger.Warn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "gorm constraint rejected write",
			append(l.queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))...)
	case err != nil && l.level >= logger.Error:
		l.logger.LogAttrs(ctx, slog.LevelError, "gorm query failed",
			append(l.queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "gorm slow query",
			append(l.queryAttrs(sqlAndRowsFn, elapsed), slog.Duration("slowThreshold", l.slowThreshold))...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelDebug, "gorm query", l.queryAttrs(sqlAndRowsFn, elapsed)...)
	}
}

func (l *queryLogger) queryAttrs(sqlAndRowsFn func() (string, int64), elapsed time.Duration) []slog.Attr {
	sql, rows := sqlAndRowsFn()

	return []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}
}
