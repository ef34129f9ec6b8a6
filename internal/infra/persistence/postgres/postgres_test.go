package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestSampler(buf *bytes.Buffer, samples ...sql.DBStats) *poolSampler {
	next := 0
	sampler := &poolSampler{
		logger: slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		stats: func() sql.DBStats {
			stats := samples[next]
			next++

			return stats
		},
	}
	sampler.prev = sampler.stats()

	return sampler
}

func TestPoolSampler(t *testing.T) {
	tests := []struct {
		name    string
		next    sql.DBStats
		want    string
		wantLog bool
	}{
		{
			name:    "no waits",
			next:    sql.DBStats{WaitCount: 3, WaitDuration: time.Second},
			wantLog: false,
		},
		{
			name:    "short waits",
			next:    sql.DBStats{WaitCount: 5, WaitDuration: time.Second + 20*time.Millisecond},
			want:    "level=DEBUG",
			wantLog: true,
		},
		{
			name:    "slow waits",
			next:    sql.DBStats{WaitCount: 5, WaitDuration: time.Second + 400*time.Millisecond},
			want:    "level=WARN",
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			sampler := newTestSampler(&buf, sql.DBStats{WaitCount: 3, WaitDuration: time.Second}, tt.next)

			sampler.sample(context.Background())

			if !tt.wantLog {
				assert.Empty(t, buf.String())

				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "waits=2")
			assert.Equal(t, tt.next, sampler.prev)
		})
	}
}
