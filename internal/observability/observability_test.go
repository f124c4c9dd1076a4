package observability

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/couchcryptid/met-update-db/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

func TestReadinessChecks(t *testing.T) {
	ok := checkFunc(func(context.Context) error { return nil })
	down := checkFunc(func(context.Context) error { return errors.New("mongo unreachable") })

	assert.NoError(t, ReadinessChecks{}.CheckReadiness(context.Background()))
	assert.NoError(t, ReadinessChecks{ok, ok}.CheckReadiness(context.Background()))
	assert.EqualError(t, ReadinessChecks{ok, down}.CheckReadiness(context.Background()), "mongo unreachable")
}

func TestNewLogger_LevelFromConfig(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	tests := []struct {
		level      string
		enabled    slog.Level
		suppressed slog.Level
	}{
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"DEBUG", slog.LevelDebug, slog.LevelDebug - 1},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "text"})
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.suppressed))
			assert.Same(t, logger, slog.Default())
		})
	}
}
