package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/beach-hazard-etl/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: "json"})

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.want))
			assert.False(t, logger.Enabled(ctx, tt.want-1))
			assert.Same(t, logger, slog.Default(), "installed as default")
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "TEXT"})

	_, isText := logger.Handler().(*slog.TextHandler)
	assert.True(t, isText)
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.ReportsGenerated.WithLabelValues("weather").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.ReportsGenerated.WithLabelValues("weather")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.ReportsGenerated.WithLabelValues("weather")), 0)
}
