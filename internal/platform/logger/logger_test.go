package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov/babel-api/internal/config"
)

func TestSetupReturnsConfiguredLogger(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	logger, err := Setup(config.WorkerConfig{LogLevel: "debug"})

	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupLevels(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	tests := []struct {
		level    string
		enabled  slog.Level
		disabled slog.Level
	}{
		{level: "debug", enabled: slog.LevelDebug, disabled: slog.LevelDebug - 1},
		{level: "info", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{level: "warn", enabled: slog.LevelWarn, disabled: slog.LevelInfo},
		{level: "error", enabled: slog.LevelError, disabled: slog.LevelWarn},
		// Invalid levels fall back to info
		{level: "loud", enabled: slog.LevelInfo, disabled: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := Setup(config.WorkerConfig{LogLevel: tt.level})

			require.NoError(t, err)
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.disabled))
		})
	}
}

func TestFromContextReturnsStoredLogger(t *testing.T) {
	buf, logger, cleanup := SetupTestLogger(t, nil)
	defer cleanup()

	ctx := WithLogger(context.Background(), logger.With("task_id", "abc"))

	FromContext(ctx).Info("processing")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "processing", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["task_id"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	buf, _, cleanup := SetupTestLogger(t, nil)
	defer cleanup()

	FromContext(context.Background()).Info("no logger in context")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "no logger in context", entries[0]["msg"])
}

func TestFromContextOrDefault(t *testing.T) {
	buf := &TestLogBuffer{}
	fallback := slog.New(slog.NewJSONHandler(buf, nil))

	// No logger in context: the fallback is used.
	FromContextOrDefault(context.Background(), fallback).Info("fallback used")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback used", entries[0]["msg"])

	// Logger in context wins over the fallback.
	buf.Reset()
	ctxBuf := &TestLogBuffer{}
	ctxLogger := slog.New(slog.NewJSONHandler(ctxBuf, nil))
	ctx := WithLogger(context.Background(), ctxLogger)

	FromContextOrDefault(ctx, fallback).Info("context wins")

	assert.Empty(t, buf.String())
	entries, err = ctxBuf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "context wins", entries[0]["msg"])
}
