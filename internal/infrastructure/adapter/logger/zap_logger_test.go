package logger

import (
	"testing"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelFiltering(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFromCore(obsCore, core.LogLevelWarn)

	log.Debug("debug message", nil)
	log.Info("info message", nil)
	log.Warn("warn message", map[string]any{"account_number": uint64(7)})
	log.Error("error message", nil)

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, uint64(7), entries[0].ContextMap()["account_number"])
	assert.Equal(t, "error message", entries[1].Message)
}

func TestZapLogger_SetLevel(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFromCore(obsCore, core.LogLevelInfo)

	assert.Equal(t, core.LogLevelInfo, log.GetLevel())
	log.Debug("hidden", nil)

	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	log.Debug("visible", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible", logs.All()[0].Message)
}

func TestZapLogger_With(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	parent := NewZapLoggerFromCore(obsCore, core.LogLevelInfo)

	child := parent.With(map[string]any{"request_id": "abc"})
	child.Info("handled", map[string]any{"status": 200})
	parent.Info("plain", nil)

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.EqualValues(t, 200, fields["status"])
	assert.NotContains(t, logs.All()[1].ContextMap(), "request_id")

	// children share the parent's level
	parent.SetLevel(core.LogLevelError)
	child.Info("suppressed", nil)
	assert.Equal(t, 2, logs.Len())
}

func TestNoopLogger(t *testing.T) {
	log := NewNoopLogger()
	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	assert.Same(t, log, log.With(map[string]any{"a": 1}))
	log.Info("ignored", nil)
	assert.NoError(t, log.Flush())
}
