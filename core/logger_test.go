package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("d", F("k", 1))
	logger.Info("i")
	logger.Warn("w", F("thread", "abc"))
	logger.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["k"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "abc", entries[2].ContextMap()["thread"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_NilUsesNop(t *testing.T) {
	logger := NewZapLogger(nil)
	assert.NotNil(t, logger.Zap())
	logger.Info("discarded")
}

func TestZapLogger_WithTestingLogger(t *testing.T) {
	logger := NewZapLogger(zaptest.NewLogger(t))
	logger.Debug("thread spawned", F("priority", 0))
}

func TestLoggerPanicHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := NewLoggerPanicHandler(NewZapLogger(zap.New(core)))

	handler.HandlePanic(context.Background(), "rt", "thread-1", "boom", []byte("stack"))

	entries := logs.FilterMessage("thread panicked").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "rt", fields["runtime"])
	assert.Equal(t, "thread-1", fields["thread"])
	assert.Equal(t, "boom", fields["panic"])
	assert.Equal(t, "stack", fields["stack"])
}
