package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelWarn)

	l.Info("dropped")
	l.Warn("kept", Int("chunk", 3))
	l.Error("kept too", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["chunk"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestLoggerWithSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelInfo)
	child := l.With(Component("streaming"))

	child.Debug("hidden")
	l.SetLevel(LevelDebug)
	child.Debug("visible")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "streaming", logs.All()[0].ContextMap()["component"])
	assert.Equal(t, LevelDebug, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestNewBuildsConsoleLogger(t *testing.T) {
	l, err := New(Options{Level: LevelInfo, Encoding: "console"})
	require.NoError(t, err)
	l.Info("hello", String("k", "v"), Float64("z", 1.5), Bool("ok", true))
}
