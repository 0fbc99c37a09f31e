package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"OFF":     LogLevelOff,
		"error":   LogLevelError,
		"FATAL":   LogLevelError,
		"warn":    LogLevelWarn,
		" INFO ":  LogLevelInfo,
		"DEBUG":   LogLevelDebug,
		"ALL":     LogLevelTrace,
		"trace":   LogLevelTrace,
		"unknown": LogLevelInfo,
		"":        LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelWarn)

	logger.Error("e %d", 1)
	logger.Warn("w %d", 2)
	logger.Info("i %d", 3)
	logger.Debug("d %d", 4)
	logger.Trace("t %d", 5)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "e 1", entries[0].Message)
		assert.Equal(t, "w 2", entries[1].Message)
	}
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}

func TestLogger_TraceIsPrefixed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewLoggerFromZap(zap.New(core), LogLevelTrace)

	logger.Trace("step %s", "x")
	assert.Equal(t, 1, logs.FilterMessage("[TRACE] step x").Len())
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Error("dropped")
	assert.Equal(t, LogLevelOff, logger.GetLevel())
}
