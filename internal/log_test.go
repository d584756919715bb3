package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" trace "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerGatesByLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerWithCore(LogLevelWarn, core)

	logger.Info("[Import] dropped %d rows", 3)
	logger.Warn("[Import] row %d failed validation", 7)
	logger.Error("[Import] writer failed: %s", "boom")

	assert.Equal(t, 0, logs.FilterMessage("[Import] dropped 3 rows").Len())
	assert.Equal(t, 1, logs.FilterMessage("[Import] row 7 failed validation").Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestTraceWritesAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewLoggerWithCore(LogLevelTrace, core).With("component", "matching")

	logger.Trace("scored %s", "Due")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "[TRACE] scored Due", entries[0].Message)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "matching", entries[0].ContextMap()["component"])
	}
}
