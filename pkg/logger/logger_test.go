package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Options{Output: buf, Level: level}), buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestLogger_WritesJSONEntry(t *testing.T) {
	log, buf := newBufferLogger(LevelDebug)

	log.Info("student signed up", StudentID("s1"), Count(3))

	entry := lastEntry(t, buf)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "student signed up", entry.Message)
	assert.Equal(t, "s1", entry.Fields["student_id"])
	assert.Equal(t, float64(3), entry.Fields["count"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(LevelWarn)

	log.Debug("noise")
	log.Info("still noise")
	assert.Zero(t, buf.Len())

	log.Warn("counter drift detected")
	assert.Equal(t, "WARN", lastEntry(t, buf).Level)
}

func TestLogger_WithAccumulatesFields(t *testing.T) {
	log, buf := newBufferLogger(LevelDebug)

	scoped := log.With(Component("dispatcher")).With(AgentKey("router"))
	scoped.Info("task dispatched", TaskKind("routing"))

	entry := lastEntry(t, buf)
	assert.Equal(t, "dispatcher", entry.Fields["component"])
	assert.Equal(t, "router", entry.Fields["agent_key"])
	assert.Equal(t, "routing", entry.Fields["task_kind"])

	// The parent logger is untouched.
	log.Info("plain")
	assert.Nil(t, lastEntry(t, buf).Fields)
}

func TestLogger_WithLevel(t *testing.T) {
	log, buf := newBufferLogger(LevelError)

	log.WithLevel(LevelDebug).Debug("now visible")
	assert.Equal(t, "DEBUG", lastEntry(t, buf).Level)
}

func TestLogger_Formatted(t *testing.T) {
	log, buf := newBufferLogger(LevelDebug)

	log.Infof("cache warmed in %dms", 42)
	assert.Equal(t, "cache warmed in 42ms", lastEntry(t, buf).Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"fatal", LevelFatal},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), tt.input)
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: nil}, Err(nil))
	assert.Equal(t, Field{Key: "latency", Value: "1.5s"}, Latency(1500*time.Millisecond))
	assert.Equal(t, Field{Key: "score", Value: 42.5}, Score(42.5))
	assert.Equal(t, Field{Key: "k", Value: true}, Bool("k", true))
}

func TestContextPropagation(t *testing.T) {
	log, buf := newBufferLogger(LevelDebug)

	ctx := WithContext(context.Background(), log.WithRequestID("req-7"))
	FromContext(ctx).Info("handled")

	assert.Equal(t, "req-7", lastEntry(t, buf).Fields[RequestIDKey])

	// A bare context falls back to a default logger instead of panicking.
	assert.NotNil(t, FromContext(context.Background()))
}
