package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewLogger(LogConfig{Level: LevelInfo, Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestZapLogger_FieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("comparison created",
		String("comparison_id", "cmp-1"),
		Int("relevance_score", 72),
		Bool("is_relevant", true),
		Duration("elapsed", 15*time.Millisecond),
		Strings("policy_ids", []string{"p1", "p2"}),
		Err(errors.New("ai timeout")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "comparison created", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "cmp-1", ctx["comparison_id"])
	assert.EqualValues(t, 72, ctx["relevance_score"])
	assert.Equal(t, true, ctx["is_relevant"])
	assert.Equal(t, "ai timeout", ctx["error"])
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept")

	assert.Equal(t, 2, logs.Len())
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("engine").With(String("policy_type", "health"))
	child.Info("classified")

	entry := logs.All()[0]
	assert.Equal(t, "engine", entry.LoggerName)
	assert.Equal(t, "health", entry.ContextMap()["policy_type"])
}

func TestWithContext_AddsRequestScopedFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	ctx := ContextWithRequestID(context.Background(), "req-9")
	ctx = ContextWithUserID(ctx, "user-1")
	WithContext(ctx, l).Info("handled")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])

	assert.Same(t, l, WithContext(context.Background(), l))
}

func TestContextGetters(t *testing.T) {
	_, ok := RequestIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "u-2")
	id, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "req-1", id)

	uid, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-2", uid)

	_, ok = UserIDFromContext(ContextWithUserID(context.Background(), ""))
	assert.False(t, ok)
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x")
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("n"))
	assert.NoError(t, l.Sync())
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}

//Personal.AI order the ending
