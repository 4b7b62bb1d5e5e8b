package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARNING ", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, parseLevel("error", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseLevel("", slog.LevelInfo))
	assert.Equal(t, slog.LevelDebug, parseLevel("nonsense", slog.LevelDebug))
}

func TestTraceContextHandler_AddsIDs(t *testing.T) {
	t.Setenv("ENV", "dev")

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	l.InfoContext(ctx, "hello")

	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, buf.String(), `"span_id":"00f067aa0ba902b7"`)
}

func TestColorTextHandler_ColorsErrors(t *testing.T) {
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.Info("plain")
	l.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "msg=plain")
	// the text handler quotes the escape sequence
	assert.Contains(t, out, `\x1b[31mboom\x1b[0m`)
}

func TestFromContext(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := Discard().With("request_id", "abc")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
