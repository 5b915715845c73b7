package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	l := New(&buf, "info").With("request_id", "abc")
	FromContext(WithLogger(context.Background(), l)).Info("hello")
	FromContext(WithLogger(context.Background(), l)).Debug("dropped")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.NotContains(t, buf.String(), "dropped")
}
