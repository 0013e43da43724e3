package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(newSlogHandler(&buf, slog.LevelDebug, true))), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		assert.Contains(t, out, "level="+tc.level)
		assert.Contains(t, out, "msg="+tc.msg)
		assert.Contains(t, out, tc.key+"="+tc.val)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("collection", "services").Info(context.Background(), "refreshed", "records", 3)

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=refreshed", "collection=services", "records=3"} {
		assert.Contains(t, out, s)
	}
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "zap"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(format, "info", &buf)
			require.NoError(t, err)

			l.Debug(context.Background(), "hidden")
			l.With("k", "v").Info(context.Background(), "shown", "n", 1)

			out := buf.String()
			assert.NotContains(t, out, "hidden")
			assert.Contains(t, out, "shown")
			assert.True(t, strings.Contains(out, "k"))
		})
	}
}

func TestNewSlogHandler_Encoding(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer
	slog.New(newSlogHandler(&jsonBuf, slog.LevelInfo, false)).Info("saved", "id", "a1")
	slog.New(newSlogHandler(&textBuf, slog.LevelInfo, true)).Info("saved", "id", "a1")

	assert.Contains(t, jsonBuf.String(), `"id":"a1"`)
	assert.Contains(t, textBuf.String(), "id=a1")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("xml", "info", nil)
	assert.Error(t, err)

	_, err = New("json", "loud", nil)
	assert.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Info(context.TODO(), "x")
	l.With("a", 1).Error(context.TODO(), "y")
}
