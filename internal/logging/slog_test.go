package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "sync").Info(context.Background(), "replayed", "count", 3)

	out := buf.String()
	assert.Contains(t, out, "module=sync")
	assert.Contains(t, out, "count=3")
}

func TestNew_SlogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Format: FormatSlog, Level: "warn", Output: &buf})
	assert.NoError(t, err)

	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_JSONHandler(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{JSON: true, Output: &buf})
	assert.NoError(t, err)

	l.Info(context.Background(), "hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestNew_Zap(t *testing.T) {
	l, err := New(Options{Format: FormatZap, Level: "debug"})
	assert.NoError(t, err)
	_, ok := l.(*ZapLogger)
	assert.True(t, ok)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "logrus"})
	assert.Error(t, err)
}

func TestNew_ZapWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Format: FormatZap, Level: "info", Output: &buf})
	assert.NoError(t, err)

	l.Debug(context.Background(), "hidden")
	l.Warn(context.Background(), "mode switched", "mode", "offline")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"mode switched"`)
	assert.Contains(t, buf.String(), `"mode":"offline"`)
}
