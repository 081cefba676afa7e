package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core).Sugar())
	ctx := context.Background()

	l.Debug(ctx, "dbg")
	l.With("module", "store").Warn(ctx, "degraded", "reason", "disk")
	l.Error(ctx, "boom")

	entries := logs.All()
	assert.Len(t, entries, 3)
	assert.Equal(t, "degraded", entries[1].Message)
	assert.Equal(t, "store", entries[1].ContextMap()["module"])
	assert.Equal(t, "disk", entries[1].ContextMap()["reason"])
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}
