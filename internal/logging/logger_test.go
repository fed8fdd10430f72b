// internal/logging/logger_test.go
package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"talen-core/finder"
	"talen-core/seq"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l.WithProbe(seq.MustParse(seq.DNA, "ACGT")).WithPartition(2, 7).LogScan(context.Background(), finder.Reverse, 3, 0, nil)

	out := buf.String()
	assert.Contains(t, out, "scan completed")
	assert.Contains(t, out, "probe=ACGT")
	assert.Contains(t, out, "partition=2")
	assert.Contains(t, out, "matches=3")
	assert.Contains(t, out, "strand=-")
}

func TestLogPairsError(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))
	l.LogPairs(context.Background(), 0, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "boom")
}

func TestNoop(t *testing.T) {
	assert.NotNil(t, OrNoop(nil).Logger)
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
