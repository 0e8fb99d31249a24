package cmhash

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmhash/eval"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelDebug).WithRun("r1")
	ctx := context.Background()

	l.LogEpoch(ctx, 3, 0.5, 0.75, true, time.Second)
	assert.Contains(t, buf.String(), `"run":"r1"`)
	assert.Contains(t, buf.String(), `"epoch":3`)
	assert.Contains(t, buf.String(), `"best":true`)

	buf.Reset()
	l.LogValidation(ctx, 3, 20, eval.Scores{Queries: 7, AveragePlain: 0.5}, nil)
	assert.Contains(t, buf.String(), `"queries":7`)
	assert.Contains(t, buf.String(), `"map_`+eval.S1ToS2.Tag()+`"`)

	buf.Reset()
	l.LogPersist(ctx, "r1", 3, errors.New("disk full"))
	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelInfo)
	l.LogProgress(context.Background(), 0, 1, 0.5)
	assert.Empty(t, buf.String())

	l.LogSinkError(context.Background(), 0, errors.New("sink down"))
	assert.Contains(t, buf.String(), "sink down")
}

func TestNoopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopLogger().LogEpoch(context.Background(), 0, 0, 0, false, 0)
	})
}
