package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmhash/eval"
	"github.com/hupe1980/cmhash/tracking"
)

func report(run string, epoch int, loss, avg float64) tracking.EpochReport {
	return tracking.EpochReport{
		Run:       run,
		Epoch:     epoch,
		TrainLoss: loss,
		Scores:    eval.Scores{AveragePlain: avg, AverageWeighted: avg / 2},
	}
}

func TestSeries(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "series.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record(ctx, report("b", 0, 1.0, 0.1)))
	require.NoError(t, s.Record(ctx, report("b", 1, 0.5, 0.3)))
	require.NoError(t, s.Record(ctx, report("a", 0, 2.0, 0.2)))
	// re-recording replaces
	require.NoError(t, s.Record(ctx, report("b", 1, 0.25, 0.4)))

	loss, err := s.Query(ctx, "b", tracking.PhaseTraining, "loss")
	require.NoError(t, err)
	assert.Equal(t, []Point{{Epoch: 0, Value: 1.0}, {Epoch: 1, Value: 0.25}}, loss)

	avg, err := s.Query(ctx, "b", tracking.PhaseValidation, "map_average")
	require.NoError(t, err)
	require.Len(t, avg, 2)
	assert.InDelta(t, 0.4, avg[1].Value, 1e-12)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, runs)

	require.NoError(t, s.Finish(ctx, tracking.Summary{Run: "b", BestEpoch: 1, BestScore: 0.4, Epochs: 2, Elapsed: time.Second}))
	epoch, score, err := s.BestEpoch(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, epoch)
	assert.InDelta(t, 0.4, score, 1e-12)

	_, _, err = s.BestEpoch(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSeries_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "series.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, report("r", 3, 0.1, 0.9)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	points, err := s.Query(ctx, "r", tracking.PhaseTraining, "loss")
	require.NoError(t, err)
	assert.Equal(t, []Point{{Epoch: 3, Value: 0.1}}, points)
}
