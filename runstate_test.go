package cmhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmhash/eval"
	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
)

func candidate(epoch int, score float64) Candidate {
	return Candidate{
		Epoch:     epoch,
		EncoderS1: []byte{byte(epoch)},
		EncoderS2: []byte{byte(epoch), 2},
		Validation: Validation{
			Scores:  eval.Scores{AveragePlain: score},
			S1Codes: []hashcode.Code{hashcode.MustParse("1010")},
			S2Codes: []hashcode.Code{hashcode.MustParse("0101")},
			Labels:  []labels.Set{labels.MustNew(3, uint32(epoch%3))},
			S1Names: []string{"s1"},
			S2Names: []string{"s2"},
		},
	}
}

func TestNewRunState(t *testing.T) {
	s := NewRunState()
	assert.Equal(t, -1, s.BestEpoch)
	assert.Zero(t, s.BestScore)
	assert.False(t, s.Improved)
	assert.False(t, s.Better(0))
	assert.True(t, s.Better(0.01))
}

func TestRunState_MaybeUpdate(t *testing.T) {
	t.Run("accepts strictly better", func(t *testing.T) {
		s := NewRunState().MaybeUpdate(candidate(0, 0.6))
		assert.True(t, s.Improved)
		assert.Equal(t, 0, s.BestEpoch)
		assert.InDelta(t, 0.6, s.BestScore, 0)
		assert.Equal(t, []byte{0}, s.EncoderS1)
	})

	t.Run("keeps earlier best", func(t *testing.T) {
		s := NewRunState().MaybeUpdate(candidate(1, 0.6))
		s = s.MaybeUpdate(candidate(2, 0.4))
		assert.True(t, s.Improved)
		assert.Equal(t, 1, s.BestEpoch)
		assert.InDelta(t, 0.6, s.BestScore, 0)
		assert.Equal(t, []byte{1}, s.EncoderS1)
		assert.Equal(t, "s1", s.Validation.S1Names[0])
	})

	t.Run("ties keep the first", func(t *testing.T) {
		s := NewRunState().MaybeUpdate(candidate(0, 0.5)).MaybeUpdate(candidate(1, 0.5))
		assert.Equal(t, 0, s.BestEpoch)
	})

	t.Run("zero score never improves", func(t *testing.T) {
		s := NewRunState().MaybeUpdate(candidate(0, 0))
		assert.False(t, s.Improved)
		assert.Equal(t, -1, s.BestEpoch)
	})

	t.Run("does not modify receiver", func(t *testing.T) {
		before := NewRunState()
		_ = before.MaybeUpdate(candidate(3, 0.9))
		assert.Equal(t, NewRunState(), before)
	})
}

func TestRunState_Snapshot(t *testing.T) {
	s := NewRunState().MaybeUpdate(candidate(4, 0.7))
	snap := s.Snapshot("run", 4)

	assert.Equal(t, "run", snap.Checkpoint.Run)
	assert.Equal(t, 4, snap.Checkpoint.Epoch)
	assert.Equal(t, 4, snap.Checkpoint.Bits)
	assert.InDelta(t, 0.7, snap.Checkpoint.BestScore, 0)
	assert.Equal(t, []byte{4, 2}, snap.Checkpoint.EncoderS2)
	require.NoError(t, snap.Validate())
	assert.Equal(t, 1, snap.Len())
}
