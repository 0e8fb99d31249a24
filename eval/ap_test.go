package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/search"
	"github.com/hupe1980/cmhash/testutil"
)

func rank(t *testing.T, db []hashcode.Code, q hashcode.Code) search.Ranking {
	t.Helper()
	r, err := search.Hamming(db, q)
	require.NoError(t, err)
	return r
}

func TestAveragePrecision_Scenario(t *testing.T) {
	db := []hashcode.Code{
		hashcode.MustParse("0000"),
		hashcode.MustParse("0001"),
		hashcode.MustParse("1111"),
		hashcode.MustParse("1110"),
	}
	dbLabels := []labels.Set{
		labels.MustNew(2, 0),
		labels.MustNew(2, 0),
		labels.MustNew(2, 1),
		labels.MustNew(2, 1),
	}
	q := labels.MustNew(2, 0)

	r := rank(t, db, hashcode.MustParse("0000"))
	assert.Equal(t, []int{0, 1, 3, 2}, r.Indices())

	for _, k := range []int{2, 4} {
		ap, err := AveragePrecision(r, k, dbLabels, q)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, ap, 1e-12, "k=%d", k)
	}
}

func TestAveragePrecision(t *testing.T) {
	q := labels.MustNew(3, 0)

	tests := []struct {
		name   string
		labels []labels.Set
		k      int
		want   float64
	}{
		{
			name:   "all relevant k beyond size",
			labels: []labels.Set{labels.MustNew(3, 0), labels.MustNew(3, 0, 1), labels.MustNew(3, 0, 2)},
			k:      10,
			want:   1,
		},
		{
			name:   "nothing shared",
			labels: []labels.Set{labels.MustNew(3, 1), labels.MustNew(3, 2), labels.MustNew(3, 1, 2)},
			k:      3,
			want:   0,
		},
		{
			name:   "relevant at ranks one and three",
			labels: []labels.Set{labels.MustNew(3, 0), labels.MustNew(3, 2), labels.MustNew(3, 0)},
			k:      3,
			want:   (1.0 + 2.0/3.0) / 2,
		},
		{
			name:   "cutoff hides late hit",
			labels: []labels.Set{labels.MustNew(3, 1), labels.MustNew(3, 0)},
			k:      1,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := make(search.Ranking, len(tt.labels))
			for i := range r {
				r[i] = search.Neighbor{Index: i, Distance: i}
			}
			ap, err := AveragePrecision(r, tt.k, tt.labels, q)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, ap, 1e-12)
		})
	}
}

func TestWeightedAveragePrecision_PartialOverlap(t *testing.T) {
	q := labels.MustNew(3, 0, 1)
	db := []labels.Set{
		labels.MustNew(3, 0),
		labels.MustNew(3, 2),
		labels.MustNew(3, 0, 1),
	}
	r := search.Ranking{{Index: 0}, {Index: 1, Distance: 1}, {Index: 2, Distance: 2}}

	w, err := WeightedAveragePrecision(r, 3, db, q)
	require.NoError(t, err)
	// weights 0.5, 0, 1 -> precisions 0.5/1 and 1.5/3
	assert.InDelta(t, 0.5, w, 1e-12)

	p, err := AveragePrecision(r, 3, db, q)
	require.NoError(t, err)
	assert.InDelta(t, (1.0+2.0/3.0)/2, p, 1e-12)
}

func TestWeightedAveragePrecision_EmptyQuery(t *testing.T) {
	db := []labels.Set{labels.MustNew(3, 0), labels.MustNew(3, 1)}
	r := search.Ranking{{Index: 0}, {Index: 1}}

	w, err := WeightedAveragePrecision(r, 2, db, labels.MustNew(3))
	require.NoError(t, err)
	assert.Zero(t, w)
}

func TestWeightedEqualsPlainForOneHot(t *testing.T) {
	rng := testutil.NewRNG(42)
	db := rng.Codes(60, 12)
	dbLabels := rng.OneHot(60, 5)
	queries := rng.Codes(20, 12)
	queryLabels := rng.OneHot(20, 5)

	for i, q := range queries {
		r := rank(t, db, q)
		for _, k := range []int{1, 5, 20, 60} {
			p, err := AveragePrecision(r, k, dbLabels, queryLabels[i])
			require.NoError(t, err)
			w, err := WeightedAveragePrecision(r, k, dbLabels, queryLabels[i])
			require.NoError(t, err)
			assert.InDelta(t, p, w, 1e-12)
		}
	}
}

func TestAveragePrecision_Bounds(t *testing.T) {
	rng := testutil.NewRNG(7)
	db := rng.Codes(50, 16)
	dbLabels := rng.Labels(50, 8, 3)

	for _, q := range rng.Codes(10, 16) {
		r := rank(t, db, q)
		ql := rng.Labels(1, 8, 3)[0]
		p, err := AveragePrecision(r, 20, dbLabels, ql)
		require.NoError(t, err)
		w, err := WeightedAveragePrecision(r, 20, dbLabels, ql)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		assert.GreaterOrEqual(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}
}

func TestAveragePrecision_Errors(t *testing.T) {
	db := []labels.Set{labels.MustNew(2, 0)}
	q := labels.MustNew(2, 0)

	_, err := AveragePrecision(search.Ranking{{Index: 0}}, 0, db, q)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = WeightedAveragePrecision(search.Ranking{{Index: 0}}, -1, db, q)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = AveragePrecision(search.Ranking{{Index: 0}, {Index: 1}}, 2, db, q)
	var lc *ErrLabelCount
	assert.ErrorAs(t, err, &lc)
}
