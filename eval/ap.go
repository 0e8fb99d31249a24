package eval

import (
	"errors"
	"fmt"

	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/search"
)

var (
	// ErrInvalidK is returned when the retrieval cutoff is not positive.
	ErrInvalidK = errors.New("eval: k must be positive")

	// ErrDatabaseTooSmall is returned when leave-one-out would leave an empty database.
	ErrDatabaseTooSmall = errors.New("eval: leave-one-out needs at least two items")
)

// ErrLabelCount is returned when a ranking references more entries than there are labels.
type ErrLabelCount struct {
	Ranked int
	Labels int
}

func (e *ErrLabelCount) Error() string {
	return fmt.Sprintf("eval: ranking has %d entries but only %d labels", e.Ranked, e.Labels)
}

func checkInputs(r search.Ranking, k int, db []labels.Set) error {
	if k <= 0 {
		return ErrInvalidK
	}
	for _, n := range r.Top(k) {
		if n.Index < 0 || n.Index >= len(db) {
			return &ErrLabelCount{Ranked: len(r), Labels: len(db)}
		}
	}
	return nil
}

// AveragePrecision returns the average precision of the top-k entries of r.
//
// An entry is relevant when its label shares at least one class with q. For
// every relevant entry at rank i (1-based) the precision is the number of
// relevant entries within the first i ranks divided by i; the result is the
// mean of those precisions, or 0 when no relevant entry is retrieved.
func AveragePrecision(r search.Ranking, k int, db []labels.Set, q labels.Set) (float64, error) {
	if err := checkInputs(r, k, db); err != nil {
		return 0, err
	}

	var (
		hits int
		sum  float64
	)
	for i, n := range r.Top(k) {
		if db[n.Index].Shared(q) == 0 {
			continue
		}
		hits++
		sum += float64(hits) / float64(i+1)
	}
	if hits == 0 {
		return 0, nil
	}
	return sum / float64(hits), nil
}

// WeightedAveragePrecision is AveragePrecision with graded relevance.
//
// The weight of an entry is the number of classes it shares with q divided by
// the number of classes of q. Precision at rank i is the running sum of weights
// divided by i, averaged over entries with a non-zero weight. A query without
// positive classes scores 0.
func WeightedAveragePrecision(r search.Ranking, k int, db []labels.Set, q labels.Set) (float64, error) {
	if err := checkInputs(r, k, db); err != nil {
		return 0, err
	}

	total := q.Count()
	if total == 0 {
		return 0, nil
	}

	var (
		hits   int
		weight float64
		sum    float64
	)
	for i, n := range r.Top(k) {
		shared := db[n.Index].Shared(q)
		if shared == 0 {
			continue
		}
		hits++
		weight += float64(shared) / float64(total)
		sum += weight / float64(i+1)
	}
	if hits == 0 {
		return 0, nil
	}
	return sum / float64(hits), nil
}
