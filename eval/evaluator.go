package eval

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cmhash/hashcode"
	"github.com/hupe1980/cmhash/labels"
	"github.com/hupe1980/cmhash/search"
)

// Direction names a query modality and a database modality.
type Direction int

const (
	S1ToS1 Direction = iota
	S1ToS2
	S2ToS1
	S2ToS2
)

// Directions lists every direction in reporting order.
var Directions = [4]Direction{S1ToS1, S1ToS2, S2ToS1, S2ToS2}

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case S1ToS1:
		return "S1->S1"
	case S1ToS2:
		return "S1->S2"
	case S2ToS1:
		return "S2->S1"
	case S2ToS2:
		return "S2->S2"
	default:
		return "Unknown"
	}
}

// Tag returns a compact identifier suitable for metric names.
func (d Direction) Tag() string {
	switch d {
	case S1ToS1:
		return "s1_s1"
	case S1ToS2:
		return "s1_s2"
	case S2ToS1:
		return "s2_s1"
	case S2ToS2:
		return "s2_s2"
	default:
		return "unknown"
	}
}

// Scores holds the mAP values of one evaluation run, indexed by Direction.
type Scores struct {
	Plain    [4]float64
	Weighted [4]float64

	AveragePlain    float64
	AverageWeighted float64

	// Queries is the number of queries per direction.
	Queries int
}

// Evaluator runs leave-one-out retrieval over paired codes.
type Evaluator struct {
	k       int
	workers int
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithWorkers bounds the number of queries evaluated concurrently.
func WithWorkers(n int) EvaluatorOption {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEvaluator creates an evaluator with cutoff k.
func NewEvaluator(k int, opts ...EvaluatorOption) (*Evaluator, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	e := &Evaluator{k: k, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// K returns the retrieval cutoff.
func (e *Evaluator) K() int { return e.k }

type queryScores struct {
	plain    [4]float64
	weighted [4]float64
}

// Evaluate uses every item as a query against the remaining items, in all
// four directions, and returns the mean AP per direction.
//
// s1, s2 and ls must have the same length N. Per-query results are summed in
// query order, so the result does not depend on scheduling.
func (e *Evaluator) Evaluate(ctx context.Context, s1, s2 []hashcode.Code, ls []labels.Set) (Scores, error) {
	n := len(ls)
	if len(s1) != n || len(s2) != n {
		return Scores{}, fmt.Errorf("eval: %d S1 codes, %d S2 codes and %d labels", len(s1), len(s2), n)
	}
	if n < 2 {
		return Scores{}, ErrDatabaseTooSmall
	}

	results := make([]queryScores, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			qs, err := e.query(i, s1, s2, ls)
			if err != nil {
				return fmt.Errorf("eval: query %d: %w", i, err)
			}
			results[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Scores{}, err
	}

	var s Scores
	for _, qs := range results {
		for d := range 4 {
			s.Plain[d] += qs.plain[d]
			s.Weighted[d] += qs.weighted[d]
		}
	}
	for d := range 4 {
		s.Plain[d] /= float64(n)
		s.Weighted[d] /= float64(n)
		s.AveragePlain += s.Plain[d]
		s.AverageWeighted += s.Weighted[d]
	}
	s.AveragePlain /= 4
	s.AverageWeighted /= 4
	s.Queries = n
	return s, nil
}

func (e *Evaluator) query(i int, s1, s2 []hashcode.Code, ls []labels.Set) (queryScores, error) {
	var qs queryScores

	dbLabels := search.Without(ls, i)
	dbS1 := search.Without(s1, i)
	dbS2 := search.Without(s2, i)

	for _, d := range Directions {
		q, db := s1[i], dbS1
		switch d {
		case S1ToS2:
			db = dbS2
		case S2ToS1:
			q = s2[i]
		case S2ToS2:
			q, db = s2[i], dbS2
		}

		ranking, err := search.Hamming(db, q)
		if err != nil {
			return qs, err
		}
		p, err := AveragePrecision(ranking, e.k, dbLabels, ls[i])
		if err != nil {
			return qs, err
		}
		w, err := WeightedAveragePrecision(ranking, e.k, dbLabels, ls[i])
		if err != nil {
			return qs, err
		}
		qs.plain[d] = p
		qs.weighted[d] = w
	}
	return qs, nil
}
