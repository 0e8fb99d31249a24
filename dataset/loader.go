package dataset

import (
	"fmt"
	"io"
	"math/rand"

	"golang.org/x/sync/errgroup"
)

// Iterator yields the batches of one epoch.
type Iterator interface {
	// Next returns the next batch, or io.EOF when the epoch is done.
	Next() (Batch, error)
}

// Loader produces one Iterator per epoch.
type Loader interface {
	Iter(epoch int) Iterator
}

// Transform maps a sample before batching. It must not modify its input.
type Transform func(Sample) (Sample, error)

// SliceLoader serves batches from samples held in memory.
type SliceLoader struct {
	samples   []Sample
	batchSize int
	shuffle   bool
	seed      int64
	transform Transform
	workers   int
}

var _ Loader = (*SliceLoader)(nil)

// LoaderOption configures a SliceLoader.
type LoaderOption func(*SliceLoader)

// WithShuffle permutes samples every epoch, seeded with seed+epoch.
func WithShuffle(seed int64) LoaderOption {
	return func(l *SliceLoader) {
		l.shuffle = true
		l.seed = seed
	}
}

// WithTransform applies t to every sample as it is batched.
func WithTransform(t Transform) LoaderOption {
	return func(l *SliceLoader) { l.transform = t }
}

// WithWorkers bounds how many samples of a batch are transformed concurrently.
func WithWorkers(n int) LoaderOption {
	return func(l *SliceLoader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// NewSliceLoader creates a loader over samples.
func NewSliceLoader(samples []Sample, batchSize int, opts ...LoaderOption) (*SliceLoader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}
	l := &SliceLoader{samples: samples, batchSize: batchSize, workers: 1}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Len returns the number of samples.
func (l *SliceLoader) Len() int { return len(l.samples) }

// Iter returns the iterator for the given epoch.
func (l *SliceLoader) Iter(epoch int) Iterator {
	order := make([]int, len(l.samples))
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		rng := rand.New(rand.NewSource(l.seed + int64(epoch)))
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	return &sliceIterator{loader: l, order: order}
}

type sliceIterator struct {
	loader *SliceLoader
	order  []int
	pos    int
}

func (it *sliceIterator) Next() (Batch, error) {
	if it.pos >= len(it.order) {
		return Batch{}, io.EOF
	}
	end := min(it.pos+it.loader.batchSize, len(it.order))
	idx := it.order[it.pos:end]
	it.pos = end

	samples := make([]Sample, len(idx))
	if it.loader.transform == nil {
		for i, j := range idx {
			samples[i] = it.loader.samples[j]
		}
		return NewBatch(samples)
	}

	var g errgroup.Group
	g.SetLimit(it.loader.workers)
	for i, j := range idx {
		g.Go(func() error {
			s, err := it.loader.transform(it.loader.samples[j])
			if err != nil {
				return fmt.Errorf("dataset: transform %q: %w", it.loader.samples[j].S2Name, err)
			}
			samples[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}
	return NewBatch(samples)
}

// Collect drains an iterator into a slice of batches.
func Collect(it Iterator) ([]Batch, error) {
	var out []Batch
	for {
		b, err := it.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}
