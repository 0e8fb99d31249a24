package tracking

import (
	"context"
	"errors"
	"io"
)

// Multi forwards reports to every sink it holds.
// All sinks are called even if some fail; the errors are joined.
type Multi struct {
	sinks []Sink
}

var (
	_ Sink     = (*Multi)(nil)
	_ Finisher = (*Multi)(nil)
)

// NewMulti creates a Multi. Nil sinks are skipped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add appends a sink.
func (m *Multi) Add(s Sink) {
	if s != nil {
		m.sinks = append(m.sinks, s)
	}
}

// Len returns the number of sinks.
func (m *Multi) Len() int { return len(m.sinks) }

// Record implements Sink.
func (m *Multi) Record(ctx context.Context, r EpochReport) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Finish implements Finisher for the sinks that support it.
func (m *Multi) Finish(ctx context.Context, sum Summary) error {
	var errs []error
	for _, s := range m.sinks {
		if f, ok := s.(Finisher); ok {
			if err := f.Finish(ctx, sum); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks that implement io.Closer.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
