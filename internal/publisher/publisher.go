// Package publisher writes ranked result tables to external destinations.
// Every sink replaces the destination's previous contents and creates the
// destination when it does not exist yet.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sink publishes a whole table in one call.
type Sink interface {
	Publish(ctx context.Context, t Table) error
	Name() string
}

// MultiSink fans a table out to several sinks. Every sink is attempted; the
// failures are joined.
type MultiSink struct {
	Sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{Sinks: sinks} }

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Publish(ctx context.Context, t Table) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Publish(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds a connection.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
