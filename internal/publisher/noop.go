package publisher

import (
	"context"
	"sync"
)

// NoopSink keeps the last table per destination in memory. Used for dry runs
// and tests.
type NoopSink struct {
	mu     sync.Mutex
	tables map[string]Table
	calls  int
}

func NewNoopSink() *NoopSink { return &NoopSink{tables: make(map[string]Table)} }

func (n *NoopSink) Name() string { return "noop" }

func (n *NoopSink) Publish(_ context.Context, t Table) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables[t.Destination] = t
	n.calls++
	return nil
}

// Table returns the last table published to destination.
func (n *NoopSink) Table(destination string) (Table, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.tables[destination]
	return t, ok
}

// Calls returns the number of Publish calls.
func (n *NoopSink) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
