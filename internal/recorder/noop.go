package recorder

import (
	"context"

	"MarketScreener/internal/scanner"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, scanner.RunReport) error { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
