package recorder

import (
	"context"

	"MarketScreener/internal/scanner"
)

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, report scanner.RunReport) error
	Close() error
}
