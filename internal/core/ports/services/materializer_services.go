package services

import (
	"context"
	"time"
)

// MaterializerSvc turns due recurring templates into concrete transactions.
// RunOnce is invoked on a timer and once at process start; everything else
// in the engine is a pure/query function.
type MaterializerSvc interface {
	// RunOnce performs one materialization pass as of now and returns the
	// number of transactions created. Per-template failures are logged and
	// skipped; they never fail the pass.
	RunOnce(ctx context.Context, now time.Time) (int, error)
}
