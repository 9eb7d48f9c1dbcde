package engine

import (
	"context"
	"time"

	"github.com/law-makers/iemrank/pkg/models"
)

// Strategy is the interface that all extraction strategies must implement
type Strategy interface {
	// Extract tries to recover the ranking rows for target. Failures are
	// logged by the strategy and reported as an absent Result.
	Extract(ctx context.Context, target string) models.Result

	// Name returns the name of the strategy implementation
	Name() string
}

// Checker is implemented by strategies with an environment precondition,
// such as a browser binary. A non-nil error means the strategy is skipped
// without being run.
type Checker interface {
	Available() error
}

// Fetcher performs a GET within the run's shared HTTP session and returns
// the status and body. Non-2xx statuses are errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (int, []byte, error)
}

// Writer persists the terminal dataset
type Writer interface {
	Write(rows models.Dataset, path string) bool
}
