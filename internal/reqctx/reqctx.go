package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type key int

const runKey key = 0

// RunContext identifies one invocation of the extractor
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRunContext attaches a fresh RunContext to ctx
func WithRunContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     generateID(),
		StartTime: time.Now(),
	})
}

// GetRunContext returns the RunContext attached to ctx, or a placeholder
// with run id "unknown"
func GetRunContext(ctx context.Context) *RunContext {
	if ctx != nil {
		if rc, ok := ctx.Value(runKey).(*RunContext); ok {
			return rc
		}
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps an error with the run id it happened in
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new RunError from context
func NewRunError(ctx context.Context, err error) error {
	rc := GetRunContext(ctx)
	return &RunError{
		RunID: rc.RunID,
		Err:   err,
	}
}
