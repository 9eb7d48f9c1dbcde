// internal/engine/orchestrator.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// Observer receives progress notifications while the chain runs
type Observer interface {
	// OnAttempt is called before strategy index (0-based) of total runs
	OnAttempt(index, total int, name string)
	// OnResult is called once the strategy has finished or been skipped
	OnResult(name string, rows int, found bool)
}

// OrchestratorOptions configures an Orchestrator
type OrchestratorOptions struct {
	// Strategies run in order until one returns rows
	Strategies []Strategy
	// Fallback runs when every strategy came back absent. It must not fail.
	Fallback Strategy
	Writer   Writer
	// OutputPath receives rows from Strategies
	OutputPath string
	// SamplePath receives rows from Fallback; defaults to OutputPath
	SamplePath string
	RunID      string
	Observer   Observer
	Logger     zerolog.Logger
}

// Orchestrator runs the extraction strategies in order and persists the
// first dataset produced. Exactly one dataset is written per Run.
type Orchestrator struct {
	opts   OrchestratorOptions
	logger zerolog.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.SamplePath == "" {
		opts.SamplePath = opts.OutputPath
	}
	logger := opts.Logger
	if opts.RunID != "" {
		logger = logger.With().Str("run_id", opts.RunID).Logger()
	}
	return &Orchestrator{opts: opts, logger: logger}
}

// Run extracts target and writes the result. Strategies are tried one at a
// time, once each; an unavailable strategy counts as absent. When none
// produces rows the fallback dataset is written to the sample path.
func (o *Orchestrator) Run(ctx context.Context, target string) models.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	total := len(o.opts.Strategies)
	if o.opts.Fallback != nil {
		total++
	}

	outcome := models.Outcome{RunID: o.opts.RunID, URL: target}

	for i, s := range o.opts.Strategies {
		rows, ok := o.attempt(ctx, i, total, s, target)
		if !ok {
			continue
		}
		outcome.Strategy = s.Name()
		outcome.Path = o.opts.OutputPath
		outcome.Rows = len(rows)
		outcome.Written = o.persist(rows, o.opts.OutputPath)
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	if o.opts.Fallback == nil {
		o.logger.Error().Msg("All strategies failed and no fallback is configured")
		outcome.Elapsed = time.Since(start)
		return outcome
	}

	o.logger.Warn().Msg("All extraction strategies failed, writing sample data")
	rows, _ := o.attempt(ctx, total-1, total, o.opts.Fallback, target)

	outcome.Strategy = o.opts.Fallback.Name()
	outcome.Path = o.opts.SamplePath
	outcome.Sample = true
	outcome.Rows = len(rows)
	outcome.Written = len(rows) > 0 && o.persist(rows, o.opts.SamplePath)
	outcome.Elapsed = time.Since(start)
	return outcome
}

// attempt runs one strategy, capability check first, and reports the rows
// it found. A panicking strategy counts as absent.
func (o *Orchestrator) attempt(ctx context.Context, index, total int, s Strategy, target string) (rows models.Dataset, ok bool) {
	name := s.Name()
	logger := o.logger.With().Str("strategy", name).Logger()
	start := time.Now()

	if o.opts.Observer != nil {
		o.opts.Observer.OnAttempt(index, total, name)
	}
	defer func() {
		if o.opts.Observer != nil {
			o.opts.Observer.OnResult(name, len(rows), ok)
		}
	}()

	if c, isChecker := s.(Checker); isChecker {
		if err := c.Available(); err != nil {
			logger.Info().Err(err).Msg("Strategy unavailable, skipping")
			return nil, false
		}
	}

	logger.Info().Msg("Trying strategy")
	result := o.extract(ctx, s, target, logger)
	rows, ok = result.Rows()

	logger.Info().
		Bool("found", ok).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("Strategy finished")

	return rows, ok
}

func (o *Orchestrator) extract(ctx context.Context, s Strategy, target string, logger zerolog.Logger) (result models.Result) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error().Str("panic", fmt.Sprint(p)).Msg("Strategy panicked")
			result = models.Absent()
		}
	}()
	return s.Extract(ctx, target)
}

func (o *Orchestrator) persist(rows models.Dataset, path string) bool {
	if o.opts.Writer == nil {
		o.logger.Error().Str("path", path).Msg("No writer configured")
		return false
	}
	return o.opts.Writer.Write(rows, path)
}
