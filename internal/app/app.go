// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/law-makers/iemrank/internal/config"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/internal/engine/dynamic"
	"github.com/law-makers/iemrank/internal/engine/endpoint"
	"github.com/law-makers/iemrank/internal/engine/sample"
	"github.com/law-makers/iemrank/internal/engine/static"
	"github.com/law-makers/iemrank/internal/reqctx"
	"github.com/law-makers/iemrank/internal/transport"
	"github.com/law-makers/iemrank/internal/utils/output"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per invocation. Use Close() to release the HTTP
// session when done.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Client     *transport.Client
	Strategies []engine.Strategy
	Writer     *output.CSVWriter
	startTime  time.Time
}

// Option customizes New
type Option func(*settings)

type settings struct {
	logOutput io.Writer
}

// WithLogOutput sends logs to w instead of stderr
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) {
		s.logOutput = w
	}
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the shared HTTP session (headers, cookie jar)
//   - Creates the extraction strategies in fallback order
//   - Creates the CSV writer
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	logger := newLogger(cfg, s.logOutput)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	client, err := transport.New(transport.Options{
		Headers:        cfg.Headers,
		UserAgent:      cfg.UserAgent,
		Proxy:          cfg.Proxy,
		StealthTLS:     cfg.StealthTLS,
		DefaultTimeout: cfg.HTTPTimeout,
		Logger:         logger.With().Str("component", "transport").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP session: %w", err)
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Bool("stealth_tls", cfg.StealthTLS).
		Msg("HTTP session initialized")

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		Client:     client,
		Strategies: buildStrategies(cfg, client, logger),
		Writer:     output.NewCSVWriter(logger),
		startTime:  time.Now(),
	}

	names := make([]string, len(app.Strategies))
	for i, st := range app.Strategies {
		names[i] = st.Name()
	}
	logger.Debug().Strs("strategies", names).Msg("Application initialized")
	return app, nil
}

// buildStrategies returns the network strategies in fallback order. The
// rendered page uses the same identity as the HTTP session.
func buildStrategies(cfg *config.Config, client *transport.Client, logger zerolog.Logger) []engine.Strategy {
	var strategies []engine.Strategy

	profile := client.Headers()
	if cfg.Render {
		strategies = append(strategies, dynamic.New(dynamic.Options{
			ChromePath:        cfg.ChromePath,
			UserAgent:         profile["User-Agent"],
			Proxy:             cfg.Proxy,
			Headers:           transport.BrowserHeaders(profile),
			NavigationTimeout: cfg.NavigationTimeout,
			SelectorWait:      cfg.SelectorWait,
			Selectors:         cfg.Selectors,
			Logger:            logger,
		}))
	}

	strategies = append(strategies,
		static.New(static.Options{
			Fetcher:     client,
			Timeout:     cfg.HTTPTimeout,
			EvalTimeout: cfg.EvalTimeout,
			Logger:      logger,
		}),
		endpoint.New(endpoint.Options{
			Fetcher:    client,
			Timeout:    cfg.ProbeTimeout,
			Candidates: cfg.Endpoints,
			Logger:     logger,
		}),
	)
	return strategies
}

// Run performs one extraction of the configured URL and writes exactly one
// CSV file. The run id is taken from ctx when present.
func (a *Application) Run(ctx context.Context, observer engine.Observer) models.Outcome {
	rc := reqctx.GetRunContext(ctx)

	logger := a.Logger.With().Str("run_id", rc.RunID).Logger()
	if wd, err := os.Getwd(); err == nil {
		logger.Info().Str("dir", wd).Msg("Working directory")
	}
	logger.Info().Str("url", a.Config.URL).Msg("Starting extraction")

	o := engine.NewOrchestrator(engine.OrchestratorOptions{
		Strategies: a.Strategies,
		Fallback:   sample.New(),
		Writer:     a.Writer,
		OutputPath: a.Config.OutputPath,
		SamplePath: output.SamplePath(a.Config.OutputPath),
		RunID:      rc.RunID,
		Observer:   observer,
		Logger:     *a.Logger,
	})
	return o.Run(ctx, a.Config.URL)
}

// Close gracefully shuts down the application and all its resources.
// The browser is already released by the time Run returns; only the HTTP
// session's idle connections remain.
func (a *Application) Close(ctx context.Context) error {
	if a.Client != nil {
		a.Client.Close()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Debug().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}

// newLogger builds the run's logger. Console output hides info messages
// unless verbose, so the progress bar and summary stay readable; JSON
// output keeps the configured level.
func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if !cfg.JSONLog && level == zerolog.InfoLevel {
		level = zerolog.WarnLevel
	}

	var logWriter io.Writer = out
	if !cfg.JSONLog {
		logWriter = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(logWriter).Level(level).With().Timestamp().Logger()
}
