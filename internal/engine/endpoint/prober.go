// Package endpoint probes secondary URLs that may serve the table data as a
// JSON array, sharing the primary page's session so its cookies apply.
package endpoint

import (
	"bytes"
	"context"
	"time"

	"github.com/buger/jsonparser"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/internal/normalize"
	urlutil "github.com/law-makers/iemrank/internal/utils/url"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// Name is the strategy name reported in logs and outcomes
const Name = "alternate-endpoint"

// Options configures a Prober
type Options struct {
	Fetcher engine.Fetcher
	Timeout time.Duration
	// Candidates overrides the derived candidate list. Relative entries
	// resolve against the target.
	Candidates []string
	Logger     zerolog.Logger
}

// Prober tries each candidate endpoint once, in order
type Prober struct {
	fetcher    engine.Fetcher
	timeout    time.Duration
	candidates []string
	logger     zerolog.Logger
}

// New creates a Prober
func New(opts Options) *Prober {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Prober{
		fetcher:    opts.Fetcher,
		timeout:    opts.Timeout,
		candidates: opts.Candidates,
		logger:     opts.Logger.With().Str("strategy", Name).Logger(),
	}
}

// Name returns the name of this strategy
func (p *Prober) Name() string {
	return Name
}

// Candidates returns the URLs probed for target, in order
func (p *Prober) Candidates(target string) ([]string, error) {
	if len(p.candidates) > 0 {
		return urlutil.ResolveAll(target, p.candidates), nil
	}
	return urlutil.EndpointCandidates(target)
}

// Extract returns the normalized rows of the first candidate that answers
// with a non-empty JSON array. Every other outcome moves to the next one.
func (p *Prober) Extract(ctx context.Context, target string) models.Result {
	candidates, err := p.Candidates(target)
	if err != nil {
		p.logger.Warn().Err(err).Str("url", target).Msg("Cannot derive endpoints")
		return models.Absent()
	}

	for _, candidate := range candidates {
		if ctx != nil && ctx.Err() != nil {
			p.logger.Debug().Err(ctx.Err()).Msg("Probing cancelled")
			return models.Absent()
		}

		logger := p.logger.With().Str("url", candidate).Logger()

		status, body, err := p.fetcher.Fetch(ctx, candidate, p.timeout)
		if err != nil {
			logger.Debug().Err(err).Msg("Endpoint probe failed")
			continue
		}
		if !nonEmptyArray(body) {
			logger.Debug().Int("status", status).Msg("Endpoint did not return a JSON array")
			continue
		}

		rows, err := normalize.NormalizeJSON(body)
		if err != nil {
			logger.Debug().Err(err).Msg("Endpoint returned invalid JSON")
			continue
		}

		logger.Info().Int("rows", len(rows)).Msg("Endpoint data found")
		return models.Found(rows)
	}

	return models.Absent()
}

// nonEmptyArray reports whether body is a JSON array with at least one element
func nonEmptyArray(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return false
	}
	_, dataType, _, err := jsonparser.Get(body, "[0]")
	return err == nil && dataType != jsonparser.NotExist
}
