// internal/engine/static/scraper.go
package static

import (
	"bytes"
	"context"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/internal/engine/hybrid"
	"github.com/law-makers/iemrank/internal/engine/markup"
	"github.com/law-makers/iemrank/internal/normalize"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// Name is the strategy name reported in logs and outcomes
const Name = "inline-pattern"

// DefaultPatterns locate data literals embedded in page scripts. Each has
// one capture group around the literal. Only the first match of a pattern
// is considered.
var DefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)var\s+tableData\s*=\s*(\[.*?\]);`),
	regexp.MustCompile(`(?s)data:\s*(\[.*?\])`),
	regexp.MustCompile(`(?s)tablepress_\w+\s*=\s*(\{.*?\});`),
}

var (
	// a grade, a pipe, then a price or a number further along the line
	gradePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[SA][+-]?\s*\|.*?\$?\d+`),
		regexp.MustCompile(`[A-F][+-]?\s*\|.*?\d{2,4}`),
	}
	fieldSeparator = regexp.MustCompile(`\s*\|\s*`)
)

const (
	// maxCandidateLines caps how many matching lines are split into rows
	maxCandidateLines = 10
	// minFields is the smallest split that counts as a row
	minFields = 4
)

// Options configures a Scraper
type Options struct {
	Fetcher     engine.Fetcher
	Timeout     time.Duration
	EvalTimeout time.Duration
	Patterns    []*regexp.Regexp
	Logger      zerolog.Logger
}

// Scraper fetches the raw page and recovers rows without executing it:
// first from inline data literals, then from pipe-delimited text lines.
type Scraper struct {
	fetcher     engine.Fetcher
	timeout     time.Duration
	evalTimeout time.Duration
	patterns    []*regexp.Regexp
	logger      zerolog.Logger
}

// New creates a new Scraper with dependency injection
func New(opts Options) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	return &Scraper{
		fetcher:     opts.Fetcher,
		timeout:     opts.Timeout,
		evalTimeout: opts.EvalTimeout,
		patterns:    opts.Patterns,
		logger:      opts.Logger.With().Str("strategy", Name).Logger(),
	}
}

// Name returns the name of this strategy
func (s *Scraper) Name() string {
	return Name
}

// Extract fetches target and returns rows from its inline data or its text
func (s *Scraper) Extract(ctx context.Context, target string) models.Result {
	logger := s.logger.With().Str("url", target).Logger()

	_, body, err := s.fetcher.Fetch(ctx, target, s.timeout)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch page")
		return models.Absent()
	}

	if rows, decoded := s.inlineData(body, logger); decoded {
		logger.Info().Int("rows", len(rows)).Msg("Inline data decoded")
		return models.Found(rows)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse page")
		return models.Absent()
	}
	rows := HeuristicRows(markup.VisibleLines(doc))
	logger.Info().Int("rows", len(rows)).Msg("Text heuristic finished")
	return models.Found(rows)
}

// inlineData tries each pattern in order. The first literal that decodes
// settles the result, even when it normalizes to no rows.
func (s *Scraper) inlineData(body []byte, logger zerolog.Logger) (models.Dataset, bool) {
	for i, pattern := range s.patterns {
		m := pattern.FindSubmatch(body)
		if len(m) < 2 {
			continue
		}

		doc, err := hybrid.DecodeLiteral(string(m[1]), s.evalTimeout)
		if err != nil {
			logger.Debug().Err(err).Int("pattern", i).Msg("Inline literal did not decode")
			continue
		}
		rows, err := normalize.NormalizeJSON(doc)
		if err != nil {
			logger.Debug().Err(err).Int("pattern", i).Msg("Inline literal did not normalize")
			continue
		}
		return rows, true
	}
	return nil, false
}

// HeuristicRows keeps lines that look like a graded ranking entry, at most
// ten of them, and splits each on pipes. Splits shorter than four fields
// are dropped.
func HeuristicRows(lines []string) models.Dataset {
	var candidates []string
	for _, line := range lines {
		for _, p := range gradePatterns {
			if p.MatchString(line) {
				candidates = append(candidates, line)
				break
			}
		}
	}
	if len(candidates) > maxCandidateLines {
		candidates = candidates[:maxCandidateLines]
	}

	var rows models.Dataset
	for _, line := range candidates {
		parts := fieldSeparator.Split(line, -1)
		if len(parts) >= minFields {
			rows = append(rows, models.Row(parts))
		}
	}
	return rows
}
