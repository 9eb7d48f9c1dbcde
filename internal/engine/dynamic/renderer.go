// internal/engine/dynamic/renderer.go
package dynamic

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/iemrank/internal/engine"
	"github.com/law-makers/iemrank/internal/engine/markup"
	"github.com/law-makers/iemrank/pkg/models"
	"github.com/rs/zerolog"
)

// Name is the strategy name reported in logs and outcomes
const Name = "rendered-dom"

// DefaultSelectors are tried in order; the first one present on the page
// means the table has rendered.
var DefaultSelectors = []string{
	"table",
	"tbody",
	".tablepress",
	`[id*="tablepress"]`,
	".dataTable",
	`[class*="table"]`,
	"tr",
}

// Options configures a Renderer
type Options struct {
	ChromePath        string
	UserAgent         string
	Proxy             string
	Headers           map[string]string
	NavigationTimeout time.Duration
	SelectorWait      time.Duration
	Selectors         []string
	Logger            zerolog.Logger
}

// Renderer extracts table rows from the page after a headless browser has
// executed its scripts. Every call launches its own browser and tears it
// down before returning.
type Renderer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Renderer, filling unset options with defaults
func New(opts Options) *Renderer {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.SelectorWait <= 0 {
		opts.SelectorWait = 20 * time.Second
	}
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	return &Renderer{
		opts:   opts,
		logger: opts.Logger.With().Str("strategy", Name).Logger(),
	}
}

// Name returns the name of this strategy
func (r *Renderer) Name() string {
	return Name
}

// Available reports whether a browser binary can be launched
func (r *Renderer) Available() error {
	if _, err := FindChrome(r.opts.ChromePath); err != nil {
		return engine.NewEngineError(engine.ErrCodeRenderingUnavailable, "headless browser not available", err)
	}
	return nil
}

// Extract renders target and returns its table rows, or absent
func (r *Renderer) Extract(ctx context.Context, target string) (result models.Result) {
	logger := r.logger.With().Str("url", target).Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("Rendering aborted")
			result = models.Absent()
		}
	}()

	html, selector, err := r.render(ctx, target)
	if err != nil {
		logger.Warn().Err(err).Msg("Rendering failed")
		return models.Absent()
	}

	rows, err := markup.ParseRows(html)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to parse rendered markup")
		return models.Absent()
	}

	logger.Info().
		Str("selector", selector).
		Int("rows", len(rows)).
		Msg("Rendered table extracted")

	return models.Found(rows)
}

// render launches a browser, waits for a table selector and returns the
// document's outer HTML along with the selector that matched. The browser
// is released on every return path, panics included.
func (r *Renderer) render(ctx context.Context, target string) (string, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	execPath, err := FindChrome(r.opts.ChromePath)
	if err != nil {
		return "", "", engine.NewEngineError(engine.ErrCodeRenderingUnavailable, "headless browser not available", err)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions(execPath)...)
	defer allocCancel()

	logger := r.logger
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, v ...interface{}) {
			logger.Debug().Msgf(format, v...)
		}),
		chromedp.WithErrorf(func(format string, v ...interface{}) {
			logger.Debug().Msgf(format, v...)
		}),
	)
	defer browserCancel()

	start := time.Now()

	// Start the browser on the long-lived context so the timeouts below
	// only bound individual steps.
	if err := chromedp.Run(browserCtx); err != nil {
		return "", "", engine.NewEngineError(engine.ErrCodeRenderingUnavailable, "failed to launch browser", err).
			WithDetail("path", execPath)
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, r.opts.NavigationTimeout)
	defer navCancel()

	headers := network.Headers{}
	for k, v := range r.opts.Headers {
		headers[k] = v
	}
	tasks := chromedp.Tasks{network.Enable()}
	if len(headers) > 0 {
		tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
	}
	tasks = append(tasks, chromedp.Navigate(target))

	if err := chromedp.Run(navCtx, tasks); err != nil {
		return "", "", fmt.Errorf("navigation failed: %w", err)
	}
	r.logger.Debug().Dur("elapsed", time.Since(start)).Msg("Page loaded")

	selector, err := r.waitForTable(browserCtx)
	if err != nil {
		return "", "", err
	}

	readCtx, readCancel := context.WithTimeout(browserCtx, r.opts.SelectorWait)
	defer readCancel()

	var html string
	if err := chromedp.Run(readCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", "", fmt.Errorf("failed to read rendered markup: %w", err)
	}
	return html, selector, nil
}

// waitForTable polls the selector list in priority order, each with its own
// bounded wait, and returns the first selector present on the page.
func (r *Renderer) waitForTable(ctx context.Context) (string, error) {
	for _, selector := range r.opts.Selectors {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		waitCtx, cancel := context.WithTimeout(ctx, r.opts.SelectorWait)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
		cancel()

		if err == nil {
			r.logger.Debug().Str("selector", selector).Msg("Table selector matched")
			return selector, nil
		}
		r.logger.Debug().Str("selector", selector).Err(err).Msg("Selector not found")
	}

	return "", engine.NewEngineError(engine.ErrCodeRenderingTimeout, "no table selector matched", nil).
		WithDetail("selectors", len(r.opts.Selectors))
}

func (r *Renderer) allocatorOptions(execPath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(execPath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if r.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.opts.UserAgent))
	}
	if r.opts.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(r.opts.Proxy))
	}
	return opts
}
