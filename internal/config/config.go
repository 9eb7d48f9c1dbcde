package config

import (
	"fmt"
	"os"
	"time"

	"github.com/law-makers/iemrank/internal/utils/headers"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Target
	URL        string
	OutputPath string

	// HTTP
	HTTPTimeout  time.Duration
	ProbeTimeout time.Duration
	UserAgent    string
	Proxy        string
	Headers      map[string]string
	StealthTLS   bool
	Endpoints    []string

	// Rendering
	Render            bool
	ChromePath        string
	NavigationTimeout time.Duration
	SelectorWait      time.Duration
	Selectors         []string

	// Inline literal evaluation
	EvalTimeout time.Duration
}

// Default returns a Config populated with the default values
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		URL:               DefaultURL,
		OutputPath:        DefaultOutputPath,
		HTTPTimeout:       DefaultHTTPTimeout,
		ProbeTimeout:      DefaultProbeTimeout,
		Headers:           map[string]string{},
		StealthTLS:        DefaultStealthTLS,
		Render:            DefaultRender,
		NavigationTimeout: DefaultNavigationTimeout,
		SelectorWait:      DefaultSelectorWait,
		EvalTimeout:       DefaultEvalTimeout,
	}
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	// Config file, if one was named
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			fc, err := ReadFile(f.Value.String())
			if err != nil {
				return nil, fmt.Errorf("config file: %w", err)
			}
			if err := cfg.apply(fc); err != nil {
				return nil, fmt.Errorf("config file: %w", err)
			}
		}
	}

	// Override from environment variables
	if v := os.Getenv(EnvURL); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv(EnvProxy); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		cfg.ChromePath = v
	}

	// Read CLI flags if provided
	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) apply(fc FileConfig) error {
	if fc.URL != "" {
		c.URL = fc.URL
	}
	if fc.Output != "" {
		c.OutputPath = fc.Output
	}
	if fc.ChromePath != "" {
		c.ChromePath = fc.ChromePath
	}
	if fc.NoRender {
		c.Render = false
	}
	if fc.Proxy != "" {
		c.Proxy = fc.Proxy
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	for k, v := range fc.Headers {
		c.Headers[k] = v
	}
	if len(fc.Selectors) > 0 {
		c.Selectors = fc.Selectors
	}
	if len(fc.Endpoints) > 0 {
		c.Endpoints = fc.Endpoints
	}
	if fc.StealthTLS != nil {
		c.StealthTLS = *fc.StealthTLS
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"timeout", fc.Timeout, &c.HTTPTimeout},
		{"probe_timeout", fc.ProbeTimeout, &c.ProbeTimeout},
		{"selector_wait", fc.SelectorWait, &c.SelectorWait},
		{"navigation_timeout", fc.NavigationTimeout, &c.NavigationTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"url":         &c.URL,
		"output":      &c.OutputPath,
		"user-agent":  &c.UserAgent,
		"proxy":       &c.Proxy,
		"chrome-path": &c.ChromePath,
	}
	for name, dst := range stringFlags {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	durations := map[string]*time.Duration{
		"timeout":       &c.HTTPTimeout,
		"probe-timeout": &c.ProbeTimeout,
		"selector-wait": &c.SelectorWait,
	}
	for name, dst := range durations {
		if f := flags.Lookup(name); f != nil && f.Changed {
			d, err := time.ParseDuration(f.Value.String())
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = d
		}
	}

	if f := flags.Lookup("header"); f != nil && f.Changed {
		values, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		parsed, err := headers.ParseHeaders(values)
		if err != nil {
			return fmt.Errorf("invalid --header: %w", err)
		}
		for k, v := range parsed {
			c.Headers[k] = v
		}
	}

	if f := flags.Lookup("no-render"); f != nil && f.Value.String() == "true" {
		c.Render = false
	}
	if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
		c.JSONLog = true
	}
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		c.LogLevel = "debug"
	}
	if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
		c.Quiet = true
		c.LogLevel = "error"
	}
	return nil
}
