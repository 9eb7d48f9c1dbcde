package config

import (
	"fmt"
	"strings"

	urlutil "github.com/law-makers/iemrank/internal/utils/url"
	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if err := urlutil.ValidateURL(c.URL); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be > 0")
	}
	if c.SelectorWait <= 0 {
		return fmt.Errorf("selector wait must be > 0")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be > 0")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
