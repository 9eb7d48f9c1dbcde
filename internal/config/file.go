package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// FileConfig is the on-disk configuration. Durations are Go duration
// strings ("30s", "1m"). Unset fields keep their defaults.
type FileConfig struct {
	URL               string            `json:"url"`
	Output            string            `json:"output"`
	Timeout           string            `json:"timeout"`
	ProbeTimeout      string            `json:"probe_timeout"`
	SelectorWait      string            `json:"selector_wait"`
	NavigationTimeout string            `json:"navigation_timeout"`
	ChromePath        string            `json:"chrome_path"`
	NoRender          bool              `json:"no_render"`
	Proxy             string            `json:"proxy"`
	UserAgent         string            `json:"user_agent"`
	Headers           map[string]string `json:"headers"`
	Selectors         []string          `json:"selectors"`
	Endpoints         []string          `json:"endpoints"`
	StealthTLS        *bool             `json:"stealth_tls"`
	LogLevel          string            `json:"log_level"`
}

// ReadFile reads a JSON5 config file and merges <name>.local.<ext> from the
// same directory over it when present. The named file must exist.
func ReadFile(name string) (FileConfig, error) {
	var out FileConfig

	content, err := os.ReadFile(name)
	if err != nil {
		return out, err
	}
	if err := json5.Unmarshal(content, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", name, err)
	}

	local := localName(name)
	content, err = os.ReadFile(local)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return out, err
	}

	var override FileConfig
	if err := json5.Unmarshal(content, &override); err != nil {
		return out, fmt.Errorf("parse %s: %w", local, err)
	}
	if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
		return out, fmt.Errorf("merge %s: %w", local, err)
	}
	return out, nil
}

// localName maps "dir/iemrank.json5" to "dir/iemrank.local.json5"
func localName(name string) string {
	dir, base := filepath.Split(name)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".local"+ext)
}
