package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultURL               = "https://crinacle.com/rankings/iems/"
	DefaultOutputPath        = "crinacle_iem_rankings.csv"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultProbeTimeout      = 10 * time.Second
	DefaultSelectorWait      = 20 * time.Second
	DefaultNavigationTimeout = 60 * time.Second
	DefaultEvalTimeout       = 2 * time.Second
	DefaultRender            = true
	DefaultStealthTLS        = true
)

// Environment variables read by Load
const (
	EnvURL        = "IEMRANK_URL"
	EnvOutput     = "IEMRANK_OUTPUT"
	EnvProxy      = "IEMRANK_PROXY"
	EnvUserAgent  = "IEMRANK_USER_AGENT"
	EnvChromePath = "IEMRANK_CHROME_PATH"
)
