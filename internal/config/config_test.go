package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "iemrank"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, DefaultURL, cfg.URL)
	require.Equal(t, DefaultOutputPath, cfg.OutputPath)
	require.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	require.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
	require.Equal(t, DefaultSelectorWait, cfg.SelectorWait)
	require.Equal(t, DefaultNavigationTimeout, cfg.NavigationTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.Render)
	require.True(t, cfg.StealthTLS)
	require.Empty(t, cfg.Headers)
}

func TestLoad_NilCommand(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultURL, cfg.URL)
}

func TestLoad_Flags(t *testing.T) {
	cmd := newCommand(t,
		"--url", "https://example.com/rankings/",
		"-o", "out/rank.csv",
		"--timeout", "5s",
		"--probe-timeout", "2s",
		"--selector-wait", "1s",
		"--no-render",
		"-H", "Referer: https://example.com/",
		"-H", "x-token: abc",
		"-v",
	)
	cfg, err := Load(cmd)
	require.NoError(t, err)

	require.Equal(t, "https://example.com/rankings/", cfg.URL)
	require.Equal(t, "out/rank.csv", cfg.OutputPath)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 2*time.Second, cfg.ProbeTimeout)
	require.Equal(t, time.Second, cfg.SelectorWait)
	require.False(t, cfg.Render)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, map[string]string{"Referer": "https://example.com/", "X-Token": "abc"}, cfg.Headers)
}

func TestLoad_QuietWinsOverVerbose(t *testing.T) {
	cfg, err := Load(newCommand(t, "-v", "-q"))
	require.NoError(t, err)
	require.True(t, cfg.Quiet)
	require.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv(EnvURL, "https://env.example.com/")
	t.Setenv(EnvProxy, "http://localhost:8080")
	t.Setenv(EnvChromePath, "/opt/chrome")

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com/", cfg.URL)
	require.Equal(t, "http://localhost:8080", cfg.Proxy)
	require.Equal(t, "/opt/chrome", cfg.ChromePath)

	// flags beat the environment
	cfg, err = Load(newCommand(t, "--url", "https://flag.example.com/"))
	require.NoError(t, err)
	require.Equal(t, "https://flag.example.com/", cfg.URL)
}

func TestLoad_ConfigFileWithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "iemrank.json5")
	require.NoError(t, os.WriteFile(main, []byte(`{
  // JSON5 allows comments and trailing commas
  url: "https://file.example.com/rankings/",
  output: "file.csv",
  probe_timeout: "3s",
  stealth_tls: false,
  headers: { "Referer": "https://file.example.com/" },
  endpoints: ["/api/v1/iems"],
}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "iemrank.local.json5"), []byte(`{
  output: "local.csv",
  selectors: ["#rankings tr"],
}`), 0o644))

	cfg, err := Load(newCommand(t, "--config", main, "--timeout", "7s"))
	require.NoError(t, err)

	require.Equal(t, "https://file.example.com/rankings/", cfg.URL)
	require.Equal(t, "local.csv", cfg.OutputPath)
	require.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	require.Equal(t, 7*time.Second, cfg.HTTPTimeout)
	require.False(t, cfg.StealthTLS)
	require.Equal(t, "https://file.example.com/", cfg.Headers["Referer"])
	require.Equal(t, []string{"/api/v1/iems"}, cfg.Endpoints)
	require.Equal(t, []string{"#rankings tr"}, cfg.Selectors)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad url", []string{"--url", "ftp://example.com/"}},
		{"bad duration", []string{"--timeout", "soon"}},
		{"zero timeout", []string{"--probe-timeout", "0s"}},
		{"empty output", []string{"-o", " "}},
		{"malformed header", []string{"-H", "NoColon"}},
		{"missing config file", []string{"--config", "/nonexistent/iemrank.json5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newCommand(t, tt.args...))
			require.Error(t, err)
		})
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "iemrank.local.json5"), localName(filepath.Join("conf", "iemrank.json5")))
	require.Equal(t, "iemrank.local", localName("iemrank"))
}
