package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("config", "", "Path to a JSON5 configuration file (optional)")

	cmd.Flags().String("url", DefaultURL, "Ranking page to extract")
	cmd.Flags().StringP("output", "o", DefaultOutputPath, "CSV file to write")
	cmd.Flags().String("timeout", DefaultHTTPTimeout.String(), "Timeout for the primary page request")
	cmd.Flags().String("probe-timeout", DefaultProbeTimeout.String(), "Timeout for each alternate endpoint probe")
	cmd.Flags().String("selector-wait", DefaultSelectorWait.String(), "How long to wait for each table selector when rendering")
	cmd.Flags().String("chrome-path", "", "Chrome/Chromium executable (auto-detected when empty)")
	cmd.Flags().Bool("no-render", false, "Skip headless browser rendering")
	cmd.Flags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.Flags().String("user-agent", "", "Custom user agent string")
	cmd.Flags().StringArrayP("header", "H", nil, "Extra request header (\"Key: Value\"), repeatable")
}
