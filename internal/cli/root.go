// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/iemrank/internal/app"
	"github.com/law-makers/iemrank/internal/config"
	"github.com/law-makers/iemrank/internal/reqctx"
	"github.com/law-makers/iemrank/internal/ui"
	"github.com/law-makers/iemrank/internal/utils/output"
	"github.com/law-makers/iemrank/pkg/models"
)

// rootCmd represents the base command; iemrank has no subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iemrank",
		Short: "Extract the IEM ranking table into a CSV file",
		Long: `iemrank reads the IEM ranking table from a web page and writes it to a CSV file.

It tries, in order:
- the page rendered in a headless Chrome
- data arrays embedded in the page's scripts
- likely JSON data endpoints next to the page

When all of them fail it writes a clearly named sample file instead.`,
		Example: `# Extract the default ranking page
iemrank

# Skip the browser and write somewhere else
iemrank --no-render -o rankings/iems.csv

# Print the run summary as JSON
iemrank --json`,
		Version:           "0.1.0",
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: initApp,
		RunE:              runExtract,
	}

	// Register centralized flags
	config.RegisterFlags(cmd)

	// Customize help and version flag descriptions
	cmd.Flags().BoolP("help", "h", false, "Help for iemrank")
	cmd.Flags().Bool("version", false, "Version for iemrank")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(customHelpFunc)
	cmd.SetUsageFunc(customUsageFunc)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

// initApp loads configuration and builds the application before the command
// runs (cobra skips it for -h/--version)
func initApp(cmd *cobra.Command, args []string) error {
	if GetAppFromCmd(cmd) != nil {
		return nil
	}

	cfg, err := config.Load(cmd)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// console logs are routed through the bar so they never splice into it
	progress := newProgress(cmd.ErrOrStderr(), showProgress(cfg))
	a, err := app.New(cmd.Context(), cfg, app.WithLogOutput(progress))
	if err != nil {
		return err
	}
	SetApp(cmd, a)
	setProgress(cmd, progress)
	return nil
}

// closeApp releases the application stored on cmd
func closeApp(cmd *cobra.Command) {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.Close(ctx)
	SetApp(cmd, nil)
}

func runExtract(cmd *cobra.Command, args []string) error {
	// usage only helps with flag errors
	cmd.SilenceUsage = true

	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	defer closeApp(cmd)

	cfg := a.Config
	ctx := reqctx.WithRunContext(cmd.Context())

	progress := getProgress(cmd)
	outcome := a.Run(ctx, progress)
	progress.Finish()

	out := cmd.OutOrStdout()
	switch {
	case cfg.JSONLog:
		if err := output.WriteJSON(out, outcome); err != nil {
			return reqctx.NewRunError(ctx, err)
		}
	case !cfg.Quiet:
		printSummary(out, outcome)
		if outcome.Sample {
			printHints(out, cfg)
		}
	}

	if !outcome.Written {
		return reqctx.NewRunError(ctx, fmt.Errorf("failed to write %s", outcome.Path))
	}
	return nil
}

// showProgress reports whether the progress bar should be drawn. Debug logs
// would tear it, and quiet or JSON runs print nothing decorative.
func showProgress(cfg *config.Config) bool {
	return !cfg.Quiet && !cfg.JSONLog && cfg.LogLevel != "debug"
}

// printSummary prints one line describing what was written
func printSummary(w io.Writer, o models.Outcome) {
	elapsed := o.Elapsed.Round(10 * time.Millisecond)
	switch {
	case !o.Written:
		fmt.Fprintf(w, "%s could not write %s\n", ui.Error("✗"), o.Path)
	case o.Sample:
		fmt.Fprintf(w, "%s live extraction failed, wrote sample data to %s %s\n",
			ui.Warn("!"), ui.Bold(o.Path), ui.Info(fmt.Sprintf("(%s)", elapsed)))
	default:
		fmt.Fprintf(w, "%s wrote %d rows to %s %s\n",
			ui.Success("✓"), o.Rows, ui.Bold(o.Path), ui.Info(fmt.Sprintf("(%s, %s)", o.Strategy, elapsed)))
	}
}

// printHints suggests what the operator can do after a sample fallback
func printHints(w io.Writer, cfg *config.Config) {
	var hints []string
	if cfg.Render {
		hints = append(hints, "Install Chrome or Chromium, or point --chrome-path at one, so the page can be rendered")
	} else {
		hints = append(hints, "Rendering was disabled with --no-render; run without it to use the browser")
	}
	hints = append(hints,
		"Open "+cfg.URL+" in a browser and copy the table manually",
		"The site may use anti-scraping measures; try --proxy, --user-agent or -H to change how requests look",
	)

	fmt.Fprintf(w, "\n%s\n", ui.Bold("Hints"))
	for _, h := range hints {
		fmt.Fprintf(w, "  %s %s\n", ui.Info("-"), wrapHint(h))
	}
}

func wrapHint(h string) string {
	return strings.ReplaceAll(wrapText(h, 76), "\n", "\n    ")
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()

	// Header with command name
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintf(out, "%s\n", cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(out, "\n%s\n", wrapText(cmd.Long, 80))
	}

	printSection(out, "Usage")
	fmt.Fprintf(out, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)

	if cmd.HasExample() {
		printSection(out, "Examples")
		lastWasCommand := false
		for _, example := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(example)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "#") {
				if lastWasCommand {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
				lastWasCommand = false
			} else {
				fmt.Fprintf(out, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
				lastWasCommand = true
			}
		}
	}

	if cmd.HasAvailableLocalFlags() {
		printSection(out, "Flags")
		printFlagsTo(out, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		printSection(out, "Global Flags")
		printFlagsTo(out, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(out)
}

// customUsageFunc provides a colorized usage output
func customUsageFunc(cmd *cobra.Command) error {
	out := cmd.ErrOrStderr()

	printSection(out, "Usage")
	fmt.Fprintf(out, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)

	if cmd.HasAvailableFlags() {
		printSection(out, "Flags")
		printFlagsTo(out, cmd.Flags().FlagUsages())
	}

	fmt.Fprintf(out, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)
	return nil
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

// printFlagsTo prints pflag usages with the flag column in green and the
// description dimmed, aligned to at least 28 columns
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	width := 28
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		flag, _, _ := strings.Cut(trimmed, "  ")
		width = max(width, len(strings.TrimSpace(flag)))
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			// continuation of the previous description
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", width+4), ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}

		flag, desc, ok := strings.Cut(trimmed, "  ")
		if !ok {
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			continue
		}
		flag = strings.TrimSpace(flag)
		fmt.Fprintf(w, "  %s%s%s%s%s%s%s\n",
			ui.ColorGreen, flag, ui.ColorReset,
			strings.Repeat(" ", width-len(flag)+2),
			ui.ColorDim, strings.TrimSpace(desc), ui.ColorReset)
	}
}

// wrapText wraps text at width, keeping paragraphs and list items on their
// own lines
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
				lines = append(lines, line)
				continue
			}

			var current strings.Builder
			for _, word := range strings.Fields(line) {
				switch {
				case current.Len() == 0:
				case current.Len()+1+len(word) <= width:
					current.WriteByte(' ')
				default:
					lines = append(lines, current.String())
					current.Reset()
				}
				current.WriteString(word)
			}
			if current.Len() > 0 {
				lines = append(lines, current.String())
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
