package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Bold renders s in bold
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Success renders s in green
func Success(s string) string {
	return ColorGreen + s + ColorReset
}

// Warn renders s in yellow, used when output fell back to sample data
func Warn(s string) string {
	return ColorYellow + s + ColorReset
}

// Info renders s dimmed
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error renders s in red
func Error(s string) string {
	return ColorRed + s + ColorReset
}
