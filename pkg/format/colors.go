package format

// ANSI escape sequences
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[37m"

	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
	BrightCyan   = "\033[96m"
)

// ColorizeIf wraps text in color when useColors is set
func ColorizeIf(text, color string, useColors bool) string {
	if !useColors || text == "" {
		return text
	}
	return color + text + Reset
}

// DimIf dims text when useColors is set
func DimIf(text string, useColors bool) string {
	return ColorizeIf(text, Dim, useColors)
}

// BoldIf emboldens text when useColors is set
func BoldIf(text string, useColors bool) string {
	return ColorizeIf(text, Bold, useColors)
}
