package format

import (
	"strings"
	"unicode/utf8"

	"github.com/berrythewa/clipstash/internal/types"
)

const maskRune = '•'

// MaskSensitive hides all but the last four characters of text
func MaskSensitive(text string) string {
	n := utf8.RuneCountInString(text)
	if n <= 4 {
		return strings.Repeat(string(maskRune), n)
	}
	runes := []rune(text)
	return strings.Repeat(string(maskRune), min(n-4, 12)) + string(runes[n-4:])
}

// FormatText formats a plain text entry for display
func FormatText(e *types.ClipboardEntry, opts Options) string {
	if e == nil || e.Text == "" {
		return ""
	}
	text := e.Text
	if e.IsSensitive && !opts.RevealSensitive {
		return ColorizeIf(MaskSensitive(strings.TrimSpace(text)), Yellow, opts.UseColors)
	}
	if opts.MaxLines > 0 {
		text = TruncateLines(text, opts.MaxLines)
	}
	if opts.MaxWidth > 0 {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = TruncateText(line, opts.MaxWidth)
		}
		text = strings.Join(lines, "\n")
	}
	return text
}

// FormatTextPreview creates a single-line preview of a text entry
func FormatTextPreview(e *types.ClipboardEntry, maxLen int, opts Options) string {
	if e == nil || e.Text == "" {
		return ""
	}
	if e.IsSensitive && !opts.RevealSensitive {
		return MaskSensitive(strings.TrimSpace(e.Text))
	}
	return TruncateText(strings.Join(strings.Fields(e.Text), " "), maxLen)
}
