package format

import (
	"net/url"

	"github.com/berrythewa/clipstash/internal/types"
)

// FormatURL formats a URL entry for display
func FormatURL(e *types.ClipboardEntry, opts Options) string {
	return ColorizeIf(TruncateText(e.URL, opts.MaxWidth), Underline+Blue, opts.UseColors)
}

// FormatURLPreview shows the host when the URL is too long to fit
func FormatURLPreview(e *types.ClipboardEntry, maxLen int) string {
	if maxLen <= 0 || len(e.URL) <= maxLen {
		return e.URL
	}
	if u, err := url.Parse(e.URL); err == nil && u.Host != "" {
		return TruncateText(u.Scheme+"://"+u.Host+"/…"+lastSegment(u.Path), maxLen)
	}
	return TruncateText(e.URL, maxLen)
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' && i < len(path)-1 {
			return path[i+1:]
		}
	}
	return ""
}
