package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/types"
)

// FormatStats formats history statistics for display
func FormatStats(st history.Stats, opts Options) string {
	now := opts.now()
	parts := []string{
		ColorizeIf("📊 Clipboard Statistics", BrightBlue, opts.UseColors),
		"",
		formatStatLine("Entries", fmt.Sprintf("%d / %d", st.Items, st.MaxItems), opts),
		formatStatLine("Pinned", fmt.Sprintf("%d", st.Pinned), opts),
		formatStatLine("Sensitive", fmt.Sprintf("%d", st.Sensitive), opts),
		formatStatLine("Total size", FormatSize(int64(st.TotalBytes)), opts),
	}
	if !st.Oldest.IsZero() {
		parts = append(parts, formatStatLine("Oldest entry", FormatRelativeTime(st.Oldest, now), opts))
	}
	if !st.Newest.IsZero() {
		parts = append(parts, formatStatLine("Newest entry", FormatRelativeTime(st.Newest, now), opts))
	}

	if len(st.ByCategory) > 0 {
		parts = append(parts, "", ColorizeIf("Entries by category", BrightBlue, opts.UseColors))
		cats := make([]types.Category, 0, len(st.ByCategory))
		for c := range st.ByCategory {
			cats = append(cats, c)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
		for _, c := range cats {
			name := string(c)
			if name == "" {
				name = "uncategorized"
			}
			icon := ""
			if opts.UseIcons {
				icon = CategoryIcons[c] + " "
			}
			line := fmt.Sprintf("  %s%s: %d", icon, name, st.ByCategory[c])
			parts = append(parts, ColorizeIf(line, CategoryColors[c], opts.UseColors))
		}
	}
	return strings.Join(parts, "\n")
}

func formatStatLine(label, value string, opts Options) string {
	if opts.UseColors {
		return fmt.Sprintf("  %s%s:%s %s", BrightCyan, label, Reset, value)
	}
	return fmt.Sprintf("  %s: %s", label, value)
}
