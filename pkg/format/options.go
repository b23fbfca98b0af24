package format

import (
	"time"

	"github.com/berrythewa/clipstash/internal/types"
)

// Options controls formatting behavior
type Options struct {
	UseColors    bool
	UseIcons     bool
	MaxWidth     int  // Max content width (0 = no limit)
	MaxLines     int  // Max content lines (0 = no limit)
	ShowMetadata bool // Show timestamps, size and source app
	Compact      bool // Use compact single-line format
	// RevealSensitive prints flagged entries in clear instead of masked
	RevealSensitive bool
	// Now is the reference for relative times; nil means time.Now
	Now func() time.Time
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		UseColors:    true,
		UseIcons:     true,
		MaxWidth:     80,
		MaxLines:     10,
		ShowMetadata: true,
	}
}

// CompactOptions returns options for compact single-line display
func CompactOptions() Options {
	opts := DefaultOptions()
	opts.Compact = true
	opts.ShowMetadata = false
	opts.MaxLines = 1
	return opts
}

// PlainOptions disables colors and icons, for pipes and non-terminals
func PlainOptions() Options {
	opts := DefaultOptions()
	opts.UseColors = false
	opts.UseIcons = false
	return opts
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// CategoryIcons maps entry categories to icons
var CategoryIcons = map[types.Category]string{
	types.CategoryNone:  "📋",
	types.CategoryText:  "📝",
	types.CategoryCode:  "💻",
	types.CategoryURL:   "🔗",
	types.CategoryImage: "🖼️",
}

// CategoryColors maps entry categories to colors
var CategoryColors = map[types.Category]string{
	types.CategoryNone:  Gray,
	types.CategoryText:  Cyan,
	types.CategoryCode:  Green,
	types.CategoryURL:   Blue,
	types.CategoryImage: Magenta,
}

// label is the display name of an entry's category, falling back to its kind
func label(e *types.ClipboardEntry) string {
	if e.Category != types.CategoryNone {
		return string(e.Category)
	}
	return string(e.Kind)
}
