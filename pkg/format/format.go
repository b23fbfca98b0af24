// Package format renders clipboard history for the terminal.
package format

import (
	"fmt"
	"strings"

	"github.com/berrythewa/clipstash/internal/types"
)

// Formatter renders entries with a fixed set of options
type Formatter struct {
	options Options
}

// New creates a new formatter with the given options
func New(opts Options) *Formatter {
	return &Formatter{options: opts}
}

// NewDefault creates a new formatter with default options
func NewDefault() *Formatter {
	return New(DefaultOptions())
}

// FormatEntry renders one entry
func (f *Formatter) FormatEntry(e *types.ClipboardEntry) string {
	if e == nil {
		return ColorizeIf("No content", Gray, f.options.UseColors)
	}

	header := f.formatHeader(e)
	if f.options.Compact {
		return header + " " + DimIf(f.preview(e, 50), f.options.UseColors)
	}

	parts := []string{header}
	if f.options.ShowMetadata {
		parts = append(parts, f.formatMetadata(e))
	}
	if body := f.formatBody(e); body != "" {
		parts = append(parts, CreateBox("Content", body, f.options))
	}
	return strings.Join(parts, "\n")
}

// FormatEntryList renders entries with their position, marking pinned ids
func (f *Formatter) FormatEntryList(title string, entries []types.ClipboardEntry, pinned map[string]bool) string {
	if len(entries) == 0 {
		return ColorizeIf("No clipboard history", Gray, f.options.UseColors)
	}

	parts := []string{
		ColorizeIf(fmt.Sprintf("📋 %s (%d entries)", title, len(entries)), BrightBlue, f.options.UseColors),
		"",
	}
	for i := range entries {
		e := &entries[i]
		index := fmt.Sprintf("[%d]", i+1)
		if pinned[e.ID] {
			index += ColorizeIf(" 📌", BrightYellow, f.options.UseColors)
		}
		if f.options.Compact {
			parts = append(parts, index+" "+f.FormatEntry(e))
			continue
		}
		parts = append(parts, index, f.FormatEntry(e))
		if i < len(entries)-1 {
			parts = append(parts, CreateSeparator(f.options))
		}
	}
	return strings.Join(parts, "\n")
}

func (f *Formatter) formatHeader(e *types.ClipboardEntry) string {
	var parts []string
	if f.options.UseIcons {
		if icon, ok := CategoryIcons[e.Category]; ok {
			parts = append(parts, icon)
		}
	}
	parts = append(parts, ColorizeIf(label(e), CategoryColors[e.Category], f.options.UseColors))
	if e.IsSensitive {
		parts = append(parts, ColorizeIf("(sensitive)", Yellow, f.options.UseColors))
	}
	if !f.options.Compact {
		parts = append(parts, DimIf(e.ID, f.options.UseColors))
	}
	return strings.Join(parts, " ")
}

func (f *Formatter) formatMetadata(e *types.ClipboardEntry) string {
	parts := []string{
		"Created: " + FormatRelativeTime(e.CreatedAt, f.options.now()),
		"Size: " + FormatSize(int64(e.Size())),
	}
	if e.SourceApplication != "" {
		parts = append(parts, "From: "+e.SourceApplication)
	}
	return DimIf(strings.Join(parts, " • "), f.options.UseColors)
}

func (f *Formatter) formatBody(e *types.ClipboardEntry) string {
	switch e.Kind {
	case types.KindImage:
		return FormatImage(e, f.options)
	case types.KindURL:
		return FormatURL(e, f.options)
	}
	return FormatText(e, f.options)
}

func (f *Formatter) preview(e *types.ClipboardEntry, maxLen int) string {
	switch e.Kind {
	case types.KindImage:
		return FormatImagePreview(e)
	case types.KindURL:
		return FormatURLPreview(e, maxLen)
	}
	return FormatTextPreview(e, maxLen, f.options)
}

// FormatEntry renders one entry with the given options
func FormatEntry(e *types.ClipboardEntry, opts Options) string {
	return New(opts).FormatEntry(e)
}
