package history

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/berrythewa/clipstash/internal/types"
)

// Collection selects which list a filter runs over.
type Collection string

const (
	CollectionItems  Collection = "items"
	CollectionPinned Collection = "pinned"
)

// FilterOptions narrow a collection. A zero Category matches every entry,
// an empty Query matches every entry.
type FilterOptions struct {
	Collection Collection
	Category   types.Category
	Query      string
	// Fuzzy matches the query as an in-order subsequence instead of a substring.
	Fuzzy bool
}

// Filter returns matching entries in display order.
func (s *Store) Filter(opts FilterOptions) []types.ClipboardEntry {
	s.mu.Lock()
	source := s.items
	if opts.Collection == CollectionPinned {
		source = s.pinned
	}
	entries := clone(source)
	s.mu.Unlock()

	query := strings.ToLower(opts.Query)
	out := entries[:0]
	for _, e := range entries {
		if opts.Category != types.CategoryNone && e.Category != opts.Category {
			continue
		}
		if !matchesQuery(&e, query, opts.Fuzzy) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesQuery(e *types.ClipboardEntry, query string, fuzzyMode bool) bool {
	if query == "" {
		return true
	}
	text := e.SearchableText()
	if text == "" {
		return false
	}
	if fuzzyMode {
		return fuzzy.MatchFold(query, text)
	}
	return strings.Contains(strings.ToLower(text), query)
}
