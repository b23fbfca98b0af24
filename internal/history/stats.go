package history

import (
	"time"

	"github.com/berrythewa/clipstash/internal/types"
)

// Stats summarizes the history.
type Stats struct {
	Items      int                     `json:"items"`
	Pinned     int                     `json:"pinned"`
	Sensitive  int                     `json:"sensitive"`
	TotalBytes int                     `json:"total_bytes"`
	ByKind     map[types.EntryKind]int `json:"by_kind"`
	ByCategory map[types.Category]int  `json:"by_category"`
	Oldest     time.Time               `json:"oldest,omitempty"`
	Newest     time.Time               `json:"newest,omitempty"`
	MaxItems   int                     `json:"max_items"`
}

// Stats computes counters over the current history.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Items:      len(s.items),
		Pinned:     len(s.pinned),
		ByKind:     make(map[types.EntryKind]int),
		ByCategory: make(map[types.Category]int),
		MaxItems:   s.cfg.MaxItems,
	}
	for _, e := range s.items {
		st.ByKind[e.Kind]++
		st.ByCategory[e.Category]++
		st.TotalBytes += e.Size()
		if e.IsSensitive {
			st.Sensitive++
		}
		if st.Oldest.IsZero() || e.CreatedAt.Before(st.Oldest) {
			st.Oldest = e.CreatedAt
		}
		if e.CreatedAt.After(st.Newest) {
			st.Newest = e.CreatedAt
		}
	}
	return st
}
