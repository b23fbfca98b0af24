package history

import (
	"time"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

// SweepExpired drops unpinned entries older than retention, and unpinned
// sensitive entries older than the sensitive retention whatever the general
// setting. A zero retention disables the general age limit. It returns the
// number of entries removed.
func (s *Store) SweepExpired(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	pinned := make(map[string]struct{}, len(s.pinned))
	for _, e := range s.pinned {
		pinned[e.ID] = struct{}{}
	}

	kept := make([]types.ClipboardEntry, 0, len(s.items))
	for _, e := range s.items {
		if _, ok := pinned[e.ID]; ok {
			kept = append(kept, e)
			continue
		}
		age := now.Sub(e.CreatedAt)
		if retention > 0 && age > retention {
			continue
		}
		if e.IsSensitive && age > s.cfg.SensitiveRetention {
			continue
		}
		kept = append(kept, e)
	}

	removed := len(s.items) - len(kept)
	if removed == 0 {
		return 0
	}
	s.items = kept
	s.logger.Info("Swept expired entries", zap.Int("removed", removed), zap.Duration("retention", retention))
	s.notifyLocked()
	return removed
}
