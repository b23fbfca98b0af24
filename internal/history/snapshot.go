package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

const exportVersion = 1

// exportDocument is the on-disk export format. Import also accepts a bare
// JSON array of entries.
type exportDocument struct {
	Version    int                    `json:"version"`
	ExportedAt time.Time              `json:"exportedAt"`
	Items      []types.ClipboardEntry `json:"items"`
}

// ExportSnapshot serializes the non-image history entries in display order.
func (s *Store) ExportSnapshot() ([]byte, error) {
	s.mu.Lock()
	doc := exportDocument{
		Version:    exportVersion,
		ExportedAt: s.clock.Now().UTC(),
		Items:      make([]types.ClipboardEntry, 0, len(s.items)),
	}
	for _, e := range s.items {
		if e.Kind == types.KindImage {
			continue
		}
		doc.Items = append(doc.Items, e)
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// ImportSnapshot puts exported entries ahead of the current history,
// skipping ids already present and images. Only the newest MaxItems entries
// of the export are considered, since older ones would be evicted at once;
// importing the same export again adds nothing. It returns the number of
// entries added. Malformed input leaves the history untouched.
func (s *Store) ImportSnapshot(data []byte) (int, error) {
	entries, err := decodeExport(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrImport, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]types.ClipboardEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Kind == types.KindImage {
			continue
		}
		if err := e.Validate(); err != nil {
			s.logger.Warn("Skipping invalid imported entry", zap.Error(err))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		candidates = append(candidates, e)
	}
	if len(candidates) > s.cfg.MaxItems {
		candidates = candidates[:s.cfg.MaxItems]
	}

	known := make(map[string]struct{}, len(s.items)+len(s.pinned))
	for _, e := range s.items {
		known[e.ID] = struct{}{}
	}
	for _, e := range s.pinned {
		known[e.ID] = struct{}{}
	}

	merged := make([]types.ClipboardEntry, 0, len(candidates))
	for _, e := range candidates {
		if _, ok := known[e.ID]; ok {
			continue
		}
		merged = append(merged, e)
	}
	if len(merged) == 0 {
		return 0, nil
	}

	s.items = append(merged, s.items...)
	s.truncateLocked()
	s.notifyLocked()
	s.logger.Info("Imported history entries", zap.Int("count", len(merged)))
	return len(merged), nil
}

func decodeExport(data []byte) ([]types.ClipboardEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if trimmed[0] == '[' {
		var entries []types.ClipboardEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var doc exportDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if doc.Version > exportVersion {
		return nil, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	return doc.Items, nil
}
