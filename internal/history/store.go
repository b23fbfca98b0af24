// Package history keeps the ordered clipboard history and the pinned set.
package history

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/classify"
	"github.com/berrythewa/clipstash/internal/sensitive"
	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/utils"
)

var (
	ErrNotFound = errors.New("entry not found")
	ErrImport   = errors.New("import failed")
)

// InsertStatus tells the caller what Insert did with the content.
type InsertStatus int

const (
	Inserted InsertStatus = iota
	Duplicate
	RejectedEmpty
	RejectedSensitive
)

func (s InsertStatus) String() string {
	switch s {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case RejectedEmpty:
		return "rejected_empty"
	case RejectedSensitive:
		return "rejected_sensitive"
	}
	return "unknown"
}

// InsertResult carries the entry id for Inserted and Duplicate.
type InsertResult struct {
	ID     string
	Status InsertStatus
}

// Accepted reports whether the content is now at the head of the history.
func (r InsertResult) Accepted() bool {
	return r.Status == Inserted || r.Status == Duplicate
}

// Observer receives a consistent snapshot after every mutation. It is called
// with the store lock held, so snapshots arrive in mutation order; it must
// not call back into the store.
type Observer interface {
	HistoryChanged(snapshot types.HistorySnapshot)
}

// Options configure a Store. Zero fields get defaults.
type Options struct {
	Config     Configuration
	Observer   Observer
	Clock      clock.Clock
	Logger     *zap.Logger
	Classifier *classify.Classifier
	Matcher    *sensitive.Matcher
	NewID      func() string
}

// Store owns the history. Items are newest first; pinned entries are kept
// oldest first so the oldest pin is evicted when the limit is hit.
type Store struct {
	mu     sync.Mutex
	items  []types.ClipboardEntry
	pinned []types.ClipboardEntry
	cfg    Configuration

	observer   Observer
	clock      clock.Clock
	logger     *zap.Logger
	classifier *classify.Classifier
	matcher    *sensitive.Matcher
	newID      func() string
}

// New creates an empty store.
func New(opts Options) *Store {
	s := &Store{
		cfg:        opts.Config.normalized(),
		observer:   opts.Observer,
		clock:      opts.Clock,
		logger:     opts.Logger,
		classifier: opts.Classifier,
		matcher:    opts.Matcher,
		newID:      opts.NewID,
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.classifier == nil {
		s.classifier = classify.New()
	}
	if s.matcher == nil {
		s.matcher = sensitive.NewMatcher()
	}
	if s.newID == nil {
		s.newID = utils.NewID
	}
	return s
}

// SetObserver replaces the mutation observer.
func (s *Store) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Insert classifies raw content and puts it at the head of the history.
// Policy rejections are reported in the result, not as errors.
func (s *Store) Insert(raw types.RawContent) InsertResult {
	if raw.IsEmpty() {
		return InsertResult{Status: RejectedEmpty}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cls := s.classifier.Classify(raw, classify.Options{EnableCategories: s.cfg.EnableCategories})
	entry := types.ClipboardEntry{
		CreatedAt:         s.clock.Now(),
		Kind:              cls.Kind,
		Category:          cls.Category,
		SourceApplication: raw.SourceApp,
	}
	switch cls.Kind {
	case types.KindImage:
		entry.ImageData = raw.Image
		if len(entry.ImageData) == 0 {
			entry.ImageData = []byte(raw.Text)
		}
	case types.KindURL:
		entry.URL = strings.TrimSpace(raw.Text)
	default:
		entry.Text = s.matcher.MaskIfConfigured(raw.Text)
	}

	if entry.Kind == types.KindPlainText && s.cfg.DetectSensitive {
		if rule, ok := s.matcher.Match(raw.Text); ok {
			if s.cfg.SkipSensitive {
				s.logger.Debug("Skipping sensitive content", zap.String("rule", rule.Name))
				return InsertResult{Status: RejectedSensitive}
			}
			entry.IsSensitive = true
		}
	}

	if len(s.items) > 0 && s.items[0].SameContent(&entry) {
		return InsertResult{ID: s.items[0].ID, Status: Duplicate}
	}

	entry.ID = s.newID()
	s.items = append([]types.ClipboardEntry{entry}, s.items...)
	s.truncateLocked()

	s.logger.Debug("Inserted clipboard entry",
		zap.String("id", entry.ID),
		zap.String("kind", string(entry.Kind)),
		zap.String("category", string(entry.Category)),
		zap.Bool("sensitive", entry.IsSensitive))
	s.notifyLocked()
	return InsertResult{ID: entry.ID, Status: Inserted}
}

// CopyToFront re-creates the entry with a fresh id, timestamp and category
// at the head of the history and returns it. A head entry with the same
// content is replaced rather than left next to the copy. A pin on either
// moves to the new entry.
func (s *Store) CopyToFront(id string) (types.ClipboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.items, id)
	var old types.ClipboardEntry
	switch {
	case idx >= 0:
		old = s.items[idx]
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	default:
		pidx := indexOf(s.pinned, id)
		if pidx < 0 {
			return types.ClipboardEntry{}, ErrNotFound
		}
		old = s.pinned[pidx]
	}

	fresh := old
	fresh.ID = s.newID()
	fresh.CreatedAt = s.clock.Now()
	// Categories follow the current setting, not the one at capture time.
	cls := s.classifier.Classify(types.FromEntry(&old), classify.Options{EnableCategories: s.cfg.EnableCategories})
	if cls.Kind == old.Kind {
		fresh.Category = cls.Category
	}

	replaced := []string{id}
	if len(s.items) > 0 && s.items[0].SameContent(&fresh) {
		replaced = append(replaced, s.items[0].ID)
		s.items = s.items[1:]
	}
	s.items = append([]types.ClipboardEntry{fresh}, s.items...)
	s.truncateLocked()
	s.repinLocked(fresh, replaced)

	s.notifyLocked()
	return fresh, nil
}

// repinLocked moves the first pin held by any of ids to entry and drops
// the rest, so the pinned set never holds the same content twice.
func (s *Store) repinLocked(entry types.ClipboardEntry, ids []string) {
	moved := false
	out := s.pinned[:0:0]
	for _, p := range s.pinned {
		if !slices.Contains(ids, p.ID) {
			out = append(out, p)
			continue
		}
		if !moved {
			out = append(out, entry)
			moved = true
		}
	}
	s.pinned = out
}

// TogglePin pins an entry from the history or unpins it. It returns the
// new pinned state.
func (s *Store) TogglePin(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pidx := indexOf(s.pinned, id); pidx >= 0 {
		s.pinned = append(s.pinned[:pidx:pidx], s.pinned[pidx+1:]...)
		s.notifyLocked()
		return false, nil
	}

	idx := indexOf(s.items, id)
	if idx < 0 {
		return false, ErrNotFound
	}
	s.pinned = append(s.pinned, s.items[idx])
	if over := len(s.pinned) - s.cfg.MaxPinned; over > 0 {
		s.pinned = append([]types.ClipboardEntry(nil), s.pinned[over:]...)
	}
	s.notifyLocked()
	return true, nil
}

// Delete removes an entry from both collections. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	if idx := indexOf(s.items, id); idx >= 0 {
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
		removed = true
	}
	if pidx := indexOf(s.pinned, id); pidx >= 0 {
		s.pinned = append(s.pinned[:pidx:pidx], s.pinned[pidx+1:]...)
		removed = true
	}
	if removed {
		s.notifyLocked()
	}
}

// Clear empties the history and the pinned set.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.pinned = nil
	s.notifyLocked()
}

// Get looks an entry up in either collection.
func (s *Store) Get(id string) (types.ClipboardEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := indexOf(s.items, id); idx >= 0 {
		return s.items[idx], true
	}
	if pidx := indexOf(s.pinned, id); pidx >= 0 {
		return s.pinned[pidx], true
	}
	return types.ClipboardEntry{}, false
}

// Items returns the history, newest first.
func (s *Store) Items() []types.ClipboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Pinned returns the pinned entries, oldest pin first.
func (s *Store) Pinned() []types.ClipboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.pinned)
}

// IsPinned reports whether id is pinned.
func (s *Store) IsPinned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.pinned, id) >= 0
}

// Snapshot returns a consistent copy of both collections.
func (s *Store) Snapshot() types.HistorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore replaces the contents with a persisted snapshot. Invalid entries
// are dropped and limits re-applied. Observers are not notified.
func (s *Store) Restore(snap types.HistorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.validEntries(snap.Items)
	s.pinned = s.validEntries(snap.Pinned)
	s.truncateLocked()
}

// Configuration returns the active settings.
func (s *Store) Configuration() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.ExcludedApps = cfg.ExcludedApps.Clone()
	return cfg
}

// UpdateConfiguration swaps the settings and re-applies the size limits.
func (s *Store) UpdateConfiguration(cfg Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg.normalized()
	before := len(s.items) + len(s.pinned)
	s.truncateLocked()
	if len(s.items)+len(s.pinned) != before {
		s.notifyLocked()
	}
}

// IsExcluded reports whether captures from app are ignored.
func (s *Store) IsExcluded(app types.AppIdentity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ExcludedApps.Contains(app)
}

func (s *Store) truncateLocked() {
	if len(s.items) > s.cfg.MaxItems {
		s.items = s.items[:s.cfg.MaxItems:s.cfg.MaxItems]
	}
	if over := len(s.pinned) - s.cfg.MaxPinned; over > 0 {
		s.pinned = append([]types.ClipboardEntry(nil), s.pinned[over:]...)
	}
}

func (s *Store) snapshotLocked() types.HistorySnapshot {
	return types.HistorySnapshot{
		Items:  clone(s.items),
		Pinned: clone(s.pinned),
	}
}

func (s *Store) notifyLocked() {
	if s.observer == nil {
		return
	}
	s.observer.HistoryChanged(s.snapshotLocked())
}

func (s *Store) validEntries(in []types.ClipboardEntry) []types.ClipboardEntry {
	out := make([]types.ClipboardEntry, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, e := range in {
		if err := e.Validate(); err != nil {
			s.logger.Warn("Dropping invalid entry", zap.Error(err))
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

func indexOf(entries []types.ClipboardEntry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(entries []types.ClipboardEntry) []types.ClipboardEntry {
	out := make([]types.ClipboardEntry, len(entries))
	copy(out, entries)
	return out
}
