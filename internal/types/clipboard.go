package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EntryKind is the payload shape of a clipboard entry. It is derived once
// from the content when the entry is created.
type EntryKind string

const (
	KindPlainText EntryKind = "plain_text"
	KindURL       EntryKind = "url"
	KindImage     EntryKind = "image"
)

// Category is the secondary classification shown to users. The empty
// category means categorization was disabled when the entry was created.
type Category string

const (
	CategoryNone  Category = ""
	CategoryText  Category = "text"
	CategoryCode  Category = "code"
	CategoryURL   Category = "url"
	CategoryImage Category = "image"
)

// ParseCategory maps user input to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryNone:
		return CategoryNone, nil
	case CategoryText:
		return CategoryText, nil
	case CategoryCode:
		return CategoryCode, nil
	case CategoryURL:
		return CategoryURL, nil
	case CategoryImage:
		return CategoryImage, nil
	}
	return CategoryNone, fmt.Errorf("unknown category %q", s)
}

// ClipboardEntry is one captured clipboard item. Entries are immutable once
// created: a refreshed entry gets a new ID instead of being edited in place.
type ClipboardEntry struct {
	ID                string    `json:"id"`
	CreatedAt         time.Time `json:"createdAt"`
	Kind              EntryKind `json:"kind"`
	Category          Category  `json:"category,omitempty"`
	Text              string    `json:"textPayload,omitempty"`
	ImageData         []byte    `json:"imageBytes,omitempty"`
	URL               string    `json:"urlString,omitempty"`
	IsSensitive       bool      `json:"isSensitive"`
	SourceApplication string    `json:"sourceApplication,omitempty"`
}

var errInvalidEntry = errors.New("invalid clipboard entry")

// Validate checks the exactly-one-payload invariant.
func (e *ClipboardEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", errInvalidEntry)
	}
	populated := 0
	if e.Text != "" {
		populated++
	}
	if len(e.ImageData) > 0 {
		populated++
	}
	if e.URL != "" {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("%w: %s has %d payloads", errInvalidEntry, e.ID, populated)
	}

	switch e.Kind {
	case KindPlainText:
		if e.Text == "" {
			return fmt.Errorf("%w: %s is plain text without text payload", errInvalidEntry, e.ID)
		}
	case KindURL:
		if e.URL == "" {
			return fmt.Errorf("%w: %s is a url without url payload", errInvalidEntry, e.ID)
		}
	case KindImage:
		if len(e.ImageData) == 0 {
			return fmt.Errorf("%w: %s is an image without image payload", errInvalidEntry, e.ID)
		}
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", errInvalidEntry, e.ID, e.Kind)
	}
	return nil
}

// SearchableText is the text matched by history search. Images have none.
func (e *ClipboardEntry) SearchableText() string {
	switch e.Kind {
	case KindPlainText:
		return e.Text
	case KindURL:
		return e.URL
	}
	return ""
}

// Size returns the payload size in bytes.
func (e *ClipboardEntry) Size() int {
	return len(e.Text) + len(e.ImageData) + len(e.URL)
}

// SameContent reports whether two textual entries carry the same payload.
// Images never compare equal.
func (e *ClipboardEntry) SameContent(other *ClipboardEntry) bool {
	if e == nil || other == nil || e.Kind != other.Kind {
		return false
	}
	switch e.Kind {
	case KindPlainText:
		return e.Text == other.Text
	case KindURL:
		return e.URL == other.URL
	}
	return false
}

// RawContent is what a pasteboard read yields before classification.
type RawContent struct {
	Text      string
	Image     []byte
	SourceApp string
}

// IsEmpty reports whether there is nothing worth capturing.
func (r *RawContent) IsEmpty() bool {
	return len(r.Image) == 0 && strings.TrimSpace(r.Text) == ""
}

// FromEntry rebuilds raw content from a stored entry, for re-classification.
func FromEntry(e *ClipboardEntry) RawContent {
	raw := RawContent{SourceApp: e.SourceApplication}
	switch e.Kind {
	case KindImage:
		raw.Image = e.ImageData
	case KindURL:
		raw.Text = e.URL
	default:
		raw.Text = e.Text
	}
	return raw
}

// HistorySnapshot is a consistent copy of both history collections.
type HistorySnapshot struct {
	Items  []ClipboardEntry `json:"items"`
	Pinned []ClipboardEntry `json:"pinned"`
}

// AppID identifies an application (bundle identifier or window class).
type AppID string

// AppIdentity describes the foreground application at capture time.
type AppIdentity struct {
	ID   AppID  `json:"id"`
	Name string `json:"name"`
}

// AppSet is a set of excluded application identifiers.
type AppSet map[AppID]struct{}

// NewAppSet builds an AppSet, ignoring blank identifiers.
func NewAppSet(ids ...string) AppSet {
	set := make(AppSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[AppID(id)] = struct{}{}
	}
	return set
}

// Contains reports whether the application is in the set, by identifier or name.
func (s AppSet) Contains(app AppIdentity) bool {
	if len(s) == 0 {
		return false
	}
	if app.ID != "" {
		if _, ok := s[app.ID]; ok {
			return true
		}
	}
	if app.Name != "" {
		if _, ok := s[AppID(app.Name)]; ok {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s AppSet) Clone() AppSet {
	out := make(AppSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Slice returns the identifiers in no particular order.
func (s AppSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, string(k))
	}
	return out
}
