// Package clipboard watches the system pasteboard and feeds new content
// into the history.
package clipboard

//go:generate mockgen -destination=mocks_test.go -package=clipboard . Sink

import (
	"fmt"
	"sync"

	atottoClip "github.com/atotto/clipboard"
	nativeClip "golang.design/x/clipboard"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/types"
)

// Pasteboard is the system clipboard as seen by the poller.
type Pasteboard interface {
	// ChangeCount increases whenever the pasteboard contents change.
	ChangeCount() int64
	// Read returns the current contents, or nil when there is nothing usable.
	Read() (*types.RawContent, error)
	WriteText(text string) error
	WriteImage(png []byte) error
	Name() string
}

// ForegroundApp reports the application that owns keyboard focus.
type ForegroundApp interface {
	Frontmost() (types.AppIdentity, bool)
}

// Sink receives captured content. history.Store implements it.
type Sink interface {
	Insert(raw types.RawContent) history.InsertResult
	IsExcluded(app types.AppIdentity) bool
}

// NewSystemPasteboard returns the native backend, or the text-only fallback
// when the native one cannot initialize.
func NewSystemPasteboard(logger *zap.Logger) (Pasteboard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := nativeClip.Init(); err != nil {
		if atottoClip.Unsupported {
			return nil, fmt.Errorf("no clipboard backend available: %w", err)
		}
		logger.Warn("Native clipboard unavailable, using text-only fallback", zap.Error(err))
		return NewAtottoPasteboard(), nil
	}
	return newNativePasteboard(logger), nil
}

// changeCounter turns content hashes into a monotonic change count for
// backends that have no native one.
type changeCounter struct {
	mu    sync.Mutex
	last  string
	count int64
}

func (c *changeCounter) observe(hash string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hash != c.last {
		c.last = hash
		c.count++
	}
	return c.count
}

type noForeground struct{}

func (noForeground) Frontmost() (types.AppIdentity, bool) {
	return types.AppIdentity{}, false
}
