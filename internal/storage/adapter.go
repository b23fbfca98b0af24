package storage

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/crypto"
	"github.com/berrythewa/clipstash/internal/types"
)

const (
	itemsKey  = "items"
	pinnedKey = "pinned"

	// DefaultMaxPersistedImageBytes caps images written to disk.
	DefaultMaxPersistedImageBytes = 10 * 1024 * 1024
)

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	Blobs BlobStore
	// Key seals blobs when Encrypt is set. Required for encryption.
	Key                    *crypto.Key
	Encrypt                bool
	MaxPersistedImageBytes int
	Logger                 *zap.Logger
}

// Adapter persists history snapshots. Writes run on a single goroutine in
// the order they were requested; a snapshot still waiting when a newer one
// arrives is replaced by it.
type Adapter struct {
	blobs    BlobStore
	key      *crypto.Key
	maxImage int
	logger   *zap.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	encrypt  bool
	pending  *types.HistorySnapshot
	queued   uint64
	written  uint64
	closed   bool
	lastErr  error
	wake     chan struct{}
	stop     chan struct{}
	finished chan struct{}
}

// NewAdapter starts the writer goroutine.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Blobs == nil {
		return nil, fmt.Errorf("adapter needs a blob store")
	}
	if cfg.Encrypt && cfg.Key == nil {
		return nil, fmt.Errorf("encryption enabled without a key")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxPersistedImageBytes == 0 {
		cfg.MaxPersistedImageBytes = DefaultMaxPersistedImageBytes
	}

	a := &Adapter{
		blobs:    cfg.Blobs,
		key:      cfg.Key,
		maxImage: cfg.MaxPersistedImageBytes,
		logger:   cfg.Logger,
		encrypt:  cfg.Encrypt,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	a.cond = sync.NewCond(&a.mu)
	go a.writer()
	return a, nil
}

// HistoryChanged queues the snapshot for saving.
func (a *Adapter) HistoryChanged(snapshot types.HistorySnapshot) {
	if err := a.Save(snapshot); err != nil {
		a.logger.Warn("Dropping history snapshot", zap.Error(err))
	}
}

// Save queues a snapshot without blocking on disk I/O.
func (a *Adapter) Save(snapshot types.HistorySnapshot) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.pending = &snapshot
	a.queued++
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every snapshot queued before the call is on disk and
// returns the last write error, if any.
func (a *Adapter) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	target := a.queued
	for a.written < target {
		a.cond.Wait()
	}
	return a.lastErr
}

// SetEncryption toggles sealing for subsequent writes and loads.
func (a *Adapter) SetEncryption(enabled bool) error {
	if enabled && a.key == nil {
		return fmt.Errorf("encryption enabled without a key")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.encrypt = enabled
	return nil
}

// Load reads both collections. Each is decoded on its own, so a corrupt
// items blob does not lose the pinned set.
func (a *Adapter) Load() (types.HistorySnapshot, error) {
	key := a.activeKey()

	items, err := a.blobs.Get(itemsKey)
	if err != nil {
		return types.HistorySnapshot{}, err
	}
	pinned, err := a.blobs.Get(pinnedKey)
	if err != nil {
		return types.HistorySnapshot{}, err
	}

	snap := types.HistorySnapshot{
		Items:  decodeEntries(items, key, a.logger.With(zap.String("collection", itemsKey))),
		Pinned: decodeEntries(pinned, key, a.logger.With(zap.String("collection", pinnedKey))),
	}
	a.logger.Debug("Loaded history",
		zap.Int("items", len(snap.Items)),
		zap.Int("pinned", len(snap.Pinned)))
	return snap, nil
}

// Close writes anything still pending and stops the writer. The blob store
// is left open for its owner to close.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.stop)
	<-a.finished

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Adapter) activeKey() *crypto.Key {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.encrypt {
		return a.key
	}
	return nil
}

func (a *Adapter) writer() {
	defer close(a.finished)
	for {
		select {
		case <-a.wake:
			a.drain()
		case <-a.stop:
			a.drain()
			return
		}
	}
}

func (a *Adapter) drain() {
	a.mu.Lock()
	snap := a.pending
	gen := a.queued
	key := a.key
	if !a.encrypt {
		key = nil
	}
	a.pending = nil
	a.mu.Unlock()

	var err error
	if snap != nil {
		err = a.write(snap, key)
		if err != nil {
			a.logger.Error("Failed to persist history", zap.Error(err))
		}
	}

	a.mu.Lock()
	if snap != nil {
		a.lastErr = err
	}
	if gen > a.written {
		a.written = gen
	}
	a.cond.Broadcast()
	a.mu.Unlock()
}

func (a *Adapter) write(snap *types.HistorySnapshot, key *crypto.Key) error {
	items, err := encodeEntries(withoutLargeImages(snap.Items, a.maxImage), key)
	if err != nil {
		return err
	}
	pinned, err := encodeEntries(withoutLargeImages(snap.Pinned, a.maxImage), key)
	if err != nil {
		return err
	}
	if err := a.blobs.Put(itemsKey, items); err != nil {
		return fmt.Errorf("failed to save items: %w", err)
	}
	if err := a.blobs.Put(pinnedKey, pinned); err != nil {
		return fmt.Errorf("failed to save pinned: %w", err)
	}
	return nil
}
