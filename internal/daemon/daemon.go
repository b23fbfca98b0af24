// Package daemon wires storage, history, the clipboard monitor and the IPC
// server into the long-running clipstash process.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/clipboard"
	"github.com/berrythewa/clipstash/internal/config"
	"github.com/berrythewa/clipstash/internal/crypto"
	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/internal/storage"
	"github.com/berrythewa/clipstash/internal/types"
)

// SweepInterval is how often expired entries are removed.
const SweepInterval = time.Minute

// Deps lets callers substitute the platform pieces. Nil fields are built
// from the configuration.
type Deps struct {
	Blobs storage.BlobStore
	Key   *crypto.Key
	Board clipboard.Pasteboard
	Apps  clipboard.ForegroundApp
	Clock clock.Clock
}

// Daemon owns every long-lived component.
type Daemon struct {
	logger *zap.Logger
	clock  clock.Clock

	mu  sync.Mutex
	cfg *config.Config

	blobs     storage.BlobStore
	adapter   *storage.Adapter
	store     *history.Store
	monitor   *clipboard.Monitor
	startedAt time.Time

	closeOnce sync.Once
	closeErr  error
}

// New builds the daemon and restores the persisted history. Nothing runs
// until Run is called.
func New(cfg *config.Config, logger *zap.Logger, deps Deps) (*Daemon, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}

	d := &Daemon{
		logger: logger,
		clock:  deps.Clock,
		cfg:    cfg,
		blobs:  deps.Blobs,
	}

	if d.blobs == nil {
		bolt, err := storage.NewBoltStorage(storage.StorageConfig{
			DBPath: cfg.Storage.DBPath,
			Logger: logger.Named("storage"),
		})
		if err != nil {
			return nil, err
		}
		d.blobs = bolt
	}

	key := deps.Key
	if key == nil {
		fp, err := crypto.LoadOrCreateFingerprint(cfg.SystemPaths.FingerprintFile)
		if err != nil {
			d.blobs.Close()
			return nil, err
		}
		if key, err = crypto.DeriveKey(fp); err != nil {
			d.blobs.Close()
			return nil, err
		}
	}

	adapter, err := storage.NewAdapter(storage.AdapterConfig{
		Blobs:                  d.blobs,
		Key:                    key,
		Encrypt:                cfg.History.EncryptStorage,
		MaxPersistedImageBytes: cfg.Storage.MaxPersistedImageBytes,
		Logger:                 logger.Named("persist"),
	})
	if err != nil {
		d.blobs.Close()
		return nil, err
	}
	d.adapter = adapter

	d.store = history.New(history.Options{
		Config: cfg.HistoryConfiguration(),
		Clock:  d.clock,
		Logger: logger.Named("history"),
	})
	snap, err := adapter.Load()
	if err != nil {
		logger.Warn("Starting with empty history", zap.Error(err))
	} else {
		d.store.Restore(snap)
	}
	// Observe only after restoring so the load is not written straight back
	d.store.SetObserver(adapter)

	board := deps.Board
	if board == nil {
		if board, err = clipboard.NewSystemPasteboard(logger.Named("clipboard")); err != nil {
			d.Close()
			return nil, err
		}
	}
	apps := deps.Apps
	if apps == nil {
		apps = clipboard.NewForegroundApp(logger.Named("foreground"))
	}
	d.monitor = clipboard.NewMonitor(board, apps, d.store, clipboard.MonitorConfig{
		PollInterval: cfg.Monitor.PollInterval,
		Debounce:     monitorDebounce(cfg.Monitor.Debounce),
		SuppressFor:  cfg.Monitor.SuppressFor,
		Clock:        d.clock,
		Logger:       logger.Named("monitor"),
	})

	logger.Info("Daemon initialized",
		zap.Int("items", len(snap.Items)),
		zap.Int("pinned", len(snap.Pinned)),
		zap.Bool("encrypted", cfg.History.EncryptStorage),
		zap.String("backend", board.Name()))
	return d, nil
}

// Store exposes the history store.
func (d *Daemon) Store() *history.Store { return d.store }

// Monitor exposes the clipboard monitor.
func (d *Daemon) Monitor() *clipboard.Monitor { return d.monitor }

// Run starts monitoring, sweeping and the IPC server, and blocks until ctx
// is cancelled. Pending history is flushed before it returns.
func (d *Daemon) Run(ctx context.Context) error {
	d.startedAt = d.clock.Now()
	if err := d.monitor.Start(ctx); err != nil {
		return err
	}
	defer d.monitor.Stop()

	go d.sweepLoop(ctx)

	d.mu.Lock()
	socket := d.cfg.SystemPaths.SocketPath
	d.mu.Unlock()

	srv := ipc.NewServer(socket, d.Handle, d.logger.Named("ipc"))
	err := srv.Serve(ctx)

	d.logger.Info("Shutting down")
	if cerr := d.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	ticker := d.clock.Ticker(SweepInterval)
	defer ticker.Stop()
	d.Sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Sweep()
		}
	}
}

// Sweep removes expired entries now.
func (d *Daemon) Sweep() int {
	return d.store.SweepExpired(d.store.Configuration().Retention())
}

// Recopy moves an entry to the head of the history and writes it back to
// the pasteboard without recapturing it.
func (d *Daemon) Recopy(id string) (types.ClipboardEntry, error) {
	entry, err := d.store.CopyToFront(id)
	if err != nil {
		return types.ClipboardEntry{}, err
	}
	if err := d.monitor.WriteEntry(entry); err != nil {
		return entry, err
	}
	return entry, nil
}

// UpdateConfiguration applies new history settings to the store and the
// persistence layer.
func (d *Daemon) UpdateConfiguration(cfg *config.Config) error {
	if err := d.adapter.SetEncryption(cfg.History.EncryptStorage); err != nil {
		return err
	}
	d.store.UpdateConfiguration(cfg.HistoryConfiguration())

	next := *cfg
	next.History.ExcludedApps = slices.Clone(cfg.History.ExcludedApps)
	d.mu.Lock()
	// The socket is bound for the life of the process
	next.SystemPaths.SocketPath = d.cfg.SystemPaths.SocketPath
	d.cfg = &next
	d.mu.Unlock()

	// Re-save so the on-disk form follows the new encryption setting
	return d.adapter.Save(d.store.Snapshot())
}

// Reload re-reads the configuration file.
func (d *Daemon) Reload() error {
	d.mu.Lock()
	path := d.cfg.SystemPaths.ConfigFile
	d.mu.Unlock()

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return d.UpdateConfiguration(cfg)
}

// Flush waits for pending history writes.
func (d *Daemon) Flush() error {
	return d.adapter.Flush()
}

// Close persists pending history and releases storage. Safe to call twice.
func (d *Daemon) Close() error {
	d.closeOnce.Do(func() {
		var errs []error
		if d.monitor != nil {
			d.monitor.Stop()
		}
		if err := d.adapter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("flush history: %w", err))
		}
		if err := d.blobs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		d.closeErr = errors.Join(errs...)
	})
	return d.closeErr
}

// StatusReport is returned by the status command.
type StatusReport struct {
	PID       int                    `json:"pid"`
	StartedAt time.Time              `json:"started_at"`
	Uptime    string                 `json:"uptime"`
	Monitor   types.MonitoringStatus `json:"monitor"`
	Items     int                    `json:"items"`
	Pinned    int                    `json:"pinned"`
	Encrypted bool                   `json:"encrypted"`
	DBPath    string                 `json:"db_path"`
	Socket    string                 `json:"socket"`
}

// Status reports the daemon state.
func (d *Daemon) Status() StatusReport {
	d.mu.Lock()
	cfg := d.cfg
	d.mu.Unlock()

	st := d.store.Stats()
	report := StatusReport{
		PID:       os.Getpid(),
		StartedAt: d.startedAt,
		Monitor:   d.monitor.Status(),
		Items:     st.Items,
		Pinned:    st.Pinned,
		Encrypted: cfg.History.EncryptStorage,
		DBPath:    cfg.Storage.DBPath,
		Socket:    cfg.SystemPaths.SocketPath,
	}
	if !d.startedAt.IsZero() {
		report.Uptime = d.clock.Since(d.startedAt).Round(time.Second).String()
	}
	return report
}

// monitorDebounce maps the configured debounce onto the monitor's setting,
// where zero means the default rather than off.
func monitorDebounce(d time.Duration) time.Duration {
	if d <= 0 {
		return -1
	}
	return d
}
