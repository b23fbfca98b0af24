package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/berrythewa/clipstash/internal/types"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultDebounce     = 200 * time.Millisecond
	DefaultSuppressFor  = time.Second
)

// State is the poller's scan state.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateSuppressed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateSuppressed:
		return "suppressed"
	}
	return "unknown"
}

// Outcome describes what a single tick did.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCaptured
	OutcomeSuppressed
	OutcomeDebounced
	OutcomeExcluded
	OutcomeEmpty
	OutcomeRejected
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCaptured:
		return "captured"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeDebounced:
		return "debounced"
	case OutcomeExcluded:
		return "excluded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRejected:
		return "rejected"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

var ErrAlreadyRunning = errors.New("monitor already running")

// MonitorConfig tunes the poll loop. Zero values use the defaults.
type MonitorConfig struct {
	PollInterval time.Duration
	// Debounce below zero turns debouncing off.
	Debounce     time.Duration
	SuppressFor  time.Duration
	Clock        clock.Clock
	Logger       *zap.Logger
}

// Monitor polls the pasteboard change count and hands new content to the
// sink. Every accepted change has its count acknowledged even when the
// content is not inserted.
type Monitor struct {
	board  Pasteboard
	apps   ForegroundApp
	sink   Sink
	clock  clock.Clock
	logger *zap.Logger

	interval    time.Duration
	debounce    time.Duration
	suppressFor time.Duration

	mu              sync.Mutex
	state           State
	lastChange      int64
	lastProcessed   time.Time
	suppressedUntil time.Time
	status          types.MonitoringStatus

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a monitor. The current change count is taken as seen,
// so content already on the pasteboard at startup is not captured.
func NewMonitor(board Pasteboard, apps ForegroundApp, sink Sink, cfg MonitorConfig) *Monitor {
	if apps == nil {
		apps = noForeground{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	} else if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.SuppressFor <= 0 {
		cfg.SuppressFor = DefaultSuppressFor
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	m := &Monitor{
		board:       board,
		apps:        apps,
		sink:        sink,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		interval:    cfg.PollInterval,
		debounce:    cfg.Debounce,
		suppressFor: cfg.SuppressFor,
		lastChange:  board.ChangeCount(),
	}
	m.status.Backend = board.Name()
	m.status.LastChangeCount = m.lastChange
	return m
}

// Tick runs one scan of the state machine.
func (m *Monitor) Tick() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	suppressed := now.Before(m.suppressedUntil)

	count := m.board.ChangeCount()
	if count == m.lastChange {
		m.settleLocked(suppressed)
		return OutcomeUnchanged
	}
	m.lastChange = count
	m.status.LastChangeCount = count
	m.status.LastActivity = now

	if suppressed {
		m.state = StateSuppressed
		m.status.Ignored++
		m.logger.Debug("Ignoring self-initiated clipboard change", zap.Int64("change_count", count))
		return OutcomeSuppressed
	}

	if !m.lastProcessed.IsZero() && now.Sub(m.lastProcessed) < m.debounce {
		m.state = StateIdle
		m.status.Ignored++
		return OutcomeDebounced
	}
	m.lastProcessed = now
	m.state = StateScanning
	defer m.settleLocked(false)

	app, known := m.apps.Frontmost()
	if known && m.sink.IsExcluded(app) {
		m.status.Ignored++
		m.logger.Debug("Ignoring clipboard change from excluded app",
			zap.String("app", string(app.ID)))
		return OutcomeExcluded
	}

	raw, err := m.board.Read()
	if err != nil {
		m.status.ErrorCount++
		m.status.LastError = err.Error()
		m.logger.Warn("Failed to read clipboard", zap.Error(err))
		return OutcomeError
	}
	if raw == nil || raw.IsEmpty() {
		return OutcomeEmpty
	}
	if known && raw.SourceApp == "" {
		raw.SourceApp = app.Name
	}

	res := m.sink.Insert(*raw)
	if !res.Accepted() {
		m.status.Ignored++
		m.logger.Debug("Clipboard content rejected", zap.Stringer("status", res.Status))
		return OutcomeRejected
	}
	m.status.Captured++
	return OutcomeCaptured
}

func (m *Monitor) settleLocked(suppressed bool) {
	if suppressed {
		m.state = StateSuppressed
		return
	}
	m.state = StateIdle
}

// WriteEntry puts an entry back on the pasteboard. Changes seen during the
// following suppression window are not captured.
func (m *Monitor) WriteEntry(entry types.ClipboardEntry) error {
	m.mu.Lock()
	m.suppressedUntil = m.clock.Now().Add(m.suppressFor)
	m.state = StateSuppressed
	m.mu.Unlock()

	var err error
	switch entry.Kind {
	case types.KindImage:
		err = m.board.WriteImage(entry.ImageData)
	case types.KindURL:
		err = m.board.WriteText(entry.URL)
	default:
		err = m.board.WriteText(entry.Text)
	}
	if err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Start runs the poll loop until ctx is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	ticker := m.clock.Ticker(m.interval)

	m.setRunning(true)
	m.logger.Info("Clipboard monitor started",
		zap.String("backend", m.board.Name()),
		zap.Duration("interval", m.interval))

	go m.loop(ctx, ticker, m.done)
	return nil
}

func (m *Monitor) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			m.Tick()
		}
	}
}

// Stop cancels the loop and waits for it to exit. No tick runs after Stop
// returns. Calling Stop on a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	m.setRunning(false)
	m.logger.Info("Clipboard monitor stopped")
}

// State returns the current scan state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateSuppressed && !m.clock.Now().Before(m.suppressedUntil) {
		return StateIdle
	}
	return m.state
}

// Status returns monitoring counters.
func (m *Monitor) Status() types.MonitoringStatus {
	st := m.State()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.status
	out.State = st.String()
	return out
}

func (m *Monitor) setRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.IsRunning = running
}
