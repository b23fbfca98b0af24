package daemon

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/berrythewa/clipstash/internal/clipboard"
	"github.com/berrythewa/clipstash/internal/config"
	"github.com/berrythewa/clipstash/internal/ipc"
	"github.com/berrythewa/clipstash/internal/types"
)

type fakeBoard struct {
	mu      sync.Mutex
	count   int64
	text    string
	written []string
}

func (b *fakeBoard) Name() string { return "fake" }

func (b *fakeBoard) ChangeCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *fakeBoard) Read() (*types.RawContent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &types.RawContent{Text: b.text}, nil
}

func (b *fakeBoard) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	b.text = text
	b.written = append(b.written, text)
	return nil
}

func (b *fakeBoard) WriteImage([]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	return nil
}

func (b *fakeBoard) copy(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	b.text = text
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CLIPSTASH_CONFIG_DIR", dir+"/config")
	t.Setenv("CLIPSTASH_DATA_DIR", dir+"/data")
	t.Setenv("CLIPSTASH_SOCKET", dir+"/d.sock")
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	return cfg
}

type harness struct {
	d     *Daemon
	board *fakeBoard
	clock *clock.Mock
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	board := &fakeBoard{}

	d, err := New(cfg, zaptest.NewLogger(t), Deps{Board: board, Clock: mock})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return &harness{d: d, board: board, clock: mock}
}

func (h *harness) capture(t *testing.T, text string) string {
	t.Helper()
	res := h.d.Store().Insert(types.RawContent{Text: text})
	require.True(t, res.Accepted(), "insert %q: %s", text, res.Status)
	h.clock.Add(time.Second)
	return res.ID
}

func call(t *testing.T, d *Daemon, command string, args any) *ipc.Response {
	t.Helper()
	req, err := ipc.NewRequest(command, args)
	require.NoError(t, err)
	return d.Handle(context.Background(), req)
}

func TestHistorySurvivesRestart(t *testing.T) {
	cfg := testConfig(t)

	first := newHarness(t, cfg)
	id := first.capture(t, "persist me")
	_, err := first.d.Store().TogglePin(id)
	require.NoError(t, err)
	require.NoError(t, first.d.Close())

	_, err = os.Stat(cfg.SystemPaths.FingerprintFile)
	require.NoError(t, err, "fingerprint should be cached")

	second := newHarness(t, cfg)
	items := second.d.Store().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "persist me", items[0].Text)
	assert.True(t, second.d.Store().IsPinned(id))
}

func TestPlaintextStorageAfterDisablingEncryption(t *testing.T) {
	cfg := testConfig(t)
	h := newHarness(t, cfg)
	h.capture(t, "secretless")

	next := *cfg
	next.History.EncryptStorage = false
	require.NoError(t, h.d.UpdateConfiguration(&next))
	require.NoError(t, h.d.Close())

	reopened := newHarness(t, &next)
	require.Len(t, reopened.d.Store().Items(), 1)
}

func TestRecopyIsNotRecaptured(t *testing.T) {
	h := newHarness(t, testConfig(t))
	first := h.capture(t, "first")
	h.capture(t, "second")

	entry, err := h.d.Recopy(first)
	require.NoError(t, err)
	assert.Equal(t, "first", entry.Text)
	assert.NotEqual(t, first, entry.ID)
	assert.Equal(t, []string{"first"}, h.board.written)

	assert.Equal(t, clipboard.OutcomeSuppressed, h.d.Monitor().Tick())

	items := h.d.Store().Items()
	require.Len(t, items, 2)
	assert.Equal(t, entry.ID, items[0].ID)
	assert.Equal(t, "second", items[1].Text)
}

func TestMonitorFeedsStore(t *testing.T) {
	h := newHarness(t, testConfig(t))

	h.board.copy("from the pasteboard")
	assert.Equal(t, clipboard.OutcomeCaptured, h.d.Monitor().Tick())

	items := h.d.Store().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "from the pasteboard", items[0].Text)
}

func TestZeroDebounceCapturesEveryChange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.Debounce = 0
	h := newHarness(t, cfg)

	h.board.copy("one")
	assert.Equal(t, clipboard.OutcomeCaptured, h.d.Monitor().Tick())
	h.clock.Add(10 * time.Millisecond)
	h.board.copy("two")
	assert.Equal(t, clipboard.OutcomeCaptured, h.d.Monitor().Tick())
	assert.Len(t, h.d.Store().Items(), 2)
}

func TestSweepRemovesExpiredSensitive(t *testing.T) {
	h := newHarness(t, testConfig(t))
	h.capture(t, "mail me at someone@example.com")
	h.capture(t, "plain note")

	h.clock.Add(25 * time.Hour)
	assert.Equal(t, 1, h.d.Sweep())

	items := h.d.Store().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "plain note", items[0].Text)
}

func TestUpdateConfigurationTruncates(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.MaxItems = 50
	h := newHarness(t, cfg)
	for i := 0; i < 30; i++ {
		h.capture(t, "entry "+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	require.Len(t, h.d.Store().Items(), 30)

	next := *cfg
	next.History.MaxItems = 20
	require.NoError(t, h.d.UpdateConfiguration(&next))
	assert.Len(t, h.d.Store().Items(), 20)
	assert.Equal(t, 20, h.d.Store().Configuration().MaxItems)
}

func TestUpdateConfigurationLeavesCallerUntouched(t *testing.T) {
	cfg := testConfig(t)
	h := newHarness(t, cfg)
	bound := h.d.Status().Socket

	next := *cfg
	next.SystemPaths.SocketPath = "/elsewhere.sock"
	next.History.EncryptStorage = false
	require.NoError(t, h.d.UpdateConfiguration(&next))

	assert.Equal(t, "/elsewhere.sock", next.SystemPaths.SocketPath)
	assert.Equal(t, bound, h.d.Status().Socket)
	assert.False(t, h.d.Status().Encrypted)
}

func TestHandleHistoryCommands(t *testing.T) {
	h := newHarness(t, testConfig(t))
	goID := h.capture(t, "package main\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n")
	noteID := h.capture(t, "buy milk")
	h.capture(t, "https://example.com/docs")

	t.Run("list", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryList, ipc.ListArgs{Limit: 2})
		require.NoError(t, resp.Err())
		var entries []types.ClipboardEntry
		require.NoError(t, resp.DecodeData(&entries))
		require.Len(t, entries, 2)
		assert.Equal(t, types.KindURL, entries[0].Kind)
	})

	t.Run("category", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryList, ipc.ListArgs{Category: "code"})
		require.NoError(t, resp.Err())
		var entries []types.ClipboardEntry
		require.NoError(t, resp.DecodeData(&entries))
		require.Len(t, entries, 1)
		assert.Equal(t, goID, entries[0].ID)
	})

	t.Run("bad category", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryList, ipc.ListArgs{Category: "video"})
		assert.Error(t, resp.Err())
	})

	t.Run("search", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistorySearch, ipc.ListArgs{Query: "bml", Fuzzy: true})
		require.NoError(t, resp.Err())
		var entries []types.ClipboardEntry
		require.NoError(t, resp.DecodeData(&entries))
		require.Len(t, entries, 1)
		assert.Equal(t, noteID, entries[0].ID)
	})

	t.Run("pin", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryPin, ipc.IDArgs{ID: noteID})
		require.NoError(t, resp.Err())
		var res ipc.PinResult
		require.NoError(t, resp.DecodeData(&res))
		assert.True(t, res.Pinned)

		resp = call(t, h.d, ipc.CmdHistoryList, ipc.ListArgs{Pinned: true})
		var pinned []types.ClipboardEntry
		require.NoError(t, resp.DecodeData(&pinned))
		require.Len(t, pinned, 1)
	})

	t.Run("pin unknown", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryPin, ipc.IDArgs{ID: "nope"})
		assert.ErrorContains(t, resp.Err(), "nope")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, call(t, h.d, ipc.CmdHistoryDelete, ipc.IDArgs{ID: goID}).Err())
		_, ok := h.d.Store().Get(goID)
		assert.False(t, ok)
		assert.Error(t, call(t, h.d, ipc.CmdHistoryDelete, ipc.IDArgs{ID: goID}).Err())
	})

	t.Run("stats", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdHistoryStats, nil)
		require.NoError(t, resp.Err())
		var st struct {
			Items  int `json:"items"`
			Pinned int `json:"pinned"`
		}
		require.NoError(t, resp.DecodeData(&st))
		assert.Equal(t, 2, st.Items)
		assert.Equal(t, 1, st.Pinned)
	})

	t.Run("status", func(t *testing.T) {
		resp := call(t, h.d, ipc.CmdStatus, nil)
		require.NoError(t, resp.Err())
		var st StatusReport
		require.NoError(t, resp.DecodeData(&st))
		assert.Equal(t, os.Getpid(), st.PID)
		assert.Equal(t, "fake", st.Monitor.Backend)
		assert.True(t, st.Encrypted)
	})

	t.Run("flush", func(t *testing.T) {
		assert.NoError(t, call(t, h.d, ipc.CmdFlush, nil).Err())
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, call(t, h.d, ipc.CmdHistoryClear, nil).Err())
		assert.Empty(t, h.d.Store().Items())
		assert.Empty(t, h.d.Store().Pinned())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorContains(t, call(t, h.d, "reboot", nil).Err(), "unknown command")
	})
}

func TestHandleExportImport(t *testing.T) {
	src := newHarness(t, testConfig(t))
	src.capture(t, "one")
	src.capture(t, "two")

	resp := call(t, src.d, ipc.CmdExport, nil)
	require.NoError(t, resp.Err())
	var data []byte
	require.NoError(t, resp.DecodeData(&data))
	assert.True(t, json.Valid(data))

	dst := newHarness(t, testConfig(t))
	dst.capture(t, "existing")

	resp = call(t, dst.d, ipc.CmdImport, ipc.ImportArgs{Data: data})
	require.NoError(t, resp.Err())
	var res ipc.ImportResult
	require.NoError(t, resp.DecodeData(&res))
	assert.Equal(t, 2, res.Imported)

	items := dst.d.Store().Items()
	require.Len(t, items, 3)
	assert.Equal(t, "two", items[0].Text)
	assert.Equal(t, "existing", items[2].Text)

	// Importing the same export again adds nothing
	resp = call(t, dst.d, ipc.CmdImport, ipc.ImportArgs{Data: data})
	require.NoError(t, resp.DecodeData(&res))
	assert.Equal(t, 0, res.Imported)

	assert.Error(t, call(t, dst.d, ipc.CmdImport, ipc.ImportArgs{Data: []byte("{oops")}).Err())
}
