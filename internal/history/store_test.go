package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipstash/internal/types"
)

type recordingObserver struct {
	mu        sync.Mutex
	snapshots []types.HistorySnapshot
}

func (r *recordingObserver) HistoryChanged(s types.HistorySnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recordingObserver) last() types.HistorySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[len(r.snapshots)-1]
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, mutate func(*Configuration)) (*Store, *clock.Mock, *recordingObserver) {
	t.Helper()
	cfg := DefaultConfiguration()
	if mutate != nil {
		mutate(&cfg)
	}
	clk := clock.NewMock()
	clk.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	obs := &recordingObserver{}
	s := New(Options{Config: cfg, Observer: obs, Clock: clk, NewID: sequentialIDs()})
	return s, clk, obs
}

func text(s string) types.RawContent { return types.RawContent{Text: s} }

func ids(entries []types.ClipboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func texts(entries []types.ClipboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SearchableText()
	}
	return out
}

func TestInsertNewestFirst(t *testing.T) {
	s, _, obs := newTestStore(t, nil)

	r := s.Insert(text("a"))
	require.Equal(t, Inserted, r.Status)
	s.Insert(text("b"))
	s.Insert(text("c"))

	assert.Equal(t, []string{"c", "b", "a"}, texts(s.Items()))
	assert.Equal(t, 3, obs.count())
	if diff := cmp.Diff(s.Snapshot(), obs.last()); diff != "" {
		t.Errorf("observer snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertCapacity(t *testing.T) {
	s, _, _ := newTestStore(t, func(c *Configuration) { c.MaxItems = 2 })

	s.Insert(text("a"))
	s.Insert(text("b"))
	s.Insert(text("c"))

	assert.Equal(t, []string{"c", "b"}, texts(s.Items()))
}

func TestInsertAdjacentDuplicate(t *testing.T) {
	s, _, obs := newTestStore(t, nil)

	first := s.Insert(text("x"))
	second := s.Insert(text("x"))

	assert.Equal(t, Duplicate, second.Status)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, 1, obs.count())

	s.Insert(text("y"))
	s.Insert(text("x"))
	assert.Equal(t, []string{"x", "y", "x"}, texts(s.Items()))
}

func TestInsertEmptyRejected(t *testing.T) {
	s, _, obs := newTestStore(t, nil)

	assert.Equal(t, RejectedEmpty, s.Insert(text("  \n\t")).Status)
	assert.Equal(t, RejectedEmpty, s.Insert(types.RawContent{}).Status)
	assert.Empty(t, s.Items())
	assert.Equal(t, 0, obs.count())
}

func TestInsertSensitive(t *testing.T) {
	t.Run("flagged", func(t *testing.T) {
		s, _, _ := newTestStore(t, nil)
		r := s.Insert(text("card 4111 1111 1111 1111"))
		require.Equal(t, Inserted, r.Status)

		e, ok := s.Get(r.ID)
		require.True(t, ok)
		assert.True(t, e.IsSensitive)
		assert.Equal(t, "card 4111 1111 1111 1111", e.Text)
	})

	t.Run("skipped", func(t *testing.T) {
		s, _, obs := newTestStore(t, func(c *Configuration) { c.SkipSensitive = true })
		r := s.Insert(text("password=hunter2"))
		assert.Equal(t, RejectedSensitive, r.Status)
		assert.Empty(t, s.Items())
		assert.Equal(t, 0, obs.count())
	})

	t.Run("detection off", func(t *testing.T) {
		s, _, _ := newTestStore(t, func(c *Configuration) {
			c.DetectSensitive = false
			c.SkipSensitive = true
		})
		r := s.Insert(text("password=hunter2"))
		require.Equal(t, Inserted, r.Status)
		e, _ := s.Get(r.ID)
		assert.False(t, e.IsSensitive)
	})

	t.Run("urls are not checked", func(t *testing.T) {
		s, _, _ := newTestStore(t, func(c *Configuration) { c.SkipSensitive = true })
		r := s.Insert(text("https://10.0.0.1/admin"))
		require.Equal(t, Inserted, r.Status)
		e, _ := s.Get(r.ID)
		assert.Equal(t, types.KindURL, e.Kind)
		assert.False(t, e.IsSensitive)
	})
}

func TestInsertClassifies(t *testing.T) {
	s, clk, _ := newTestStore(t, nil)

	u := s.Insert(types.RawContent{Text: " https://example.com ", SourceApp: "Safari"})
	img := s.Insert(types.RawContent{Image: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}})
	code := s.Insert(text("package main\n\nfunc main() {\n\tfmt.Println(1)\n}\n"))

	e, _ := s.Get(u.ID)
	assert.Equal(t, types.ClipboardEntry{
		ID:                u.ID,
		CreatedAt:         clk.Now(),
		Kind:              types.KindURL,
		Category:          types.CategoryURL,
		URL:               "https://example.com",
		SourceApplication: "Safari",
	}, e)

	e, _ = s.Get(img.ID)
	assert.Equal(t, types.KindImage, e.Kind)
	assert.Equal(t, types.CategoryImage, e.Category)

	e, _ = s.Get(code.ID)
	assert.Equal(t, types.CategoryCode, e.Category)

	s.UpdateConfiguration(func() Configuration {
		c := s.Configuration()
		c.EnableCategories = false
		return c
	}())
	plain := s.Insert(text("just words"))
	e, _ = s.Get(plain.ID)
	assert.Equal(t, types.CategoryNone, e.Category)
}

func TestCopyToFront(t *testing.T) {
	s, clk, _ := newTestStore(t, nil)

	a := s.Insert(text("a"))
	s.Insert(text("b"))
	s.Insert(text("c"))
	clk.Add(time.Minute)

	fresh, err := s.CopyToFront(a.ID)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, fresh.ID)
	assert.Equal(t, clk.Now(), fresh.CreatedAt)
	assert.Equal(t, []string{"a", "c", "b"}, texts(s.Items()))
	_, ok := s.Get(a.ID)
	assert.False(t, ok)

	_, err = s.CopyToFront("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCopyToFrontReclassifies(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	code := "package main\n\nfunc main() {\n\tfmt.Println(1)\n}\n"
	res := s.Insert(text(code))
	before, ok := s.Get(res.ID)
	require.True(t, ok)
	assert.Equal(t, types.CategoryCode, before.Category)

	cfg := s.Configuration()
	cfg.EnableCategories = false
	s.UpdateConfiguration(cfg)

	fresh, err := s.CopyToFront(res.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CategoryNone, fresh.Category)
	assert.Equal(t, code, fresh.Text)
}

func TestCopyToFrontKeepsPin(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	a := s.Insert(text("a"))
	s.Insert(text("b"))
	_, err := s.TogglePin(a.ID)
	require.NoError(t, err)

	fresh, err := s.CopyToFront(a.ID)
	require.NoError(t, err)
	assert.True(t, s.IsPinned(fresh.ID))
	assert.Equal(t, []string{fresh.ID}, ids(s.Pinned()))
}

func TestCopyToFrontAbsorbsIdenticalHead(t *testing.T) {
	t.Run("from history", func(t *testing.T) {
		s, _, _ := newTestStore(t, nil)
		oldest := s.Insert(text("x"))
		s.Insert(text("y"))
		head := s.Insert(text("x"))

		fresh, err := s.CopyToFront(oldest.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, texts(s.Items()))
		assert.Equal(t, fresh.ID, s.Items()[0].ID)
		_, ok := s.Get(head.ID)
		assert.False(t, ok)
	})

	t.Run("pinned only", func(t *testing.T) {
		s, _, _ := newTestStore(t, func(c *Configuration) { c.MaxItems = 2 })
		pinned := s.Insert(text("x"))
		_, err := s.TogglePin(pinned.ID)
		require.NoError(t, err)
		s.Insert(text("y"))
		head := s.Insert(text("x"))
		_, err = s.TogglePin(head.ID)
		require.NoError(t, err)
		_, ok := s.Get(pinned.ID)
		require.True(t, ok, "still reachable through the pinned set")

		fresh, err := s.CopyToFront(pinned.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, texts(s.Items()))
		assert.Equal(t, []string{fresh.ID}, ids(s.Pinned()), "both pins collapse onto the copy")
	})
}

func TestTogglePin(t *testing.T) {
	s, _, _ := newTestStore(t, nil)

	a := s.Insert(text("a"))
	pinned, err := s.TogglePin(a.ID)
	require.NoError(t, err)
	assert.True(t, pinned)
	assert.Equal(t, []string{a.ID}, ids(s.Pinned()))
	assert.Len(t, s.Items(), 1, "pinning keeps the entry in the history")

	pinned, err = s.TogglePin(a.ID)
	require.NoError(t, err)
	assert.False(t, pinned)
	assert.Empty(t, s.Pinned())

	_, err = s.TogglePin("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTogglePinEvictsOldest(t *testing.T) {
	s, _, _ := newTestStore(t, func(c *Configuration) { c.MaxPinned = 2 })

	a := s.Insert(text("a"))
	b := s.Insert(text("b"))
	c := s.Insert(text("c"))
	for _, id := range []string{a.ID, b.ID, c.ID} {
		_, err := s.TogglePin(id)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{b.ID, c.ID}, ids(s.Pinned()))
}

func TestPinnedSurvivesEviction(t *testing.T) {
	s, _, _ := newTestStore(t, func(c *Configuration) { c.MaxItems = 2 })

	a := s.Insert(text("a"))
	_, err := s.TogglePin(a.ID)
	require.NoError(t, err)
	s.Insert(text("b"))
	s.Insert(text("c"))

	assert.Equal(t, []string{"c", "b"}, texts(s.Items()))
	assert.Equal(t, []string{"a"}, texts(s.Pinned()))

	fresh, err := s.CopyToFront(a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, texts(s.Items()))
	assert.Equal(t, []string{fresh.ID}, ids(s.Pinned()))
}

func TestDeleteAndClear(t *testing.T) {
	s, _, obs := newTestStore(t, nil)

	a := s.Insert(text("a"))
	b := s.Insert(text("b"))
	_, err := s.TogglePin(a.ID)
	require.NoError(t, err)

	s.Delete(a.ID)
	assert.Equal(t, []string{b.ID}, ids(s.Items()))
	assert.Empty(t, s.Pinned())

	before := obs.count()
	s.Delete("missing")
	assert.Equal(t, before, obs.count())

	_, err = s.TogglePin(b.ID)
	require.NoError(t, err)
	s.Clear()
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Pinned())
}

func TestUpdateConfigurationTruncates(t *testing.T) {
	s, _, obs := newTestStore(t, nil)
	for i := 0; i < 30; i++ {
		s.Insert(text(fmt.Sprintf("entry %d", i)))
	}
	require.Len(t, s.Items(), 30)

	before := obs.count()
	cfg := s.Configuration()
	cfg.MaxItems = 20
	s.UpdateConfiguration(cfg)

	items := s.Items()
	require.Len(t, items, 20)
	assert.Equal(t, "entry 29", items[0].Text)
	assert.Equal(t, before+1, obs.count())
}

func TestIsExcluded(t *testing.T) {
	s, _, _ := newTestStore(t, func(c *Configuration) {
		c.ExcludedApps = types.NewAppSet("com.1password.1password")
	})
	assert.True(t, s.IsExcluded(types.AppIdentity{ID: "com.1password.1password"}))
	assert.False(t, s.IsExcluded(types.AppIdentity{ID: "com.apple.Safari"}))
}

func TestRestoreDropsInvalid(t *testing.T) {
	s, _, obs := newTestStore(t, func(c *Configuration) { c.MaxItems = 2 })
	now := time.Now()

	s.Restore(types.HistorySnapshot{
		Items: []types.ClipboardEntry{
			{ID: "1", CreatedAt: now, Kind: types.KindPlainText, Text: "one"},
			{ID: "2", CreatedAt: now, Kind: types.KindPlainText},
			{ID: "1", CreatedAt: now, Kind: types.KindPlainText, Text: "dup"},
			{ID: "3", CreatedAt: now, Kind: types.KindURL, URL: "https://a.b"},
			{ID: "4", CreatedAt: now, Kind: types.KindPlainText, Text: "four"},
		},
		Pinned: []types.ClipboardEntry{
			{ID: "9", CreatedAt: now, Kind: types.KindPlainText, Text: "nine"},
		},
	})

	assert.Equal(t, []string{"1", "3"}, ids(s.Items()))
	assert.Equal(t, []string{"9"}, ids(s.Pinned()))
	assert.Equal(t, 0, obs.count())
}

func TestConcurrentInserts(t *testing.T) {
	s := New(Options{Config: Configuration{MaxItems: 100}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Insert(text(fmt.Sprintf("value %d", i)))
		}(i)
	}
	wg.Wait()

	items := s.Items()
	assert.Len(t, items, 50)
	seen := map[string]bool{}
	for _, e := range items {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestStats(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	s.Insert(text("hello"))
	s.Insert(text("https://example.com"))
	r := s.Insert(text("me@example.com"))
	_, err := s.TogglePin(r.ID)
	require.NoError(t, err)

	st := s.Stats()
	assert.Equal(t, 3, st.Items)
	assert.Equal(t, 1, st.Pinned)
	assert.Equal(t, 1, st.Sensitive)
	assert.Equal(t, 2, st.ByKind[types.KindPlainText])
	assert.Equal(t, 1, st.ByCategory[types.CategoryURL])
	assert.Equal(t, len("hello")+len("https://example.com")+len("me@example.com"), st.TotalBytes)
}
