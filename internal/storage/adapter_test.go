package storage

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berrythewa/clipstash/internal/crypto"
	"github.com/berrythewa/clipstash/internal/types"
	"github.com/berrythewa/clipstash/pkg/compression"
)

// memBlobs is an in-memory BlobStore that records write order.
type memBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes []string
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (m *memBlobs) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	m.writes = append(m.writes, key)
	return nil
}

func (m *memBlobs) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memBlobs) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBlobs) Close() error { return nil }

func testKey(t *testing.T) *crypto.Key {
	t.Helper()
	key, err := crypto.DeriveKey("test-device")
	require.NoError(t, err)
	return key
}

func entry(id, text string) types.ClipboardEntry {
	return types.ClipboardEntry{
		ID:        id,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Kind:      types.KindPlainText,
		Category:  types.CategoryText,
		Text:      text,
	}
}

func sampleSnapshot() types.HistorySnapshot {
	return types.HistorySnapshot{
		Items: []types.ClipboardEntry{
			entry("2", "second"),
			{
				ID:        "img",
				CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
				Kind:      types.KindImage,
				Category:  types.CategoryImage,
				ImageData: []byte{0x89, 'P', 'N', 'G'},
			},
			entry("1", "first"),
		},
		Pinned: []types.ClipboardEntry{entry("1", "first")},
	}
}

func newTestAdapter(t *testing.T, cfg AdapterConfig) *Adapter {
	t.Helper()
	a, err := NewAdapter(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAdapterRoundTrip(t *testing.T) {
	for _, encrypt := range []bool{false, true} {
		t.Run(fmt.Sprintf("encrypt=%v", encrypt), func(t *testing.T) {
			blobs := newMemBlobs()
			a := newTestAdapter(t, AdapterConfig{Blobs: blobs, Key: testKey(t), Encrypt: encrypt})

			want := sampleSnapshot()
			require.NoError(t, a.Save(want))
			require.NoError(t, a.Flush())

			got, err := a.Load()
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
			}

			raw, _ := blobs.Get(itemsKey)
			assert.Equal(t, !encrypt, bytes.Contains(raw, []byte("second")))
		})
	}
}

func TestAdapterLegacyUnencryptedBlob(t *testing.T) {
	blobs := newMemBlobs()
	plain, err := encodeEntries([]types.ClipboardEntry{entry("1", "legacy")}, nil)
	require.NoError(t, err)
	require.NoError(t, blobs.Put(itemsKey, plain))

	a := newTestAdapter(t, AdapterConfig{Blobs: blobs, Key: testKey(t), Encrypt: true})
	got, err := a.Load()
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "legacy", got.Items[0].Text)
	assert.Empty(t, got.Pinned)
}

func TestAdapterEncryptedBlobWithEncryptionOff(t *testing.T) {
	blobs := newMemBlobs()
	sealed, err := encodeEntries([]types.ClipboardEntry{entry("1", "secret")}, testKey(t))
	require.NoError(t, err)
	require.NoError(t, blobs.Put(itemsKey, sealed))

	a := newTestAdapter(t, AdapterConfig{Blobs: blobs})
	got, err := a.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestAdapterCorruptCollectionsAreIndependent(t *testing.T) {
	blobs := newMemBlobs()
	require.NoError(t, blobs.Put(itemsKey, []byte("{not json")))
	good, err := encodeEntries([]types.ClipboardEntry{entry("p", "pinned")}, nil)
	require.NoError(t, err)
	require.NoError(t, blobs.Put(pinnedKey, good))

	a := newTestAdapter(t, AdapterConfig{Blobs: blobs})
	got, err := a.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	require.Len(t, got.Pinned, 1)
	assert.Equal(t, "p", got.Pinned[0].ID)
}

func TestAdapterCompressesLargeHistory(t *testing.T) {
	blobs := newMemBlobs()
	a := newTestAdapter(t, AdapterConfig{Blobs: blobs})

	snap := types.HistorySnapshot{Items: []types.ClipboardEntry{entry("big", strings.Repeat("clip ", 1000))}}
	require.NoError(t, a.Save(snap))
	require.NoError(t, a.Flush())

	raw, _ := blobs.Get(itemsKey)
	assert.True(t, compression.IsCompressed(raw))

	got, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Items, got.Items)
}

func TestAdapterDropsOversizedImages(t *testing.T) {
	blobs := newMemBlobs()
	a := newTestAdapter(t, AdapterConfig{Blobs: blobs, MaxPersistedImageBytes: 3})

	require.NoError(t, a.Save(sampleSnapshot()))
	require.NoError(t, a.Flush())

	got, err := a.Load()
	require.NoError(t, err)
	for _, e := range got.Items {
		assert.NotEqual(t, types.KindImage, e.Kind)
	}
	assert.Len(t, got.Items, 2)
}

func TestAdapterLastSnapshotWins(t *testing.T) {
	blobs := newMemBlobs()
	a := newTestAdapter(t, AdapterConfig{Blobs: blobs})

	for i := 0; i < 50; i++ {
		require.NoError(t, a.Save(types.HistorySnapshot{
			Items: []types.ClipboardEntry{entry(fmt.Sprint(i), fmt.Sprintf("v%d", i))},
		}))
	}
	require.NoError(t, a.Flush())

	got, err := a.Load()
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "v49", got.Items[0].Text)
}

func TestAdapterCloseFlushesAndRejects(t *testing.T) {
	blobs := newMemBlobs()
	a, err := NewAdapter(AdapterConfig{Blobs: blobs})
	require.NoError(t, err)

	require.NoError(t, a.Save(types.HistorySnapshot{Items: []types.ClipboardEntry{entry("1", "last")}}))
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	raw, _ := blobs.Get(itemsKey)
	assert.Contains(t, string(raw), "last")
	assert.ErrorIs(t, a.Save(types.HistorySnapshot{}), ErrClosed)
}

func TestAdapterToggleEncryption(t *testing.T) {
	blobs := newMemBlobs()
	a := newTestAdapter(t, AdapterConfig{Blobs: blobs, Key: testKey(t)})

	require.NoError(t, a.SetEncryption(true))
	require.NoError(t, a.Save(types.HistorySnapshot{Items: []types.ClipboardEntry{entry("1", "hidden")}}))
	require.NoError(t, a.Flush())

	raw, _ := blobs.Get(itemsKey)
	assert.NotContains(t, string(raw), "hidden")

	noKey := newTestAdapter(t, AdapterConfig{Blobs: newMemBlobs()})
	assert.Error(t, noKey.SetEncryption(true))
}

func TestAdapterWithBolt(t *testing.T) {
	bolt := newTestBolt(t)
	a := newTestAdapter(t, AdapterConfig{Blobs: bolt, Key: testKey(t), Encrypt: true})

	want := sampleSnapshot()
	require.NoError(t, a.Save(want))
	require.NoError(t, a.Flush())

	got, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
