package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmallDataUntouched(t *testing.T) {
	data := []byte(`[{"id":"1"}]`)
	out, err := Compress(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.False(t, IsCompressed(out))
}

func TestRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"textPayload":"hello"},`), 200)
	out, err := Compress(data)
	require.NoError(t, err)
	assert.True(t, IsCompressed(out))
	assert.Less(t, len(out), len(data))

	back, err := Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestDecompressCorrupt(t *testing.T) {
	_, err := Decompress([]byte{0x1f, 0x8b, 0x00})
	assert.Error(t, err)
}
