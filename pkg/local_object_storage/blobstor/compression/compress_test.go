package compression

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	c := Config{Enabled: true}
	require.NoError(t, c.Init())
	t.Cleanup(func() { require.NoError(t, c.Close()) })

	t.Run("compressible", func(t *testing.T) {
		data := bytes.Repeat([]byte("kestrel"), 1024)

		compressed := c.Compress(data)
		require.True(t, c.IsCompressed(compressed))
		require.Less(t, len(compressed), len(data))

		res, err := c.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, res)
	})

	t.Run("random", func(t *testing.T) {
		data := make([]byte, 1024)
		_, _ = rand.Read(data)

		res := c.Compress(data)
		require.Equal(t, data, res)

		res, err := c.Decompress(res)
		require.NoError(t, err)
		require.Equal(t, data, res)
	})

	t.Run("disabled", func(t *testing.T) {
		var d Config
		require.NoError(t, d.Init())

		data := bytes.Repeat([]byte{1}, 1024)
		require.Equal(t, data, d.Compress(data))

		// decoder is always available
		res, err := d.Decompress(c.Compress(data))
		require.NoError(t, err)
		require.Equal(t, data, res)
	})
}

func TestNeedsCompression(t *testing.T) {
	c := Config{
		Enabled:                    true,
		UncompressableContentTypes: []string{"video/*", "*/zip", "image/jpeg"},
	}

	withCT := func(ct string) *object.Object {
		obj := object.New()
		if ct != "" {
			obj.SetAttributes(object.Attribute{Key: object.AttributeContentType, Value: ct})
		}
		return obj
	}

	require.True(t, c.NeedsCompression(withCT("")))
	require.True(t, c.NeedsCompression(withCT("text/plain")))
	require.False(t, c.NeedsCompression(withCT("video/mp4")))
	require.False(t, c.NeedsCompression(withCT("application/zip")))
	require.False(t, c.NeedsCompression(withCT("image/jpeg")))
	require.True(t, c.NeedsCompression(withCT("image/png")))

	c.Enabled = false
	require.False(t, c.NeedsCompression(withCT("text/plain")))

	require.Len(t, zstdFrameMagic, PrefixLength)
}
