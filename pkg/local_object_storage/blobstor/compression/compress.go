package compression

import (
	"bytes"
	"strings"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/klauspost/compress/zstd"
)

// PrefixLength is a length of compression marker in compressed data.
const PrefixLength = 4

// Config represents common compression-related configuration.
type Config struct {
	Enabled bool

	// UncompressableContentTypes lists Content-Type attribute values of
	// objects that are never compressed. "prefix*" and "*suffix" patterns
	// are supported.
	UncompressableContentTypes []string

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// zstdFrameMagic contains first 4 bytes of any compressed object.
var zstdFrameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Init initializes compression routines.
func (c *Config) Init() error {
	var err error

	if c.Enabled {
		c.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
	}

	c.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return err
	}

	return nil
}

// NeedsCompression returns true if the object should be compressed.
// For an object to be compressed 2 conditions must hold:
// 1. Compression is enabled in settings.
// 2. Object Content-Type is allowed for compression.
func (c *Config) NeedsCompression(obj *object.Object) bool {
	if c == nil || !c.Enabled || len(c.UncompressableContentTypes) == 0 {
		return c != nil && c.Enabled
	}

	ct := obj.Attribute(object.AttributeContentType)
	if ct == "" {
		return true
	}

	for _, value := range c.UncompressableContentTypes {
		var match bool

		switch {
		case len(value) > 0 && value[len(value)-1] == '*':
			match = strings.HasPrefix(ct, value[:len(value)-1])
		case len(value) > 0 && value[0] == '*':
			match = strings.HasSuffix(ct, value[1:])
		default:
			match = ct == value
		}

		if match {
			return false
		}
	}

	return true
}

// IsCompressed checks whether given data is compressed.
func (c *Config) IsCompressed(data []byte) bool {
	return len(data) >= PrefixLength && bytes.Equal(data[:PrefixLength], zstdFrameMagic)
}

// Decompress decompresses data if it starts with the magic
// and returns data untouched otherwise.
func (c *Config) Decompress(data []byte) ([]byte, error) {
	if c == nil || c.decoder == nil || !c.IsCompressed(data) {
		return data, nil
	}

	return c.decoder.DecodeAll(data, nil)
}

// Compress compresses data if compression is enabled
// and returns data untouched otherwise. Data is also returned untouched
// if the compressed form is not smaller.
func (c *Config) Compress(data []byte) []byte {
	if c == nil || !c.Enabled || c.encoder == nil {
		return data
	}

	maxSize := c.encoder.MaxEncodedSize(len(data))
	res := c.encoder.EncodeAll(data, make([]byte, 0, maxSize))

	if len(res) >= len(data) {
		return data
	}

	return res
}

// Close closes encoder and decoder, returns any error occurred.
func (c *Config) Close() error {
	var err error
	if c.encoder != nil {
		err = c.encoder.Close()
		c.encoder = nil
	}
	if c.decoder != nil {
		c.decoder.Close()
		c.decoder = nil
	}
	return err
}
