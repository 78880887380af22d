package shardconfig

import (
	"fmt"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	blobstorconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/blobstor"
	gcconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/gc"
	metabaseconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/metabase"
	writecacheconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/writecache"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
)

// Config is a wrapper over the config section
// which provides access to Shard configurations.
type Config config.Config

// SmallSizeDefault is a default size of small objects.
const SmallSizeDefault = 1 << 20

// From wraps config section into Config.
func From(c *config.Config) *Config {
	return (*Config)(c)
}

// Compress returns the value of "compress" config parameter.
//
// Returns false if the value is not a valid bool.
func (x *Config) Compress() bool {
	return config.BoolSafe(
		(*config.Config)(x),
		"compress",
	)
}

// UncompressableContentTypes returns the value of "compression_exclude_content_types" config parameter.
//
// Returns nil if the value is missing or is invalid.
func (x *Config) UncompressableContentTypes() []string {
	return config.StringSliceSafe(
		(*config.Config)(x),
		"compression_exclude_content_types")
}

// SmallObjectSize returns the value of "small_object_size" config parameter.
// Objects of smaller size are stored in the blobovnicza tree.
//
// Returns SmallSizeDefault if the value is not a positive number.
func (x *Config) SmallObjectSize() uint64 {
	l := config.SizeInBytesSafe(
		(*config.Config)(x),
		"small_object_size",
	)

	if l > 0 {
		return l
	}

	return SmallSizeDefault
}

// BlobStor returns "blobstor" subsection as a blobstorconfig.Config.
func (x *Config) BlobStor() *blobstorconfig.Config {
	return blobstorconfig.From(
		(*config.Config)(x).
			Sub("blobstor"),
	)
}

// Metabase returns "metabase" subsection as a metabaseconfig.Config.
func (x *Config) Metabase() *metabaseconfig.Config {
	return metabaseconfig.From(
		(*config.Config)(x).
			Sub("metabase"),
	)
}

// WriteCache returns "writecache" subsection as a writecacheconfig.Config.
func (x *Config) WriteCache() *writecacheconfig.Config {
	return writecacheconfig.From(
		(*config.Config)(x).
			Sub("writecache"),
	)
}

// GC returns "gc" subsection decoded into gcconfig.GC with defaults applied.
//
// Panics if the section can not be decoded.
func (x *Config) GC() gcconfig.GC {
	var res gcconfig.GC

	err := (*config.Config)(x).Sub("gc").Unmarshal(&res)
	if err != nil {
		panic(err)
	}

	res.Normalize()

	return res
}

// RefillMetabase returns the value of "resync_metabase" config parameter.
//
// Returns false if the value is not a valid bool.
func (x *Config) RefillMetabase() bool {
	return config.BoolSafe(
		(*config.Config)(x),
		"resync_metabase",
	)
}

// Mode return the value of "mode" config parameter.
//
// Panics if read the value is not one of predefined
// shard modes.
func (x *Config) Mode() mode.Mode {
	modeStr := config.StringSafe(
		(*config.Config)(x),
		"mode",
	)

	if modeStr == "" {
		return mode.ReadWrite
	}

	m, ok := mode.Parse(modeStr)
	if !ok {
		panic(fmt.Sprintf("unknown shard mode: %s", modeStr))
	}

	return m
}
