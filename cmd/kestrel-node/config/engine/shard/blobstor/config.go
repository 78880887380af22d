package blobstorconfig

import (
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	blobovniczaconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/blobstor/blobovnicza"
	fstreeconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard/blobstor/fstree"
)

// Config is a wrapper over the config section
// which provides access to BlobStor configurations.
type Config config.Config

// From wraps config section into Config.
func From(c *config.Config) *Config {
	return (*Config)(c)
}

// Blobovnicza returns "blobovnicza" subsection as a blobovniczaconfig.Config.
func (x *Config) Blobovnicza() *blobovniczaconfig.Config {
	return blobovniczaconfig.From(
		(*config.Config)(x).
			Sub("blobovnicza"),
	)
}

// FSTree returns "fstree" subsection as a fstreeconfig.Config.
func (x *Config) FSTree() *fstreeconfig.Config {
	return fstreeconfig.From(
		(*config.Config)(x).
			Sub("fstree"),
	)
}
