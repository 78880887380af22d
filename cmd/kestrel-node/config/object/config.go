package objectconfig

import (
	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

// PutConfig is a wrapper over "put" config section which provides access
// to object put pipeline configuration of object service.
type PutConfig struct {
	cfg *config.Config
}

const (
	subsection = "object"

	putSubsection = "put"

	// PutPoolSizeDefault is a default value of routine pool size to
	// process object.Put requests in object service.
	PutPoolSizeDefault = 10

	// MaxPayloadSizeDefault is a default limit of the object payload size.
	MaxPayloadSizeDefault = 64 << 20
)

// Put returns structure that provides access to "put" subsection of
// "object" section.
func Put(c *config.Config) PutConfig {
	return PutConfig{
		c.Sub(subsection).Sub(putSubsection),
	}
}

// PoolSizeRemote returns the value of "pool_size_remote" config parameter.
//
// Returns PutPoolSizeDefault if the value is not a positive number.
func (g PutConfig) PoolSizeRemote() int {
	v := config.IntSafe(g.cfg, "pool_size_remote")
	if v > 0 {
		return int(v)
	}

	return PutPoolSizeDefault
}

// PoolSizeLocal returns the value of "pool_size_local" config parameter.
//
// Returns PutPoolSizeDefault if the value is not a positive number.
func (g PutConfig) PoolSizeLocal() int {
	v := config.IntSafe(g.cfg, "pool_size_local")
	if v > 0 {
		return int(v)
	}

	return PutPoolSizeDefault
}

// MaxPayloadSize returns the value of "max_payload_size" config parameter.
//
// Returns MaxPayloadSizeDefault if the value is not a positive number.
func (g PutConfig) MaxPayloadSize() uint64 {
	v := config.SizeInBytesSafe(g.cfg, "max_payload_size")
	if v > 0 {
		return v
	}

	return MaxPayloadSizeDefault
}
