package replicatorconfig

import (
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

// PutTimeoutDefault is the default timeout of object put request in replicator.
const PutTimeoutDefault = time.Minute

// Replicator contains configuration for replicator.
type Replicator struct {
	PutTimeout time.Duration `mapstructure:"put_timeout"`
}

// Get decodes "replicator" section of c.
//
// Panics if the section can not be decoded.
func Get(c *config.Config) Replicator {
	var r Replicator
	if err := c.Sub("replicator").Unmarshal(&r); err != nil {
		panic(err)
	}

	r.Normalize()

	return r
}

// Normalize sets default values for Replicator fields if they are not set.
func (r *Replicator) Normalize() {
	if r.PutTimeout <= 0 {
		r.PutTimeout = PutTimeoutDefault
	}
}
