package engineconfig

import (
	"errors"
	"strconv"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	shardconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard"
)

const (
	subsection = "storage"

	// ShardPoolSizeDefault is a default value of routine pool size per-shard to
	// process object PUT operations in storage engine.
	ShardPoolSizeDefault = 20
)

// ErrNoShardConfigured is returned when at least 1 shard is required but none are found.
var ErrNoShardConfigured = errors.New("no shard configured")

// IterateShards iterates over subsections of "shard" subsection of "storage" section of c,
// wrap them into shardconfig.Config and passes to f. Shards are numbered from
// zero, iteration stops on the first missing number.
//
// Section names are expected to be consecutive integer numbers, starting from 0.
//
// Returns ErrNoShardConfigured if required is set and no shard is found.
// Returns the first error returned by f.
func IterateShards(c *config.Config, required bool, f func(*shardconfig.Config) error) error {
	c = c.Sub(subsection)

	def := c.Sub("shard").Sub("default")

	i := uint64(0)
	for ; ; i++ {
		si := c.Sub("shard").Sub(strconv.FormatUint(i, 10))
		if si.Value("metabase") == nil {
			break
		}

		si.SetDefault(def)

		if err := f(shardconfig.From(si)); err != nil {
			return err
		}
	}

	if i == 0 && required {
		return ErrNoShardConfigured
	}

	return nil
}

// ShardPoolSize returns the value of "shard_pool_size" config parameter from "storage" section.
//
// Returns ShardPoolSizeDefault if the value is not a positive number.
func ShardPoolSize(c *config.Config) uint32 {
	v := config.UintSafe(c.Sub(subsection), "shard_pool_size")
	if v > 0 {
		return uint32(v)
	}

	return ShardPoolSizeDefault
}

// ShardErrorThreshold returns the value of "shard_ro_error_threshold" config parameter from "storage" section.
//
// Returns 0 if the value is missing.
func ShardErrorThreshold(c *config.Config) uint32 {
	return uint32(config.UintSafe(c.Sub(subsection), "shard_ro_error_threshold"))
}
