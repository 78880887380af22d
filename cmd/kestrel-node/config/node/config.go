package nodeconfig

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

const (
	subsection = "node"

	// ReloadIntervalDefault is a default period of network map and
	// container files re-reading.
	ReloadIntervalDefault = time.Minute

	// NetmapCacheSizeDefault is a default number of past network maps
	// kept in memory.
	NetmapCacheSizeDefault = 10

	// PersistentStatePathDefault is a default path of the node state file.
	PersistentStatePathDefault = ".kestrel-storage-state"
)

// PublicKey returns the value of "public_key" config parameter
// from "node" section decoded from hex.
//
// Panics if the value is missing or is not a valid hex string.
func PublicKey(c *config.Config) []byte {
	v := config.String(c.Sub(subsection), "public_key")
	if v == "" {
		panic("node public key not set")
	}

	key, err := hex.DecodeString(v)
	if err != nil {
		panic(fmt.Errorf("invalid node public key: %w", err))
	}

	return key
}

// NetmapPath returns the value of "path" config parameter
// from "node.netmap" section.
//
// Panics if the value is not a non-empty string.
func NetmapPath(c *config.Config) string {
	v := config.String(c.Sub(subsection).Sub("netmap"), "path")
	if v == "" {
		panic("network map file path not set")
	}

	return v
}

// NetmapCacheSize returns the value of "cache_size" config parameter
// from "node.netmap" section.
//
// Returns NetmapCacheSizeDefault if the value is not a positive number.
func NetmapCacheSize(c *config.Config) int {
	v := config.IntSafe(c.Sub(subsection).Sub("netmap"), "cache_size")
	if v > 0 {
		return int(v)
	}

	return NetmapCacheSizeDefault
}

// ContainersPath returns the value of "path" config parameter
// from "node.containers" section.
//
// Panics if the value is not a non-empty string.
func ContainersPath(c *config.Config) string {
	v := config.String(c.Sub(subsection).Sub("containers"), "path")
	if v == "" {
		panic("container file path not set")
	}

	return v
}

// ReloadInterval returns the value of "reload_interval" config parameter
// from "node" section.
//
// Returns ReloadIntervalDefault if the value is not a positive duration.
func ReloadInterval(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "reload_interval")
	if v > 0 {
		return v
	}

	return ReloadIntervalDefault
}

// PersistentStatePath returns the value of "path" config parameter
// from "node.persistent_state" section.
//
// Returns PersistentStatePathDefault if the value is not a non-empty string.
func PersistentStatePath(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection).Sub("persistent_state"), "path")
	if v != "" {
		return v
	}

	return PersistentStatePathDefault
}
