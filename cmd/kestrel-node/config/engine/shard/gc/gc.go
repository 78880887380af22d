package gcconfig

import (
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/internal"
)

const (
	// RemoverBatchSizeDefault is the default batch size for Shard GC's remover.
	RemoverBatchSizeDefault = 100
	// RemoverSleepIntervalDefault is the default sleep interval of Shard GC's remover.
	RemoverSleepIntervalDefault = time.Minute
)

// GC contains configuration for Shard GC.
type GC struct {
	RemoverBatchSize     internal.Size `mapstructure:"remover_batch_size"`
	RemoverSleepInterval time.Duration `mapstructure:"remover_sleep_interval"`
}

// Normalize replaces unset or invalid values with defaults.
func (g *GC) Normalize() {
	if g.RemoverBatchSize == 0 {
		g.RemoverBatchSize = RemoverBatchSizeDefault
	}

	if g.RemoverSleepInterval <= 0 {
		g.RemoverSleepInterval = RemoverSleepIntervalDefault
	}
}
