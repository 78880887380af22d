package policerconfig

import (
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
)

const (
	// HeadTimeoutDefault is a default object.Head request timeout in policer.
	HeadTimeoutDefault = 5 * time.Second

	// CacheSizeDefault is a default number of recently checked objects.
	CacheSizeDefault = 1024

	// CacheTimeDefault is a default period objects are not re-checked.
	CacheTimeDefault = 30 * time.Second

	// ObjectBatchSizeDefault is a default number of objects listed at once.
	ObjectBatchSizeDefault = 10

	// SleepDurationDefault is a default pause after the full storage walk.
	SleepDurationDefault = time.Second

	// PoolSizeDefault is a default number of concurrently checked objects.
	PoolSizeDefault = 10
)

// Policer contains configuration for policer.
type Policer struct {
	HeadTimeout     time.Duration `mapstructure:"head_timeout"`
	CacheSize       uint32        `mapstructure:"cache_size"`
	CacheTime       time.Duration `mapstructure:"cache_time"`
	ObjectBatchSize uint32        `mapstructure:"batch_size"`
	SleepDuration   time.Duration `mapstructure:"sleep_duration"`
	PoolSize        int           `mapstructure:"pool_size"`
}

// Get decodes "policer" section of c.
//
// Panics if the section can not be decoded.
func Get(c *config.Config) Policer {
	var p Policer
	if err := c.Sub("policer").Unmarshal(&p); err != nil {
		panic(err)
	}

	p.Normalize()

	return p
}

// Normalize sets default values for Policer fields if they are not set.
func (p *Policer) Normalize() {
	if p.HeadTimeout <= 0 {
		p.HeadTimeout = HeadTimeoutDefault
	}

	if p.CacheSize == 0 {
		p.CacheSize = CacheSizeDefault
	}

	if p.CacheTime <= 0 {
		p.CacheTime = CacheTimeDefault
	}

	if p.ObjectBatchSize == 0 {
		p.ObjectBatchSize = ObjectBatchSizeDefault
	}

	if p.SleepDuration <= 0 {
		p.SleepDuration = SleepDurationDefault
	}

	if p.PoolSize <= 0 {
		p.PoolSize = PoolSizeDefault
	}
}
