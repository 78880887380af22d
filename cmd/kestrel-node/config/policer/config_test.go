package policerconfig_test

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	policerconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/policer"
	configtest "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestPolicerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := policerconfig.Get(configtest.EmptyConfig())

		require.Equal(t, policerconfig.Policer{
			HeadTimeout:     policerconfig.HeadTimeoutDefault,
			CacheSize:       policerconfig.CacheSizeDefault,
			CacheTime:       policerconfig.CacheTimeDefault,
			ObjectBatchSize: policerconfig.ObjectBatchSizeDefault,
			SleepDuration:   policerconfig.SleepDurationDefault,
			PoolSize:        policerconfig.PoolSizeDefault,
		}, p)
	})

	const path = "../../../../config/example/node"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.Equal(t, policerconfig.Policer{
			HeadTimeout:     15 * time.Second,
			CacheSize:       2048,
			CacheTime:       time.Minute,
			ObjectBatchSize: 20,
			SleepDuration:   2 * time.Second,
			PoolSize:        8,
		}, policerconfig.Get(c))
	})
}
