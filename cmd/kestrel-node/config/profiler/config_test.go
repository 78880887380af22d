package profilerconfig_test

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	profilerconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/profiler"
	configtest "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestProfilerSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.False(t, profilerconfig.Enabled(empty))
		require.Equal(t, profilerconfig.ShutdownTimeoutDefault, profilerconfig.ShutdownTimeout(empty))
		require.Equal(t, profilerconfig.AddressDefault, profilerconfig.Address(empty))
	})

	const path = "../../../../config/example/node"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.True(t, profilerconfig.Enabled(c))
		require.Equal(t, 15*time.Second, profilerconfig.ShutdownTimeout(c))
		require.Equal(t, "localhost:6060", profilerconfig.Address(c))
	})
}
