package natsconfig_test

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	natsconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/nats"
	configtest "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestNATSSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		n := natsconfig.Get(configtest.EmptyConfig())

		require.False(t, n.Enabled)
		require.Empty(t, n.Endpoint)
		require.Equal(t, natsconfig.TimeoutDefault, n.Timeout)
		require.Equal(t, natsconfig.QueueSizeDefault, n.QueueSize)
	})

	const path = "../../../../config/example/node"

	configtest.ForEachFileType(path, func(c *config.Config) {
		n := natsconfig.Get(c)

		require.True(t, n.Enabled)
		require.Equal(t, "nats://localhost:4222", n.Endpoint)
		require.Equal(t, 5*time.Second, n.Timeout)
		require.Equal(t, "objects", n.DefaultTopic)
		require.Equal(t, 512, n.QueueSize)
		require.Equal(t, "/path/to/nats/cert", n.TLS.Certificate)
		require.Equal(t, "/path/to/nats/key", n.TLS.Key)
		require.Equal(t, "/path/to/nats/ca", n.TLS.CA)
	})
}
