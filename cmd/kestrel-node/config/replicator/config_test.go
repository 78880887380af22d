package replicatorconfig_test

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	replicatorconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/replicator"
	configtest "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestReplicatorSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r := replicatorconfig.Get(configtest.EmptyConfig())

		require.Equal(t, replicatorconfig.PutTimeoutDefault, r.PutTimeout)
	})

	const path = "../../../../config/example/node"

	configtest.ForEachFileType(path, func(c *config.Config) {
		r := replicatorconfig.Get(c)

		require.Equal(t, 15*time.Second, r.PutTimeout)
	})
}
