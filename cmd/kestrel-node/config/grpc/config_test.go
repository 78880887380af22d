package grpcconfig

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	apiclientconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/apiclient"
	objectconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/object"
	configtest "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/test"
	"github.com/stretchr/testify/require"
)

func TestGRPCSection(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		empty := configtest.EmptyConfig()

		require.Panics(t, func() { Endpoint(empty) })
		require.Nil(t, TLS(empty))

		require.Equal(t, apiclientconfig.DialTimeoutDefault, apiclientconfig.DialTimeout(empty))
		require.Equal(t, apiclientconfig.StreamTimeoutDefault, apiclientconfig.StreamTimeout(empty))

		put := objectconfig.Put(empty)
		require.Equal(t, objectconfig.PutPoolSizeDefault, put.PoolSizeRemote())
		require.EqualValues(t, objectconfig.MaxPayloadSizeDefault, put.MaxPayloadSize())
	})

	const path = "../../../../config/example/node"

	configtest.ForEachFileType(path, func(c *config.Config) {
		require.Equal(t, "s01.kestrel.devenv:8080", Endpoint(c))

		tls := TLS(c)
		require.NotNil(t, tls)
		require.Equal(t, "/path/to/cert", tls.CertificateFile())
		require.Equal(t, "/path/to/key", tls.KeyFile())

		require.Equal(t, 15*time.Second, apiclientconfig.DialTimeout(c))
		require.Equal(t, 20*time.Second, apiclientconfig.StreamTimeout(c))

		put := objectconfig.Put(c)
		require.Equal(t, 100, put.PoolSizeRemote())
		require.Equal(t, 50, put.PoolSizeLocal())
		require.EqualValues(t, 32<<20, put.MaxPayloadSize())
	})
}
