package shard_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/stretchr/testify/require"
)

func TestShard_Delete(t *testing.T) {
	t.Run("without write cache", func(t *testing.T) {
		testShardDelete(t, false)
	})

	t.Run("with write cache", func(t *testing.T) {
		testShardDelete(t, true)
	})
}

func testShardDelete(t *testing.T, hasWriteCache bool) {
	sh := newShard(t, hasWriteCache)
	cnr := cidtest.ID()

	small := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(smallSize/2))
	big := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(smallSize*2))

	addrs := []oid.Address{small.Address(), big.Address()}

	require.NoError(t, sh.Put(small, nil))
	require.NoError(t, sh.Put(big, nil))

	size, err := sh.ContainerSize(cnr)
	require.NoError(t, err)
	require.EqualValues(t, small.PayloadSize()+big.PayloadSize(), size)

	// missing addresses are skipped
	require.NoError(t, sh.Delete(append(addrs, oidtest.Address())))

	for i := range addrs {
		_, err := sh.Get(addrs[i], false)
		require.True(t, shard.IsErrNotFound(err), err)

		_, err = sh.Get(addrs[i], true)
		require.True(t, shard.IsErrNotFound(err), err)
	}

	size, err = sh.ContainerSize(cnr)
	require.NoError(t, err)
	require.Zero(t, size)
}
