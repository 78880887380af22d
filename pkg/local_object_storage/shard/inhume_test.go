package shard_test

import (
	"context"
	"testing"
	"time"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/stretchr/testify/require"
)

func TestShard_Inhume(t *testing.T) {
	t.Run("without write cache", func(t *testing.T) {
		testShardInhume(t, false)
	})

	t.Run("with write cache", func(t *testing.T) {
		testShardInhume(t, true)
	})
}

func testShardInhume(t *testing.T, hasWriteCache bool) {
	sh := newShard(t, hasWriteCache)
	cnr := cidtest.ID()

	obj := objecttest.ObjectWithCID(cnr)
	addr := obj.Address()

	require.NoError(t, sh.Put(obj, nil))

	_, err := sh.Get(addr, false)
	require.NoError(t, err)

	require.NoError(t, sh.Inhume(oidtest.AddressWithContainer(cnr), 10, addr))

	_, err = sh.Get(addr, false)
	require.True(t, shard.IsErrRemoved(err), err)

	_, err = sh.Head(addr, false)
	require.True(t, shard.IsErrRemoved(err), err)

	_, err = sh.Exists(addr)
	require.True(t, shard.IsErrRemoved(err), err)

	// removed objects are not accepted anymore
	require.Error(t, sh.Put(obj, nil))

	t.Run("failed inhume keeps object", func(t *testing.T) {
		obj := objecttest.ObjectWithCID(cnr)
		require.NoError(t, sh.Put(obj, nil))

		// tombstone of another container is rejected by the metabase
		require.Error(t, sh.Inhume(oidtest.Address(), 10, obj.Address()))

		res, err := sh.Get(obj.Address(), false)
		require.NoError(t, err)
		requireSameObject(t, obj, res)
	})
}

func TestShard_MarkGarbage(t *testing.T) {
	sh := newShard(t, false,
		shard.WithGCRemoverSleepInterval(10*time.Millisecond))

	obj := objecttest.Object()
	addr := obj.Address()

	require.NoError(t, sh.Put(obj, nil))
	require.NoError(t, sh.MarkGarbage(addr))

	_, err := sh.Get(addr, false)
	require.True(t, shard.IsErrNotFound(err), err)

	// GC removes the object bytes
	require.Eventually(t, func() bool {
		_, err := sh.Get(addr, true)
		return shard.IsErrNotFound(err)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestShard_GCDropsExpiredGraves(t *testing.T) {
	sh := newShard(t, false,
		shard.WithGCRemoverSleepInterval(10*time.Millisecond))
	cnr := cidtest.ID()

	obj := objecttest.ObjectWithCID(cnr)
	addr := obj.Address()

	require.NoError(t, sh.Put(obj, nil))
	require.NoError(t, sh.Inhume(oidtest.AddressWithContainer(cnr), 5, addr))

	// the object is removed physically by the garbage remover first
	require.Eventually(t, func() bool {
		_, err := sh.Get(addr, true)
		return shard.IsErrNotFound(err)
	}, 5*time.Second, 20*time.Millisecond)

	sh.NotifyNewEpoch(context.Background(), 6)

	require.Eventually(t, func() bool {
		_, err := sh.Exists(addr)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
