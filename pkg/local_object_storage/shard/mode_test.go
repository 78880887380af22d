package shard_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/stretchr/testify/require"
)

func TestShard_SetMode(t *testing.T) {
	for _, hasWriteCache := range []bool{false, true} {
		sh := newShard(t, hasWriteCache)
		cnr := cidtest.ID()

		small := objecttest.ObjectWithCID(cnr)
		big := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(smallSize*2))

		require.NoError(t, sh.Put(small, nil))
		require.NoError(t, sh.Put(big, nil))

		t.Run("read-only", func(t *testing.T) {
			require.NoError(t, sh.SetMode(mode.ReadOnly))
			require.Equal(t, mode.ReadOnly, sh.GetMode())

			require.ErrorIs(t, sh.Put(objecttest.ObjectWithCID(cnr), nil), shard.ErrReadOnlyMode)
			require.ErrorIs(t, sh.Delete(nil), shard.ErrReadOnlyMode)
			require.ErrorIs(t, sh.MarkGarbage(small.Address()), shard.ErrReadOnlyMode)

			res, err := sh.Get(small.Address(), false)
			require.NoError(t, err)
			requireSameObject(t, small, res)
		})

		t.Run("degraded", func(t *testing.T) {
			require.NoError(t, sh.SetMode(mode.Degraded))
			require.Equal(t, mode.Degraded, sh.GetMode())

			for _, obj := range []*object.Object{small, big} {
				res, err := sh.Get(obj.Address(), false)
				require.NoError(t, err)
				requireSameObject(t, obj, res)

				hdr, err := sh.Head(obj.Address(), false)
				require.NoError(t, err)
				requireSameObject(t, obj.CutPayload(), hdr)

				exists, err := sh.Exists(obj.Address())
				require.NoError(t, err)
				require.True(t, exists)
			}

			_, err := sh.Select(cnr, nil)
			require.ErrorIs(t, err, shard.ErrDegradedMode)

			_, err = sh.ListContainers()
			require.ErrorIs(t, err, shard.ErrDegradedMode)

			require.ErrorIs(t, sh.Delete(nil), shard.ErrDegradedMode)

			// objects can still be written
			obj := objecttest.ObjectWithCID(cnr)
			require.NoError(t, sh.Put(obj, nil))

			res, err := sh.Get(obj.Address(), false)
			require.NoError(t, err)
			requireSameObject(t, obj, res)
		})

		t.Run("read-write", func(t *testing.T) {
			require.NoError(t, sh.SetMode(mode.ReadWrite))

			addrs, err := sh.Select(cnr, nil)
			require.NoError(t, err)
			require.ElementsMatch(t, []oid.Address{small.Address(), big.Address()}, addrs)

			require.NoError(t, sh.Put(objecttest.ObjectWithCID(cnr), nil))
		})
	}
}

func TestShard_SetMode_FlushOnDegraded(t *testing.T) {
	dir := t.TempDir()

	sh := shard.New(shardOptions(t, dir, true)...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())

	obj := objecttest.ObjectWithCID(cidtest.ID())
	require.NoError(t, sh.Put(obj, nil))

	require.NoError(t, sh.SetMode(mode.ReadOnly))
	require.NoError(t, sh.SetMode(mode.DegradedReadOnly))

	exists, err := sh.Exists(obj.Address())
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, sh.Close())

	// without the write-cache the object is found only if it was flushed
	sh = shard.New(append(shardOptions(t, dir, false), shard.WithMode(mode.DegradedReadOnly))...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())
	t.Cleanup(func() { require.NoError(t, sh.Close()) })

	exists, err = sh.Exists(obj.Address())
	require.NoError(t, err)
	require.True(t, exists)

	res, err := sh.Get(obj.Address(), false)
	require.NoError(t, err)
	requireSameObject(t, obj, res)
}
