package shard_test

import (
	"errors"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/stretchr/testify/require"
)

func TestShard_PutGet(t *testing.T) {
	t.Run("without write cache", func(t *testing.T) {
		testShardPutGet(t, false)
	})

	t.Run("with write cache", func(t *testing.T) {
		testShardPutGet(t, true)
	})
}

func testShardPutGet(t *testing.T, hasWriteCache bool) {
	sh := newShard(t, hasWriteCache)
	cnr := cidtest.ID()

	for _, tc := range []struct {
		name string
		size int
	}{
		{"small", smallSize / 2},
		{"big", smallSize * 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			obj := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(tc.size))
			addr := obj.Address()

			require.NoError(t, sh.Put(obj, nil))

			res, err := sh.Get(addr, false)
			require.NoError(t, err)
			requireSameObject(t, obj, res)

			hdr, err := sh.Head(addr, false)
			require.NoError(t, err)
			requireSameObject(t, obj.CutPayload(), hdr)

			rng, err := sh.GetRange(addr, 1, 10, false)
			require.NoError(t, err)
			require.Equal(t, obj.Payload()[1:11], rng)

			_, err = sh.GetRange(addr, uint64(tc.size)-1, 2, false)
			require.True(t, shard.IsErrOutOfRange(err), err)

			exists, err := sh.Exists(addr)
			require.NoError(t, err)
			require.True(t, exists)
		})
	}

	t.Run("missing", func(t *testing.T) {
		addr := oidtest.Address()

		_, err := sh.Get(addr, false)
		require.True(t, shard.IsErrNotFound(err), err)

		_, err = sh.Head(addr, false)
		require.True(t, shard.IsErrNotFound(err), err)

		exists, err := sh.Exists(addr)
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestShard_HeadSplit(t *testing.T) {
	sh := newShard(t, false)
	cnr := cidtest.ID()

	parent := objecttest.ObjectWithCID(cnr)
	child := objecttest.ObjectWithCID(cnr)
	objecttest.SetParent(child, parent, object.NewSplitID())

	require.NoError(t, sh.Put(child, nil))

	parentAddr := parent.Address()

	t.Run("raw", func(t *testing.T) {
		_, err := sh.Head(parentAddr, true)

		var siErr *object.SplitInfoError
		require.True(t, errors.As(err, &siErr), err)

		lastPart, ok := siErr.SplitInfo().LastPart()
		require.True(t, ok)

		childID, _ := child.ID()
		require.Equal(t, childID, lastPart)
	})

	t.Run("parent header", func(t *testing.T) {
		hdr, err := sh.Head(parentAddr, false)
		require.NoError(t, err)

		parentID, _ := parent.ID()
		id, ok := hdr.ID()
		require.True(t, ok)
		require.Equal(t, parentID, id)
	})

	t.Run("get", func(t *testing.T) {
		_, err := sh.Get(parentAddr, false)

		var siErr *object.SplitInfoError
		require.True(t, errors.As(err, &siErr), err)
	})
}
