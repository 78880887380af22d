package shard_test

import (
	"os"
	"path/filepath"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/stretchr/testify/require"
)

func TestShard_UpdateID(t *testing.T) {
	dir := t.TempDir()

	sh := shard.New(shardOptions(t, dir, false)...)
	require.NoError(t, sh.UpdateID())
	require.NotNil(t, sh.ID())

	id := *sh.ID()

	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())
	require.Equal(t, id, *sh.DumpInfo().ID)
	require.NoError(t, sh.Close())

	// the stored identifier wins over the configured one
	other, err := shard.GenerateID()
	require.NoError(t, err)

	sh = shard.New(append(shardOptions(t, dir, false), shard.WithID(other))...)
	require.NoError(t, sh.UpdateID())
	require.Equal(t, id, *sh.ID())
}

func TestShard_Reopen(t *testing.T) {
	dir := t.TempDir()
	cnr := cidtest.ID()

	sh := shard.New(shardOptions(t, dir, true)...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())

	objs := []*object.Object{
		objecttest.ObjectWithCID(cnr),
		objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(smallSize*2)),
	}

	for i := range objs {
		require.NoError(t, sh.Put(objs[i], nil))
	}

	require.NoError(t, sh.Close())

	sh = shard.New(append(shardOptions(t, dir, true), shard.WithMode(mode.ReadOnly))...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())
	t.Cleanup(func() { require.NoError(t, sh.Close()) })

	require.Equal(t, mode.ReadOnly, sh.GetMode())

	for i := range objs {
		res, err := sh.Get(objs[i].Address(), false)
		require.NoError(t, err)
		requireSameObject(t, objs[i], res)
	}

	require.ErrorIs(t, sh.Put(objecttest.ObjectWithCID(cnr), nil), shard.ErrReadOnlyMode)
}

func TestShard_RefillMetabase(t *testing.T) {
	dir := t.TempDir()
	cnr := cidtest.ID()

	sh := shard.New(shardOptions(t, dir, false)...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())

	var (
		objs      []*object.Object
		removed   = objecttest.ObjectWithCID(cnr)
		tombstone = objecttest.Tombstone(cnr, 100, mustID(removed))
	)

	for i := 0; i < 5; i++ {
		objs = append(objs, objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(smallSize/4*(i+1))))
	}

	for _, obj := range append(objs, removed, tombstone) {
		require.NoError(t, sh.Put(obj, nil))
	}

	require.NoError(t, sh.Inhume(tombstone.Address(), 100, removed.Address()))
	require.NoError(t, sh.Close())

	// lose the metabase
	require.NoError(t, os.Remove(filepath.Join(dir, "meta")))

	sh = shard.New(append(shardOptions(t, dir, false), shard.WithRefillMetabase(true))...)
	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())
	t.Cleanup(func() { require.NoError(t, sh.Close()) })

	for i := range objs {
		hdr, err := sh.Head(objs[i].Address(), true)
		require.NoError(t, err)
		requireSameObject(t, objs[i].CutPayload(), hdr)
	}

	_, err := sh.Get(removed.Address(), false)
	require.True(t, shard.IsErrRemoved(err), err)

	list, err := sh.List()
	require.NoError(t, err)
	require.Len(t, list, len(objs)+1) // regular ones and the tombstone

	cnrs, err := sh.ListContainers()
	require.NoError(t, err)
	require.Len(t, cnrs, 1)
	require.Equal(t, cnr, cnrs[0])
}

func mustID(obj *object.Object) oid.ID {
	id, ok := obj.ID()
	if !ok {
		panic("missing object ID")
	}

	return id
}

func TestShard_FlushWriteCache(t *testing.T) {
	sh := newShard(t, false)
	require.Error(t, sh.FlushWriteCache(false))

	sh = newShard(t, true)

	obj := objecttest.Object()
	require.NoError(t, sh.Put(obj, nil))
	require.NoError(t, sh.FlushWriteCache(false))

	res, err := sh.Get(obj.Address(), false)
	require.NoError(t, err)
	requireSameObject(t, obj, res)

	require.NoError(t, sh.SetMode(mode.ReadOnly))
	require.ErrorIs(t, sh.FlushWriteCache(false), shard.ErrReadOnlyMode)
}
