package writecache

import (
	"testing"
	"time"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/common"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/stretchr/testify/require"
)

func putIndexed(t *testing.T, e *env, c Cache, payloadSize int) *object.Object {
	obj := putObject(t, c, payloadSize)
	require.NoError(t, e.mb.Put(obj, nil))
	return obj
}

func checkFlushed(t *testing.T, e *env, objs []*object.Object) {
	for _, obj := range objs {
		id, err := e.mb.StorageID(obj.Address())
		require.NoError(t, err)

		res, err := e.bs.Get(common.GetPrm{Address: obj.Address(), StorageID: id})
		require.NoError(t, err)
		require.Equal(t, obj.Marshal(), res.Object.Marshal())
	}
}

func TestFlush(t *testing.T) {
	t.Run("all storages", func(t *testing.T) {
		e := newEnv(t)
		c := e.newCache(t, false, WithMaxMemSize(2048))

		objs := []*object.Object{
			putIndexed(t, e, c, 1024), // memory
			putIndexed(t, e, c, 1024), // database
			putIndexed(t, e, c, 8*1024),
		}

		require.NoError(t, c.Flush(false))

		checkFlushed(t, e, objs)

		small, err := e.mb.StorageID(objs[0].Address())
		require.NoError(t, err)
		require.Equal(t, []byte("0/0"), small)

		// flushed objects are still served until evicted
		for _, obj := range objs {
			_, err := c.Get(obj.Address())
			require.NoError(t, err)
		}
	})

	t.Run("read-only main storage", func(t *testing.T) {
		e := newEnv(t)
		c := e.newCache(t, false, WithMaxMemSize(0))

		obj := putIndexed(t, e, c, 1024)

		require.NoError(t, e.bs.SetMode(mode.ReadOnly))
		require.ErrorIs(t, c.Flush(false), common.ErrReadOnly)
		require.NoError(t, c.Flush(true))

		require.NoError(t, e.bs.SetMode(mode.ReadWrite))
		require.NoError(t, c.Flush(false))

		checkFlushed(t, e, []*object.Object{obj})
	})

	t.Run("flush on moving to degraded mode", func(t *testing.T) {
		e := newEnv(t)
		c := e.newCache(t, false)

		objs := []*object.Object{
			putIndexed(t, e, c, 1024),
			putIndexed(t, e, c, 8*1024),
		}

		require.NoError(t, c.SetMode(mode.Degraded))

		checkFlushed(t, e, objs)
	})
}

func TestFlush_Evict(t *testing.T) {
	e := newEnv(t)
	c := e.newCache(t, false, WithMaxMemSize(0), WithFlushedCapacity(1))

	objs := []*object.Object{
		putIndexed(t, e, c, 1024),
		putIndexed(t, e, c, 1024),
		putIndexed(t, e, c, 1024),
	}
	require.EqualValues(t, 3, c.objCounters.DB())

	require.NoError(t, c.Flush(false))

	checkFlushed(t, e, objs)

	// only the last flushed object is kept
	require.EqualValues(t, 1, c.objCounters.DB())

	var cached int
	for _, obj := range objs {
		_, err := c.Get(obj.Address())
		if err == nil {
			cached++
		} else {
			require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
		}
	}
	require.Equal(t, 1, cached)
}

func TestFlush_Background(t *testing.T) {
	e := newEnv(t)
	c := e.newCache(t, true)

	objs := []*object.Object{
		putIndexed(t, e, c, 1024),
		putIndexed(t, e, c, 8*1024),
	}

	require.Eventually(t, func() bool {
		for _, obj := range objs {
			res, err := e.bs.Exists(common.ExistsPrm{Address: obj.Address()})
			if err != nil || !res.Exists {
				return false
			}
		}
		return true
	}, 10*time.Second, 100*time.Millisecond)
}

func TestInitFlushMarks(t *testing.T) {
	e := newEnv(t)

	c := e.newCache(t, false, WithMaxMemSize(0))

	flushed := putIndexed(t, e, c, 1024)
	_, err := e.bs.Put(common.PutPrm{Address: flushed.Address(), Object: flushed})
	require.NoError(t, err)

	removed := putIndexed(t, e, c, 1024)
	var prm meta.InhumePrm
	prm.SetAddresses(removed.Address())
	prm.SetTombstone(oidtest.AddressWithContainer(removed.Address().Container()), 0)
	_, err = e.mb.Inhume(prm)
	require.NoError(t, err)

	pending := putIndexed(t, e, c, 8*1024)

	require.NoError(t, c.Close())

	c = e.newCache(t, false, WithMaxMemSize(0))
	c.modeMtx.RLock()
	c.initFlushMarks()
	c.modeMtx.RUnlock()

	_, ok := c.flushed.Peek(flushed.Address().EncodeToString())
	require.True(t, ok)

	_, ok = c.flushed.Peek(pending.Address().EncodeToString())
	require.False(t, ok)

	_, err = c.Get(pending.Address())
	require.NoError(t, err)

	_, err = c.Get(removed.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	require.EqualValues(t, 1, c.objCounters.DB())
}
