package meta_test

import (
	"strconv"
	"sync"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util"
	"github.com/stretchr/testify/require"
)

func TestDB_PutGet(t *testing.T) {
	db := newDB(t)

	obj := objecttest.Object()
	addr := obj.Address()

	_, err := db.Get(addr, false)
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

	exists, err := db.Exists(addr)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, db.Put(obj, []byte("0/1")))

	hdr, err := db.Get(addr, false)
	require.NoError(t, err)
	require.Equal(t, obj.CutPayload().Marshal(), hdr.Marshal())

	exists, err = db.Exists(addr)
	require.NoError(t, err)
	require.True(t, exists)

	id, err := db.StorageID(addr)
	require.NoError(t, err)
	require.Equal(t, []byte("0/1"), id)

	t.Run("repeated put", func(t *testing.T) {
		require.NoError(t, db.Put(obj, []byte("1/1")))

		id, err := db.StorageID(addr)
		require.NoError(t, err)
		require.Equal(t, []byte("0/1"), id)
	})

	t.Run("update storage ID", func(t *testing.T) {
		require.NoError(t, db.UpdateStorageID(addr, []byte("1/0")))

		id, err := db.StorageID(addr)
		require.NoError(t, err)
		require.Equal(t, []byte("1/0"), id)

		// missing objects are not indexed
		missing := oidtest.Address()
		require.NoError(t, db.UpdateStorageID(missing, []byte("1/0")))

		id, err = db.StorageID(missing)
		require.NoError(t, err)
		require.Nil(t, id)
	})

	t.Run("large object", func(t *testing.T) {
		big := objecttest.Object()
		require.NoError(t, putBig(db, big))

		id, err := db.StorageID(big.Address())
		require.NoError(t, err)
		require.Nil(t, id)
	})

	t.Run("tombstone", func(t *testing.T) {
		cnr, _ := obj.Container()
		ts := objecttest.Tombstone(cnr, 100, oidtest.ID())
		require.NoError(t, db.Put(ts, nil))

		hdr, err := db.Get(ts.Address(), false)
		require.NoError(t, err)
		require.Equal(t, object.TypeTombstone, hdr.Type())
	})
}

func TestDB_PutSplit(t *testing.T) {
	db := newDB(t)

	parent, last, link := splitObject(cidtest.ID())
	parAddr := parent.Address()
	lastID, _ := last.ID()
	linkID, _ := link.ID()

	require.NoError(t, db.Put(last, nil))

	var siErr *object.SplitInfoError

	_, err := db.Get(parAddr, true)
	require.ErrorAs(t, err, &siErr)

	lp, ok := siErr.SplitInfo().LastPart()
	require.True(t, ok)
	require.Equal(t, lastID, lp)
	_, ok = siErr.SplitInfo().Link()
	require.False(t, ok)
	require.True(t, siErr.SplitInfo().SplitID().Equals(last.SplitID()))

	require.NoError(t, db.Put(link, nil))

	_, err = db.Get(parAddr, true)
	require.ErrorAs(t, err, &siErr)
	require.True(t, util.IsCompleteSplitInfo(siErr.SplitInfo()))

	lnk, _ := siErr.SplitInfo().Link()
	require.Equal(t, linkID, lnk)

	_, err = db.Exists(parAddr)
	require.ErrorAs(t, err, &siErr)

	hdr, err := db.Get(parAddr, false)
	require.NoError(t, err)

	parID, _ := parent.ID()
	hdrID, _ := hdr.ID()
	require.Equal(t, parID, hdrID)
	require.Equal(t, "parent.txt", hdr.Attribute(object.AttributeFileName))

	// parts are stored as usual
	exists, err := db.Exists(last.Address())
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDB_PutConcurrent(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			obj := objecttest.ObjectWithCID(cnr)
			objecttest.AddAttribute(obj, "index", strconv.Itoa(i))

			require.NoError(t, db.Put(obj, nil))
		}(i)
	}
	wg.Wait()

	res, err := db.Select(cnr, nil)
	require.NoError(t, err)
	require.Len(t, res, 20)
}

func TestDB_ContainerSize(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()

	var objs []*object.Object
	var total uint64
	for i := 1; i <= 3; i++ {
		obj := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(100*i))
		require.NoError(t, db.Put(obj, nil))

		objs = append(objs, obj)
		total += obj.PayloadSize()
	}

	sz, err := db.ContainerSize(cnr)
	require.NoError(t, err)
	require.Equal(t, total, sz)

	res, err := db.Delete([]oid.Address{objs[0].Address()})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.RawObjectsRemoved())
	require.Equal(t, []uint64{objs[0].PayloadSize()}, res.RemovedObjectSizes())

	sz, err = db.ContainerSize(cnr)
	require.NoError(t, err)
	require.Equal(t, total-objs[0].PayloadSize(), sz)

	cnrs, err := db.Containers()
	require.NoError(t, err)
	require.Contains(t, cnrs, cnr)

	sz, err = db.ContainerSize(cidtest.ID())
	require.NoError(t, err)
	require.Zero(t, sz)
}
