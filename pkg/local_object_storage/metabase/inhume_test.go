package meta_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/stretchr/testify/require"
)

func TestDB_Inhume(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()
	raw := objecttest.ObjectWithCID(cnr)
	require.NoError(t, db.Put(raw, nil))

	tomb := oidtest.AddressWithContainer(cnr)

	var prm meta.InhumePrm
	prm.SetAddresses(raw.Address())
	prm.SetTombstone(tomb, 10)

	res, err := db.Inhume(prm)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.AvailableInhumed())
	require.Equal(t, raw.PayloadSize(), res.InhumedSize())

	_, err = db.Exists(raw.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectAlreadyRemoved)
	require.True(t, meta.IsErrRemoved(err))

	_, err = db.Get(raw.Address(), false)
	require.ErrorIs(t, err, apistatus.ErrObjectAlreadyRemoved)

	// removed object can't be put again
	err = db.Put(raw, nil)
	require.ErrorIs(t, err, apistatus.ErrObjectAlreadyRemoved)

	t.Run("graveyard and garbage", func(t *testing.T) {
		var graves []meta.TombstonedObject
		require.NoError(t, db.IterateOverGraveyard(func(g meta.TombstonedObject) error {
			graves = append(graves, g)
			return nil
		}))
		require.Len(t, graves, 1)
		require.Equal(t, raw.Address(), graves[0].Address())
		require.Equal(t, tomb, graves[0].Tombstone())
		require.EqualValues(t, 10, graves[0].TombstoneExpiration())

		var garbage []oid.Address
		require.NoError(t, db.IterateOverGarbage(func(g meta.GarbageObject) error {
			garbage = append(garbage, g.Address())
			return nil
		}))
		require.Equal(t, []oid.Address{raw.Address()}, garbage)
	})

	t.Run("container mismatch", func(t *testing.T) {
		var prm meta.InhumePrm
		prm.SetAddresses(oidtest.Address())
		prm.SetTombstone(tomb, 0)

		_, err := db.Inhume(prm)
		require.ErrorIs(t, err, meta.ErrTombstoneContainerMismatch)
	})

	t.Run("tombstone itself", func(t *testing.T) {
		var prm meta.InhumePrm
		prm.SetAddresses(tomb)
		prm.SetTombstone(tomb, 0)

		_, err := db.Inhume(prm)
		require.Error(t, err)
	})
}

func TestDB_InhumeGCMark(t *testing.T) {
	db := newDB(t)

	obj := objecttest.Object()
	require.NoError(t, db.Put(obj, nil))

	var prm meta.InhumePrm
	prm.SetAddresses(obj.Address(), oidtest.Address())
	prm.SetGCMark()

	res, err := db.Inhume(prm)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.AvailableInhumed())

	_, err = db.Get(obj.Address(), false)
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

	exists, err := db.Exists(obj.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)
	require.False(t, exists)

	var n int
	require.NoError(t, db.IterateOverGarbage(func(meta.GarbageObject) error {
		n++
		return meta.ErrInterruptIterator
	}))
	require.Equal(t, 1, n)

	// GC removes the object
	_, err = db.Delete([]oid.Address{obj.Address()})
	require.NoError(t, err)

	var garbage []oid.Address
	require.NoError(t, db.IterateOverGarbage(func(g meta.GarbageObject) error {
		garbage = append(garbage, g.Address())
		return nil
	}))
	require.NotContains(t, garbage, obj.Address())
}

func TestDB_DropExpiredGraves(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()
	tomb := oidtest.AddressWithContainer(cnr)

	stored := objecttest.ObjectWithCID(cnr)
	require.NoError(t, db.Put(stored, nil))

	deleted := oidtest.AddressWithContainer(cnr)

	var prm meta.InhumePrm
	prm.SetAddresses(stored.Address(), deleted)
	prm.SetTombstone(tomb, 5)

	_, err := db.Inhume(prm)
	require.NoError(t, err)

	n, err := db.DropExpiredGraves(5)
	require.NoError(t, err)
	require.Zero(t, n)

	// graves of stored objects are kept until GC removes them
	n, err = db.DropExpiredGraves(6)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = db.Exists(stored.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectAlreadyRemoved)

	exists, err := db.Exists(deleted)
	require.NoError(t, err)
	require.False(t, exists)
}
