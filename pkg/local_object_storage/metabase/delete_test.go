package meta_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/stretchr/testify/require"
)

func TestDB_Delete(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()
	obj := objecttest.ObjectWithCID(cnr)

	require.NoError(t, db.Put(obj, []byte("0/0")))

	res, err := db.Delete([]oid.Address{obj.Address(), oidtest.Address()})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.RawObjectsRemoved())
	require.Equal(t, []uint64{obj.PayloadSize(), 0}, res.RemovedObjectSizes())

	exists, err := db.Exists(obj.Address())
	require.NoError(t, err)
	require.False(t, exists)

	id, err := db.StorageID(obj.Address())
	require.NoError(t, err)
	require.Nil(t, id)

	res, err = db.Delete([]oid.Address{obj.Address()})
	require.NoError(t, err)
	require.Zero(t, res.RawObjectsRemoved())
}

func TestDB_DeleteSplitParts(t *testing.T) {
	db := newDB(t)

	parent, last, link := splitObject(cidtest.ID())

	require.NoError(t, db.Put(last, nil))
	require.NoError(t, db.Put(link, nil))

	_, err := db.Delete([]oid.Address{last.Address()})
	require.NoError(t, err)

	// parent is still available through the link object
	_, err = db.Get(parent.Address(), true)
	require.ErrorAs(t, err, new(*object.SplitInfoError))

	_, err = db.Delete([]oid.Address{link.Address()})
	require.NoError(t, err)

	_, err = db.Get(parent.Address(), true)
	require.ErrorIs(t, err, apistatus.ErrObjectNotFound)

	res, err := db.Select(parent.Address().Container(), nil)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestDB_DeleteKeepsGraveyard(t *testing.T) {
	db := newDB(t)

	cnr := cidtest.ID()
	obj := objecttest.ObjectWithCID(cnr)
	require.NoError(t, db.Put(obj, nil))

	var prm meta.InhumePrm
	prm.SetAddresses(obj.Address())
	prm.SetTombstone(oidtest.AddressWithContainer(cnr), 0)

	_, err := db.Inhume(prm)
	require.NoError(t, err)

	_, err = db.Delete([]oid.Address{obj.Address()})
	require.NoError(t, err)

	_, err = db.Exists(obj.Address())
	require.ErrorIs(t, err, apistatus.ErrObjectAlreadyRemoved)
}
