package meta_test

import (
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/stretchr/testify/require"
)

func TestDB_ObjectCounter(t *testing.T) {
	db := newDB(t)

	c, err := db.ObjectCounter()
	require.NoError(t, err)
	require.Zero(t, c)

	cnr := cidtest.ID()

	var addrs []oid.Address
	for i := 0; i < 3; i++ {
		obj := objecttest.ObjectWithCID(cnr)
		require.NoError(t, putBig(db, obj))
		addrs = append(addrs, obj.Address())
	}

	_, last, link := splitObject(cnr)
	require.NoError(t, putBig(db, last))
	require.NoError(t, putBig(db, link))

	c, err = db.ObjectCounter()
	require.NoError(t, err)
	require.EqualValues(t, 5, c)

	_, err = db.Delete(addrs[:1])
	require.NoError(t, err)

	c, err = db.ObjectCounter()
	require.NoError(t, err)
	require.EqualValues(t, 4, c)
}
