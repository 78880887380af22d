package meta_test

import (
	"errors"
	"testing"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/stretchr/testify/require"
)

func TestDB_ListWithCursor(t *testing.T) {
	db := newDB(t)

	const total = 10

	expected := make([]oid.Address, 0, total)

	for _, cnr := range []cid.ID{cidtest.ID(), cidtest.ID()} {
		for i := 0; i < total/2; i++ {
			obj := objecttest.ObjectWithCID(cnr)
			require.NoError(t, db.Put(obj, nil))
			expected = append(expected, obj.Address())
		}
	}

	ts := objecttest.Tombstone(cidtest.ID(), 0, objecttest.Object().Address().Object())
	require.NoError(t, db.Put(ts, nil))
	expected = append(expected, ts.Address())

	for _, batch := range []int{1, 3, total + 1, 100} {
		var (
			got    []oid.Address
			cursor *meta.Cursor
		)

		for {
			res, next, err := db.ListWithCursor(batch, cursor)
			if errors.Is(err, meta.ErrEndOfListing) {
				break
			}
			require.NoError(t, err)
			require.LessOrEqual(t, len(res), batch)

			got = append(got, res...)
			cursor = next
		}

		require.ElementsMatch(t, expected, got, batch)
	}

	_, _, err := db.ListWithCursor(0, nil)
	require.ErrorIs(t, err, meta.ErrEndOfListing)
}

func TestDB_ListEmpty(t *testing.T) {
	db := newDB(t)

	_, _, err := db.ListWithCursor(10, nil)
	require.ErrorIs(t, err, meta.ErrEndOfListing)
}
