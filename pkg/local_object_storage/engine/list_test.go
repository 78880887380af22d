package engine

import (
	"errors"
	"testing"

	cid "github.com/kestrelfs/kestrel-node/pkg/core/container/id"
	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/stretchr/testify/require"
)

func TestListWithCursor(t *testing.T) {
	e := testNewEngine(t).setShardsNum(t, 2).prepare(t)

	const total = 20

	expected := make([]oid.Address, 0, total)
	containers := make(map[cid.ID]uint64)

	for i := 0; i < total; i++ {
		cnr := cidtest.ID()
		if i%2 == 0 {
			for c := range containers {
				cnr = c
				break
			}
		}

		obj := objecttest.ObjectWithPayload(cnr, objecttest.RandomPayload(10+i))
		require.NoError(t, e.Put(obj, nil))

		expected = append(expected, obj.Address())
		containers[cnr] += obj.PayloadSize()
	}

	var (
		got    = make([]oid.Address, 0, total)
		cursor *Cursor
	)

	for {
		addrs, next, err := e.ListWithCursor(3, cursor)
		if errors.Is(err, ErrEndOfListing) {
			break
		}

		require.NoError(t, err)
		require.LessOrEqual(t, len(addrs), 3)

		got = append(got, addrs...)
		cursor = next
	}

	require.ElementsMatch(t, expected, got)

	_, _, err := e.ListWithCursor(0, nil)
	require.ErrorIs(t, err, ErrEndOfListing)

	cnrs, err := e.ListContainers()
	require.NoError(t, err)
	require.Len(t, cnrs, len(containers))

	for cnr, size := range containers {
		require.Contains(t, cnrs, cnr)

		res, err := e.ContainerSize(cnr)
		require.NoError(t, err)
		require.Equal(t, size, res)
	}

	all, err := e.List(0)
	require.NoError(t, err)
	require.ElementsMatch(t, expected, all)

	limited, err := e.List(5)
	require.NoError(t, err)
	require.Len(t, limited, 5)
}
