package engine

import (
	"errors"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/stretchr/testify/require"
)

func TestStorageEngine_HeadRaw(t *testing.T) {
	te := testNewEngine(t).setShardsNum(t, 2)
	e := te.prepare(t)
	cnr := cidtest.ID()
	splitID := object.NewSplitID()

	parent := objecttest.ObjectWithCID(cnr)
	objecttest.AddAttribute(parent, "foo", "bar")

	child := objecttest.ObjectWithCID(cnr)
	objecttest.SetParent(child, parent, splitID)
	childID, _ := child.ID()

	link := objecttest.ObjectWithCID(cnr)
	link.SetChildren(childID)
	objecttest.SetParent(link, parent, splitID)
	linkID, _ := link.ID()

	// put parts of the split chain to different shards
	require.NoError(t, te.shard(0).Put(child, nil))
	require.NoError(t, te.shard(1).Put(link, nil))

	parentAddr := parent.Address()

	t.Run("raw", func(t *testing.T) {
		_, err := e.Head(parentAddr, true)

		var siErr *object.SplitInfoError
		require.True(t, errors.As(err, &siErr), err)

		si := siErr.SplitInfo()
		require.Equal(t, splitID.ToBytes(), si.SplitID().ToBytes())

		lastPart, ok := si.LastPart()
		require.True(t, ok)
		require.Equal(t, childID, lastPart)

		l, ok := si.Link()
		require.True(t, ok)
		require.Equal(t, linkID, l)
	})

	t.Run("parent header", func(t *testing.T) {
		hdr, err := e.Head(parentAddr, false)
		require.NoError(t, err)
		require.Equal(t, "bar", hdr.Attribute("foo"))
	})

	t.Run("partial info", func(t *testing.T) {
		single := testNewEngine(t).setShardsNum(t, 1).prepare(t)

		require.NoError(t, single.Put(child, nil))

		_, err := single.Head(parentAddr, true)

		var siErr *object.SplitInfoError
		require.True(t, errors.As(err, &siErr), err)

		_, ok := siErr.SplitInfo().Link()
		require.False(t, ok)

		lastPart, ok := siErr.SplitInfo().LastPart()
		require.True(t, ok)
		require.Equal(t, childID, lastPart)
	})
}
