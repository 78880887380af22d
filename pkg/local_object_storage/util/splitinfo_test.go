package util_test

import (
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	oidtest "github.com/kestrelfs/kestrel-node/pkg/core/object/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util"
	"github.com/stretchr/testify/require"
)

func TestMergeSplitInfo(t *testing.T) {
	splitID := object.NewSplitID()

	linkID := oidtest.ID()
	lastID := oidtest.ID()

	target := object.NewSplitInfo() // target is SplitInfo struct with all fields set
	target.SetSplitID(splitID)
	target.SetLastPart(lastID)
	target.SetLink(linkID)

	t.Run("merge empty", func(t *testing.T) {
		to := object.NewSplitInfo()

		result := util.MergeSplitInfo(target, to)
		require.Equal(t, target, result)
		require.Equal(t, object.NewSplitInfo(), to)
	})

	t.Run("merge link", func(t *testing.T) {
		from := object.NewSplitInfo()
		from.SetSplitID(splitID)
		from.SetLastPart(lastID)

		to := object.NewSplitInfo()
		to.SetLink(linkID)

		result := util.MergeSplitInfo(from, to)
		require.Equal(t, target, result)
		require.True(t, util.IsCompleteSplitInfo(result))
		require.False(t, util.IsCompleteSplitInfo(from))
	})

	t.Run("merge last", func(t *testing.T) {
		from := object.NewSplitInfo()
		from.SetSplitID(splitID)
		from.SetLink(linkID)

		to := object.NewSplitInfo()
		to.SetLastPart(lastID)

		result := util.MergeSplitInfo(from, to)
		require.Equal(t, target, result)
	})

	t.Run("nil", func(t *testing.T) {
		require.Equal(t, target, util.MergeSplitInfo(target, nil))
		require.Equal(t, target, util.MergeSplitInfo(nil, target))
		require.False(t, util.IsCompleteSplitInfo(nil))
	})
}
