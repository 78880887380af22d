package engine

import (
	"errors"
	"testing"

	cidtest "github.com/kestrelfs/kestrel-node/pkg/core/container/id/test"
	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	apistatus "github.com/kestrelfs/kestrel-node/pkg/core/object/status"
	objecttest "github.com/kestrelfs/kestrel-node/pkg/core/object/test"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/util/logicerr"
	"github.com/stretchr/testify/require"
)

func TestExecBlocks(t *testing.T) {
	e := testNewEngine(t).setShardsNum(t, 2).prepare(t)

	obj := objecttest.ObjectWithCID(cidtest.ID())
	require.NoError(t, e.Put(obj, nil))

	blockErr := errors.New("block error")
	require.NoError(t, e.BlockExecution(blockErr))

	_, err := e.Get(obj.Address())
	require.ErrorIs(t, err, blockErr)

	require.ErrorIs(t, e.Put(objecttest.ObjectWithCID(cidtest.ID()), nil), blockErr)

	require.NoError(t, e.ResumeExecution())

	res, err := e.Get(obj.Address())
	require.NoError(t, err)
	requireSameObject(t, obj, res)

	require.NoError(t, e.Close())

	_, err = e.Get(obj.Address())
	require.ErrorIs(t, err, errClosed)

	require.ErrorIs(t, e.ResumeExecution(), errClosed)
}

func TestErrorThreshold(t *testing.T) {
	const threshold = 3

	te := testNewEngine(t, WithErrorThreshold(threshold)).setShardsNum(t, 1)
	e := te.prepare(t)

	sh := hashedShard(e.shards[te.shardIDs[0].String()])

	t.Run("logical errors are not counted", func(t *testing.T) {
		for i := 0; i < 2*threshold; i++ {
			e.reportShardError(sh, "test", logicerr.Wrap(apistatus.ErrObjectNotFound))
			e.reportShardError(sh, "test", object.NewSplitInfoError(object.NewSplitInfo()))
		}

		require.Zero(t, sh.errorCount.Load())
		require.Equal(t, mode.ReadWrite, sh.GetMode())
	})

	t.Run("storage errors", func(t *testing.T) {
		for i := 0; i < threshold-1; i++ {
			e.reportShardError(sh, "test", errors.New("disk failure"))
		}

		require.Equal(t, mode.ReadWrite, sh.GetMode())

		e.reportShardError(sh, "test", errors.New("disk failure"))
		require.Equal(t, mode.ReadOnly, sh.GetMode())

		require.ErrorIs(t, e.Put(objecttest.ObjectWithCID(cidtest.ID()), nil), errPutShard)

		info := e.DumpInfo()
		require.Len(t, info.Shards, 1)
		require.EqualValues(t, threshold, info.Shards[0].ErrorCount)
	})

	t.Run("manual mode reset", func(t *testing.T) {
		require.NoError(t, e.SetShardMode(te.shardIDs[0], mode.ReadWrite, true))
		require.Zero(t, sh.errorCount.Load())

		require.NoError(t, e.Put(objecttest.ObjectWithCID(cidtest.ID()), nil))
	})

	t.Run("unknown shard", func(t *testing.T) {
		id, err := shard.GenerateID()
		require.NoError(t, err)
		require.ErrorIs(t, e.SetShardMode(id, mode.ReadOnly, false), errShardNotFound)
	})
}
