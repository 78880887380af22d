package engine

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSmallSize = 4 << 10

type testEngineWrapper struct {
	engine   *StorageEngine
	shardIDs []*shard.ID
}

func testNewEngine(t testing.TB, opts ...Option) *testEngineWrapper {
	return &testEngineWrapper{
		engine: New(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...),
	}
}

func (te *testEngineWrapper) setShardsNum(t testing.TB, num int) *testEngineWrapper {
	dir := t.TempDir()

	for i := 0; i < num; i++ {
		id, err := te.engine.AddShard(testShardOptions(t, filepath.Join(dir, strconv.Itoa(i)))...)
		require.NoError(t, err)

		te.shardIDs = append(te.shardIDs, id)
	}

	return te
}

func (te *testEngineWrapper) prepare(t testing.TB) *StorageEngine {
	e := te.engine

	require.NoError(t, e.Open())
	require.NoError(t, e.Init())

	t.Cleanup(func() {
		_ = e.Close()
	})

	return e
}

func testShardOptions(t testing.TB, dir string) []shard.Option {
	l := zaptest.NewLogger(t)

	return []shard.Option{
		shard.WithBlobStorOptions(
			blobstor.WithLogger(l),
			blobstor.WithStorages([]blobstor.SubStorage{
				{
					Storage: blobovniczatree.NewBlobovniczaTree(
						blobovniczatree.WithLogger(l),
						blobovniczatree.WithRootPath(filepath.Join(dir, "blobovnicza")),
						blobovniczatree.WithBlobovniczaShallowDepth(1),
						blobovniczatree.WithBlobovniczaShallowWidth(1),
						blobovniczatree.WithObjectSizeLimit(testSmallSize)),
					Policy: blobstor.SmallObjectPolicy(testSmallSize),
				},
				{
					Storage: fstree.New(
						fstree.WithLogger(l),
						fstree.WithPath(filepath.Join(dir, "fstree"))),
				},
			}),
		),
		shard.WithMetaBaseOptions(
			meta.WithLogger(l),
			meta.WithPath(filepath.Join(dir, "meta")),
			meta.WithPermissions(0700),
		),
	}
}

func (te *testEngineWrapper) shard(i int) *shard.Shard {
	te.engine.mtx.RLock()
	defer te.engine.mtx.RUnlock()

	return te.engine.shards[te.shardIDs[i].String()].Shard
}

func requireSameObject(t testing.TB, exp, act *object.Object) {
	require.Equal(t, exp.Marshal(), act.Marshal())
}
