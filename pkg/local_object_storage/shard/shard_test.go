package shard_test

import (
	"path/filepath"
	"testing"

	"github.com/kestrelfs/kestrel-node/pkg/core/object"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	smallSize = 4 << 10
	bigSize   = 64 << 10
)

// shardOptions returns options of the shard rooted at dir.
func shardOptions(t *testing.T, dir string, enableWriteCache bool) []shard.Option {
	l := zaptest.NewLogger(t)

	return []shard.Option{
		shard.WithLogger(l),
		shard.WithBlobStorOptions(
			blobstor.WithLogger(l),
			blobstor.WithStorages([]blobstor.SubStorage{
				{
					Storage: blobovniczatree.NewBlobovniczaTree(
						blobovniczatree.WithLogger(l),
						blobovniczatree.WithRootPath(filepath.Join(dir, "blob", "blobovnicza")),
						blobovniczatree.WithBlobovniczaShallowDepth(1),
						blobovniczatree.WithBlobovniczaShallowWidth(2),
						blobovniczatree.WithObjectSizeLimit(smallSize)),
					Policy: blobstor.SmallObjectPolicy(smallSize),
				},
				{
					Storage: fstree.New(
						fstree.WithLogger(l),
						fstree.WithPath(filepath.Join(dir, "blob"))),
				},
			}),
		),
		shard.WithMetaBaseOptions(
			meta.WithLogger(l),
			meta.WithPath(filepath.Join(dir, "meta")),
			meta.WithPermissions(0700),
		),
		shard.WithWriteCache(enableWriteCache),
		shard.WithWriteCacheOptions(
			writecache.WithLogger(l),
			writecache.WithPath(filepath.Join(dir, "writecache")),
			writecache.WithSmallObjectSize(smallSize),
			writecache.WithMaxObjectSize(bigSize),
		),
	}
}

func newShard(t *testing.T, enableWriteCache bool, opts ...shard.Option) *shard.Shard {
	dir := t.TempDir()

	sh := shard.New(append(shardOptions(t, dir, enableWriteCache), opts...)...)

	require.NoError(t, sh.Open())
	require.NoError(t, sh.Init())

	t.Cleanup(func() {
		require.NoError(t, sh.Close())
	})

	return sh
}

func requireSameObject(t *testing.T, exp, act *object.Object) {
	require.Equal(t, exp.Marshal(), act.Marshal())
}
