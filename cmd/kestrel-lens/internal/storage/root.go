package storage

import (
	"fmt"
	"time"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	engineconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine"
	shardconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard/mode"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	vAddress string
	vConfig  string
)

// Root contains `storage` command definition.
var Root = &cobra.Command{
	Use:   "storage",
	Short: "Operations with the storage engine of a stopped node",
}

func init() {
	Root.AddCommand(statusCMD, verifyCMD)
}

// openEngine builds the storage engine described by the node configuration
// with all shards in read-only mode.
func openEngine() (*engine.StorageEngine, error) {
	appCfg := config.New(config.Prm{}, config.WithConfigFile(vConfig))

	e := engine.New(
		engine.WithLogger(zap.NewNop()),
		engine.WithShardPoolSize(engineconfig.ShardPoolSize(appCfg)),
	)

	err := engineconfig.IterateShards(appCfg, true, func(sc *shardconfig.Config) error {
		_, err := e.AddShard(shardOptions(sc)...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not attach shards: %w", err)
	}

	err = e.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open storage engine: %w", err)
	}

	err = e.Init()
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("could not init storage engine: %w", err)
	}

	return e, nil
}

func shardOptions(sc *shardconfig.Config) []shard.Option {
	var wcOpts []writecache.Option

	wc := sc.WriteCache()
	if wc.Enabled() {
		wcOpts = []writecache.Option{
			writecache.WithPath(wc.Path()),
			writecache.WithSmallObjectSize(wc.SmallObjectSize()),
			writecache.WithMaxObjectSize(wc.MaxObjectSize()),
		}
	}

	blzCfg := sc.BlobStor().Blobovnicza()
	fstCfg := sc.BlobStor().FSTree()
	mbCfg := sc.Metabase()

	m := mode.ReadOnly
	if sc.Mode().NoMetabase() {
		m = mode.DegradedReadOnly
	}

	return []shard.Option{
		shard.WithMode(m),
		shard.WithBlobStorOptions(
			blobstor.WithCompressObjects(sc.Compress()),
			blobstor.WithStorages([]blobstor.SubStorage{
				{
					Storage: blobovniczatree.NewBlobovniczaTree(
						blobovniczatree.WithRootPath(blzCfg.Path()),
						blobovniczatree.WithPermissions(blzCfg.Perm()),
						blobovniczatree.WithBlobovniczaSize(blzCfg.Size()),
						blobovniczatree.WithBlobovniczaShallowDepth(blzCfg.ShallowDepth()),
						blobovniczatree.WithBlobovniczaShallowWidth(blzCfg.ShallowWidth()),
						blobovniczatree.WithOpenedCacheSize(blzCfg.OpenedCacheSize()),
						blobovniczatree.WithObjectSizeLimit(sc.SmallObjectSize()),
					),
					Policy: blobstor.SmallObjectPolicy(sc.SmallObjectSize()),
				},
				{
					Storage: fstree.New(
						fstree.WithPath(fstCfg.Path()),
						fstree.WithPerm(fstCfg.Perm()),
						fstree.WithDepth(fstCfg.Depth()),
					),
				},
			}),
		),
		shard.WithMetaBaseOptions(
			meta.WithPath(mbCfg.Path()),
			meta.WithPermissions(mbCfg.Perm()),
			meta.WithBoltDBOptions(&bbolt.Options{
				Timeout: 100 * time.Millisecond,
			}),
		),
		shard.WithWriteCache(wc.Enabled()),
		shard.WithWriteCacheOptions(wcOpts...),
		shard.WithGCWorkerPoolInitializer(func(sz int) util.WorkerPool {
			pool, err := ants.NewPool(sz)
			if err != nil {
				panic(err)
			}

			return pool
		}),
	}
}
