package main

import (
	"time"

	engineconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine"
	shardconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/engine/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/blobovniczatree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/blobstor/fstree"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	meta "github.com/kestrelfs/kestrel-node/pkg/local_object_storage/metabase"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/shard"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/writecache"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"github.com/panjf2000/ants/v2"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// boltOpenTimeout limits waiting for the exclusive lock of BoltDB files.
const boltOpenTimeout = 100 * time.Millisecond

func initLocalStorage(c *cfg) {
	c.engine = engine.New(
		engine.WithLogger(c.log.Logger),
		engine.WithMetrics(c.metrics),
		engine.WithShardPoolSize(engineconfig.ShardPoolSize(c.appCfg)),
		engine.WithErrorThreshold(engineconfig.ShardErrorThreshold(c.appCfg)),
	)

	err := engineconfig.IterateShards(c.appCfg, true, func(sc *shardconfig.Config) error {
		id, err := c.engine.AddShard(shardOptions(c, sc)...)
		if err != nil {
			return err
		}

		c.log.Info("shard attached to engine", zap.Stringer("id", id))

		return nil
	})
	fatalOnErrDetails("could not attach shards", err)

	fatalOnErrDetails("could not open storage engine", c.engine.Open())
	fatalOnErrDetails("could not initialize storage engine", c.engine.Init())

	c.onShutdown(func() {
		c.log.Info("closing components of the storage engine...")

		err := c.engine.Close()
		if err != nil {
			c.log.Info("storage engine closing failure",
				zap.String("error", err.Error()),
			)
		} else {
			c.log.Info("all components of the storage engine closed successfully")
		}
	})
}

func shardOptions(c *cfg, sc *shardconfig.Config) []shard.Option {
	var wcOpts []writecache.Option

	wc := sc.WriteCache()
	useWriteCache := wc.Enabled()

	if useWriteCache {
		wcOpts = []writecache.Option{
			writecache.WithLogger(c.log.Logger),
			writecache.WithPath(wc.Path()),
			writecache.WithSmallObjectSize(wc.SmallObjectSize()),
			writecache.WithMaxObjectSize(wc.MaxObjectSize()),
			writecache.WithFlushWorkersCount(wc.WorkersNumber()),
			writecache.WithMaxCacheSize(wc.SizeLimit()),
			writecache.WithMaxMemSize(wc.MemSize()),
			writecache.WithMaxBatchSize(wc.MaxBatchSize()),
			writecache.WithMaxBatchDelay(wc.MaxBatchDelay()),
			writecache.WithNoSync(wc.NoSync()),
			writecache.WithMetrics(c.metrics.WriteCache(wc.Path())),
		}
	}

	mbCfg := sc.Metabase()
	blzCfg := sc.BlobStor().Blobovnicza()
	fstCfg := sc.BlobStor().FSTree()
	gcCfg := sc.GC()

	return []shard.Option{
		shard.WithLogger(c.log.Logger),
		shard.WithMode(sc.Mode()),
		shard.WithRefillMetabase(sc.RefillMetabase()),
		shard.WithBlobStorOptions(
			blobstor.WithLogger(c.log.Logger),
			blobstor.WithCompressObjects(sc.Compress()),
			blobstor.WithUncompressableContentTypes(sc.UncompressableContentTypes()),
			blobstor.WithStorages([]blobstor.SubStorage{
				{
					Storage: blobovniczatree.NewBlobovniczaTree(
						blobovniczatree.WithLogger(c.log.Logger),
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
						fstree.WithLogger(c.log.Logger),
						fstree.WithPath(fstCfg.Path()),
						fstree.WithPerm(fstCfg.Perm()),
						fstree.WithDepth(fstCfg.Depth()),
						fstree.WithNoSync(fstCfg.NoSync()),
					),
				},
			}),
		),
		shard.WithMetaBaseOptions(
			meta.WithLogger(c.log.Logger),
			meta.WithPath(mbCfg.Path()),
			meta.WithPermissions(mbCfg.Perm()),
			meta.WithMaxBatchSize(mbCfg.MaxBatchSize()),
			meta.WithMaxBatchDelay(mbCfg.MaxBatchDelay()),
			meta.WithBoltDBOptions(&bbolt.Options{
				Timeout: boltOpenTimeout,
			}),
		),
		shard.WithWriteCache(useWriteCache),
		shard.WithWriteCacheOptions(wcOpts...),
		shard.WithRemoverBatchSize(int(gcCfg.RemoverBatchSize)),
		shard.WithGCRemoverSleepInterval(gcCfg.RemoverSleepInterval),
		shard.WithGCWorkerPoolInitializer(func(sz int) util.WorkerPool {
			pool, err := ants.NewPool(sz)
			fatalOnErr(err)

			return pool
		}),
	}
}
