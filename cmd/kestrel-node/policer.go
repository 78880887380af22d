package main

import (
	"context"

	policerconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/policer"
	replicatorconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/replicator"
	oid "github.com/kestrelfs/kestrel-node/pkg/core/object/id"
	headsvc "github.com/kestrelfs/kestrel-node/pkg/services/object/head"
	putsvc "github.com/kestrelfs/kestrel-node/pkg/services/object/put"
	"github.com/kestrelfs/kestrel-node/pkg/services/object_manager/placement"
	"github.com/kestrelfs/kestrel-node/pkg/services/policer"
	"github.com/kestrelfs/kestrel-node/pkg/services/replicator"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

func initPolicer(c *cfg) {
	replCfg := replicatorconfig.Get(c.appCfg)

	repl := replicator.New(
		replicator.WithLogger(c.log.Logger),
		replicator.WithPutTimeout(replCfg.PutTimeout),
		replicator.WithLocalStorage(c.engine),
		replicator.WithRemoteSender(putsvc.NewRemoteSender(c.clientCache)),
		replicator.WithMetrics(c.metrics),
	)

	polCfg := policerconfig.Get(c.appCfg)

	pool, err := ants.NewPool(polCfg.PoolSize, ants.WithNonblocking(true))
	fatalOnErrDetails("could not create policer pool", err)

	c.onShutdown(pool.Release)

	pol := policer.New(
		policer.WithLogger(c.log.Logger),
		policer.WithLocalStorage(c.engine),
		policer.WithContainerSource(c.cnrSrc),
		policer.WithPlacementBuilder(
			placement.NewNetworkMapSourceBuilder(c.netmapSource),
		),
		policer.WithRemoteHeader(headsvc.NewRemoteHeader(c.clientCache)),
		policer.WithNetmapKeys(c.key),
		policer.WithReplicator(repl),
		policer.WithRedundantCopyCallback(func(addr oid.Address) {
			err := c.engine.MarkGarbage(addr)
			if err != nil {
				c.log.Warn("could not mark redundant copy for removal",
					zap.Stringer("address", addr),
					zap.Error(err),
				)
			}
		}),
		policer.WithPool(pool),
		policer.WithHeadTimeout(polCfg.HeadTimeout),
		policer.WithObjectCacheSize(polCfg.CacheSize),
		policer.WithObjectCacheTime(polCfg.CacheTime),
		policer.WithObjectBatchSize(polCfg.ObjectBatchSize),
		policer.WithSleepDuration(polCfg.SleepDuration),
	)

	c.workers = append(c.workers, newWorkerFromFunc(func(ctx context.Context) {
		pol.Run(ctx)
	}))
}
