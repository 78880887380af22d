package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	nodeconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/node"
	"github.com/kestrelfs/kestrel-node/pkg/core/netmap"
	"github.com/kestrelfs/kestrel-node/pkg/core/static"
	"github.com/kestrelfs/kestrel-node/pkg/util"
	"github.com/kestrelfs/kestrel-node/pkg/util/state"
	"go.uber.org/zap"
)

// epochStateKey is a persistent state key of the last epoch handled by the
// storage engine.
var epochStateKey = []byte("epoch")

func initNetmap(c *cfg) {
	var err error

	c.netmapSource, err = static.NewNetmapSource(
		nodeconfig.NetmapPath(c.appCfg),
		nodeconfig.NetmapCacheSize(c.appCfg),
	)
	fatalOnErrDetails("could not read network map", err)

	c.cnrSrc, err = static.NewContainerSource(nodeconfig.ContainersPath(c.appCfg))
	fatalOnErrDetails("could not read containers", err)

	epoch := c.netmapSource.CurrentEpoch()
	c.metrics.SetEpoch(epoch)

	initPersistentState(c)
	c.catchUpEpoch(c.ctx, epoch)

	if !c.localNodeInNetmap() {
		c.log.Warn("local node is missing in the network map",
			zap.Uint64("epoch", epoch))
	}

	interval := nodeconfig.ReloadInterval(c.appCfg)

	c.workers = append(c.workers, newWorkerFromFunc(func(ctx context.Context) {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.reloadStaticSources(ctx)
			}
		}
	}))
}

// reloadStaticSources re-reads network map and container files. Storage
// engine is notified if the epoch has changed. Logger level is re-read
// from the configuration file too.
func (c *cfg) reloadStaticSources(ctx context.Context) {
	c.reloadLogger()

	changed, err := c.netmapSource.Reload()
	if err != nil {
		c.log.Error("could not reload network map", zap.Error(err))
	} else if changed {
		epoch := c.netmapSource.CurrentEpoch()

		c.log.Info("new epoch", zap.Uint64("epoch", epoch))

		c.metrics.SetEpoch(epoch)
		c.handleNewEpoch(ctx, epoch)
	}

	if err := c.cnrSrc.Reload(); err != nil {
		c.log.Error("could not reload containers", zap.Error(err))
	}
}

func (c *cfg) localNodeInNetmap() bool {
	nm, err := netmap.GetLatestNetworkMap(c.netmapSource)
	if err != nil {
		return false
	}

	for _, n := range nm.Nodes() {
		if c.key.IsLocalKey(n.PublicKey()) {
			return true
		}
	}

	return false
}

func initPersistentState(c *cfg) {
	path := nodeconfig.PersistentStatePath(c.appCfg)

	err := util.MkdirAllX(filepath.Dir(path), os.ModePerm)
	fatalOnErrDetails("could not create persistent state directory", err)

	c.persistate, err = state.NewPersistentStorage(path)
	fatalOnErrDetails("could not open persistent state", err)

	c.onShutdown(func() {
		if err := c.persistate.Close(); err != nil {
			c.log.Warn("could not close persistent state", zap.Error(err))
		}
	})
}

// catchUpEpoch notifies storage engine about the epoch if it has changed
// while the node was down.
func (c *cfg) catchUpEpoch(ctx context.Context, epoch uint64) {
	last, err := c.persistate.Uint64(epochStateKey)
	if err != nil {
		c.log.Warn("could not read last handled epoch", zap.Error(err))
		return
	}

	switch {
	case last == epoch:
	case last > epoch:
		c.log.Warn("network map epoch is older than the last handled one",
			zap.Uint64("network map", epoch),
			zap.Uint64("handled", last))
	default:
		c.handleNewEpoch(ctx, epoch)
	}
}

func (c *cfg) handleNewEpoch(ctx context.Context, epoch uint64) {
	c.engine.HandleNewEpoch(ctx, epoch)

	if err := c.persistate.SetUint64(epochStateKey, epoch); err != nil {
		c.log.Warn("could not save last handled epoch", zap.Error(err))
	}
}
