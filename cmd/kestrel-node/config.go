package main

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	apiclientconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/apiclient"
	loggerconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/logger"
	nodeconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/node"
	"github.com/kestrelfs/kestrel-node/misc"
	"github.com/kestrelfs/kestrel-node/pkg/core/static"
	"github.com/kestrelfs/kestrel-node/pkg/local_object_storage/engine"
	"github.com/kestrelfs/kestrel-node/pkg/metrics"
	"github.com/kestrelfs/kestrel-node/pkg/network/cache"
	"github.com/kestrelfs/kestrel-node/pkg/services/notificator"
	"github.com/kestrelfs/kestrel-node/pkg/services/object/util"
	"github.com/kestrelfs/kestrel-node/pkg/util/grace"
	"github.com/kestrelfs/kestrel-node/pkg/util/logger"
	"github.com/kestrelfs/kestrel-node/pkg/util/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type cfg struct {
	ctx       context.Context
	ctxCancel func()

	// fatal errors of the background routines
	internalErr chan error

	appCfg *config.Config

	log *logger.Logger

	wg *sync.WaitGroup

	workers []worker

	closers []func()

	key util.LocalKey

	persistate *state.PersistentStorage

	netmapSource *static.NetmapSource

	cnrSrc *static.ContainerSource

	engine *engine.StorageEngine

	registry *prometheus.Registry
	metrics  *metrics.NodeMetrics

	clientCache *cache.ClientCache

	grpcServer   *grpc.Server
	grpcListener net.Listener

	notificator *notificator.Notificator

	cfgObject cfgObject
}

func loggerPrm(appCfg *config.Config) (logger.Prm, error) {
	var prm logger.Prm

	err := prm.SetLevelString(loggerconfig.Level(appCfg))
	if err != nil {
		return prm, fmt.Errorf("invalid logger level: %w", err)
	}

	err = prm.SetEncoding(loggerconfig.Encoding(appCfg))
	if err != nil {
		return prm, fmt.Errorf("invalid logger encoding: %w", err)
	}

	return prm, nil
}

func initCfg(appCfg *config.Config) *cfg {
	logPrm, err := loggerPrm(appCfg)
	fatalOnErr(err)

	log, err := logger.NewLogger(logPrm)
	fatalOnErr(err)

	c := &cfg{
		appCfg:      appCfg,
		log:         log,
		wg:          new(sync.WaitGroup),
		internalErr: make(chan error, 1),
		key:         nodeconfig.PublicKey(appCfg),
		registry:    prometheus.NewRegistry(),
	}

	ctx, cancel := context.WithCancel(grace.NewGracefulContext(log.Logger))
	c.ctx = ctx
	c.ctxCancel = cancel

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.metrics = metrics.NewNodeMetrics(c.registry, misc.Version)
	c.metrics.SetHealth(metrics.HealthStarting)

	c.clientCache = cache.NewSDKClientCache(cache.ClientCacheOpts{
		DialTimeout:   apiclientconfig.DialTimeout(appCfg),
		StreamTimeout: apiclientconfig.StreamTimeout(appCfg),
		Logger:        log.Logger,
	})

	c.onShutdown(func() { _ = log.Sync() })
	c.onShutdown(c.clientCache.CloseAll)

	return c
}

// reloadLogger re-reads the configuration file and applies logger level.
func (c *cfg) reloadLogger() {
	err := c.appCfg.Reload()
	if err != nil {
		c.log.Error("could not re-read configuration", zap.Error(err))
		return
	}

	prm, err := loggerPrm(c.appCfg)
	if err != nil {
		c.log.Error("could not apply logger configuration", zap.Error(err))
		return
	}

	c.log.Reload(prm)
}
