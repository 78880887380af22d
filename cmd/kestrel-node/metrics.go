package main

import (
	"context"
	"net/http"
	"time"

	metricsconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/metrics"
	profilerconfig "github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config/profiler"
	httputil "github.com/kestrelfs/kestrel-node/pkg/util/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func initMetrics(c *cfg) {
	if !metricsconfig.Enabled(c.appCfg) {
		c.log.Info("prometheus is disabled")
		return
	}

	initHTTPService(c, "prometheus",
		metricsconfig.Address(c.appCfg),
		metricsconfig.ShutdownTimeout(c.appCfg),
		promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}),
	)
}

func initProfiler(c *cfg) {
	if !profilerconfig.Enabled(c.appCfg) {
		c.log.Info("pprof is disabled")
		return
	}

	initHTTPService(c, "pprof",
		profilerconfig.Address(c.appCfg),
		profilerconfig.ShutdownTimeout(c.appCfg),
		httputil.PprofHandler(),
	)
}

func initHTTPService(c *cfg, name, addr string, shutdownTimeout time.Duration, h http.Handler) {
	srv := httputil.New(
		httputil.HTTPSrvPrm{
			Address: addr,
			Handler: h,
		},
		httputil.WithShutdownTimeout(shutdownTimeout),
	)

	c.workers = append(c.workers, newWorkerFromFunc(func(context.Context) {
		c.log.Info("start "+name+" service", zap.String("address", srv.Address()))

		if err := srv.Serve(); err != nil {
			c.reportInternalError(err)
		}
	}))

	c.onShutdown(func() {
		c.log.Debug("shutting down " + name + " service")

		if err := srv.Shutdown(); err != nil {
			c.log.Debug("could not shutdown "+name+" service", zap.Error(err))
		}
	})
}
