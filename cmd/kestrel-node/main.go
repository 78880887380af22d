package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kestrelfs/kestrel-node/cmd/kestrel-node/config"
	"github.com/kestrelfs/kestrel-node/misc"
	"github.com/kestrelfs/kestrel-node/pkg/metrics"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func fatalOnErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func fatalOnErrDetails(details string, err error) {
	if err != nil {
		log.Fatal(fmt.Errorf("%s: %w", details, err))
	}
}

func main() {
	configFile := pflag.StringP("config", "c", "", "path to config")
	versionFlag := pflag.BoolP("version", "v", false, "show application version and exit")

	pflag.Parse()

	if *versionFlag {
		fmt.Printf("kestrel-node\nVersion: %s\nBuild: %s\nDebug: %s\n",
			misc.Version, misc.Build, misc.Debug)
		os.Exit(0)
	}

	appCfg := config.New(config.Prm{}, config.WithConfigFile(*configFile))

	c := initCfg(appCfg)

	initApp(c)

	c.metrics.SetHealth(metrics.HealthReady)
	c.log.Info("application started",
		zap.String("version", misc.Version))

	wait(c)

	c.metrics.SetHealth(metrics.HealthShuttingDown)

	shutdown(c)
}

func initAndLog(c *cfg, name string, initializer func(*cfg)) {
	c.log.Info(fmt.Sprintf("initializing %s service...", name))
	initializer(c)
	c.log.Info(fmt.Sprintf("%s service has been successfully initialized", name))
}

func initApp(c *cfg) {
	initAndLog(c, "storage engine", initLocalStorage)
	initAndLog(c, "network map", initNetmap)
	initAndLog(c, "notification", initNotifications)
	initAndLog(c, "object", initObjectService)
	initAndLog(c, "policer", initPolicer)
	initAndLog(c, "metrics", initMetrics)
	initAndLog(c, "profiler", initProfiler)
	initAndLog(c, "gRPC", initGRPC)

	startWorkers(c)
	serveGRPC(c)
}

func wait(c *cfg) {
	select {
	case <-c.ctx.Done():
	case err := <-c.internalErr:
		c.log.Warn("internal application error",
			zap.String("message", err.Error()))
		c.ctxCancel()
	}
}

func shutdown(c *cfg) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}

	c.log.Debug("waiting for all processes to stop")

	c.wg.Wait()

	c.log.Info("application stopped")
}

// onShutdown registers f to be called on application shutdown. Functions
// are called in the reverse order of registration.
func (c *cfg) onShutdown(f func()) {
	c.closers = append(c.closers, f)
}

func (c *cfg) reportInternalError(err error) {
	select {
	case c.internalErr <- err:
	default:
	}
}
