package metrics

import "github.com/prometheus/client_golang/prometheus"

const storageNodeNameSpace = "kestrel_node"

// NodeMetrics collects all metrics of the storage node.
type NodeMetrics struct {
	objectServiceMetrics
	engineMetrics
	stateMetrics
	writecacheMetrics

	epoch prometheus.Gauge
}

// NewNodeMetrics creates and registers all storage node metrics in reg.
func NewNodeMetrics(reg prometheus.Registerer, version string) *NodeMetrics {
	objectService := newObjectServiceMetrics()
	objectService.register(reg)

	engine := newEngineMetrics()
	engine.register(reg)

	state := newStateMetrics()
	state.register(reg)

	writecache := newWritecacheMetrics()
	writecache.register(reg)

	epoch := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: storageNodeNameSpace,
		Subsystem: stateSubsystem,
		Name:      "epoch",
		Help:      "Current epoch as seen by the storage node.",
	})
	reg.MustRegister(epoch)

	registerVersionMetric(reg, storageNodeNameSpace, version)

	return &NodeMetrics{
		objectServiceMetrics: objectService,
		engineMetrics:        engine,
		stateMetrics:         state,
		writecacheMetrics:    writecache,
		epoch:                epoch,
	}
}

// SetEpoch updates epoch metric.
func (m *NodeMetrics) SetEpoch(epoch uint64) {
	m.epoch.Set(float64(epoch))
}
