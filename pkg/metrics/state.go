package metrics

import "github.com/prometheus/client_golang/prometheus"

const stateSubsystem = "state"

// Node health states reported by SetHealth.
const (
	HealthStarting int32 = iota + 1
	HealthReady
	HealthShuttingDown
)

type stateMetrics struct {
	healthCheck prometheus.Gauge
}

func newStateMetrics() stateMetrics {
	return stateMetrics{
		healthCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: stateSubsystem,
			Name:      "health",
			Help:      "Current Node state",
		}),
	}
}

func (m stateMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.healthCheck)
}

func (m stateMetrics) SetHealth(s int32) {
	m.healthCheck.Set(float64(s))
}
