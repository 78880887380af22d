package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const objectSubsystem = "object"

type objectServiceMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	putPayload prometheus.Counter
	getPayload prometheus.Counter

	replicated *prometheus.CounterVec
}

func newObjectServiceMetrics() objectServiceMetrics {
	return objectServiceMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: objectSubsystem,
			Name:      "request_count",
			Help:      "Number of object requests processed",
		}, []string{"method", successLabelKey}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: objectSubsystem,
			Name:      "request_time",
			Help:      "Object requests handling time",
		}, []string{"method"}),
		putPayload: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: objectSubsystem,
			Name:      "put_payload",
			Help:      "Accumulated payload size at object put method",
		}),
		getPayload: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: objectSubsystem,
			Name:      "get_payload",
			Help:      "Accumulated payload size at object get method",
		}),
		replicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: objectSubsystem,
			Name:      "replicated_count",
			Help:      "Number of object copies sent to other nodes by the replicator",
		}, []string{successLabelKey}),
	}
}

func (m objectServiceMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.requests, m.duration, m.putPayload, m.getPayload, m.replicated)
}

// HandleOpExecResult accounts executed object operation.
func (m objectServiceMetrics) HandleOpExecResult(method string, success bool, d time.Duration) {
	m.requests.With(prometheus.Labels{"method": method, successLabelKey: boolLabel(success)}).Inc()
	m.duration.With(prometheus.Labels{"method": method}).Observe(d.Seconds())
}

// AddPutPayload accounts payload of the stored object.
func (m objectServiceMetrics) AddPutPayload(ln int) {
	m.putPayload.Add(float64(ln))
}

// AddGetPayload accounts payload of the read object.
func (m objectServiceMetrics) AddGetPayload(ln int) {
	m.getPayload.Add(float64(ln))
}

// AddReplicated accounts single replication attempt.
func (m objectServiceMetrics) AddReplicated(success bool) {
	m.replicated.With(prometheus.Labels{successLabelKey: boolLabel(success)}).Inc()
}
