package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	writecacheSubsystem = "writecache"

	shardIDLabelKey     = "shard"
	storageTypeLabelKey = "storage"
	successLabelKey     = "success"
)

type writecacheMetrics struct {
	putDuration *prometheus.HistogramVec
	flushCount  *prometheus.CounterVec
	evictCount  *prometheus.CounterVec

	objectCount *prometheus.GaugeVec
}

func newWritecacheMetrics() writecacheMetrics {
	var (
		putDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: writecacheSubsystem,
			Name:      "put_time",
			Help:      "Writecache 'put' operations handling time",
		}, []string{shardIDLabelKey, storageTypeLabelKey, successLabelKey})

		flushCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: writecacheSubsystem,
			Name:      "flush_count",
			Help:      "Number of objects flushed from the writecache",
		}, []string{shardIDLabelKey, storageTypeLabelKey, successLabelKey})

		evictCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: writecacheSubsystem,
			Name:      "evict_count",
			Help:      "Number of objects evicted from the writecache",
		}, []string{shardIDLabelKey, storageTypeLabelKey})

		objectCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: writecacheSubsystem,
			Name:      "object_count",
			Help:      "Number of objects in the writecache",
		}, []string{shardIDLabelKey, storageTypeLabelKey})
	)

	return writecacheMetrics{
		putDuration: putDuration,
		flushCount:  flushCount,
		evictCount:  evictCount,
		objectCount: objectCount,
	}
}

func (m writecacheMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.putDuration)
	reg.MustRegister(m.flushCount)
	reg.MustRegister(m.evictCount)
	reg.MustRegister(m.objectCount)
}

// WriteCache returns write-cache metrics collector of the shard.
func (m writecacheMetrics) WriteCache(shardID string) *WriteCacheMetrics {
	return &WriteCacheMetrics{m: m, shardID: shardID}
}

// WriteCacheMetrics collects metrics of the single write-cache.
type WriteCacheMetrics struct {
	m       writecacheMetrics
	shardID string
}

func (w *WriteCacheMetrics) Put(d time.Duration, success bool, storageType string) {
	w.m.putDuration.With(prometheus.Labels{
		shardIDLabelKey:     w.shardID,
		storageTypeLabelKey: storageType,
		successLabelKey:     boolLabel(success),
	}).Observe(d.Seconds())
}

func (w *WriteCacheMetrics) Flush(success bool, storageType string) {
	w.m.flushCount.With(prometheus.Labels{
		shardIDLabelKey:     w.shardID,
		storageTypeLabelKey: storageType,
		successLabelKey:     boolLabel(success),
	}).Inc()
}

func (w *WriteCacheMetrics) Evict(storageType string) {
	w.m.evictCount.With(prometheus.Labels{
		shardIDLabelKey:     w.shardID,
		storageTypeLabelKey: storageType,
	}).Inc()
}

func (w *WriteCacheMetrics) SetObjectCount(storageType string, n uint64) {
	w.m.objectCount.With(prometheus.Labels{
		shardIDLabelKey:     w.shardID,
		storageTypeLabelKey: storageType,
	}).Set(float64(n))
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}

	return "false"
}
