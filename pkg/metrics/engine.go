package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const engineSubsystem = "engine"

type engineMetrics struct {
	listContainersDuration        prometheus.Histogram
	estimateContainerSizeDuration prometheus.Histogram
	deleteDuration                prometheus.Histogram
	existsDuration                prometheus.Histogram
	getDuration                   prometheus.Histogram
	headDuration                  prometheus.Histogram
	inhumeDuration                prometheus.Histogram
	putDuration                   prometheus.Histogram
	rangeDuration                 prometheus.Histogram
	searchDuration                prometheus.Histogram
	listObjectsDuration           prometheus.Histogram

	containerSize *prometheus.GaugeVec
	objectCounter *prometheus.GaugeVec
	readonly      *prometheus.GaugeVec
}

func newEngineMethodDurationHistogram(method string) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: storageNodeNameSpace,
		Subsystem: engineSubsystem,
		Name:      method + "_time",
		Help:      "Engine '" + method + "' operations handling time",
	})
}

func newEngineMetrics() engineMetrics {
	return engineMetrics{
		listContainersDuration:        newEngineMethodDurationHistogram("list_containers"),
		estimateContainerSizeDuration: newEngineMethodDurationHistogram("estimate_container_size"),
		deleteDuration:                newEngineMethodDurationHistogram("delete"),
		existsDuration:                newEngineMethodDurationHistogram("exists"),
		getDuration:                   newEngineMethodDurationHistogram("get"),
		headDuration:                  newEngineMethodDurationHistogram("head"),
		inhumeDuration:                newEngineMethodDurationHistogram("inhume"),
		putDuration:                   newEngineMethodDurationHistogram("put"),
		rangeDuration:                 newEngineMethodDurationHistogram("range"),
		searchDuration:                newEngineMethodDurationHistogram("search"),
		listObjectsDuration:           newEngineMethodDurationHistogram("list_objects"),

		containerSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: engineSubsystem,
			Name:      "container_size",
			Help:      "Accumulated size of all objects in a container",
		}, []string{"cid"}),
		objectCounter: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: engineSubsystem,
			Name:      "object_counter",
			Help:      "Objects counters per shards",
		}, []string{shardIDLabelKey}),
		readonly: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: storageNodeNameSpace,
			Subsystem: engineSubsystem,
			Name:      "mode_readonly",
			Help:      "Shard is not in read-write mode",
		}, []string{shardIDLabelKey}),
	}
}

func (m engineMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.listContainersDuration,
		m.estimateContainerSizeDuration,
		m.deleteDuration,
		m.existsDuration,
		m.getDuration,
		m.headDuration,
		m.inhumeDuration,
		m.putDuration,
		m.rangeDuration,
		m.searchDuration,
		m.listObjectsDuration,
		m.containerSize,
		m.objectCounter,
		m.readonly,
	)
}

func (m engineMetrics) AddListContainersDuration(d time.Duration) {
	m.listContainersDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddEstimateContainerSizeDuration(d time.Duration) {
	m.estimateContainerSizeDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddDeleteDuration(d time.Duration) {
	m.deleteDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddExistsDuration(d time.Duration) {
	m.existsDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddGetDuration(d time.Duration) {
	m.getDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddHeadDuration(d time.Duration) {
	m.headDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddInhumeDuration(d time.Duration) {
	m.inhumeDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddPutDuration(d time.Duration) {
	m.putDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddRangeDuration(d time.Duration) {
	m.rangeDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddSearchDuration(d time.Duration) {
	m.searchDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddListObjectsDuration(d time.Duration) {
	m.listObjectsDuration.Observe(d.Seconds())
}

func (m engineMetrics) AddToContainerSize(cnrID string, size int64) {
	m.containerSize.With(prometheus.Labels{"cid": cnrID}).Add(float64(size))
}

func (m engineMetrics) SetObjectCounter(shardID string, v uint64) {
	m.objectCounter.With(prometheus.Labels{shardIDLabelKey: shardID}).Set(float64(v))
}

func (m engineMetrics) AddToObjectCounter(shardID string, delta int) {
	m.objectCounter.With(prometheus.Labels{shardIDLabelKey: shardID}).Add(float64(delta))
}

func (m engineMetrics) SetReadonly(shardID string, readonly bool) {
	var v float64
	if readonly {
		v = 1
	}

	m.readonly.With(prometheus.Labels{shardIDLabelKey: shardID}).Set(v)
}
