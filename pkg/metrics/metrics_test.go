package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewNodeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	var m *NodeMetrics
	require.NotPanics(t, func() {
		m = NewNodeMetrics(reg, "any_version")
	})

	m.SetEpoch(10)
	require.EqualValues(t, 10, testutil.ToFloat64(m.epoch))

	m.SetHealth(HealthReady)
	require.EqualValues(t, HealthReady, testutil.ToFloat64(m.healthCheck))

	t.Run("engine", func(t *testing.T) {
		m.SetObjectCounter("shard", 5)
		m.AddToObjectCounter("shard", -2)
		require.EqualValues(t, 3, testutil.ToFloat64(m.objectCounter.WithLabelValues("shard")))

		m.SetReadonly("shard", true)
		require.EqualValues(t, 1, testutil.ToFloat64(m.readonly.WithLabelValues("shard")))

		m.AddToContainerSize("cnr", 100)
		m.AddToContainerSize("cnr", -40)
		require.EqualValues(t, 60, testutil.ToFloat64(m.containerSize.WithLabelValues("cnr")))

		m.AddPutDuration(time.Millisecond)
		require.Equal(t, 1, testutil.CollectAndCount(m.engineMetrics.putDuration))
	})

	t.Run("object service", func(t *testing.T) {
		m.HandleOpExecResult("Put", true, time.Millisecond)
		m.HandleOpExecResult("Put", false, time.Millisecond)
		m.HandleOpExecResult("Put", true, time.Millisecond)

		require.EqualValues(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("Put", "true")))
		require.EqualValues(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("Put", "false")))

		m.AddPutPayload(10)
		m.AddPutPayload(20)
		require.EqualValues(t, 30, testutil.ToFloat64(m.putPayload))
	})

	t.Run("write-cache", func(t *testing.T) {
		wc := m.WriteCache("shard")

		wc.SetObjectCount("db", 7)
		wc.Evict("db")
		wc.Flush(true, "fstree")

		require.EqualValues(t, 7, testutil.ToFloat64(m.objectCount.WithLabelValues("shard", "db")))
		require.EqualValues(t, 1, testutil.ToFloat64(m.evictCount.WithLabelValues("shard", "db")))
		require.EqualValues(t, 1, testutil.ToFloat64(m.flushCount.WithLabelValues("shard", "fstree", "true")))
	})
}
