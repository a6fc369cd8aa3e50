package prometheus

import (
	"testing"
	"time"

	"github.com/Swind/go-thread/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("threadprio", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordThreadSpawned("rt-a", 0)
	exporter.RecordThreadExited("rt-a", core.StatusDead, 250*time.Millisecond)
	exporter.RecordThreadExited("rt-a", core.StatusAborted, time.Millisecond)
	exporter.RecordThreadPanic("rt-a", "panic")
	exporter.RecordPriorityChanged("rt-a", 0, 3)
	exporter.RecordPriorityRejected("rt-a", "type_mismatch")

	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.threadSpawnedTotal.WithLabelValues("rt-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.threadExitedTotal.WithLabelValues("rt-a", "dead")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.threadExitedTotal.WithLabelValues("rt-a", "aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.threadPanicTotal.WithLabelValues("rt-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.priorityChangesTotal.WithLabelValues("rt-a")))
	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.lastAssignedPriority.WithLabelValues("rt-a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.priorityRejectedTotal.WithLabelValues("rt-a", "type_mismatch")))

	histCount, err := histogramSampleCount(exporter.threadDurationSeconds.WithLabelValues("rt-a"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), histCount)
}

func TestMetricsExporter_EmptyLabels(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	require.NoError(t, err)

	exporter.RecordPriorityRejected("", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.priorityRejectedTotal.WithLabelValues("unknown", "unknown")))
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("threadprio", reg, ExporterOptions{})
	require.NoError(t, err)
	second, err := NewMetricsExporter("threadprio", reg, ExporterOptions{})
	require.NoError(t, err)

	first.RecordThreadPanic("rt-a", nil)
	second.RecordThreadPanic("rt-a", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.threadPanicTotal.WithLabelValues("rt-a")))
}

func TestMetricsExporter_NilReceiver(t *testing.T) {
	var exporter *MetricsExporter
	exporter.RecordThreadSpawned("rt", 0)
	exporter.RecordPriorityChanged("rt", 0, 1)
}

func TestMetricsExporter_WiredIntoRuntime(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("threadprio", reg, ExporterOptions{})
	require.NoError(t, err)

	rt, err := core.NewRuntime(&core.RuntimeConfig{Name: "wired", Metrics: exporter})
	require.NoError(t, err)

	th := rt.Spawn(nil, nil)
	th.Wait()
	th.SetPriority(3)
	_, err = th.SetPriorityValue(struct{}{})
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(exporter.threadExitedTotal.WithLabelValues("wired", "dead")) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.threadSpawnedTotal.WithLabelValues("wired")))
	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.lastAssignedPriority.WithLabelValues("wired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.priorityRejectedTotal.WithLabelValues("wired", "type_mismatch")))
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
