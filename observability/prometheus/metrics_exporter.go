package prometheus

import (
	"time"

	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	threadSpawnedTotal    *prom.CounterVec
	threadExitedTotal     *prom.CounterVec
	threadDurationSeconds *prom.HistogramVec
	threadPanicTotal      *prom.CounterVec
	priorityChangesTotal  *prom.CounterVec
	priorityRejectedTotal *prom.CounterVec
	lastAssignedPriority  *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "threadprio"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	spawnedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "thread_spawned_total",
		Help:      "Total number of spawned threads.",
	}, []string{"runtime"})
	exitedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "thread_exited_total",
		Help:      "Total number of finished threads by final status.",
	}, []string{"runtime", "status"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "thread_duration_seconds",
		Help:      "Thread body run time in seconds.",
		Buckets:   buckets,
	}, []string{"runtime"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "thread_panic_total",
		Help:      "Total number of thread body panics.",
	}, []string{"runtime"})
	changesVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "priority_changes_total",
		Help:      "Total number of successful priority assignments.",
	}, []string{"runtime"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "priority_rejected_total",
		Help:      "Total number of rejected priority assignments.",
	}, []string{"runtime", "reason"})
	lastVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "priority_last_assigned",
		Help:      "Most recently stored priority value.",
	}, []string{"runtime"})

	var err error
	if spawnedVec, err = registerCollector(reg, spawnedVec); err != nil {
		return nil, err
	}
	if exitedVec, err = registerCollector(reg, exitedVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if changesVec, err = registerCollector(reg, changesVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if lastVec, err = registerCollector(reg, lastVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		threadSpawnedTotal:    spawnedVec,
		threadExitedTotal:     exitedVec,
		threadDurationSeconds: durationVec,
		threadPanicTotal:      panicVec,
		priorityChangesTotal:  changesVec,
		priorityRejectedTotal: rejectedVec,
		lastAssignedPriority:  lastVec,
	}, nil
}

// RecordThreadSpawned counts a spawned thread.
func (m *MetricsExporter) RecordThreadSpawned(runtimeName string, priority int) {
	if m == nil {
		return
	}
	m.threadSpawnedTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown")).Inc()
}

// RecordThreadExited counts a finished thread and observes its run time.
func (m *MetricsExporter) RecordThreadExited(runtimeName string, status core.Status, duration time.Duration) {
	if m == nil {
		return
	}
	name := normalizeLabel(runtimeName, "unknown")
	m.threadExitedTotal.WithLabelValues(name, status.String()).Inc()
	m.threadDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordThreadPanic counts thread panics.
func (m *MetricsExporter) RecordThreadPanic(runtimeName string, panicInfo any) {
	if m == nil {
		return
	}
	m.threadPanicTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown")).Inc()
}

// RecordPriorityChanged counts assignments and tracks the stored value.
func (m *MetricsExporter) RecordPriorityChanged(runtimeName string, oldPriority, newPriority int) {
	if m == nil {
		return
	}
	name := normalizeLabel(runtimeName, "unknown")
	m.priorityChangesTotal.WithLabelValues(name).Inc()
	m.lastAssignedPriority.WithLabelValues(name).Set(float64(newPriority))
}

// RecordPriorityRejected counts rejected assignments.
func (m *MetricsExporter) RecordPriorityRejected(runtimeName string, reason string) {
	if m == nil {
		return
	}
	m.priorityRejectedTotal.WithLabelValues(normalizeLabel(runtimeName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, errors.Newf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
