package prometheus

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Swind/go-thread/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// RuntimeSnapshotProvider provides current runtime stats snapshots.
type RuntimeSnapshotProvider interface {
	Stats() core.RuntimeStats
}

// SnapshotPoller periodically exports runtime Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	runtimesMu sync.RWMutex
	runtimes   map[string]RuntimeSnapshotProvider

	threadsAlive      *prom.GaugeVec
	threadsPending    *prom.GaugeVec
	threadsSpawned    *prom.GaugeVec
	threadsAborted    *prom.GaugeVec
	threadsByPriority *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "threadprio"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	threadsAlive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "threads_alive",
		Help:      "Number of running threads per runtime.",
	}, []string{"runtime"})
	threadsPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "threads_pending",
		Help:      "Number of deferred threads not yet started per runtime.",
	}, []string{"runtime"})
	threadsSpawned := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "threads_spawned",
		Help:      "Runtime spawned thread count snapshot.",
	}, []string{"runtime"})
	threadsAborted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "threads_aborted",
		Help:      "Runtime aborted thread count snapshot.",
	}, []string{"runtime"})
	threadsByPriority := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "threads_by_priority",
		Help:      "Unfinished threads per priority value.",
	}, []string{"runtime", "priority"})

	var err error
	if threadsAlive, err = registerCollector(reg, threadsAlive); err != nil {
		return nil, err
	}
	if threadsPending, err = registerCollector(reg, threadsPending); err != nil {
		return nil, err
	}
	if threadsSpawned, err = registerCollector(reg, threadsSpawned); err != nil {
		return nil, err
	}
	if threadsAborted, err = registerCollector(reg, threadsAborted); err != nil {
		return nil, err
	}
	if threadsByPriority, err = registerCollector(reg, threadsByPriority); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:          interval,
		runtimes:          make(map[string]RuntimeSnapshotProvider),
		threadsAlive:      threadsAlive,
		threadsPending:    threadsPending,
		threadsSpawned:    threadsSpawned,
		threadsAborted:    threadsAborted,
		threadsByPriority: threadsByPriority,
	}, nil
}

// AddRuntime adds or replaces a runtime snapshot provider by name.
func (p *SnapshotPoller) AddRuntime(name string, provider RuntimeSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "runtime")
	p.runtimesMu.Lock()
	p.runtimes[name] = provider
	p.runtimesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.runtimesMu.RLock()
	defer p.runtimesMu.RUnlock()

	for name, provider := range p.runtimes {
		stats := provider.Stats()
		p.threadsAlive.WithLabelValues(name).Set(float64(stats.Alive))
		p.threadsPending.WithLabelValues(name).Set(float64(stats.Pending))
		p.threadsSpawned.WithLabelValues(name).Set(float64(stats.Spawned))
		p.threadsAborted.WithLabelValues(name).Set(float64(stats.Aborted))

		// Priorities no longer held by any thread must disappear.
		p.threadsByPriority.DeletePartialMatch(prom.Labels{"runtime": name})
		for priority, count := range stats.Priorities {
			p.threadsByPriority.WithLabelValues(name, strconv.Itoa(priority)).Set(float64(count))
		}
	}
}
