package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Swind/go-thread/errors"
)

// Runtime spawns threads and owns the services they report to: a main
// thread that roots priority inheritance, a registry of unfinished threads,
// and the logger, panic handler and metrics sink.
//
// Threads spawned without a parent inherit from the runtime's main thread.
type Runtime struct {
	name            string
	defaultPriority int
	bounds          PriorityBounds

	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics

	main     *Thread
	registry *registry
	wg       sync.WaitGroup
}

// NewRuntime creates a Runtime. A nil cfg uses DefaultRuntimeConfig.
func NewRuntime(cfg *RuntimeConfig) (*Runtime, error) {
	defaults := DefaultRuntimeConfig()
	if cfg == nil {
		cfg = defaults
	}

	r := &Runtime{
		name:            cfg.Name,
		defaultPriority: cfg.DefaultPriority,
		bounds:          cfg.Bounds,
		logger:          cfg.Logger,
		panicHandler:    cfg.PanicHandler,
		metrics:         cfg.Metrics,
	}
	if r.name == "" {
		r.name = defaults.Name
	}
	if r.bounds == (PriorityBounds{}) {
		r.bounds = defaults.Bounds
	}
	if err := r.bounds.Validate(); err != nil {
		return nil, err
	}
	if r.logger == nil {
		r.logger = defaults.Logger
	}
	if r.panicHandler == nil {
		r.panicHandler = NewLoggerPanicHandler(r.logger)
	}
	if r.metrics == nil {
		r.metrics = defaults.Metrics
	}

	r.registry = newRegistry(cfg.HistoryCapacity)
	r.main = newMainThread(r, "main")
	return r, nil
}

// Name returns the name of the runtime
func (r *Runtime) Name() string {
	return r.name
}

// Bounds returns the priority bounds applied to every thread of the runtime.
func (r *Runtime) Bounds() PriorityBounds {
	return r.bounds
}

// Main returns the runtime's main thread, the root of priority inheritance.
func (r *Runtime) Main() *Thread {
	return r.main
}

// Spawn starts body on a new thread whose priority is a snapshot of
// parent's priority taken now. A nil parent means the main thread.
//
// The thread's context is independent of the parent's; it is cancelled by
// Thread.Cancel or Shutdown.
func (r *Runtime) Spawn(parent *Thread, body Body, opts ...SpawnOption) *Thread {
	return r.spawn(parent, context.Background(), body, opts)
}

// Go spawns from the thread carried in ctx (the main thread if none).
// The new thread's context is derived from ctx, so cancelling ctx, or the
// parent body returning, cancels the child's context too.
func (r *Runtime) Go(ctx context.Context, body Body, opts ...SpawnOption) *Thread {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.spawn(Current(ctx), ctx, body, opts)
}

func (r *Runtime) spawn(parent *Thread, base context.Context, body Body, opts []SpawnOption) *Thread {
	var o spawnOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = resolveBodyName(body)
	}
	if body == nil {
		body = func(context.Context) error { return nil }
	}
	if parent == nil {
		parent = r.main
	}

	t := newThread(r, parent, base, body, o)
	r.registry.add(t)

	priority := t.Priority()
	r.metrics.RecordThreadSpawned(r.name, priority)
	r.logger.Debug("thread spawned",
		F("runtime", r.name),
		F("thread", t.id),
		F("name", o.name),
		F("parent", t.parentID),
		F("priority", priority),
	)

	if !o.deferred {
		t.started.Store(true)
		r.launch(t)
	}
	return t
}

func (r *Runtime) launch(t *Thread) {
	r.wg.Add(1)
	t.status.Store(int32(StatusRunning))
	go func() {
		defer r.wg.Done()
		t.run()
	}()
}

// Lookup returns an unfinished thread by ID. The main thread is included.
func (r *Runtime) Lookup(id string) (*Thread, bool) {
	if id == r.main.id {
		return r.main, true
	}
	return r.registry.lookup(id)
}

// List returns the main thread followed by every thread that has not
// finished, in spawn order.
func (r *Runtime) List() []*Thread {
	threads := r.registry.list()
	out := make([]*Thread, 0, len(threads)+1)
	out = append(out, r.main)
	return append(out, threads...)
}

// Recent returns up to limit exit records, newest first.
func (r *Runtime) Recent(limit int) []ThreadExitRecord {
	return r.registry.history.Recent(limit)
}

// Stats returns a snapshot of the runtime's counters. The main thread is
// not counted.
func (r *Runtime) Stats() RuntimeStats {
	stats := RuntimeStats{
		Name:       r.name,
		Spawned:    r.registry.spawned.Load(),
		Exited:     r.registry.exited.Load(),
		Aborted:    r.registry.aborted.Load(),
		Rejected:   r.registry.rejected.Load(),
		Priorities: make(map[int]int),
	}
	for _, t := range r.registry.list() {
		switch t.Status() {
		case StatusRunning:
			stats.Alive++
		case StatusNotStarted:
			stats.Pending++
		default:
			// Finished but not yet removed from the registry.
			continue
		}
		stats.Priorities[t.Priority()]++
	}
	return stats
}

// Shutdown cancels the context of every unfinished thread and waits for the
// started ones to return, or for ctx to be done. Deferred threads that were
// never started are left untouched. Threads must not be spawned while
// Shutdown is waiting.
func (r *Runtime) Shutdown(ctx context.Context) error {
	for _, t := range r.registry.list() {
		if t.Status() == StatusRunning {
			t.Cancel()
		}
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("runtime shut down", F("runtime", r.name))
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "shutdown of runtime %s", r.name)
	}
}

// =============================================================================
// Thread event hooks
// =============================================================================

func (r *Runtime) threadExited(t *Thread, status Status, duration time.Duration) {
	r.registry.remove(t, ThreadExitRecord{
		ThreadID:      t.id,
		Name:          t.Name(),
		RuntimeName:   r.name,
		Status:        status,
		FinalPriority: t.Priority(),
		CreatedAt:     t.createdAt,
		FinishedAt:    t.finishedAt,
		Duration:      duration,
	})
	r.metrics.RecordThreadExited(r.name, status, duration)
	r.logger.Debug("thread exited",
		F("runtime", r.name),
		F("thread", t.id),
		F("status", status.String()),
		F("duration", duration),
	)
}

func (r *Runtime) threadPanicked(t *Thread, panicInfo any, stack []byte) {
	r.metrics.RecordThreadPanic(r.name, panicInfo)
	r.panicHandler.HandlePanic(t.ctx, r.name, t.id, panicInfo, stack)
}

func (r *Runtime) priorityChanged(t *Thread, old, stored int) {
	r.metrics.RecordPriorityChanged(r.name, old, stored)
	r.logger.Debug("priority changed",
		F("runtime", r.name),
		F("thread", t.id),
		F("old", old),
		F("new", stored),
		F("status", t.Status().String()),
	)
}

func (r *Runtime) priorityRejected(t *Thread, value any, err error) {
	r.registry.rejected.Add(1)
	r.metrics.RecordPriorityRejected(r.name, "type_mismatch")
	r.logger.Warn("priority rejected",
		F("runtime", r.name),
		F("thread", t.id),
		F("type", fmt.Sprintf("%T", value)),
		F("error", err.Error()),
	)
}
