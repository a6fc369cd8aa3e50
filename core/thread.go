package core

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-thread/errors"
	"github.com/google/uuid"
)

// Body is the code a thread runs. The context carries the running thread
// (see Current) and is cancelled by Thread.Cancel or Runtime.Shutdown.
type Body func(ctx context.Context) error

// Status is the liveness state of a thread.
type Status int32

const (
	// StatusNotStarted: created with Deferred and not yet started
	StatusNotStarted Status = iota

	// StatusRunning: body is executing (main threads are always running)
	StatusRunning

	// StatusDead: body returned
	StatusDead

	// StatusAborted: body panicked
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusDead:
		return "dead"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// =============================================================================
// SpawnOption
// =============================================================================

type spawnOptions struct {
	name     string
	deferred bool
}

// SpawnOption configures a thread at spawn time.
type SpawnOption func(*spawnOptions)

// WithName sets the thread name.
func WithName(name string) SpawnOption {
	return func(o *spawnOptions) { o.name = name }
}

// Deferred creates the thread in StatusNotStarted; the body runs after Start.
func Deferred() SpawnOption {
	return func(o *spawnOptions) { o.deferred = true }
}

// =============================================================================
// Thread
// =============================================================================

// Thread is a handle to one goroutine plus the attributes attached to it.
//
// A Thread owns exactly one Priority. The handle stays valid after the body
// returns; Priority and SetPriority keep working on finished threads.
type Thread struct {
	id       string
	seq      int64
	parentID string
	isMain   bool
	rt       *Runtime
	priority *Priority

	body   Body
	ctx    context.Context
	cancel context.CancelFunc

	status    atomic.Int32
	started   atomic.Bool
	done      chan struct{}
	createdAt time.Time

	// Written before done is closed.
	err        error
	finishedAt time.Time

	mu   sync.Mutex
	name string
}

func newThread(rt *Runtime, parent *Thread, base context.Context, body Body, opts spawnOptions) *Thread {
	ctx, cancel := context.WithCancel(base)
	t := &Thread{
		id:        uuid.NewString(),
		rt:        rt,
		body:      body,
		cancel:    cancel,
		done:      make(chan struct{}),
		createdAt: time.Now(),
		name:      opts.name,
	}
	if parent != nil {
		t.parentID = parent.id
		// Snapshot, not a live link: later parent changes are not seen here.
		t.priority = newPriority(parent.Priority(), rt.bounds)
	} else {
		t.priority = newPriority(rt.defaultPriority, rt.bounds)
	}
	t.priority.onChange = t.priorityChanged
	t.ctx = context.WithValue(ctx, currentThreadKey, t)
	return t
}

func newMainThread(rt *Runtime, name string) *Thread {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Thread{
		id:        uuid.NewString(),
		isMain:    true,
		rt:        rt,
		cancel:    cancel,
		done:      make(chan struct{}),
		createdAt: time.Now(),
		name:      name,
		priority:  newPriority(rt.defaultPriority, rt.bounds),
	}
	t.priority.onChange = t.priorityChanged
	t.ctx = context.WithValue(ctx, currentThreadKey, t)
	t.started.Store(true)
	t.status.Store(int32(StatusRunning))
	return t
}

// ID returns the unique ID of the thread
func (t *Thread) ID() string {
	return t.id
}

// ParentID returns the ID of the spawning thread
func (t *Thread) ParentID() string {
	return t.parentID
}

// Name returns the name of the thread
func (t *Thread) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// SetName sets the name of the thread
func (t *Thread) SetName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
}

// Runtime returns the runtime that spawned t.
func (t *Thread) Runtime() *Runtime {
	return t.rt
}

// IsMain reports whether t is a main thread.
func (t *Thread) IsMain() bool {
	return t.isMain
}

// Context returns the thread's context. Current(t.Context()) == t.
func (t *Thread) Context() context.Context {
	return t.ctx
}

// CreatedAt returns the spawn time.
func (t *Thread) CreatedAt() time.Time {
	return t.createdAt
}

// Status returns the current liveness state.
func (t *Thread) Status() Status {
	return Status(t.status.Load())
}

// Alive reports whether the body is running.
func (t *Thread) Alive() bool {
	return t.Status() == StatusRunning
}

// Done returns a channel closed when the body has returned.
// It is never closed for main threads.
func (t *Thread) Done() <-chan struct{} {
	return t.done
}

// Priority returns the thread's current priority.
func (t *Thread) Priority() int {
	return t.priority.Get()
}

// SetPriority assigns v and returns it. It works in every liveness state,
// including after the thread has finished.
func (t *Thread) SetPriority(v int) int {
	return t.priority.Set(v)
}

// SetPriorityValue assigns a dynamically typed value. Non-integer values
// fail with an error matching errors.ErrTypeMismatch and the priority is
// left unchanged.
func (t *Thread) SetPriorityValue(v any) (int, error) {
	i, err := t.priority.SetValue(v)
	if err != nil {
		t.rt.priorityRejected(t, v, err)
		return 0, err
	}
	return i, nil
}

func (t *Thread) priorityChanged(old, stored int) {
	t.rt.priorityChanged(t, old, stored)
}

// Start runs a thread created with Deferred.
// It returns errors.ErrAlreadyStarted if the thread was started before.
func (t *Thread) Start() error {
	if !t.started.CompareAndSwap(false, true) {
		return errors.Wrapf(errors.ErrAlreadyStarted, "thread %s", t.id)
	}
	t.rt.launch(t)
	return nil
}

// Cancel cancels the context passed to the body. Bodies stop cooperatively.
func (t *Thread) Cancel() {
	t.cancel()
}

// Join blocks until the body returns or ctx is done.
// It returns the body's error; a panicking body yields an error wrapping
// errors.ErrThreadPanicked. Joining a main thread fails immediately.
func (t *Thread) Join(ctx context.Context) error {
	if t.isMain {
		return errors.WithStack(errors.ErrMainThread)
	}
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the body returns. It is a no-op for main threads.
func (t *Thread) Wait() {
	if t.isMain {
		return
	}
	<-t.done
}

// Err returns the body's error once the thread has finished, nil before.
func (t *Thread) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// FinishedAt returns when the body returned (zero value while unfinished).
func (t *Thread) FinishedAt() time.Time {
	select {
	case <-t.done:
		return t.finishedAt
	default:
		return time.Time{}
	}
}

// Info returns a point-in-time snapshot of the thread.
func (t *Thread) Info() ThreadInfo {
	return ThreadInfo{
		ID:         t.id,
		Name:       t.Name(),
		ParentID:   t.parentID,
		Main:       t.isMain,
		Status:     t.Status().String(),
		Priority:   t.Priority(),
		CreatedAt:  t.createdAt,
		FinishedAt: t.FinishedAt(),
	}
}

func (t *Thread) String() string {
	if name := t.Name(); name != "" {
		return fmt.Sprintf("Thread(%s %s)", name, t.Status())
	}
	return fmt.Sprintf("Thread(%s %s)", t.id, t.Status())
}

// run executes the body on the thread's own goroutine.
func (t *Thread) run() {
	start := time.Now()
	panicked, err := t.invoke()

	status := StatusDead
	if panicked {
		status = StatusAborted
	}

	t.err = err
	t.finishedAt = time.Now()
	t.status.Store(int32(status))
	t.cancel()

	// Bookkeeping must be visible to anyone returning from Join or Wait.
	t.rt.threadExited(t, status, t.finishedAt.Sub(start))
	close(t.done)
}

func (t *Thread) invoke() (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			t.rt.threadPanicked(t, r, debug.Stack())
			err = errors.WithStack(errors.Wrapf(errors.ErrThreadPanicked, "%v", r))
		}
	}()
	return false, t.body(t.ctx)
}

// =============================================================================
// Context Helper
// =============================================================================

type currentThreadKeyType struct{}

var currentThreadKey currentThreadKeyType

// Current returns the thread whose body received ctx, or nil.
func Current(ctx context.Context) *Thread {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(currentThreadKey); v != nil {
		return v.(*Thread)
	}
	return nil
}

// Pass yields the processor, allowing other goroutines to run.
func Pass() {
	runtime.Gosched()
}
