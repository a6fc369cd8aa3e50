package thread

import (
	"context"
	"sync"

	"github.com/Swind/go-thread/core"
)

// =============================================================================
// Global Runtime Helper (Singleton)
// =============================================================================

var (
	globalRuntime *core.Runtime
	globalMu      sync.Mutex
)

// InitGlobalRuntime initializes the global runtime with cfg.
// Calls after the first successful one are no-ops.
func InitGlobalRuntime(cfg *RuntimeConfig) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime != nil {
		return nil // Already initialized
	}

	rt, err := core.NewRuntime(cfg)
	if err != nil {
		return err
	}
	globalRuntime = rt
	return nil
}

// GetGlobalRuntime returns the global runtime, creating one with the
// default configuration on first use.
func GetGlobalRuntime() *Runtime {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRuntime == nil {
		// The default config always has valid bounds.
		globalRuntime, _ = core.NewRuntime(nil)
	}
	return globalRuntime
}

// ShutdownGlobalRuntime shuts the global runtime down and forgets it.
func ShutdownGlobalRuntime(ctx context.Context) error {
	globalMu.Lock()
	rt := globalRuntime
	globalRuntime = nil
	globalMu.Unlock()

	if rt == nil {
		return nil
	}
	return rt.Shutdown(ctx)
}

// Main returns the main thread of the global runtime.
func Main() *Thread {
	return GetGlobalRuntime().Main()
}

// CurrentOrMain returns the thread carried in ctx, or the global main thread.
func CurrentOrMain(ctx context.Context) *Thread {
	if t := core.Current(ctx); t != nil {
		return t
	}
	return Main()
}

// Spawn starts body on a new thread inheriting parent's priority.
// The thread belongs to parent's runtime; a nil parent means the global
// main thread.
func Spawn(parent *Thread, body Body, opts ...SpawnOption) *Thread {
	if parent == nil {
		return GetGlobalRuntime().Spawn(nil, body, opts...)
	}
	return parent.Runtime().Spawn(parent, body, opts...)
}

// Go spawns from the thread carried in ctx, falling back to the global main
// thread. See core.Runtime.Go for context semantics.
func Go(ctx context.Context, body Body, opts ...SpawnOption) *Thread {
	if t := core.Current(ctx); t != nil {
		return t.Runtime().Go(ctx, body, opts...)
	}
	return GetGlobalRuntime().Go(ctx, body, opts...)
}

// Priority returns the priority of t.
func Priority(t *Thread) int {
	return t.Priority()
}

// SetPriority assigns a dynamically typed priority to t.
// Non-integer values fail with errors.ErrTypeMismatch.
func SetPriority(t *Thread, v any) (int, error) {
	return t.SetPriorityValue(v)
}
