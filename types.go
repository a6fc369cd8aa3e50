package thread

import "github.com/Swind/go-thread/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the thread package for most use cases.

// Thread is a handle to one goroutine and its priority
type Thread = core.Thread

// Body is the code a thread runs
type Body = core.Body

// Status is the liveness state of a thread
type Status = core.Status

// SpawnOption configures a thread at spawn time
type SpawnOption = core.SpawnOption

// Runtime spawns threads and owns their registry and hooks
type Runtime = core.Runtime

// RuntimeConfig configures a Runtime
type RuntimeConfig = core.RuntimeConfig

// PriorityBounds optionally clamps stored priorities
type PriorityBounds = core.PriorityBounds

// ThreadInfo is a point-in-time snapshot of a thread
type ThreadInfo = core.ThreadInfo

// Status constants
const (
	StatusNotStarted = core.StatusNotStarted
	StatusRunning    = core.StatusRunning
	StatusDead       = core.StatusDead
	StatusAborted    = core.StatusAborted
)

// Spawn options and helpers
var (
	WithName              = core.WithName
	Deferred              = core.Deferred
	Current               = core.Current
	Pass                  = core.Pass
	NewRuntime            = core.NewRuntime
	DefaultRuntimeConfig  = core.DefaultRuntimeConfig
	DefaultPriorityBounds = core.DefaultPriorityBounds
	ClampedPriorityBounds = core.ClampedPriorityBounds
)
