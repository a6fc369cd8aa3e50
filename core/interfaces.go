package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling thread body panics
// =============================================================================

// PanicHandler is called when a thread body panics.
// The panic is recovered before the handler runs; the thread finishes with
// StatusAborted and Join returns an error wrapping errors.ErrThreadPanicked.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a thread body panics.
	//
	// Parameters:
	// - ctx: The context of the panicked thread (Current(ctx) returns the thread)
	// - runtimeName: The name of the runtime that spawned the thread
	// - threadID: The ID of the thread
	// - panicInfo: The panic value recovered from the body
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, runtimeName string, threadID string, panicInfo any, stackTrace []byte)
}

// LoggerPanicHandler reports panics through a Logger at error level.
type LoggerPanicHandler struct {
	Logger Logger
}

// NewLoggerPanicHandler creates a PanicHandler writing to logger.
func NewLoggerPanicHandler(logger Logger) *LoggerPanicHandler {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &LoggerPanicHandler{Logger: logger}
}

// HandlePanic logs the panic value and stack trace.
func (h *LoggerPanicHandler) HandlePanic(ctx context.Context, runtimeName string, threadID string, panicInfo any, stackTrace []byte) {
	h.Logger.Error("thread panicked",
		F("runtime", runtimeName),
		F("thread", threadID),
		F("panic", fmt.Sprint(panicInfo)),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting thread and priority metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast; they run inline with Spawn,
// SetPriority and thread exit.
type Metrics interface {
	// RecordThreadSpawned records a new thread and the priority it inherited.
	RecordThreadSpawned(runtimeName string, priority int)

	// RecordThreadExited records a finished thread, its final status and how
	// long its body ran.
	RecordThreadExited(runtimeName string, status Status, duration time.Duration)

	// RecordThreadPanic records that a thread body panicked.
	RecordThreadPanic(runtimeName string, panicInfo any)

	// RecordPriorityChanged records a successful priority assignment.
	RecordPriorityChanged(runtimeName string, oldPriority, newPriority int)

	// RecordPriorityRejected records a failed priority assignment.
	//
	// Parameters:
	// - runtimeName: The name of the runtime that owns the thread
	// - reason: Why the assignment was rejected (e.g., "type_mismatch")
	RecordPriorityRejected(runtimeName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordThreadSpawned(runtimeName string, priority int) {}
func (m *NilMetrics) RecordThreadExited(runtimeName string, status Status, duration time.Duration) {
}
func (m *NilMetrics) RecordThreadPanic(runtimeName string, panicInfo any)                    {}
func (m *NilMetrics) RecordPriorityChanged(runtimeName string, oldPriority, newPriority int) {}
func (m *NilMetrics) RecordPriorityRejected(runtimeName string, reason string)               {}

// =============================================================================
// RuntimeConfig: Configuration for Runtime
// =============================================================================

// RuntimeConfig holds configuration options for a Runtime.
// All handlers are optional; if not provided, default implementations will be used.
type RuntimeConfig struct {
	// Name labels logs and metrics. Defaults to "default".
	Name string

	// DefaultPriority is the priority of the runtime's main thread, and
	// therefore of every thread spawned without an explicit parent.
	DefaultPriority int

	// Bounds optionally clamps stored priorities. Defaults to unbounded.
	Bounds PriorityBounds

	// HistoryCapacity is the size of the exited-thread ring buffer.
	HistoryCapacity int

	// Logger receives thread lifecycle and priority events. Defaults to NoOpLogger.
	Logger Logger

	// PanicHandler is called when a thread body panics. Defaults to a
	// LoggerPanicHandler over Logger.
	PanicHandler PanicHandler

	// Metrics is called to record thread metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultRuntimeConfig returns a config with default handlers.
func DefaultRuntimeConfig() *RuntimeConfig {
	logger := NewNoOpLogger()
	return &RuntimeConfig{
		Name:            "default",
		Bounds:          DefaultPriorityBounds(),
		HistoryCapacity: defaultHistoryCapacity,
		Logger:          logger,
		PanicHandler:    NewLoggerPanicHandler(logger),
		Metrics:         &NilMetrics{},
	}
}
