// Package thread provides goroutine-backed threads that carry an integer
// priority attribute.
//
// A Thread is a handle around one goroutine. Its priority is inherited from
// the spawning thread at spawn time (a snapshot, not a live link), can be
// read and reassigned from any goroutine, and stays readable and writable
// after the thread has finished. The priority is advisory: it does not
// change how the Go scheduler runs goroutines.
//
// # Quick Start
//
//	main := thread.Main()
//	main.SetPriority(2)
//
//	t := thread.Spawn(main, func(ctx context.Context) error {
//		me := thread.Current(ctx) // the running thread
//		_ = me.Priority()         // 2
//		return nil
//	})
//	_ = t.Join(context.Background())
//
//	t.SetPriority(3)                    // works after death
//	_, err := t.SetPriorityValue("high") // errors.ErrTypeMismatch
//
// # Key Concepts
//
// Runtime: owns a main thread (the root of inheritance), a registry of
// unfinished threads, and the logger, panic handler and metrics sink every
// thread reports to. Package-level helpers use a global runtime.
//
// Current thread: there is no ambient lookup. The context passed to a body
// carries its thread; Current(ctx) returns it and Go(ctx, ...) spawns a
// child of it.
//
// Typed mutation: SetPriority takes an int. SetPriorityValue accepts any
// value and rejects non-integers with errors.ErrTypeMismatch, leaving the
// stored priority untouched.
package thread
