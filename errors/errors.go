// Package errors provides error handling for go-thread.
//
// It re-exports github.com/cockroachdb/errors so callers get stack traces,
// wrapping and hints from one import, and defines the sentinel errors that
// thread operations report.
//
//	if _, err := t.SetPriorityValue("high"); errors.Is(err, errors.ErrTypeMismatch) {
//	    // reject the input, priority is unchanged
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

var (
	// ErrTypeMismatch is returned when a priority is assigned a value that is
	// not an integer representable as int.
	ErrTypeMismatch = New("type mismatch")

	// ErrThreadPanicked wraps the recovered value of a thread body that panicked.
	ErrThreadPanicked = New("thread panicked")

	// ErrAlreadyStarted is returned when Start is called on a thread that is
	// already running or has finished.
	ErrAlreadyStarted = New("thread already started")

	// ErrMainThread is returned when joining a main thread, which represents
	// the caller and never finishes on its own.
	ErrMainThread = New("cannot join a main thread")
)

// IsTypeMismatch reports whether err is or wraps ErrTypeMismatch.
func IsTypeMismatch(err error) bool {
	return err != nil && Is(err, ErrTypeMismatch)
}
