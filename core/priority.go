package core

import (
	"math"
	"reflect"
	"sync/atomic"

	"github.com/Swind/go-thread/errors"
)

// =============================================================================
// PriorityBounds: Optional clamping range for stored priorities
// =============================================================================

// PriorityBounds limits the value a Priority stores.
// When Clamp is false (the default) every int is stored unchanged.
type PriorityBounds struct {
	Min   int
	Max   int
	Clamp bool
}

// DefaultPriorityBounds returns unbounded, non-clamping bounds.
func DefaultPriorityBounds() PriorityBounds {
	return PriorityBounds{Min: math.MinInt, Max: math.MaxInt}
}

// ClampedPriorityBounds returns bounds that clamp stored values into [min, max].
func ClampedPriorityBounds(min, max int) PriorityBounds {
	return PriorityBounds{Min: min, Max: max, Clamp: true}
}

// Validate reports an error if Min is greater than Max.
func (b PriorityBounds) Validate() error {
	if b.Min > b.Max {
		return errors.Newf("invalid priority bounds: min %d > max %d", b.Min, b.Max)
	}
	return nil
}

func (b PriorityBounds) apply(v int) int {
	if !b.Clamp {
		return v
	}
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// =============================================================================
// Priority: The integer attribute owned by one Thread
// =============================================================================

// Priority holds the integer priority of a single thread.
//
// Get and Set are safe to call from any goroutine; the value is a single
// atomic word, so concurrent writers are last-store-wins with no further
// ordering. The attribute behaves identically whether the owning thread has
// not started, is running, or has finished.
type Priority struct {
	value  atomic.Int64
	bounds PriorityBounds

	// onChange, when set, sees every successful store.
	onChange func(old, stored int)
}

// newPriority creates an attribute initialized to a snapshot of inherited.
func newPriority(inherited int, bounds PriorityBounds) *Priority {
	p := &Priority{bounds: bounds}
	p.value.Store(int64(bounds.apply(inherited)))
	return p
}

// Get returns the current value.
func (p *Priority) Get() int {
	return int(p.value.Load())
}

// Set stores v and returns v unchanged.
// With clamping bounds the stored value may differ from the returned one.
func (p *Priority) Set(v int) int {
	old, stored := p.swap(v)
	if p.onChange != nil {
		p.onChange(old, stored)
	}
	return v
}

// SetValue is the dynamic form of Set for values whose type is only known at
// runtime (config files, CLI arguments, reflective bindings).
//
// Any Go integer kind that fits in int is accepted. Every other value fails
// with an error matching errors.ErrTypeMismatch and leaves the stored value
// untouched.
func (p *Priority) SetValue(v any) (int, error) {
	i, err := toPriorityInt(v)
	if err != nil {
		return 0, err
	}
	return p.Set(i), nil
}

// swap stores v (after bounds) and returns the previous and stored values.
func (p *Priority) swap(v int) (old int, stored int) {
	stored = p.bounds.apply(v)
	old = int(p.value.Swap(int64(stored)))
	return old, stored
}

func toPriorityInt(v any) (int, error) {
	if v == nil {
		return 0, typeMismatch(v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return 0, errors.WithDetailf(typeMismatch(v), "value %d overflows int", i)
		}
		return int(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, errors.WithDetailf(typeMismatch(v), "value %d overflows int", u)
		}
		return int(u), nil
	default:
		return 0, typeMismatch(v)
	}
}

func typeMismatch(v any) error {
	return errors.WithHint(
		errors.Wrapf(errors.ErrTypeMismatch, "priority must be an integer, got %T", v),
		"assign an int value",
	)
}
