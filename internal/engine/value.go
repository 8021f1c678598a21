// Package engine is the pull-based, memoizing evaluator at the heart of the
// library. A Session resolves a requested resource by recursively resolving
// its declared dependencies, invoking each producing function at most once,
// recording wall-clock cost, and carrying "uncomputable" forward as a value
// rather than an error.
package engine

import (
	"math"
)

// Value is the result of resolving one resource: either a computed value of
// any shape, or an uncomputable marker with a reason. Uncomputable is not an
// error; it is a valid terminal value that propagates to dependents.
type Value struct {
	val    any
	reason string
}

// Computed wraps a concrete resolved value.
func Computed(v any) Value { return Value{val: v} }

// Uncomputable builds the marker value for a resource that cannot be
// produced, tagged with the reason.
func Uncomputable(reason string) Value { return Value{reason: reason} }

// IsUncomputable reports whether the value is the uncomputable marker.
func (v Value) IsUncomputable() bool { return v.reason != "" }

// Reason returns the uncomputable reason tag, or "" for computed values.
func (v Value) Reason() string { return v.reason }

// Raw returns the computed value. It is nil for uncomputable values.
func (v Value) Raw() any { return v.val }

// missing reports whether the value cannot serve as a parameter: either the
// uncomputable marker, or a computed scalar that is not a number. The latter
// mirrors how a metafeature that legitimately evaluates to NaN (say, a mean
// over zero numeric columns) poisons anything derived from it.
func (v Value) missing() bool {
	if v.IsUncomputable() {
		return true
	}
	if f, ok := v.val.(float64); ok && math.IsNaN(f) {
		return true
	}
	return false
}
