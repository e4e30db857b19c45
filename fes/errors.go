package fes

import "errors"

// Static errors for the fes package, following the sentinel-error idiom
// used throughout this codebase instead of ad-hoc fmt.Errorf strings.
var (
	// ErrDeadlineInPast is returned by Enqueue when the supplied deadline
	// is strictly earlier than the set's high-water mark. Per the kernel
	// spec this is always a programmer error (a handler computed a
	// negative delay) and is surfaced to the runtime driver as a fatal
	// RuntimeError, never silently clamped.
	ErrDeadlineInPast = errors.New("fes: deadline is before current virtual time")
)
