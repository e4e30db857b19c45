package netsim

import "errors"

// Sentinel errors for the network layer, wrapped with context via
// fmt.Errorf("...: %w", ...) at call sites, following the same idiom as
// the kernel's own errors.go.
var (
	ErrNoSuchGate     = errors.New("netsim: no such gate")
	ErrNoSuchModule   = errors.New("netsim: no such module")
	ErrDuplicatePath  = errors.New("netsim: module path already registered")
	ErrChannelMissing = errors.New("netsim: hop references unknown channel")
)
