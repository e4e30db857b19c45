// Package ctx holds the process-wide singletons the kernel's free
// functions (send, schedule_*, current(), random()) resolve against: the
// current-module slot, the deterministic RNG, and the runtime-exclusion
// mutex. They are process-global rather than parameters because the
// kernel's handler-facing API (spec.md §4.6) is deliberately free-function
// shaped, matching the reference implementation; see DESIGN.md for the
// explicit-context alternative this trades away.
//
// Because each simulation runs single-threaded by construction (spec.md
// §5), these slots never need locking on the hot path — only the
// exclusion mutex itself is ever contended, and only at construction and
// teardown of a Runtime.
package ctx

import (
	"fmt"
	"sync"
)

// Global is the single process-wide context instance. Runtime construction
// acquires Global.mu; all other fields are touched only while holding it
// (i.e. only by the one runtime allowed to execute at a time).
var Global = &Context{}

// Context bundles the process-global state a single in-flight Runtime owns.
type Context struct {
	mu       sync.Mutex
	poisoned bool

	currentModule any // the module.Handle under execution; nil between handlers
	rng           any // *des.RNG of the running Runtime; nil when no runtime is active
	runtime       any // *des.Runtime currently executing; nil when no runtime is active
}

// Acquire takes the runtime-exclusion lock, blocking if another Runtime
// currently holds it. If a previous holder poisoned the lock (via an
// unrecovered panic that never called Release), Acquire performs the
// cleanup routine spec.md §4.2 calls for: reset the current-module slot
// and RNG slot before handing the lock to the new runtime.
func (c *Context) Acquire() {
	c.mu.Lock()
	c.cleanupIfPoisoned()
}

// TryAcquire takes the lock only if it is free, returning false instead of
// blocking. Builder.Build uses this to decide whether to emit the
// "waiting for exclusive runtime access" diagnostic before falling back to
// a blocking Acquire.
func (c *Context) TryAcquire() bool {
	if !c.mu.TryLock() {
		return false
	}
	c.cleanupIfPoisoned()
	return true
}

func (c *Context) cleanupIfPoisoned() {
	if c.poisoned {
		c.currentModule = nil
		c.rng = nil
		c.runtime = nil
		c.poisoned = false
	}
}

// Release gives up the runtime-exclusion lock after a normal run.
func (c *Context) Release() {
	c.currentModule = nil
	c.rng = nil
	c.runtime = nil
	c.mu.Unlock()
}

// ReleaseAfterPanic gives up the lock after an unrecovered panic unwound
// the holder without reaching Release, marking the lock poisoned so the
// next Acquire runs the cleanup routine instead of inheriting stale state.
func (c *Context) ReleaseAfterPanic() {
	c.poisoned = true
	c.mu.Unlock()
}

// SetCurrentModule records the module under execution for the duration of
// a callback. Must only be called by the runtime driver, which clears it
// again (via ClearCurrentModule) on the same callback's return.
func (c *Context) SetCurrentModule(m any) { c.currentModule = m }

// ClearCurrentModule clears the current-module slot at callback exit.
func (c *Context) ClearCurrentModule() { c.currentModule = nil }

// CurrentModule returns the module under execution, or nil with ok=false
// if no handler is currently running (a free function like send() called
// outside a callback is a programmer error; callers should check ok).
func (c *Context) CurrentModule() (any, bool) {
	if c.currentModule == nil {
		return nil, false
	}
	return c.currentModule, true
}

// SetRNG installs the running Runtime's deterministic RNG for the
// duration of the run.
func (c *Context) SetRNG(r any) { c.rng = r }

// RNG returns the running Runtime's deterministic RNG.
func (c *Context) RNG() any { return c.rng }

// SetRuntime installs the active Runtime pointer so free functions
// (des.ActiveRuntime, des.Random) can resolve it without taking an
// explicit parameter, per spec.md §4.6.
func (c *Context) SetRuntime(r any) { c.runtime = r }

// ClearRuntime clears the active Runtime pointer at teardown.
func (c *Context) ClearRuntime() { c.runtime = nil }

// Runtime returns the active Runtime pointer, or nil with ok=false if no
// runtime is currently executing.
func (c *Context) Runtime() (any, bool) {
	if c.runtime == nil {
		return nil, false
	}
	return c.runtime, true
}

// ErrAlreadyRunning is surfaced as a diagnostic (not a panic) when a
// second Runtime construction blocks on the exclusion lock; spec.md §4.2
// asks only that the constructor "wait and emit a diagnostic", so this is
// informational, logged by the caller, not returned as an error.
func ErrAlreadyRunning(holder string) string {
	return fmt.Sprintf("des: waiting for exclusive runtime access (lock held by %s)", holder)
}
