package des

import "github.com/GoCodeAlone/des/internal/ctx"

// ActiveRuntime returns the Runtime currently executing in this process,
// resolved through the process-global context (internal/ctx) rather than
// an explicit parameter, so code without a *Runtime in hand can still
// reach it (spec.md §4.6). ok is false when no Runtime is running in this
// process.
func ActiveRuntime() (*Runtime, bool) {
	v, ok := ctx.Global.Runtime()
	if !ok {
		return nil, false
	}
	rt, ok := v.(*Runtime)
	return rt, ok
}

// Random returns the deterministic RNG of the currently executing
// Runtime.
func Random() (*RNG, bool) {
	rt, ok := ActiveRuntime()
	if !ok {
		return nil, false
	}
	return rt.rng, true
}

// CurrentModuleHandle returns the opaque module handle bound to the
// process-global current-module slot for the duration of the callback
// presently executing. netsim type-asserts this back to *netsim.Module;
// it is declared generically here (any) so this package has no dependency
// on the network layer.
func CurrentModuleHandle() (any, bool) {
	return ctx.Global.CurrentModule()
}

// BindCurrentModule and UnbindCurrentModule let netsim's module lifecycle
// driver (C9) set and clear the current-module slot around each callback
// it invokes, without netsim reaching into internal/ctx directly (that
// package is internal to des).
func BindCurrentModule(handle any) { ctx.Global.SetCurrentModule(handle) }
func UnbindCurrentModule()         { ctx.Global.ClearCurrentModule() }
