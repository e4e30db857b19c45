package des

// Application is the contract a host program implements to supply the
// global state a Runtime drives for its entire lifetime (spec.md §3: "The
// runtime owns exactly one A by value for its entire lifetime"). Go has no
// associated-type syntax, so the two things spec.md calls out as
// associated types on A — its EventSet variant and its Lifecycle proxy —
// are instead two methods: Lifecycle returns the proxy the runtime drives
// through at_sim_start/at_sim_end, and the EventSet variants themselves
// satisfy the package-level EventSet interface directly (see EventSet
// below).
type Application interface {
	// Lifecycle returns the proxy object implementing the staged
	// simulation-start and simulation-end callbacks. Most applications
	// return a proxy wrapping the same value that implements Application,
	// but the two are kept distinct so a host can swap out startup
	// behaviour (e.g. for tests) without re-wiring the rest of the state.
	Lifecycle() Lifecycle
}

// Lifecycle is the pair of whole-run callbacks a Runtime invokes once each,
// bracketing the main dispatch loop (spec.md §4.2 step 1 and step 3).
type Lifecycle interface {
	// AtSimStart runs once, before the first event is dequeued. It is the
	// usual place to enqueue the initial events that seed a run (since an
	// empty future event set with no limit configured would otherwise
	// terminate immediately).
	AtSimStart(rt *Runtime) error

	// AtSimEnd runs once, after the dispatch loop terminates normally
	// (FES exhausted or a RuntimeLimit fired). It does not run on the
	// fatal-error exit path (spec.md §4.2 step 4).
	AtSimEnd(rt *Runtime) error
}

// EventSet is the tagged union every pending event's payload satisfies.
// spec.md describes the user-supplied EventSet as "a dispatch function
// that matches on its own variants and calls per-variant handlers"; here
// each variant type is itself the match arm, implementing Dispatch
// directly, so the runtime driver's dispatch step (C5) is just
// `payload.(EventSet).Dispatch(rt)` with no central switch to keep in sync
// as variants are added.
type EventSet interface {
	// Dispatch invokes this variant's handler against the running
	// Runtime. Implementations read rt.Clock() for "now" and use rt's
	// exported mutators (Enqueue, Defer) to react; they never
	// receive the FES directly.
	Dispatch(rt *Runtime) error
}
