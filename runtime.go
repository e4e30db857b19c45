package des

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GoCodeAlone/des/dlog"
	"github.com/GoCodeAlone/des/fes"
	"github.com/GoCodeAlone/des/internal/ctx"
	"github.com/GoCodeAlone/des/metrics"
	"github.com/GoCodeAlone/des/simtime"
)

// PanicPolicy lets an EventSet variant declare, on a per-dispatch basis,
// whether a recovered panic during its own Dispatch should be caught and
// turned into a degraded-module RuntimeError, or propagated to terminate
// the run. Event variants that don't implement it (most free-standing
// application events) are treated as catchable, matching the HOST
// stereotype's default (spec.md §7, ModulePanic).
type PanicPolicy interface {
	CatchPanics() bool
	ModulePath() string
}

// Runtime is the central dispatch loop (C4): it owns the future event set,
// the application state, the virtual clock, the insertion-cookie counter,
// the deterministic RNG, and the configured RuntimeLimit. Exactly one
// Runtime executes at a time per process (the exclusion lock in
// internal/ctx); construct one with NewRuntime or Builder.Build.
type Runtime struct {
	app    Application
	set    fes.Set
	clock  simtime.Time
	cookie fes.Cookie
	events int64
	limit  RuntimeLimit
	rng    *RNG
	logger dlog.Logger
	quiet  bool

	deferred deferredBuffer
	profile  *metrics.Profile
	start    time.Time

	emitter EventEmitter // optional; see eventemit.go

	ran    bool
	status atomic.Value // holds Status; written once per dispatched event
}

// Status is a point-in-time snapshot of a running Runtime, safe to read
// from a goroutine other than the one driving Run (e.g. an HTTP status
// handler polling a long simulation). It carries less detail than Profile
// — Profile is only filled in once Run returns — but is updated every
// iteration of the main loop instead of only at the end.
type Status struct {
	EventCount int64
	Clock      simtime.Time
	Running    bool
}

// Status returns the most recently published Status. Before Run starts it
// reports the zero Status (EventCount 0, Running false); from the start of
// Run until it returns, Running is true.
func (rt *Runtime) Status() Status {
	if v, ok := rt.status.Load().(Status); ok {
		return v
	}
	return Status{}
}

func (rt *Runtime) publishStatus(running bool) {
	rt.status.Store(Status{EventCount: rt.events, Clock: rt.clock, Running: running})
}

// Clock returns the current virtual time. Valid to call from within a
// handler (I4: handlers observe the clock read-only) and between runs.
func (rt *Runtime) Clock() simtime.Time { return rt.clock }

// EventCount returns the number of events dispatched so far in this run.
func (rt *Runtime) EventCount() int64 { return rt.events }

// Logger returns the runtime's configured diagnostic logger.
func (rt *Runtime) Logger() dlog.Logger { return rt.logger }

// RNG returns the runtime's deterministic random source.
func (rt *Runtime) RNG() *RNG { return rt.rng }

// App returns the application state this runtime drives.
func (rt *Runtime) App() Application { return rt.app }

// Defer stages a deferred operation to be committed after the currently
// executing handler returns (C10). Calling Defer outside a dispatched
// handler still works (it simply commits on the next drain, which for a
// call made during AtSimStart happens before the main loop begins) but is
// unusual; netsim's Send/ScheduleAt/Shutdown free functions are the normal
// callers.
func (rt *Runtime) Defer(op DeferredOp) { rt.deferred.push(op) }

// Enqueue inserts an event directly into the future event set, assigning
// it the next insertion cookie. This is the primitive translation layers
// (C8) and direct callers use; deadline must be >= rt.Clock() or
// ErrDeadlineInPast (wrapped in a RuntimeError) is returned, per G3.
func (rt *Runtime) Enqueue(payload EventSet, deadline simtime.Time) error {
	if deadline < rt.clock {
		return &RuntimeError{Kind: KindSchedulingInPast, Cause: ErrDeadlineInPast}
	}
	cookie := rt.cookie
	rt.cookie++
	if err := rt.set.Enqueue(payload, deadline, cookie); err != nil {
		return &RuntimeError{Kind: KindSchedulingInPast, Cause: err}
	}
	return nil
}

// Profile returns the in-progress metrics profile, usable from within a
// handler to record custom OutVec samples (e.g. an application-defined
// queue-depth gauge) alongside the kernel's own channel-drop counters.
func (rt *Runtime) Profile() *metrics.Profile { return rt.profile }

// Run drives the main dispatch loop (spec.md §4.2) to completion. The RNG
// and the start clock are already set by Builder.Build; Run installs the
// RNG in the process-global slot, invokes Lifecycle.AtSimStart, then
// repeatedly pops the earliest event, advances
// the clock, dispatches it, and drains the deferred-operation buffer,
// until the FES is empty or the configured RuntimeLimit fires. It may be
// called at most once per Runtime.
func (rt *Runtime) Run() (*metrics.Profile, error) {
	if rt.ran {
		return nil, ErrAlreadyRun
	}
	rt.ran = true
	rt.start = time.Now()

	ctx.Global.SetRNG(rt.rng)
	ctx.Global.SetRuntime(rt)
	releasedCleanly := false
	defer func() {
		if releasedCleanly {
			return
		}
		ctx.Global.ReleaseAfterPanic()
	}()

	rt.publishStatus(true)
	rt.emitLifecycle(EventTypeSimStart, map[string]any{"start_time": rt.clock.String()})

	if err := rt.app.Lifecycle().AtSimStart(rt); err != nil {
		ctx.Global.Release()
		releasedCleanly = true
		return nil, &RuntimeError{Kind: KindModulePanic, Cause: err}
	}
	if err := rt.drainDeferred(); err != nil {
		ctx.Global.Release()
		releasedCleanly = true
		return nil, err
	}

	for rt.set.Len() > 0 {
		if rt.limit.Done(rt.events, rt.clock) {
			break
		}
		node, ok := rt.set.DequeueMin()
		if !ok {
			break
		}
		if node.Deadline < rt.clock {
			ctx.Global.Release()
			releasedCleanly = true
			return nil, &RuntimeError{Kind: KindSchedulingInPast, Cause: ErrDeadlineInPast}
		}
		rt.clock = node.Deadline
		rt.events++
		rt.publishStatus(true)

		if err := rt.dispatch(node); err != nil {
			var rerr *RuntimeError
			if asRuntimeError(err, &rerr) && rerr.Kind == KindModulePanic {
				rt.logger.Error("module panic caught", "module", rerr.ModulePath, "error", rerr.Cause)
				rt.emitLifecycle(EventTypeModulePanic, map[string]any{
					"module": rerr.ModulePath,
					"error":  rerr.Cause.Error(),
				})
				if err := rt.drainDeferred(); err != nil {
					ctx.Global.Release()
					releasedCleanly = true
					return nil, err
				}
				continue
			}
			ctx.Global.Release()
			releasedCleanly = true
			return nil, err
		}
		if err := rt.drainDeferred(); err != nil {
			ctx.Global.Release()
			releasedCleanly = true
			return nil, err
		}
		if rt.limit.Done(rt.events, rt.clock) {
			break
		}
	}

	if err := rt.app.Lifecycle().AtSimEnd(rt); err != nil {
		ctx.Global.Release()
		releasedCleanly = true
		return nil, &RuntimeError{Kind: KindModulePanic, Cause: err}
	}

	rt.profile.EventCount = rt.events
	rt.profile.FinalTime = rt.clock
	rt.profile.WallTime = time.Since(rt.start)
	rt.publishStatus(false)
	rt.emitLifecycle(EventTypeSimEnd, map[string]any{
		"final_time":  rt.clock.String(),
		"event_count": rt.events,
	})

	ctx.Global.Release()
	releasedCleanly = true
	return rt.profile, nil
}

// dispatch invokes one event's handler, recovering from a panic per the
// variant's PanicPolicy (spec.md §7 ModulePanic / panic atomicity: ops
// deferred up to the panic point are still committed).
func (rt *Runtime) dispatch(node fes.Node) (err error) {
	catch := true
	modulePath := ""
	if pp, ok := node.Payload.(PanicPolicy); ok {
		catch = pp.CatchPanics()
		modulePath = pp.ModulePath()
	}

	defer func() {
		if r := recover(); r != nil {
			if !catch {
				panic(r)
			}
			err = &RuntimeError{
				Kind:       KindModulePanic,
				ModulePath: modulePath,
				Cause:      fmt.Errorf("%v", r),
			}
		}
	}()

	set, ok := node.Payload.(EventSet)
	if !ok {
		return fmt.Errorf("des: FES payload does not implement EventSet: %T", node.Payload)
	}
	return set.Dispatch(rt)
}

func (rt *Runtime) drainDeferred() error {
	ops := rt.deferred.drain()
	for _, op := range ops {
		if err := op.Commit(rt); err != nil {
			return err
		}
	}
	return nil
}

func asRuntimeError(err error, out **RuntimeError) bool {
	if re, ok := err.(*RuntimeError); ok {
		*out = re
		return true
	}
	return false
}
