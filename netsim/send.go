package netsim

import (
	"errors"
	"time"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/simtime"
)

// ErrNoCurrentModule is returned by the free functions below when called
// outside a module callback (no current-module slot bound).
var ErrNoCurrentModule = errors.New("netsim: no module is currently executing")

// Current returns the module bound to the process-local current-module
// slot for the duration of the callback presently executing (spec.md
// §4.6). It lets handler code call send/schedule_* without threading the
// acting module through every signature.
func Current() (*Module, error) {
	h, ok := des.CurrentModuleHandle()
	if !ok {
		return nil, ErrNoCurrentModule
	}
	m, ok := h.(*Module)
	if !ok {
		return nil, ErrNoCurrentModule
	}
	return m, nil
}

// Send stages a deferred send from the current module's gate src, at the
// current virtual time (spec.md §4.5, send(msg, gate)).
func Send(rt *des.Runtime, src GateRef, msg *Message) error {
	return SendAt(rt, src, msg, rt.Clock())
}

// SendAt stages a deferred send at an explicit deadline (send_at(msg, gate, t)).
func SendAt(rt *des.Runtime, src GateRef, msg *Message, at simtime.Time) error {
	if at.Before(rt.Clock()) {
		return &des.RuntimeError{Kind: des.KindSchedulingInPast, ModulePath: src.ModulePath, Cause: des.ErrDeadlineInPast}
	}
	msg.Header.SrcGate = src
	rt.Defer(SendOp{Src: src, Msg: msg, At: at})
	return nil
}

// ScheduleIn stages a self-timer dt in the future (schedule_in(msg, dt)).
func ScheduleIn(rt *des.Runtime, msg *Message, dt time.Duration) error {
	return ScheduleAt(rt, msg, rt.Clock().Add(dt))
}

// ScheduleAt stages a self-timer at an explicit deadline (schedule_at(msg, t)):
// no gate traversal, delivered back to the currently executing module.
func ScheduleAt(rt *des.Runtime, msg *Message, at simtime.Time) error {
	cur, err := Current()
	if err != nil {
		return err
	}
	if at.Before(rt.Clock()) {
		return &des.RuntimeError{Kind: des.KindSchedulingInPast, ModulePath: cur.Path, Cause: des.ErrDeadlineInPast}
	}
	rt.Defer(ScheduleOp{ModulePath: cur.Path, Msg: msg, At: at})
	return nil
}

// ShutdownAndRestartIn stages a restart request for the currently executing
// module: it goes inactive immediately on commit, and its stage-0
// at_sim_start re-runs at now+dt (spec.md §4.6).
func ShutdownAndRestartIn(rt *des.Runtime, dt time.Duration) error {
	cur, err := Current()
	if err != nil {
		return err
	}
	restartIn := dt
	rt.Defer(ShutdownOp{ModulePath: cur.Path, RestartIn: &restartIn})
	return nil
}

// Shutdown stages a permanent shutdown (no restart) for the currently
// executing module.
func Shutdown(rt *des.Runtime) error {
	cur, err := Current()
	if err != nil {
		return err
	}
	rt.Defer(ShutdownOp{ModulePath: cur.Path, RestartIn: nil})
	return nil
}

// BeginStagedStart enqueues the first staged sim-start event (spec.md
// §4.6). Application implementations typically call this from their
// Lifecycle.AtSimStart.
func BeginStagedStart(rt *des.Runtime) error {
	return rt.Enqueue(SimStartEvent{Stage: 0}, rt.Clock())
}
