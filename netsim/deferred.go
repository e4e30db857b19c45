package netsim

import (
	"time"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/simtime"
)

// SendOp is the deferred form of a gate-traversal send: Send/SendAt push
// one of these into the handler's deferred buffer (C10); the driver
// commits it after the handler returns by running the translator
// (spec.md §4.5, §4.7).
type SendOp struct {
	Src GateRef
	Msg *Message
	At  simtime.Time
}

var _ des.DeferredOp = SendOp{}

func (op SendOp) Commit(rt *des.Runtime) error {
	if op.At.Before(rt.Clock()) {
		return &des.RuntimeError{Kind: des.KindSchedulingInPast, ModulePath: op.Src.ModulePath, Cause: des.ErrDeadlineInPast}
	}
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	return walkFrom(rt, graph, op.Src, op.Msg, op.At)
}

// ScheduleOp is the deferred form of schedule_at/schedule_in: a timer
// primitive with no gate traversal — a HandleMessage addressed back to the
// scheduling module itself.
type ScheduleOp struct {
	ModulePath string
	Msg        *Message
	At         simtime.Time
}

var _ des.DeferredOp = ScheduleOp{}

func (op ScheduleOp) Commit(rt *des.Runtime) error {
	if op.At.Before(rt.Clock()) {
		return &des.RuntimeError{Kind: des.KindSchedulingInPast, ModulePath: op.ModulePath, Cause: des.ErrDeadlineInPast}
	}
	return rt.Enqueue(HandleMessageEvent{ModulePath: op.ModulePath, Msg: op.Msg}, op.At)
}

// ShutdownOp is the deferred form of shutdown_and_restart_in: it marks the
// module inactive (so in-flight deliveries targeting it are drained rather
// than handled, §4.6) and, if RestartIn is non-nil, enqueues a
// RestartEvent at now+RestartIn.
type ShutdownOp struct {
	ModulePath string
	RestartIn  *time.Duration
}

var _ des.DeferredOp = ShutdownOp{}

func (op ShutdownOp) Commit(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	m, ok := graph.ByPath(op.ModulePath)
	if !ok {
		return nil
	}
	m.Active = false
	if op.RestartIn == nil {
		return nil
	}
	return rt.Enqueue(RestartEvent{ModulePath: op.ModulePath}, rt.Clock().Add(*op.RestartIn))
}
