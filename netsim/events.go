package netsim

import (
	"fmt"

	"github.com/GoCodeAlone/des"
)

// MessageAtGateEvent signals that a message has arrived at a gate but has
// not yet been delivered to a module (spec.md §4.3). The translator elides
// this variant whenever a send's entire chain can be resolved statically
// (no hop is currently busy); it is only actually enqueued when a hop's
// timing depended on a channel's runtime busy-state — presently, resuming
// the walk after a Queue-policy channel releases a buffered message (see
// translate.go).
type MessageAtGateEvent struct {
	Gate GateRef
	Msg  *Message
}

var _ des.EventSet = MessageAtGateEvent{}

func (e MessageAtGateEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	return walkFrom(rt, graph, e.Gate, e.Msg, rt.Clock())
}

// HandleMessageEvent is delivery: the message has traversed its last hop
// (or was scheduled directly via schedule_at) and is ready for the owning
// module's HandleMessage callback.
type HandleMessageEvent struct {
	ModulePath string
	Msg        *Message
}

var _ des.EventSet = HandleMessageEvent{}
var _ des.PanicPolicy = HandleMessageEvent{}

func (e HandleMessageEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	m, ok := graph.ByPath(e.ModulePath)
	if !ok {
		rt.Logger().Warn("handle_message: no such module", "path", e.ModulePath)
		return nil
	}
	if !m.Active {
		rt.Logger().Debug("handle_message: dropped, module inactive (shutdown pending restart)", "path", e.ModulePath)
		return nil
	}
	handler, ok := m.Behavior.(MessageHandler)
	if !ok {
		return nil
	}
	des.BindCurrentModule(m)
	defer des.UnbindCurrentModule()
	graph.notifyBefore(rt, m, e.Msg)
	handler.HandleMessage(rt, e.Msg)
	graph.notifyAfter(rt, m, e.Msg)
	return nil
}

func (e HandleMessageEvent) CatchPanics() bool  { return true }
func (e HandleMessageEvent) ModulePath() string { return e.ModulePath }

// ChannelUnbusyEvent fires when a channel's busy-until interval elapses.
// If the channel has a queued message (Queue drop policy), the head is
// released: the channel reserves itself again for the released message's
// own transmission time, and a MessageAtGateEvent continues the walk from
// the gate immediately past this hop.
type ChannelUnbusyEvent struct {
	ChannelName string
}

var _ des.EventSet = ChannelUnbusyEvent{}

func (e ChannelUnbusyEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	ch, ok := graph.Channel(e.ChannelName)
	if !ok {
		return nil
	}
	q, ok := ch.dequeue()
	if !ok {
		return nil
	}
	return releaseQueued(rt, graph, ch, q)
}

// SimStartEvent drives one stage of staged module initialisation
// (spec.md §4.6). All modules whose NumSimStartStages() exceeds Stage are
// called before the next stage's SimStartEvent is enqueued, at the same
// deadline, which the FES's FIFO-by-cookie tiebreak (G2) keeps strictly
// ordered after this stage's enqueue.
type SimStartEvent struct {
	Stage int
}

var _ des.EventSet = SimStartEvent{}

func (e SimStartEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	maxStage := 0
	for _, m := range graph.Modules() {
		starter, ok := m.Behavior.(StagedStarter)
		if !ok {
			continue
		}
		n := starter.NumSimStartStages()
		if n > maxStage {
			maxStage = n
		}
		if n <= e.Stage {
			continue
		}
		runModuleStage(rt, m, starter, e.Stage)
	}
	if e.Stage+1 < maxStage {
		return rt.Enqueue(SimStartEvent{Stage: e.Stage + 1}, rt.Clock())
	}
	return nil
}

// runModuleStage invokes one module's AtSimStart callback for stage,
// recovering a panic locally so one misbehaving module doesn't prevent its
// stage-mates from being initialised (spec.md §7, ModulePanic).
func runModuleStage(rt *des.Runtime, m *Module, starter StagedStarter, stage int) {
	defer func() {
		if r := recover(); r != nil {
			if !m.CatchPanics() {
				panic(r)
			}
			rt.Logger().Error("module panic during sim_start", "module", m.Path, "stage", stage, "panic", fmt.Sprint(r))
		}
	}()
	des.BindCurrentModule(m)
	defer des.UnbindCurrentModule()
	starter.AtSimStart(rt, stage)
}

// AsyncWakeupEvent resumes a module's per-module cooperative task runtime
// (the netsim/async extension, spec.md §5). The core kernel treats it like
// any other variant; it has no special meaning beyond delegating to
// whichever AsyncAware behavior the module implements.
type AsyncWakeupEvent struct {
	ModulePath string
}

var _ des.EventSet = AsyncWakeupEvent{}
var _ des.PanicPolicy = AsyncWakeupEvent{}

// AsyncAware is implemented by a module's Behavior when it participates in
// the netsim/async cooperative task runtime.
type AsyncAware interface {
	WakeAsync(rt *des.Runtime)
}

func (e AsyncWakeupEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	m, ok := graph.ByPath(e.ModulePath)
	if !ok {
		return nil
	}
	aware, ok := m.Behavior.(AsyncAware)
	if !ok {
		return nil
	}
	des.BindCurrentModule(m)
	defer des.UnbindCurrentModule()
	aware.WakeAsync(rt)
	return nil
}

func (e AsyncWakeupEvent) CatchPanics() bool  { return true }
func (e AsyncWakeupEvent) ModulePath() string { return e.ModulePath }
