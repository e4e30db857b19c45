package netsim

import "github.com/GoCodeAlone/des"

// RestartEvent is the distinguished event a shutdown_and_restart_in
// request enqueues (via ShutdownOp, §4.7): when handled, it resets the
// module (if Resettable), marks it active again, and runs its stage-0
// at_sim_start — satisfying the restart idempotence law (§8): a restarted
// module observes at_sim_start(0) exactly once per restart, at the
// restart's scheduled time.
type RestartEvent struct {
	ModulePath string
}

var _ des.EventSet = RestartEvent{}
var _ des.PanicPolicy = RestartEvent{}

func (e RestartEvent) Dispatch(rt *des.Runtime) error {
	graph, err := graphFromApp(rt)
	if err != nil {
		return err
	}
	m, ok := graph.ByPath(e.ModulePath)
	if !ok {
		return nil
	}
	if resettable, ok := m.Behavior.(Resettable); ok {
		resettable.Reset()
	}
	m.Active = true
	if starter, ok := m.Behavior.(StagedStarter); ok && starter.NumSimStartStages() > 0 {
		runModuleStage(rt, m, starter, 0)
	}
	return nil
}

func (e RestartEvent) CatchPanics() bool  { return true }
func (e RestartEvent) ModulePath() string { return e.ModulePath }
