package async_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
	"github.com/GoCodeAlone/des/netsim/async"
	"github.com/GoCodeAlone/des/simtime"
)

type asyncApp struct {
	graph *netsim.Graph
}

func (a *asyncApp) Lifecycle() des.Lifecycle { return a }
func (a *asyncApp) NetGraph() *netsim.Graph  { return a.graph }
func (a *asyncApp) AtSimStart(rt *des.Runtime) error {
	return netsim.BeginStagedStart(rt)
}
func (a *asyncApp) AtSimEnd(rt *des.Runtime) error {
	a.graph.Teardown()
	return nil
}

// sleeperModule spawns one task that sleeps twice, a second apart, and
// records rt.Clock() at each resumption.
type sleeperModule struct {
	path    string
	sched   *async.Scheduler
	resumed []simtime.Time
}

func (s *sleeperModule) ModuleName() string     { return "sleeper" }
func (s *sleeperModule) NumSimStartStages() int { return 1 }

func (s *sleeperModule) AtSimStart(rt *des.Runtime, stage int) {
	s.sched = async.NewScheduler(s.path)
	s.sched.Spawn(rt, func(t *async.Task) {
		t.Sleep(rt, time.Second)
		s.resumed = append(s.resumed, rt.Clock())
		t.Sleep(rt, time.Second)
		s.resumed = append(s.resumed, rt.Clock())
	})
}

func (s *sleeperModule) WakeAsync(rt *des.Runtime) { s.sched.Resume(rt) }

var _ netsim.AsyncAware = (*sleeperModule)(nil)

func TestSchedulerSleepResumesAtDeadline(t *testing.T) {
	g := netsim.NewGraph()
	mod := &sleeperModule{path: "m"}
	_, err := g.AddModule("m", "", mod, netsim.HostStereotype)
	require.NoError(t, err)

	rt, err := des.NewRuntime(&asyncApp{graph: g}, des.WithQuiet(true), des.WithMaxTime(simtime.FromDuration(5*time.Second)))
	require.NoError(t, err)
	_, err = rt.Run()
	require.NoError(t, err)

	want := []simtime.Time{
		simtime.FromDuration(time.Second),
		simtime.FromDuration(2 * time.Second),
	}
	assert.Equal(t, want, mod.resumed)
}

// awaiterModule spawns a task that blocks on Await until a HandleMessage
// call notifies it — the simulation-channel-receive analogue.
type awaiterModule struct {
	path     string
	sched    *async.Scheduler
	notified []simtime.Time
}

func (a *awaiterModule) ModuleName() string     { return "awaiter" }
func (a *awaiterModule) NumSimStartStages() int { return 1 }

func (a *awaiterModule) AtSimStart(rt *des.Runtime, stage int) {
	a.sched = async.NewScheduler(a.path)
	a.sched.Spawn(rt, func(t *async.Task) {
		t.Await()
		a.notified = append(a.notified, rt.Clock())
	})
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("go", nil, 0, rt.Clock()), rt.Clock().Add(3*time.Second))
}

func (a *awaiterModule) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	a.sched.Notify(rt)
}

func (a *awaiterModule) WakeAsync(rt *des.Runtime) { a.sched.Resume(rt) }

var _ netsim.AsyncAware = (*awaiterModule)(nil)

func TestSchedulerAwaitResumesOnNotify(t *testing.T) {
	g := netsim.NewGraph()
	mod := &awaiterModule{path: "m"}
	_, err := g.AddModule("m", "", mod, netsim.HostStereotype)
	require.NoError(t, err)

	rt, err := des.NewRuntime(&asyncApp{graph: g}, des.WithQuiet(true), des.WithMaxTime(simtime.FromDuration(10*time.Second)))
	require.NoError(t, err)
	_, err = rt.Run()
	require.NoError(t, err)

	assert.Equal(t, []simtime.Time{simtime.FromDuration(3 * time.Second)}, mod.notified)
}
