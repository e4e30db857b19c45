// Package tests runs spec.md §8's concrete scenarios as Gherkin features
// through godog, the same BDD harness the teacher uses for its own
// integration suite (modules/chimux's *_bdd_test.go, tests/integration).
package tests

import (
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
	"github.com/GoCodeAlone/des/simtime"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// world carries per-scenario state between steps; godog calls
// initializeScenario once per scenario, which constructs a fresh world, so
// scenarios never share state.
type world struct {
	graph *netsim.Graph

	pingMod    *bddSinglePing
	tieMod     *bddTieBreaker
	senderMod  *bddSender
	receiverMod *bddReceiver
	reschedMod *bddRescheduler

	maxTime    time.Duration
	hasMaxTime bool

	profile *des.Runtime
}

func initializeScenario(sc *godog.ScenarioContext) {
	w := &world{}

	sc.Before(func(ctx interface{ Err() error }, s *godog.Scenario) (interface{ Err() error }, error) {
		return ctx, nil
	})

	sc.Given(`^a module that schedules itself once at t=(\d+)s$`, w.singlePingModule)
	sc.Given(`^a module that schedules m1 then m2 both at t=(\d+)s$`, w.tieBreakModule)
	sc.Given(`^a sender and receiver joined by an (\d+) bit/s (\d+)ms-latency channel$`, w.senderReceiverDrop)
	sc.Given(`^a sender and receiver joined by a (Drop|Queue)-policy (\d+) bit/s (\d+)ms-latency channel$`, w.senderReceiverPolicy)
	sc.Given(`^the sender sends (?:one |an )?\d+-bit message at t=0$`, w.senderSendsAtZero)
	sc.Given(`^the sender sends (?:one |an )?\d+-bit message at t=0\.5ms$`, w.senderSendsAtHalfMs)
	sc.Given(`^a module that reschedules itself every 1s$`, w.reschedulerModule)
	sc.Given(`^a max time limit of (\d+)s$`, w.maxTimeLimit)

	sc.When(`^the simulation runs$`, w.runSimulation)

	sc.Then(`^the module observes now equal to (\d+)s exactly once$`, w.assertSinglePingObserved)
	sc.Then(`^the final time is (\d+)s$`, w.assertFinalTime)
	sc.Then(`^the deliveries arrive in order m1, m2$`, w.assertTieBreakOrder)
	sc.Then(`^the receiver observes exactly (\d+) deliver(?:y|ies)$`, w.assertDeliveryCount)
	sc.Then(`^the first delivery lands at (\d+)ms$`, w.assertFirstDelivery)
	sc.Then(`^the second delivery lands at (\d+)ms$`, w.assertSecondDelivery)
	sc.Then(`^the channel recorded (\d+) drop$`, w.assertDropCount)
	sc.Then(`^the module fired exactly (\d+) times$`, w.assertReschedulerFired)
}

// --- scenario setup steps ---

type bddSinglePing struct {
	delay       time.Duration
	observedNow []simtime.Time
}

func (p *bddSinglePing) ModuleName() string     { return "single-ping" }
func (p *bddSinglePing) NumSimStartStages() int { return 1 }
func (p *bddSinglePing) AtSimStart(rt *des.Runtime, stage int) {
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("ping", nil, 0, rt.Clock()), rt.Clock().Add(p.delay))
}
func (p *bddSinglePing) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	p.observedNow = append(p.observedNow, rt.Clock())
}

func (w *world) singlePingModule(delaySeconds int) error {
	w.graph = netsim.NewGraph()
	w.pingMod = &bddSinglePing{delay: time.Duration(delaySeconds) * time.Second}
	_, err := w.graph.AddModule("m", "", w.pingMod, netsim.HostStereotype)
	return err
}

type bddTieBreaker struct {
	at    time.Duration
	order []string
}

func (p *bddTieBreaker) ModuleName() string     { return "tie-break" }
func (p *bddTieBreaker) NumSimStartStages() int { return 1 }
func (p *bddTieBreaker) AtSimStart(rt *des.Runtime, stage int) {
	at := rt.Clock().Add(p.at)
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("m1", "m1", 0, rt.Clock()), at)
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("m2", "m2", 0, rt.Clock()), at)
}
func (p *bddTieBreaker) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	p.order = append(p.order, msg.Payload.(string))
}

func (w *world) tieBreakModule(atSeconds int) error {
	w.graph = netsim.NewGraph()
	w.tieMod = &bddTieBreaker{at: time.Duration(atSeconds) * time.Second}
	_, err := w.graph.AddModule("m", "", w.tieMod, netsim.HostStereotype)
	return err
}

type bddSender struct {
	out     netsim.GateRef
	offsets []time.Duration
}

func (s *bddSender) ModuleName() string     { return "sender" }
func (s *bddSender) NumSimStartStages() int { return 1 }
func (s *bddSender) AtSimStart(rt *des.Runtime, stage int) {
	now := rt.Clock()
	for i, dt := range s.offsets {
		msg := netsim.NewMessage("data", i, 8000, now)
		_ = netsim.SendAt(rt, s.out, msg, now.Add(dt))
	}
}

type bddReceiver struct {
	arrivals []simtime.Time
}

func (r *bddReceiver) ModuleName() string { return "receiver" }
func (r *bddReceiver) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	r.arrivals = append(r.arrivals, rt.Clock())
}

func (w *world) buildSenderReceiver(policy netsim.DropPolicy, bitrate float64, latencyMs int) error {
	w.graph = netsim.NewGraph()
	w.senderMod = &bddSender{}
	w.receiverMod = &bddReceiver{}

	sndMod, err := w.graph.AddModule("net.sender", "", w.senderMod, netsim.HostStereotype)
	if err != nil {
		return err
	}
	rcvMod, err := w.graph.AddModule("net.receiver", "", w.receiverMod, netsim.HostStereotype)
	if err != nil {
		return err
	}

	out := sndMod.AddGate("out", 0, netsim.Output)
	in := rcvMod.AddGate("in", 0, netsim.Input)

	ch := netsim.NewChannel("link", bitrate, time.Duration(latencyMs)*time.Millisecond, 0, policy, 0)
	w.graph.AddChannel(ch)
	if err := w.graph.Connect(out.Ref(), in.Ref(), "link"); err != nil {
		return err
	}
	w.senderMod.out = out.Ref()
	return nil
}

func (w *world) senderReceiverDrop(bitrate, latencyMs int) error {
	return w.buildSenderReceiver(netsim.Drop, float64(bitrate), latencyMs)
}

func (w *world) senderReceiverPolicy(policyName string, bitrate, latencyMs int) error {
	policy := netsim.Drop
	if policyName == "Queue" {
		policy = netsim.Queue
	}
	return w.buildSenderReceiver(policy, float64(bitrate), latencyMs)
}

func (w *world) senderSendsAtZero() error {
	w.senderMod.offsets = append(w.senderMod.offsets, 0)
	return nil
}

func (w *world) senderSendsAtHalfMs() error {
	w.senderMod.offsets = append(w.senderMod.offsets, 500*time.Microsecond)
	return nil
}

type bddRescheduler struct {
	fired int
}

func (r *bddRescheduler) ModuleName() string     { return "rescheduler" }
func (r *bddRescheduler) NumSimStartStages() int { return 1 }
func (r *bddRescheduler) AtSimStart(rt *des.Runtime, stage int) { r.fire(rt) }
func (r *bddRescheduler) HandleMessage(rt *des.Runtime, msg *netsim.Message) { r.fire(rt) }
func (r *bddRescheduler) fire(rt *des.Runtime) {
	r.fired++
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("tick", nil, 0, rt.Clock()), rt.Clock().Add(time.Second))
}

func (w *world) reschedulerModule() error {
	w.graph = netsim.NewGraph()
	w.reschedMod = &bddRescheduler{}
	_, err := w.graph.AddModule("m", "", w.reschedMod, netsim.HostStereotype)
	return err
}

func (w *world) maxTimeLimit(seconds int) error {
	w.maxTime = time.Duration(seconds) * time.Second
	w.hasMaxTime = true
	return nil
}

// --- When ---

type bddApp struct{ graph *netsim.Graph }

func (a *bddApp) Lifecycle() des.Lifecycle { return a }
func (a *bddApp) NetGraph() *netsim.Graph  { return a.graph }
func (a *bddApp) AtSimStart(rt *des.Runtime) error {
	return netsim.BeginStagedStart(rt)
}
func (a *bddApp) AtSimEnd(rt *des.Runtime) error {
	a.graph.Teardown()
	return nil
}

func (w *world) runSimulation() error {
	opts := []des.Option{des.WithQuiet(true)}
	if w.hasMaxTime {
		opts = append(opts, des.WithMaxTime(simtime.FromDuration(w.maxTime)))
	}
	rt, err := des.NewRuntime(&bddApp{graph: w.graph}, opts...)
	if err != nil {
		return err
	}
	if _, err := rt.Run(); err != nil {
		return err
	}
	w.profile = rt
	return nil
}

// --- Then ---

func (w *world) assertSinglePingObserved(atSeconds int) error {
	want := simtime.FromDuration(time.Duration(atSeconds) * time.Second)
	if len(w.pingMod.observedNow) != 1 {
		return fmt.Errorf("expected exactly one observation, got %d", len(w.pingMod.observedNow))
	}
	if w.pingMod.observedNow[0] != want {
		return fmt.Errorf("expected now=%s, got %s", want, w.pingMod.observedNow[0])
	}
	return nil
}

func (w *world) assertFinalTime(seconds int) error {
	want := simtime.FromDuration(time.Duration(seconds) * time.Second)
	if w.profile.Profile().FinalTime != want {
		return fmt.Errorf("expected final_time=%s, got %s", want, w.profile.Profile().FinalTime)
	}
	return nil
}

func (w *world) assertTieBreakOrder() error {
	if len(w.tieMod.order) != 2 || w.tieMod.order[0] != "m1" || w.tieMod.order[1] != "m2" {
		return fmt.Errorf("expected [m1 m2], got %v", w.tieMod.order)
	}
	return nil
}

func (w *world) assertDeliveryCount(n int) error {
	if len(w.receiverMod.arrivals) != n {
		return fmt.Errorf("expected %d deliveries, got %d", n, len(w.receiverMod.arrivals))
	}
	return nil
}

func (w *world) assertFirstDelivery(ms int) error {
	want := simtime.FromDuration(time.Duration(ms) * time.Millisecond)
	if len(w.receiverMod.arrivals) < 1 || w.receiverMod.arrivals[0] != want {
		return fmt.Errorf("expected first delivery at %s, got %v", want, w.receiverMod.arrivals)
	}
	return nil
}

func (w *world) assertSecondDelivery(ms int) error {
	want := simtime.FromDuration(time.Duration(ms) * time.Millisecond)
	if len(w.receiverMod.arrivals) < 2 || w.receiverMod.arrivals[1] != want {
		return fmt.Errorf("expected second delivery at %s, got %v", want, w.receiverMod.arrivals)
	}
	return nil
}

func (w *world) assertDropCount(n int) error {
	got := w.profile.Profile().ChannelDrops["link"]
	if got != int64(n) {
		return fmt.Errorf("expected %d drops, got %d", n, got)
	}
	return nil
}

func (w *world) assertReschedulerFired(n int) error {
	if w.reschedMod.fired != n {
		return fmt.Errorf("expected %d fires, got %d", n, w.reschedMod.fired)
	}
	return nil
}

var _ = require.NoError
