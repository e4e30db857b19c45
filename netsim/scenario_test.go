package netsim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
	"github.com/GoCodeAlone/des/simtime"
)

// scenarioApp is the minimal des.Application/netsim.GraphProvider pairing
// shared by every scenario below, the same shape as cmd/desrun's own app
// wrapper.
type scenarioApp struct {
	graph *netsim.Graph
}

func (a *scenarioApp) Lifecycle() des.Lifecycle { return a }
func (a *scenarioApp) NetGraph() *netsim.Graph  { return a.graph }

func (a *scenarioApp) AtSimStart(rt *des.Runtime) error {
	return netsim.BeginStagedStart(rt)
}

func (a *scenarioApp) AtSimEnd(rt *des.Runtime) error {
	a.graph.Teardown()
	return nil
}

func mustRun(t *testing.T, graph *netsim.Graph, opts ...des.Option) *des.Runtime {
	t.Helper()
	allOpts := append([]des.Option{des.WithQuiet(true)}, opts...)
	rt, err := des.NewRuntime(&scenarioApp{graph: graph}, allOpts...)
	require.NoError(t, err)
	_, err = rt.Run()
	require.NoError(t, err)
	return rt
}

// --- Scenario 1: single ping (spec.md §8.1) ---

type singlePing struct {
	observedNow []simtime.Time
}

func (s *singlePing) ModuleName() string     { return "single-ping" }
func (s *singlePing) NumSimStartStages() int { return 1 }

func (s *singlePing) AtSimStart(rt *des.Runtime, stage int) {
	msg := netsim.NewMessage("ping", "hi", 0, rt.Clock())
	_ = netsim.ScheduleAt(rt, msg, rt.Clock().Add(time.Second))
}

func (s *singlePing) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	s.observedNow = append(s.observedNow, rt.Clock())
}

func TestSinglePing(t *testing.T) {
	g := netsim.NewGraph()
	mod := &singlePing{}
	_, err := g.AddModule("m", "", mod, netsim.HostStereotype)
	require.NoError(t, err)

	rt := mustRun(t, g)
	profile := rt.Profile()

	assert.Equal(t, []simtime.Time{simtime.FromDuration(time.Second)}, mod.observedNow)
	assert.Equal(t, simtime.FromDuration(time.Second), profile.FinalTime)
	// One SimStartEvent(stage 0) dispatch plus the one HandleMessage dispatch.
	assert.Equal(t, int64(2), profile.EventCount)
}

// --- Scenario 2: FIFO tie-break (spec.md §8.2) ---

type tieBreaker struct {
	order []string
}

func (t *tieBreaker) ModuleName() string     { return "tie-break" }
func (t *tieBreaker) NumSimStartStages() int { return 1 }

func (t *tieBreaker) AtSimStart(rt *des.Runtime, stage int) {
	at := rt.Clock().Add(5 * time.Second)
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("m1", "m1", 0, rt.Clock()), at)
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("m2", "m2", 0, rt.Clock()), at)
}

func (t *tieBreaker) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	t.order = append(t.order, msg.Payload.(string))
}

func TestFIFOTieBreak(t *testing.T) {
	g := netsim.NewGraph()
	mod := &tieBreaker{}
	_, err := g.AddModule("m", "", mod, netsim.HostStereotype)
	require.NoError(t, err)

	mustRun(t, g)

	assert.Equal(t, []string{"m1", "m2"}, mod.order)
}

// --- Scenario 3: channel delay (spec.md §8.3) ---

type receivingHop struct {
	name     string
	arrivals []simtime.Time
}

func (r *receivingHop) ModuleName() string { return r.name }

func (r *receivingHop) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	r.arrivals = append(r.arrivals, rt.Clock())
}

type senderHop struct {
	name string
	out  netsim.GateRef
	at   []time.Duration
}

func (s *senderHop) ModuleName() string     { return s.name }
func (s *senderHop) NumSimStartStages() int { return 1 }

func (s *senderHop) AtSimStart(rt *des.Runtime, stage int) {
	now := rt.Clock()
	for i, dt := range s.at {
		msg := netsim.NewMessage("data", i, 8000, now)
		_ = netsim.SendAt(rt, s.out, msg, now.Add(dt))
	}
}

func buildSenderReceiver(t *testing.T, policy netsim.DropPolicy, queueCap int, sendOffsets []time.Duration) (*netsim.Graph, *senderHop, *receivingHop) {
	t.Helper()
	g := netsim.NewGraph()
	snd := &senderHop{name: "sender", at: sendOffsets}
	rcv := &receivingHop{name: "receiver"}

	sndMod, err := g.AddModule("net.sender", "", snd, netsim.HostStereotype)
	require.NoError(t, err)
	rcvMod, err := g.AddModule("net.receiver", "", rcv, netsim.HostStereotype)
	require.NoError(t, err)

	out := sndMod.AddGate("out", 0, netsim.Output)
	in := rcvMod.AddGate("in", 0, netsim.Input)

	ch := netsim.NewChannel("link", 8_000_000, 80*time.Millisecond, 0, policy, queueCap)
	g.AddChannel(ch)
	require.NoError(t, g.Connect(out.Ref(), in.Ref(), "link"))
	snd.out = out.Ref()
	return g, snd, rcv
}

func TestChannelDelay(t *testing.T) {
	g, _, rcv := buildSenderReceiver(t, netsim.Drop, 0, []time.Duration{0})
	mustRun(t, g, des.WithMaxTime(simtime.FromDuration(200*time.Millisecond)))

	require.Len(t, rcv.arrivals, 1)
	assert.Equal(t, simtime.FromDuration(81*time.Millisecond), rcv.arrivals[0])
}

// --- Scenario 4: channel drop (spec.md §8.4) ---

func TestChannelDrop(t *testing.T) {
	g, _, rcv := buildSenderReceiver(t, netsim.Drop, 0, []time.Duration{0, 500 * time.Microsecond})
	rt := mustRun(t, g, des.WithMaxTime(simtime.FromDuration(200*time.Millisecond)))

	require.Len(t, rcv.arrivals, 1)
	assert.Equal(t, simtime.FromDuration(81*time.Millisecond), rcv.arrivals[0])
	assert.Equal(t, int64(1), rt.Profile().ChannelDrops["link"])
}

// --- Scenario 5: channel queue (spec.md §8.5) ---

func TestChannelQueue(t *testing.T) {
	g, _, rcv := buildSenderReceiver(t, netsim.Queue, 0, []time.Duration{0, 500 * time.Microsecond})
	mustRun(t, g, des.WithMaxTime(simtime.FromDuration(200*time.Millisecond)))

	require.Len(t, rcv.arrivals, 2)
	assert.Equal(t, simtime.FromDuration(81*time.Millisecond), rcv.arrivals[0])
	assert.Equal(t, simtime.FromDuration(82*time.Millisecond), rcv.arrivals[1])
}

// --- Scenario 6: max-time termination (spec.md §8.6) ---

type selfRescheduler struct {
	dispatches int
}

func (s *selfRescheduler) ModuleName() string     { return "rescheduler" }
func (s *selfRescheduler) NumSimStartStages() int { return 1 }

func (s *selfRescheduler) AtSimStart(rt *des.Runtime, stage int) {
	s.fire(rt)
}

func (s *selfRescheduler) HandleMessage(rt *des.Runtime, msg *netsim.Message) {
	s.fire(rt)
}

func (s *selfRescheduler) fire(rt *des.Runtime) {
	s.dispatches++
	_ = netsim.ScheduleAt(rt, netsim.NewMessage("tick", nil, 0, rt.Clock()), rt.Clock().Add(time.Second))
}

func TestMaxTimeTermination(t *testing.T) {
	g := netsim.NewGraph()
	mod := &selfRescheduler{}
	_, err := g.AddModule("m", "", mod, netsim.HostStereotype)
	require.NoError(t, err)

	rt := mustRun(t, g, des.WithMaxTime(simtime.FromDuration(10*time.Second)))

	assert.Equal(t, 11, mod.dispatches)
	assert.Equal(t, simtime.FromDuration(10*time.Second), rt.Profile().FinalTime)
}
