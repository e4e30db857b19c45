// Package async provides a per-module cooperative task runtime layered on
// top of the synchronous netsim core (spec.md §5's async extension). A
// module's Behavior spawns Tasks that block on simulation-aware
// primitives — Sleep and Await — instead of real goroutine scheduling
// points; suspension is implemented with a goroutine-plus-channel
// handoff so that, from the kernel's point of view, only one task ever
// runs at a time and control always returns to the caller before the next
// event is dispatched. The core itself stays oblivious: it only ever sees
// netsim.AsyncWakeupEvent, which this package's Scheduler answers.
package async

import (
	"time"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
	"github.com/GoCodeAlone/des/simtime"
)

type yieldKind int

const (
	yieldSleep yieldKind = iota
	yieldAwait
)

type yield struct {
	kind yieldKind
	at   simtime.Time // only meaningful for yieldSleep
}

// Task is a single suspendable unit of module logic. Do not share a Task
// across modules; obtain one via Scheduler.Spawn.
type Task struct {
	yieldCh  chan yield
	resumeCh chan struct{}
	doneCh   chan struct{}
}

// Sleep suspends the task until rt.Clock()+dt, resuming when the owning
// Scheduler answers the matching AsyncWakeupEvent. Must be called from
// inside the function passed to Scheduler.Spawn, on its own goroutine.
func (t *Task) Sleep(rt *des.Runtime, dt time.Duration) {
	t.yieldCh <- yield{kind: yieldSleep, at: rt.Clock().Add(dt)}
	<-t.resumeCh
}

// Await suspends the task until something explicitly resumes it via
// Scheduler.Notify — the simulation-channel-receive analogue (spec.md §5:
// "await on a simulation channel suspends until a producer resumes it via
// a deferred wakeup").
func (t *Task) Await() {
	t.yieldCh <- yield{kind: yieldAwait}
	<-t.resumeCh
}

// Scheduler owns every live Task for one module (a module may run several
// concurrent tasks; each still only executes when the kernel hands it
// control via an AsyncWakeupEvent). Embed one in a module's Behavior and
// implement netsim.AsyncAware by returning Scheduler.AsAware().
type Scheduler struct {
	modulePath string
	sleeping   map[*Task]simtime.Time // value: the task's wake-up deadline
	waiting    map[*Task]struct{}
}

// NewScheduler returns a Scheduler for the module at modulePath.
func NewScheduler(modulePath string) *Scheduler {
	return &Scheduler{
		modulePath: modulePath,
		sleeping:   make(map[*Task]simtime.Time),
		waiting:    make(map[*Task]struct{}),
	}
}

// Spawn starts fn on its own goroutine and pumps it forward until it
// either finishes or suspends for the first time, returning the Task
// handle (it may already be finished; callers generally don't need the
// handle at all, it exists for symmetry with Resume/Notify's bookkeeping).
func (s *Scheduler) Spawn(rt *des.Runtime, fn func(t *Task)) *Task {
	t := &Task{
		yieldCh:  make(chan yield),
		resumeCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go func() {
		fn(t)
		close(t.doneCh)
	}()
	s.pump(rt, t)
	return t
}

// pump blocks until t yields or finishes, translating a Sleep yield into
// a deferred AsyncWakeupEvent scheduling request and an Await yield into
// parking the task until Notify is called.
func (s *Scheduler) pump(rt *des.Runtime, t *Task) {
	select {
	case y := <-t.yieldCh:
		switch y.kind {
		case yieldSleep:
			s.sleeping[t] = y.at
			rt.Defer(wakeOp{modulePath: s.modulePath, at: y.at})
		case yieldAwait:
			s.waiting[t] = struct{}{}
		}
	case <-t.doneCh:
	}
}

// Resume answers an AsyncWakeupEvent: every task parked on Sleep whose
// deadline has been reached is resumed and pumped forward again. Each
// Sleep enqueues its own AsyncWakeupEvent at its deadline (wakeOp.Commit),
// so a sleeper with a later deadline, including a task that sleeps again
// while being resumed here, waits for its own wakeup.
func (s *Scheduler) Resume(rt *des.Runtime) {
	for t, at := range s.sleeping {
		if at.After(rt.Clock()) {
			continue
		}
		delete(s.sleeping, t)
		t.resumeCh <- struct{}{}
		s.pump(rt, t)
	}
}

// Notify resumes every task currently parked in Await, in no particular
// order (the simulation-channel-receive analogue of a producer signalling
// a consumer).
func (s *Scheduler) Notify(rt *des.Runtime) {
	for t := range s.waiting {
		delete(s.waiting, t)
		t.resumeCh <- struct{}{}
		s.pump(rt, t)
	}
}

type awareAdapter struct{ s *Scheduler }

func (a *awareAdapter) WakeAsync(rt *des.Runtime) { a.s.Resume(rt) }

var _ netsim.AsyncAware = (*awareAdapter)(nil)

// AsAware returns a netsim.AsyncAware view of s suitable for a module's
// Behavior to return from its own AsyncAware implementation (or to embed
// directly if the Behavior has no other async wiring of its own).
func (s *Scheduler) AsAware() netsim.AsyncAware { return &awareAdapter{s: s} }

// wakeOp is the deferred form of a Sleep's scheduling request: committed
// after the spawning/resuming handler returns, like every other netsim
// deferred op (spec.md §4.7), so a Sleep called mid-handler doesn't enqueue
// until that handler's other scheduling effects are also visible.
type wakeOp struct {
	modulePath string
	at         simtime.Time
}

var _ des.DeferredOp = wakeOp{}

func (op wakeOp) Commit(rt *des.Runtime) error {
	return rt.Enqueue(netsim.AsyncWakeupEvent{ModulePath: op.modulePath}, op.at)
}
