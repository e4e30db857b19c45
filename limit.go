package des

import "github.com/GoCodeAlone/des/simtime"

// RuntimeLimit is a termination predicate the dispatch loop consults after
// every dispatched event. spec.md §4.2 combines multiple limits
// "conjunctively-to-terminate (any predicate firing ends the run)" — so
// despite the name, All is a disjunction of its members; it is named to
// match the reference implementation's RuntimeLimit::All, not set logic.
type RuntimeLimit interface {
	// Done reports whether the run should terminate, given the event
	// just dispatched (or before the first dispatch, with eventCount=0
	// and clock at the configured start time).
	Done(eventCount int64, clock simtime.Time) bool
}

// NoLimit never terminates the run on its own account; it is the zero
// value default, relying on the FES itself running dry.
type NoLimit struct{}

func (NoLimit) Done(int64, simtime.Time) bool { return false }

// EventCountLimit terminates once eventCount has reached n.
type EventCountLimit struct{ N int64 }

func (l EventCountLimit) Done(eventCount int64, _ simtime.Time) bool {
	return eventCount >= l.N
}

// SimTimeLimit terminates once the virtual clock has reached or passed t.
type SimTimeLimit struct{ T simtime.Time }

func (l SimTimeLimit) Done(_ int64, clock simtime.Time) bool {
	return clock >= l.T
}

// AllLimits terminates as soon as any one of its members fires.
type AllLimits []RuntimeLimit

func (l AllLimits) Done(eventCount int64, clock simtime.Time) bool {
	for _, m := range l {
		if m.Done(eventCount, clock) {
			return true
		}
	}
	return false
}
