// Package fes implements the Future Event Set: the priority structure that
// orders pending simulation events by virtual time. Two variants are
// provided, chosen at construction time rather than a build tag so a host
// binary can pick per-run: a binary heap (Heap, the default, simplest and
// fastest for sparse/irregular workloads) and a calendar queue (Calendar,
// amortised O(1) for dense, near-uniform event arrival rates).
//
// Both variants satisfy the same guarantees (G1-G3 in the kernel's event
// scheduler design): dequeue returns events in non-decreasing deadline
// order, same-deadline events dequeue FIFO by insertion cookie, and enqueue
// rejects a deadline strictly before the set's own high-water mark.
package fes

import "github.com/GoCodeAlone/des/simtime"

// Cookie is the FES's monotonic tiebreaker, assigned by the caller (the
// runtime driver owns the counter; see des.Runtime) at enqueue time.
// Equality and ordering of two same-deadline nodes is decided solely by
// Cookie, never by payload.
type Cookie uint64

// Node is a single entry in the future event set: an opaque payload bound
// to a deadline and the cookie that breaks same-deadline ties.
type Node struct {
	Payload  any
	Deadline simtime.Time
	Cookie   Cookie
}

// Less reports whether n sorts strictly before m under FES ordering:
// earlier deadline first, then lower cookie.
func (n Node) Less(m Node) bool {
	if n.Deadline != m.Deadline {
		return n.Deadline < m.Deadline
	}
	return n.Cookie < m.Cookie
}

// Set is the contract both FES variants implement.
type Set interface {
	// Enqueue inserts a node. deadline must be >= the set's current
	// high-water mark (the deadline of the most recently dequeued node,
	// or the configured start time if nothing has been dequeued yet);
	// ErrDeadlineInPast is returned otherwise, per G3.
	Enqueue(payload any, deadline simtime.Time, cookie Cookie) error

	// DequeueMin removes and returns the node with the smallest deadline,
	// breaking ties by cookie. ok is false when the set is empty.
	DequeueMin() (Node, bool)

	// PeekMinTime returns the deadline of the next node DequeueMin would
	// return, without removing it. ok is false when the set is empty.
	PeekMinTime() (simtime.Time, bool)

	// Len reports the number of nodes currently queued.
	Len() int
}
