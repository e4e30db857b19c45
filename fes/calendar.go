package fes

import (
	"container/heap"
	"sort"
	"time"

	"github.com/GoCodeAlone/des/simtime"
)

// DefaultCalendarBuckets and DefaultCalendarTimespan mirror the reference
// implementation's tuning defaults (spec.md §6): 1028 buckets of 2.5ms
// each, chosen for workloads with event density on the order of a few
// hundred events per simulated millisecond. Both are correctness-neutral —
// a poorly chosen span only degrades performance, never ordering.
const (
	DefaultCalendarBuckets  = 1028
	DefaultCalendarTimespan = 2500 * time.Microsecond
)

// Calendar is the bucketed Future Event Set variant: a zero-delay fast
// path, a fixed ring of N finite buckets each spanning width T, and an
// overflow heap for deadlines beyond the finite window. See the package
// doc and spec.md §4.1 for the full three-tier design.
type Calendar struct {
	zero []Node // FIFO: deadline == now, bypasses all ordering

	ring    [][]Node // N buckets, each sorted by (deadline, cookie) via binary search
	head    int      // physical index of logical bucket 0
	buckets int       // N
	span    time.Duration // T

	base     simtime.Time // lower bound of logical bucket 0's timespan
	upper    simtime.Time // base + buckets*span: the finite window's exclusive upper bound
	overflow nodeHeap     // deadlines >= upper

	now simtime.Time // high-water mark; advanced to each dequeued node's deadline
}

// NewCalendar constructs an empty calendar queue. buckets and span come
// from Builder.WithCalendarQueueBuckets / WithCalendarQueueTimespan, or the
// package defaults if unset. start is the configured simulation start time.
func NewCalendar(start simtime.Time, buckets int, span time.Duration) *Calendar {
	if buckets <= 0 {
		buckets = DefaultCalendarBuckets
	}
	if span <= 0 {
		span = DefaultCalendarTimespan
	}
	ring := make([][]Node, buckets)
	return &Calendar{
		ring:     ring,
		buckets:  buckets,
		span:     span,
		base:     start,
		upper:    start.Add(time.Duration(buckets) * span),
		overflow: nodeHeap{},
		now:      start,
	}
}

func (c *Calendar) Enqueue(payload any, deadline simtime.Time, cookie Cookie) error {
	if deadline < c.now {
		return ErrDeadlineInPast
	}
	node := Node{Payload: payload, Deadline: deadline, Cookie: cookie}

	if deadline == c.now {
		c.zero = append(c.zero, node)
		return nil
	}
	if deadline >= c.upper {
		heap.Push(&c.overflow, node)
		return nil
	}
	idx := c.bucketIndex(deadline)
	c.ring[idx] = insertSorted(c.ring[idx], node)
	return nil
}

// bucketIndex maps a deadline within [base, upper) to its physical ring slot.
func (c *Calendar) bucketIndex(deadline simtime.Time) int {
	offset := int64(deadline-c.base) / int64(c.span)
	logical := int(offset) % c.buckets
	return (c.head + logical) % c.buckets
}

// insertSorted inserts node into a bucket slice kept sorted by (deadline,
// cookie), per spec.md: "insertion via binary search ... equal-deadline
// events ordered FIFO by cookie (tiebreak by bumping the insertion index
// past any equal timestamps already present)".
func insertSorted(bucket []Node, node Node) []Node {
	i := sort.Search(len(bucket), func(i int) bool {
		return node.Less(bucket[i])
	})
	bucket = append(bucket, Node{})
	copy(bucket[i+1:], bucket[i:])
	bucket[i] = node
	return bucket
}

func (c *Calendar) DequeueMin() (Node, bool) {
	if len(c.zero) > 0 {
		// A node already in the current bucket at the same deadline with a
		// lower cookie was enqueued first, so it comes out first (G2).
		if head := c.ring[c.head]; len(head) > 0 && head[0].Less(c.zero[0]) {
			n := head[0]
			c.ring[c.head] = head[1:]
			c.advance(n.Deadline)
			return n, true
		}
		n := c.zero[0]
		c.zero = c.zero[1:]
		c.advance(n.Deadline)
		return n, true
	}
	for {
		head := c.ring[c.head]
		if len(head) > 0 {
			n := head[0]
			c.ring[c.head] = head[1:]
			c.advance(n.Deadline)
			return n, true
		}
		if !c.shift() {
			return Node{}, false
		}
	}
}

// advance raises the high-water mark; DequeueMin never returns a smaller
// deadline than a prior call, so this is always a forward move.
func (c *Calendar) advance(t simtime.Time) {
	if t > c.now {
		c.now = t
	}
}

// shift rotates the ring one slot, extends the finite window by one
// bucket-width, and drains any overflow entries that now fall inside it.
// Returns false when the whole set (ring + overflow) is empty.
func (c *Calendar) shift() bool {
	if c.isEmptyRing() && len(c.overflow) == 0 {
		return false
	}
	freed := c.head
	c.head = (c.head + 1) % c.buckets
	c.ring[freed] = nil
	c.base = c.base.Add(c.span)
	c.upper = c.upper.Add(c.span)

	newTopPhysical := (c.head + c.buckets - 1) % c.buckets
	for len(c.overflow) > 0 && c.overflow[0].Deadline < c.upper {
		n := heap.Pop(&c.overflow).(Node)
		c.ring[newTopPhysical] = insertSorted(c.ring[newTopPhysical], n)
	}
	return true
}

func (c *Calendar) isEmptyRing() bool {
	for _, b := range c.ring {
		if len(b) > 0 {
			return false
		}
	}
	return true
}

func (c *Calendar) PeekMinTime() (simtime.Time, bool) {
	if len(c.zero) > 0 {
		return c.zero[0].Deadline, true
	}
	// A non-destructive peek must not rotate the ring, so it only reports
	// what is directly visible: the current top bucket, else the minimum
	// of all non-empty buckets and the overflow heap.
	if len(c.ring[c.head]) > 0 {
		return c.ring[c.head][0].Deadline, true
	}
	best, ok := simtime.Max, false
	for i := 0; i < c.buckets; i++ {
		b := c.ring[(c.head+i)%c.buckets]
		if len(b) > 0 && (!ok || b[0].Deadline < best) {
			best, ok = b[0].Deadline, true
		}
	}
	if len(c.overflow) > 0 && (!ok || c.overflow[0].Deadline < best) {
		best, ok = c.overflow[0].Deadline, true
	}
	return best, ok
}

func (c *Calendar) Len() int {
	n := len(c.zero) + len(c.overflow)
	for _, b := range c.ring {
		n += len(b)
	}
	return n
}

var _ Set = (*Calendar)(nil)
