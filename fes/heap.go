package fes

import (
	"container/heap"

	"github.com/GoCodeAlone/des/simtime"
)

// Heap is the binary-heap Future Event Set variant (the kernel's default).
// It orders entries by (deadline, cookie) using container/heap, giving
// O(log n) Enqueue/DequeueMin. This is the variant to reach for unless a
// profile shows the calendar queue's amortised O(1) dequeue matters more
// than its tuning cost — see Calendar.
type Heap struct {
	nodes   nodeHeap
	highWater simtime.Time
}

// NewHeap constructs an empty binary-heap FES. start is the configured
// simulation start time (Builder.WithStartTime); Enqueue rejects any
// deadline before it until the first DequeueMin raises the high-water mark.
func NewHeap(start simtime.Time) *Heap {
	h := &Heap{highWater: start}
	heap.Init(&h.nodes)
	return h
}

func (h *Heap) Enqueue(payload any, deadline simtime.Time, cookie Cookie) error {
	if deadline < h.highWater {
		return ErrDeadlineInPast
	}
	heap.Push(&h.nodes, Node{Payload: payload, Deadline: deadline, Cookie: cookie})
	return nil
}

func (h *Heap) DequeueMin() (Node, bool) {
	if h.nodes.Len() == 0 {
		return Node{}, false
	}
	n := heap.Pop(&h.nodes).(Node)
	h.highWater = n.Deadline
	return n, true
}

func (h *Heap) PeekMinTime() (simtime.Time, bool) {
	if h.nodes.Len() == 0 {
		return 0, false
	}
	return h.nodes[0].Deadline, true
}

func (h *Heap) Len() int { return h.nodes.Len() }

// nodeHeap implements heap.Interface over Node, ordered by Node.Less
// (deadline, then cookie) so the zero value is a min-heap.
type nodeHeap []Node

func (n nodeHeap) Len() int           { return len(n) }
func (n nodeHeap) Less(i, j int) bool { return n[i].Less(n[j]) }
func (n nodeHeap) Swap(i, j int)      { n[i], n[j] = n[j], n[i] }

func (n *nodeHeap) Push(x any) {
	*n = append(*n, x.(Node))
}

func (n *nodeHeap) Pop() any {
	old := *n
	l := len(old)
	item := old[l-1]
	*n = old[:l-1]
	return item
}

var _ Set = (*Heap)(nil)
