package netsim

import (
	"time"

	"github.com/GoCodeAlone/des/simtime"
)

// DropPolicy selects what a Channel does with a message it cannot transmit
// immediately because it is still busy with a prior one.
type DropPolicy int

const (
	// Drop discards the message; the sender receives no notification
	// (spec.md §4.5: "the network is lossy").
	Drop DropPolicy = iota
	// Queue buffers the message in the channel's internal FIFO, bounded by
	// Channel.QueueCapacity (0 means unbounded).
	Queue
)

// Channel is a simplex link decorating at most one ordered gate pair (a
// "hop"), carrying bitrate/latency/jitter metrics and a drop policy. The
// mutable BusyUntil timestamp is the channel's only per-run state besides
// its queue.
type Channel struct {
	Name string

	BitrateBitsPerSec float64
	Latency           time.Duration
	Jitter            time.Duration
	Policy            DropPolicy
	QueueCapacity     int // 0 == unbounded, only meaningful under Queue

	busyUntil simtime.Time
	queue     []queuedSend

	drops int64
}

// queuedSend is one message buffered by a Queue-policy channel while busy,
// retaining everything the translator needs to resume transmission once
// the channel frees up.
type queuedSend struct {
	msg        *Message
	srcRef     GateRef
	arrivalAtChannel simtime.Time
}

// NewChannel constructs a Channel with the given metrics. latency/jitter
// are wall-of-virtual-time durations; bitrate is in bits/second.
func NewChannel(name string, bitrateBitsPerSec float64, latency, jitter time.Duration, policy DropPolicy, queueCapacity int) *Channel {
	return &Channel{
		Name:              name,
		BitrateBitsPerSec: bitrateBitsPerSec,
		Latency:           latency,
		Jitter:            jitter,
		Policy:            policy,
		QueueCapacity:     queueCapacity,
	}
}

// BusyUntil reports the virtual time at which the channel becomes free
// again; callers compare this against the time a message would reserve
// the channel to detect busy-on-send (spec.md §4.5).
func (c *Channel) BusyUntil() simtime.Time { return c.busyUntil }

// IsBusy reports whether the channel is still reserved at t.
func (c *Channel) IsBusy(t simtime.Time) bool { return c.busyUntil.After(t) }

// transmissionTime computes tx = length_bits / bitrate for a message of the
// given size. A zero or negative bitrate is treated as instantaneous
// (tx == 0), which degenerate test topologies sometimes want.
func (c *Channel) transmissionTime(lengthBits uint64) time.Duration {
	if c.BitrateBitsPerSec <= 0 {
		return 0
	}
	seconds := float64(lengthBits) / c.BitrateBitsPerSec
	return time.Duration(seconds * float64(time.Second))
}

// reserve marks the channel busy from arrival through arrival+tx and
// returns the computed transmission duration.
func (c *Channel) reserve(arrival simtime.Time, lengthBits uint64) time.Duration {
	tx := c.transmissionTime(lengthBits)
	c.busyUntil = arrival.Add(tx)
	return tx
}

// enqueue appends a message to the channel's FIFO, honoring QueueCapacity.
// Returns false (and does not enqueue) if the queue is full.
func (c *Channel) enqueue(msg *Message, src GateRef, arrivalAtChannel simtime.Time) bool {
	if c.QueueCapacity > 0 && len(c.queue) >= c.QueueCapacity {
		return false
	}
	c.queue = append(c.queue, queuedSend{msg: msg, srcRef: src, arrivalAtChannel: arrivalAtChannel})
	return true
}

// dequeue pops the head of the channel's FIFO, if any.
func (c *Channel) dequeue() (queuedSend, bool) {
	if len(c.queue) == 0 {
		return queuedSend{}, false
	}
	head := c.queue[0]
	c.queue = c.queue[1:]
	return head, true
}

// DroppedCount reports how many messages this channel has discarded, via
// Drop policy or a full Queue, over the life of the run.
func (c *Channel) DroppedCount() int64 { return c.drops }

func (c *Channel) recordDrop() { c.drops++ }

// Teardown drains and drops every message still buffered in the channel's
// queue, resolving the open question of channel-teardown drop semantics
// (spec.md §9) with the documented safe default: nothing queued survives
// past the channel's lifetime.
func (c *Channel) Teardown() int {
	n := len(c.queue)
	c.drops += int64(n)
	c.queue = nil
	return n
}
