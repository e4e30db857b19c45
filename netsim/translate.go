package netsim

import (
	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/simtime"
)

// walkFrom is the network event translation core (spec.md §4.5, "the hard
// part"): it follows the static gate chain starting at cur, accounting for
// each hop's channel (if any) — transmission time, propagation delay, and
// busy/drop/queue semantics — and resolves the entire remaining chain in
// one synchronous pass whenever every hop's busy-state is already known
// (which is always true here: channel state lives in-process, so there is
// never genuine uncertainty about whether a hop is busy "at send time").
// It only stops short of a single HandleMessageEvent enqueue when a hop is
// currently busy under the Queue policy, in which case the message is
// buffered and the remaining walk is resumed later by releaseQueued via a
// MessageAtGateEvent — the one case where a hop's timing truly depends on
// a future runtime event (the channel's ChannelUnbusyEvent).
func walkFrom(rt *des.Runtime, graph *Graph, cur GateRef, msg *Message, now simtime.Time) error {
	for {
		gate, ok := graph.Gate(cur)
		if !ok {
			rt.Logger().Warn("send: no such gate", "gate", describeGateRef(cur))
			return nil
		}

		if gate.NextGate == nil {
			msg.Header.LastGate = cur
			msg.Header.DestGate = cur
			return rt.Enqueue(HandleMessageEvent{ModulePath: gate.Owner.Path, Msg: msg}, now)
		}

		next := *gate.NextGate

		if gate.ChannelName != "" {
			ch, ok := graph.Channel(gate.ChannelName)
			if !ok {
				rt.Logger().Warn("send: hop references unknown channel", "channel", gate.ChannelName)
				return nil
			}
			if ch.IsBusy(now) {
				switch ch.Policy {
				case Drop:
					ch.recordDrop()
					rt.Profile().ChannelDrops[ch.Name]++
					rt.Logger().Debug("channel drop: busy", "channel", ch.Name, "message", msg.Header.ID)
					return nil
				case Queue:
					if !ch.enqueue(msg, cur, now) {
						ch.recordDrop()
						rt.Profile().ChannelDrops[ch.Name]++
						rt.Logger().Debug("channel drop: queue full", "channel", ch.Name, "message", msg.Header.ID)
					}
					return nil
				}
			}

			tx := ch.reserve(now, msg.BodySize())
			pd := ch.Latency + rt.RNG().JitterSample(ch.Jitter)
			if err := rt.Enqueue(ChannelUnbusyEvent{ChannelName: ch.Name}, now.Add(tx)); err != nil {
				return err
			}
			now = now.Add(tx).Add(pd)
		}

		msg.Header.LastGate = cur
		cur = next
	}
}

// releaseQueued resumes translation for a message a Queue-policy channel
// just released: the channel reserves itself again for the message's own
// transmission time, then the remaining walk continues from the gate past
// this hop, deferred through an explicit MessageAtGateEvent rather than a
// direct call — the walk genuinely could not be resolved earlier because
// it depended on this ChannelUnbusyEvent actually firing.
func releaseQueued(rt *des.Runtime, graph *Graph, ch *Channel, q queuedSend) error {
	gate, ok := graph.Gate(q.srcRef)
	if !ok || gate.NextGate == nil {
		return nil
	}
	next := *gate.NextGate

	now := rt.Clock()
	tx := ch.reserve(now, q.msg.BodySize())
	pd := ch.Latency + rt.RNG().JitterSample(ch.Jitter)
	if err := rt.Enqueue(ChannelUnbusyEvent{ChannelName: ch.Name}, now.Add(tx)); err != nil {
		return err
	}
	arrival := now.Add(tx).Add(pd)
	q.msg.Header.LastGate = q.srcRef
	return rt.Enqueue(MessageAtGateEvent{Gate: next, Msg: q.msg}, arrival)
}
