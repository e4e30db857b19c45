// Package netsim implements the network-simulation superstructure that sits
// atop the des kernel: modules, gates, channels, messages, and the
// translation layer that turns a handler's send/schedule calls into
// MessageAtGate / HandleMessage / ChannelUnbusy events (des.EventSet
// variants) with correct transmission-time, propagation-delay, and
// drop-on-busy semantics.
package netsim

import (
	"github.com/GoCodeAlone/des/simtime"
	"github.com/google/uuid"
)

// MessageKind distinguishes payload shapes at a coarse level without
// requiring a full type registry; applications are free to ignore it and
// rely on a type switch over Payload instead.
type MessageKind string

// Header is the immutable envelope carried by every Message. src_gate,
// dest_gate, and last_gate are updated as the message traverses the graph
// (§4.4); everything else is fixed at creation.
type Header struct {
	ID          uuid.UUID
	Kind        MessageKind
	SrcGate     GateRef
	DestGate    GateRef
	LastGate    GateRef
	SendTime    simtime.Time
	CreationTime simtime.Time
	LengthBits  uint64
}

// Message is a header plus an opaque typed payload. Messages are cheaply
// movable but not implicitly copyable: identity is by ID, not content
// (spec.md §3). Use Dup to obtain an independent copy with a fresh ID when
// a channel queue or fan-out hop needs to buffer or duplicate one without
// aliasing the original's mutable header fields.
type Message struct {
	Header  Header
	Payload any
}

// NewMessage constructs a Message with a fresh ID and CreationTime, ready
// to be handed to Send / SendAt / ScheduleIn / ScheduleAt.
func NewMessage(kind MessageKind, payload any, lengthBits uint64, now simtime.Time) *Message {
	return &Message{
		Header: Header{
			ID:           uuid.New(),
			Kind:         kind,
			CreationTime: now,
			SendTime:     now,
			LengthBits:   lengthBits,
		},
		Payload: payload,
	}
}

// BodySize reports the wire length of the message in bits, as set by the
// producer; it drives channel transmission-time accounting (§4.5).
func (m *Message) BodySize() uint64 { return m.Header.LengthBits }

// Dup returns a shallow, content-preserving copy of m with a new ID. The
// payload itself is not deep-copied (spec.md describes payloads as an
// opaque content slot); only the header identity changes. Needed by the
// channel-queue path, which buffers a message across a busy interval
// without letting later mutation of the in-flight original bleed into the
// queued copy's header.
func (m *Message) Dup() *Message {
	cp := *m
	cp.Header.ID = uuid.New()
	return &cp
}
