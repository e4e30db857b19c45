package des

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// EventEmitter forwards kernel lifecycle notifications onto a real event
// bus as CloudEvents, mirroring the teacher framework's
// scheduler.EventEmitter / lifecycle.Dispatcher pattern: the kernel itself
// never depends on a concrete transport, it only calls EmitEvent on
// whatever Builder.WithEventEmitter installed (an HTTP CloudEvents sender,
// an in-memory test sink, an eventbus module — the host decides).
type EventEmitter interface {
	EmitEvent(ctx context.Context, event cloudevents.Event) error
}

// Lifecycle notification event types, named the way the teacher names its
// own lifecycle.EventType constants.
const (
	EventTypeSimStart    = "des.lifecycle.sim_start"
	EventTypeSimEnd      = "des.lifecycle.sim_end"
	EventTypeModulePanic = "des.lifecycle.module_panic"
)

// emitLifecycle builds and forwards a lifecycle CloudEvent if an emitter
// is configured; a nil emitter (the default) makes this a no-op so hosts
// that don't care about external event forwarding pay nothing for it.
func (rt *Runtime) emitLifecycle(eventType string, data map[string]any) {
	if rt.emitter == nil {
		return
	}
	ev := cloudevents.NewEvent()
	ev.SetID(uuid.NewString())
	ev.SetType(eventType)
	ev.SetSource("des/runtime")
	ev.SetTime(time.Now())
	if data != nil {
		if err := ev.SetData(cloudevents.ApplicationJSON, data); err != nil {
			rt.logger.Warn("failed to encode lifecycle event data", "type", eventType, "error", err)
			return
		}
	}
	if err := rt.emitter.EmitEvent(context.Background(), ev); err != nil {
		rt.logger.Warn("failed to emit lifecycle event", "type", eventType, "error", err)
	}
}
