package des

// DeferredOp is one entry in the deferred-operation buffer (C10): a
// send/schedule/shutdown request captured during a handler's execution and
// committed only after the handler returns (spec.md §4.7). Concrete
// variants — Send, ScheduleAt, Shutdown — live in package netsim, which
// knows how to translate them into FES events (C8); this package only
// defines the seam so the core runtime loop can drain them without
// depending on the network layer.
type DeferredOp interface {
	// Commit performs the op's effect against rt: typically one or more
	// calls to rt.Enqueue. The usual error is the SchedulingInPast case
	// (spec.md §4.7: "any op whose at is strictly before now is a
	// programmer error and produces a fatal RuntimeError"); netsim's ops
	// can also fail when the Application exposes no network graph. The
	// runtime driver treats any non-nil return as fatal and unwinds the
	// dispatch loop.
	Commit(rt *Runtime) error
}

// deferredBuffer is the per-handler staging FIFO. A single instance lives
// on Runtime and is reused across handler invocations — Drain empties it
// after each commit so the next handler starts from an empty buffer,
// matching spec.md's "per-handler staging area... committed atomically on
// handler return".
type deferredBuffer struct {
	ops []DeferredOp
}

// push appends an op. Called by netsim's free functions (Send, ScheduleAt,
// Shutdown) while a handler is executing.
func (b *deferredBuffer) push(op DeferredOp) {
	b.ops = append(b.ops, op)
}

// drain returns the buffered ops in FIFO order and empties the buffer.
func (b *deferredBuffer) drain() []DeferredOp {
	if len(b.ops) == 0 {
		return nil
	}
	ops := b.ops
	b.ops = nil
	return ops
}

// len reports how many ops are currently staged, for diagnostics.
func (b *deferredBuffer) len() int { return len(b.ops) }
