package schedule

// Callback is invoked when its event fires. It receives the event so it can
// read tick/type/payload and reschedule or cancel itself.
type Callback func(*Event)

// notInHeap is the heapIndex sentinel for an event that is not pending.
const notInHeap = -1

// Event is a scheduled callback. The scheduler exclusively owns an event
// from insertion until its callback returns or it is cancelled; external
// handles are read-only until then.
type Event struct {
	tick      Tick
	typ       Type
	seq       uint64
	payload   Payload
	callback  Callback
	scheduler *Scheduler
	heapIndex int
	// generation guards against stale handle use after a heap slot is
	// reused (the handle only addresses the event while this matches
	// the Scheduler's bookkeeping).
	generation uint64
	fired      bool
	cancelled  bool
}

// Tick returns the absolute tick at which the event is scheduled or fired.
func (e *Event) Tick() Tick { return e.tick }

// Type returns the event's class.
func (e *Event) Type() Type { return e.typ }

// Payload returns the event's current payload.
func (e *Event) Payload() Payload { return e.payload }

// Seq returns the event's sequence number (for tests/replay inspection).
func (e *Event) Seq() uint64 { return e.seq }

// IsScheduled reports whether the event is currently pending in the heap.
func (e *Event) IsScheduled() bool {
	return e != nil && e.heapIndex != notInHeap && !e.fired && !e.cancelled
}

// Reschedule is sugar for Scheduler.Reschedule(handle, offset) using this
// event's own handle, matching the "self-rescheduling pattern" callbacks
// use to re-arm periodic work without per-tick allocation.
func (e *Event) Reschedule(tickOffset Tick) error {
	if e == nil || e.scheduler == nil {
		return ErrForeignHandle
	}
	return e.scheduler.Reschedule(e.Handle(), tickOffset)
}

// Cancel is sugar for Scheduler.Cancel(handle).
func (e *Event) Cancel() {
	if e == nil || e.scheduler == nil {
		return
	}
	e.scheduler.Cancel(e.Handle())
}

// Handle returns a read-only, generation-guarded reference usable by
// callers outside the scheduler to cancel or reschedule this event.
func (e *Event) Handle() Handle {
	return Handle{event: e, generation: e.generation}
}

// Handle is the externally held reference to a scheduled event. It embeds
// the generation the event had when the handle was produced, so use after
// the event has fired, been cancelled, or had its heap slot reused for a
// new event is rejected rather than silently acting on the wrong event.
type Handle struct {
	event      *Event
	generation uint64
}

func (h Handle) valid() bool {
	return h.event != nil && h.event.generation == h.generation
}

// IsScheduled reports whether the referenced event is still pending.
func (h Handle) IsScheduled() bool {
	return h.valid() && h.event.IsScheduled()
}

// Tick returns the event's tick, or 0 if the handle is stale.
func (h Handle) Tick() Tick {
	if !h.valid() {
		return 0
	}
	return h.event.tick
}

// Type returns the event's type, or External's zero value if stale.
func (h Handle) Type() Type {
	if !h.valid() {
		return 0
	}
	return h.event.typ
}

// Payload returns the event's payload, or nil if the handle is stale.
func (h Handle) Payload() Payload {
	if !h.valid() {
		return nil
	}
	return h.event.payload
}
