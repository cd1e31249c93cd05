package schedule

import "container/heap"

// Scheduler owns the current tick, the min-heap of pending events, and both
// sequence counters. It is the single arbiter of ordering: one callback
// runs to completion before the next begins, in strict
// (tick, type, seq) order.
type Scheduler struct {
	currentTick Tick
	heap        eventHeap

	nextSimSeq uint64
	nextExtSeq uint64

	// minExternalTick is the earliest tick at which a newly scheduled
	// external event may land. It starts at currentTick and is bumped to
	// t+1 the moment tick t begins draining, so an external event
	// injected by a callback running at tick t is always pushed to
	// tick t+1 rather than landing behind events that already fired.
	minExternalTick Tick

	gateIssued bool
	generation uint64
}

// NewScheduler constructs a scheduler at tick 0.
func NewScheduler() *Scheduler {
	return &Scheduler{
		nextSimSeq: SimulationSeqMin,
		nextExtSeq: ExternalSeqMin,
	}
}

// CurrentTick returns the highest tick whose events have all been drained;
// while a callback runs, it returns the tick being drained.
func (s *Scheduler) CurrentTick() Tick { return s.currentTick }

// HasPending reports whether any event remains in the heap.
func (s *Scheduler) HasPending() bool { return len(s.heap) > 0 }

// Len reports the number of events currently queued, for queue-depth
// instrumentation.
func (s *Scheduler) Len() int { return len(s.heap) }

// NextScheduledTick returns the tick of the earliest pending event, if any.
func (s *Scheduler) NextScheduledTick() (Tick, bool) {
	if len(s.heap) == 0 {
		return 0, false
	}
	return s.heap[0].tick, true
}

// Schedule inserts a new non-external event at currentTick+tickOffset and
// returns a handle usable for cancellation or rescheduling.
func (s *Scheduler) Schedule(tickOffset Tick, typ Type, callback Callback, payload Payload) (Handle, error) {
	if typ == External {
		return Handle{}, ErrInvalidType
	}
	return s.insert(s.currentTick+tickOffset, typ, s.nextSimulationSeq(), callback, payload), nil
}

func (s *Scheduler) nextSimulationSeq() uint64 {
	seq := s.nextSimSeq
	s.nextSimSeq++
	return seq
}

func (s *Scheduler) insert(tick Tick, typ Type, seq uint64, callback Callback, payload Payload) Handle {
	s.generation++
	event := &Event{
		tick:       tick,
		typ:        typ,
		seq:        seq,
		payload:    payload,
		callback:   callback,
		scheduler:  s,
		heapIndex:  notInHeap,
		generation: s.generation,
	}
	heap.Push(&s.heap, event)
	return event.Handle()
}

// Reschedule moves a pending event to currentTick+tickOffset, preserving
// its seq and type so ordering relative to same-tick events stays
// deterministic. An event may reschedule itself from inside its own
// callback. It fails if the event already fired, was cancelled, or
// belongs to a different scheduler.
func (s *Scheduler) Reschedule(h Handle, tickOffset Tick) error {
	event, err := s.resolve(h)
	if err != nil {
		return err
	}
	if event.fired || event.cancelled {
		return ErrStaleHandle
	}
	if event.heapIndex != notInHeap {
		heap.Remove(&s.heap, event.heapIndex)
	}
	event.tick = s.currentTick + tickOffset
	heap.Push(&s.heap, event)
	return nil
}

// Cancel removes a pending event; a no-op if it already fired or was
// cancelled.
func (s *Scheduler) Cancel(h Handle) {
	event, err := s.resolve(h)
	if err != nil {
		return
	}
	if !event.IsScheduled() {
		return
	}
	heap.Remove(&s.heap, event.heapIndex)
	event.cancelled = true
}

func (s *Scheduler) resolve(h Handle) (*Event, error) {
	if h.event == nil {
		return nil, ErrForeignHandle
	}
	if h.event.scheduler != s {
		return nil, ErrForeignHandle
	}
	if h.event.generation != h.generation {
		return nil, ErrStaleHandle
	}
	return h.event, nil
}

// Advance drains every event with tick <= currentTick+ticks in strict
// priority order, then sets currentTick to currentTick+ticks. Empty ticks
// are skipped implicitly: the loop's cost is bounded by the number of
// pending events, not by the tick span.
func (s *Scheduler) Advance(ticks Tick) {
	target := s.currentTick + ticks
	s.drainUntil(func() bool {
		return len(s.heap) > 0 && s.heap[0].tick <= target
	}, target)
	s.currentTick = target
}

// DrainToEnd drains every pending event regardless of tick. currentTick
// ends at the tick of the last event fired, or is unchanged if the queue
// was already empty.
func (s *Scheduler) DrainToEnd() {
	for len(s.heap) > 0 {
		t := s.heap[0].tick
		s.beginTick(t)
		s.currentTick = t
		s.fireOne()
	}
}

// drainUntil runs while cond holds, bumping the external barrier and
// setting currentTick each time processing moves to a new tick, so a
// callback scheduling or rescheduling relative to the current tick lands
// relative to its own tick (the caller, Advance, sets currentTick to the
// target once draining completes).
func (s *Scheduler) drainUntil(cond func() bool, target Tick) {
	var lastTickSeen Tick
	sawAny := false
	for cond() {
		t := s.heap[0].tick
		if !sawAny || t != lastTickSeen {
			s.beginTick(t)
			s.currentTick = t
			lastTickSeen = t
			sawAny = true
		}
		s.fireOne()
	}
}

// beginTick bumps the external-event barrier to the start of tick t: any
// external event scheduled from here until the next beginTick call is
// forced to land no earlier than t+1.
func (s *Scheduler) beginTick(t Tick) {
	if next := t + 1; s.minExternalTick < next {
		s.minExternalTick = next
	}
}

func (s *Scheduler) fireOne() {
	event := heap.Pop(&s.heap).(*Event)
	if event.callback != nil {
		event.callback(event)
	}
	// An event its callback rescheduled is back in the heap and has not fired.
	if event.heapIndex == notInHeap {
		event.fired = true
	}
}

// ExclusiveExternalGate returns the sole legitimate source of EXTERNAL
// events. It succeeds at most once per scheduler lifetime; subsequent
// calls return ErrGateIssued.
func (s *Scheduler) ExclusiveExternalGate() (*ExternalGate, error) {
	if s.gateIssued {
		return nil, ErrGateIssued
	}
	s.gateIssued = true
	s.minExternalTick = s.currentTick
	return &ExternalGate{scheduler: s}, nil
}

// ExternalGate is the one-shot, exclusively owned mechanism that assigns
// external events their reserved sequence numbers and enforces the
// mid-tick injection barrier. Obtain it via Scheduler.ExclusiveExternalGate.
type ExternalGate struct {
	scheduler *Scheduler
}

// Schedule enqueues an external event at
// scheduler.minExternalTick+tickOffset and returns its handle along with
// the absolute tick and sequence number it was assigned, for the caller to
// record in the external-event log.
func (g *ExternalGate) Schedule(tickOffset Tick, payload Payload, callback Callback) (Handle, Tick, uint64, error) {
	if g == nil || g.scheduler == nil {
		return Handle{}, 0, 0, ErrForeignHandle
	}
	s := g.scheduler
	seq := s.nextExtSeq
	if seq > ExternalSeqMax {
		return Handle{}, 0, 0, ErrGateIssued
	}
	s.nextExtSeq++
	tick := s.minExternalTick + tickOffset
	handle := s.insert(tick, External, seq, callback, payload)
	return handle, tick, seq, nil
}

// eventHeap implements container/heap.Interface over (tick, type, seq).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.tick != b.tick {
		return a.tick < b.tick
	}
	if a.typ != b.typ {
		return a.typ < b.typ
	}
	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *eventHeap) Push(x any) {
	event := x.(*Event)
	event.heapIndex = len(*h)
	*h = append(*h, event)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	event := old[n-1]
	old[n-1] = nil
	event.heapIndex = notInHeap
	*h = old[:n-1]
	return event
}
