// Package wsbridge broadcasts match and external events to spectator
// WebSocket connections with ordered, at-least-once delivery: a
// reconnecting subscriber resumes from its last acknowledged sequence
// rather than missing events or re-seeing already-processed ones.
// Grounded on the teacher's internal/events.Stream (same retention/ack
// bookkeeping shape), retargeted from vehicle-combat telemetry envelopes
// to this engine's schedule.Payload union.
package wsbridge

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"matchsim/engine/internal/schedule"
)

// Kind discriminates the envelope's payload for subscribers that only
// want a subset of the broadcast (e.g. external events only).
type Kind string

const (
	KindExternalEvent Kind = "external_event"
	KindMatchEvent    Kind = "match_event"
	KindWorldSnapshot Kind = "world_snapshot"
)

// Envelope carries one broadcastable unit: either an external event (as
// recorded in the replay log), a derived match event, or a periodic world
// snapshot, with sequencing metadata for ordered at-least-once delivery.
type Envelope struct {
	Sequence uint64
	Kind     Kind
	Tick     schedule.Tick
	Payload  schedule.Payload
}

// Clone duplicates the envelope so concurrent subscribers cannot observe
// each other's mutations. schedule.Payload implementations are plain
// value structs; the one reference field among them (TacticalChange's
// InstructionUpdates map) is deep-copied explicitly.
func (e *Envelope) Clone() *Envelope {
	if e == nil {
		return nil
	}
	clone := *e
	if tc, ok := e.Payload.(schedule.TacticalChange); ok && tc.InstructionUpdates != nil {
		updates := make(map[string]string, len(tc.InstructionUpdates))
		for k, v := range tc.InstructionUpdates {
			updates[k] = v
		}
		tc.InstructionUpdates = updates
		clone.Payload = tc
	}
	return &clone
}

// Config controls the retention policy for the stream log and subscriber
// buffers.
type Config struct {
	Retain int
}

const defaultRetention = 512

// Stream coordinates ordered event delivery with at-least-once semantics
// per subscriber.
type Stream struct {
	mu          sync.Mutex
	nextSeq     uint64
	retention   int
	logOrder    []uint64
	logPayloads map[uint64]*Envelope
	subscribers map[string]*subscriberState
}

type subscriberState struct {
	id      string
	pending []uint64
	lastAck uint64
	ch      chan *Envelope
	active  bool
}

// Subscription exposes the event channel and acknowledgement helpers for
// a subscriber.
type Subscription struct {
	id     string
	stream *Stream
	events <-chan *Envelope
	once   sync.Once
}

// ErrOutOfOrderAck signals that a subscriber attempted to acknowledge a
// sequence other than its next pending one.
var ErrOutOfOrderAck = errors.New("wsbridge: ack sequence must match the next pending event")

// NewStream constructs a stream using the provided configuration.
func NewStream(cfg Config) *Stream {
	retention := cfg.Retain
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Stream{
		retention:   retention,
		logPayloads: make(map[uint64]*Envelope),
		subscribers: make(map[string]*subscriberState),
	}
}

// Subscribe attaches a spectator to the stream and replays any events the
// subscriber has not yet acknowledged (reconnect support).
func (s *Stream) Subscribe(subscriberID string, buffer int) (*Subscription, error) {
	if s == nil {
		return nil, errors.New("wsbridge: nil stream")
	}
	if subscriberID == "" {
		return nil, errors.New("wsbridge: subscriber id must be provided")
	}
	if buffer <= 0 {
		buffer = 32
	}

	s.mu.Lock()
	state := s.ensureSubscriberLocked(subscriberID)
	replay := s.collectReplayLocked(state)
	ch := make(chan *Envelope, buffer)
	state.ch = ch
	state.active = true
	state.pending = append([]uint64(nil), replay...)
	deliveries := s.prepareDeliveriesLocked(replay)
	s.mu.Unlock()

	for _, env := range deliveries {
		select {
		case ch <- env:
		default:
		}
	}

	return &Subscription{id: subscriberID, stream: s, events: ch}, nil
}

// Events exposes the ordered delivery channel for the subscriber.
func (s *Subscription) Events() <-chan *Envelope {
	if s == nil {
		return nil
	}
	return s.events
}

// Ack informs the stream that the subscriber processed the given
// sequence.
func (s *Subscription) Ack(sequence uint64) error {
	if s == nil || s.stream == nil {
		return errors.New("wsbridge: subscription closed")
	}
	return s.stream.ack(s.id, sequence)
}

// Close marks the subscription inactive while preserving ack state, so a
// later reconnect under the same ID resumes correctly.
func (s *Subscription) Close() {
	if s == nil || s.stream == nil {
		return
	}
	s.once.Do(func() {
		s.stream.deactivateSubscriber(s.id)
	})
}

func (s *Stream) ensureSubscriberLocked(subscriberID string) *subscriberState {
	state, ok := s.subscribers[subscriberID]
	if !ok {
		state = &subscriberState{id: subscriberID}
		s.subscribers[subscriberID] = state
	}
	return state
}

func (s *Stream) collectReplayLocked(state *subscriberState) []uint64 {
	replay := make([]uint64, 0, len(s.logOrder))
	for _, seq := range s.logOrder {
		if seq <= state.lastAck {
			continue
		}
		replay = append(replay, seq)
	}
	return replay
}

func (s *Stream) prepareDeliveriesLocked(sequences []uint64) []*Envelope {
	deliveries := make([]*Envelope, 0, len(sequences))
	for _, seq := range sequences {
		if payload, ok := s.logPayloads[seq]; ok {
			deliveries = append(deliveries, payload.Clone())
		}
	}
	return deliveries
}

// Publish enqueues an envelope for reliable, ordered delivery to every
// active subscriber and returns its assigned sequence number.
func (s *Stream) Publish(kind Kind, tick schedule.Tick, payload schedule.Payload) (uint64, error) {
	if s == nil {
		return 0, errors.New("wsbridge: nil stream")
	}
	envelope := &Envelope{Kind: kind, Tick: tick, Payload: payload}

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	envelope.Sequence = seq
	s.logPayloads[seq] = envelope
	s.logOrder = append(s.logOrder, seq)

	type delivery struct {
		ch      chan<- *Envelope
		payload *Envelope
	}
	deliveries := make([]delivery, 0, len(s.subscribers))
	for _, state := range s.subscribers {
		state.pending = append(state.pending, seq)
		if state.active && state.ch != nil {
			deliveries = append(deliveries, delivery{ch: state.ch, payload: envelope.Clone()})
		}
	}
	s.enforceRetentionLocked()
	s.mu.Unlock()

	for _, item := range deliveries {
		select {
		case item.ch <- item.payload:
		default:
			// 1.- A slow subscriber does not block the publisher; it
			// catches up on reconnect via the replay log instead.
		}
	}

	return seq, nil
}

func (s *Stream) enforceRetentionLocked() {
	if len(s.logOrder) <= s.retention {
		return
	}
	minAck := s.nextSeq
	for _, state := range s.subscribers {
		if state.lastAck < minAck {
			minAck = state.lastAck
		}
	}
	cutoff := s.logOrder[len(s.logOrder)-s.retention]
	pruneBefore := minAck
	if cutoff < pruneBefore {
		pruneBefore = cutoff
	}
	if pruneBefore == 0 {
		return
	}
	idx := sort.Search(len(s.logOrder), func(i int) bool { return s.logOrder[i] > pruneBefore })
	for _, seq := range s.logOrder[:idx] {
		delete(s.logPayloads, seq)
	}
	s.logOrder = append([]uint64(nil), s.logOrder[idx:]...)
}

func (s *Stream) ack(subscriberID string, sequence uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.subscribers[subscriberID]
	if !ok {
		return fmt.Errorf("wsbridge: unknown subscriber %q", subscriberID)
	}
	if len(state.pending) == 0 {
		if sequence <= state.lastAck {
			return nil
		}
		return ErrOutOfOrderAck
	}
	expected := state.pending[0]
	if sequence != expected {
		return ErrOutOfOrderAck
	}
	state.pending = state.pending[1:]
	state.lastAck = sequence
	s.enforceRetentionLocked()
	return nil
}

func (s *Stream) deactivateSubscriber(subscriberID string) {
	s.mu.Lock()
	state, ok := s.subscribers[subscriberID]
	if ok {
		state.active = false
		if state.ch != nil {
			close(state.ch)
			state.ch = nil
		}
	}
	s.mu.Unlock()
}
