// Package external implements the append-only log of external (manager
// injected) events that, together with the match seed and static setup, is
// the entire persisted replay (spec.md §3.4, §6.5).
package external

import (
	"fmt"
	"sort"

	"matchsim/engine/internal/schedule"
)

// Record is a single accepted external event: its assigned tick, sequence
// number, and payload.
type Record struct {
	Tick    schedule.Tick
	Seq     uint64
	Payload schedule.Payload
}

// Log is the append-only record of every external event a match has
// accepted. Records are appended in insertion order, so their Seq values
// are monotonically non-decreasing in a well-formed log.
type Log struct {
	records []Record
}

// NewLog constructs an empty external-event log.
func NewLog() *Log { return &Log{} }

// Append records a new external event and returns its index in the log.
func (l *Log) Append(tick schedule.Tick, seq uint64, payload schedule.Payload) int {
	l.records = append(l.records, Record{Tick: tick, Seq: seq, Payload: payload})
	return len(l.records) - 1
}

// Records returns a read-only view of the accepted external events in
// insertion (== ascending seq, in a well-formed log) order.
func (l *Log) Records() []Record {
	if l == nil {
		return nil
	}
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len reports how many external events have been recorded.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Validate checks the replay-corruption invariants from spec.md §6.5/§7:
// every sequence number lies within the reserved external range, and ticks
// are monotonically non-decreasing once sorted by seq. A sort by seq is
// idempotent on a well-formed log; Validate performs it defensively so a
// tampered log is still caught rather than silently misreplayed.
func (l *Log) Validate() error {
	if l == nil || len(l.records) == 0 {
		return nil
	}
	sorted := make([]Record, len(l.records))
	copy(sorted, l.records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var lastTick schedule.Tick
	for i, r := range sorted {
		if r.Seq < schedule.ExternalSeqMin || r.Seq > schedule.ExternalSeqMax {
			return fmt.Errorf("external: record %d has out-of-range seq %d", i, r.Seq)
		}
		if i > 0 && r.Tick < lastTick {
			return fmt.Errorf("external: ticks not monotonically non-decreasing by seq at index %d (tick %d before %d)", i, r.Tick, lastTick)
		}
		lastTick = r.Tick
	}
	return nil
}

// Sorted returns the records ordered by ascending seq. Safe to call on a
// log produced by normal operation (already sorted); exists for replay
// loaders that must defend against a tampered or hand-edited file.
func (l *Log) Sorted() []Record {
	out := l.Records()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}
