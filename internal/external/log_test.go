package external

import (
	"testing"

	"matchsim/engine/internal/schedule"
)

func TestAppendAssignsIncreasingIndices(t *testing.T) {
	log := NewLog()
	i0 := log.Append(0, schedule.ExternalSeqMin, schedule.Unit{})
	i1 := log.Append(1, schedule.ExternalSeqMin+1, schedule.Unit{})
	if i0 != 0 || i1 != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", i0, i1)
	}
	if log.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", log.Len())
	}
}

func TestValidateRejectsOutOfRangeSeq(t *testing.T) {
	log := NewLog()
	log.Append(0, schedule.ExternalSeqMax+1, schedule.Unit{})
	if err := log.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range seq")
	}
}

func TestValidateRejectsNonMonotonicTicksBySeq(t *testing.T) {
	log := NewLog()
	log.Append(10, 1, schedule.Unit{})
	log.Append(5, 2, schedule.Unit{})
	if err := log.Validate(); err == nil {
		t.Fatalf("expected error for non-monotonic ticks")
	}
}

func TestValidateAcceptsWellFormedLog(t *testing.T) {
	log := NewLog()
	log.Append(0, 0, schedule.Unit{})
	log.Append(1, 1, schedule.Unit{})
	log.Append(1, 2, schedule.Unit{})
	if err := log.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordsReturnsDefensiveCopy(t *testing.T) {
	log := NewLog()
	log.Append(0, 0, schedule.Unit{})
	records := log.Records()
	records[0].Tick = 99
	if log.Records()[0].Tick == 99 {
		t.Fatalf("mutating the returned slice affected the log")
	}
}
