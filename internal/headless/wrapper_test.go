package headless

import (
	"testing"

	"matchsim/engine/internal/schedule"
)

func TestRunDrainsEverythingAndLeavesQueueEmpty(t *testing.T) {
	sched := schedule.NewScheduler()
	fired := 0
	var reschedule func(e *schedule.Event)
	reschedule = func(e *schedule.Event) {
		fired++
		if e.Tick() < 10 {
			sched.Schedule(1, schedule.PlayerPhysics, reschedule, schedule.Unit{})
		}
	}
	sched.Schedule(0, schedule.PlayerPhysics, reschedule, schedule.Unit{})

	w := NewWrapper(sched)
	if err := w.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sched.HasPending() {
		t.Fatalf("expected queue empty after Run()")
	}
	if sched.CurrentTick() != 10 {
		t.Fatalf("CurrentTick() = %d, want 10", sched.CurrentTick())
	}
	if fired != 11 {
		t.Fatalf("fired = %d, want 11", fired)
	}
}

func TestRunOnEmptySchedulerIsANoOp(t *testing.T) {
	sched := schedule.NewScheduler()
	w := NewWrapper(sched)
	if err := w.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sched.CurrentTick() != 0 {
		t.Fatalf("CurrentTick() = %d, want 0 (unchanged)", sched.CurrentTick())
	}
}

func TestRunRejectsReentrantCallFromWithinACallback(t *testing.T) {
	sched := schedule.NewScheduler()
	w := NewWrapper(sched)

	var nestedErr error
	sched.Schedule(0, schedule.PlayerPhysics, func(e *schedule.Event) {
		nestedErr = w.Run()
	}, schedule.Unit{})

	if err := w.Run(); err != nil {
		t.Fatalf("outer Run() error = %v", err)
	}
	if nestedErr != ErrAlreadyRunning {
		t.Fatalf("nested Run() error = %v, want ErrAlreadyRunning", nestedErr)
	}
	if w.IsRunning() {
		t.Fatalf("expected running flag cleared after outer Run() returns")
	}
}

func TestHeadlessInstantResultOverOneMillionTicks(t *testing.T) {
	sched := schedule.NewScheduler()
	const totalTicks = schedule.Tick(1_000_000)
	var physics schedule.Callback
	physics = func(e *schedule.Event) {
		if e.Tick() < totalTicks {
			sched.Schedule(1, schedule.PlayerPhysics, physics, schedule.Unit{})
		}
	}
	sched.Schedule(0, schedule.PlayerPhysics, physics, schedule.Unit{})

	w := NewWrapper(sched)
	if err := w.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sched.HasPending() {
		t.Fatalf("expected queue empty after draining 1,000,000 ticks")
	}
	if sched.CurrentTick() != totalTicks {
		t.Fatalf("CurrentTick() = %d, want %d", sched.CurrentTick(), totalTicks)
	}
}

func TestRunToChunksAtYieldBoundariesAndStopsExactlyAtFinalTick(t *testing.T) {
	sched := schedule.NewScheduler()
	var physics schedule.Callback
	physics = func(e *schedule.Event) {
		sched.Schedule(1, schedule.PlayerPhysics, physics, schedule.Unit{})
	}
	sched.Schedule(0, schedule.PlayerPhysics, physics, schedule.Unit{})

	var yieldTicks []schedule.Tick
	w := NewWrapper(sched)
	err := w.RunTo(100, RunToOptions{
		YieldEveryTicks: 25,
		YieldHandler: func(reached schedule.Tick) {
			yieldTicks = append(yieldTicks, reached)
		},
	})
	if err != nil {
		t.Fatalf("RunTo() error = %v", err)
	}
	if sched.CurrentTick() != 100 {
		t.Fatalf("CurrentTick() = %d, want 100", sched.CurrentTick())
	}
	want := []schedule.Tick{25, 50, 75, 100}
	if len(yieldTicks) != len(want) {
		t.Fatalf("yieldTicks = %v, want %v", yieldTicks, want)
	}
	for i, v := range want {
		if yieldTicks[i] != v {
			t.Fatalf("yieldTicks[%d] = %d, want %d", i, yieldTicks[i], v)
		}
	}
}

func TestRunToWithoutYieldEveryTicksRunsInOneChunk(t *testing.T) {
	sched := schedule.NewScheduler()
	sched.Schedule(5, schedule.PlayerPhysics, func(*schedule.Event) {}, schedule.Unit{})

	w := NewWrapper(sched)
	if err := w.RunTo(10, RunToOptions{}); err != nil {
		t.Fatalf("RunTo() error = %v", err)
	}
	if sched.CurrentTick() != 10 {
		t.Fatalf("CurrentTick() = %d, want 10", sched.CurrentTick())
	}
}

func TestNilWrapperMethodsAreSafe(t *testing.T) {
	var w *Wrapper
	if err := w.Run(); err != nil {
		t.Fatalf("nil Wrapper.Run() error = %v, want nil", err)
	}
	if w.IsRunning() {
		t.Fatalf("nil Wrapper.IsRunning() = true, want false")
	}
}
