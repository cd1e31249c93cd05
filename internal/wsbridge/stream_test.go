package wsbridge

import (
	"testing"

	"matchsim/engine/internal/schedule"
)

func TestPublishDeliversToActiveSubscriber(t *testing.T) {
	stream := NewStream(Config{})
	sub, err := stream.Subscribe("spectator-1", 4)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	seq, err := stream.Publish(KindExternalEvent, 10, schedule.Substitution{TeamID: "home"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if seq != 1 {
		t.Fatalf("Publish() seq = %d, want 1", seq)
	}

	env := <-sub.Events()
	if env.Sequence != 1 || env.Tick != 10 {
		t.Fatalf("received envelope = %+v, want sequence 1, tick 10", env)
	}
}

func TestReconnectReplaysOnlyUnacknowledgedEvents(t *testing.T) {
	stream := NewStream(Config{})
	sub, _ := stream.Subscribe("spectator-1", 8)

	stream.Publish(KindExternalEvent, 1, schedule.Unit{})
	stream.Publish(KindExternalEvent, 2, schedule.Unit{})
	first := <-sub.Events()
	<-sub.Events()
	if err := sub.Ack(first.Sequence); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	sub.Close()

	resumed, err := stream.Subscribe("spectator-1", 8)
	if err != nil {
		t.Fatalf("Subscribe() (reconnect) error = %v", err)
	}
	env := <-resumed.Events()
	if env.Sequence != 2 {
		t.Fatalf("replayed sequence = %d, want 2 (sequence 1 was already acked)", env.Sequence)
	}
	select {
	case extra := <-resumed.Events():
		t.Fatalf("unexpected extra replay %+v", extra)
	default:
	}
}

func TestAckRejectsOutOfOrderSequence(t *testing.T) {
	stream := NewStream(Config{})
	sub, _ := stream.Subscribe("spectator-1", 8)
	stream.Publish(KindExternalEvent, 1, schedule.Unit{})
	stream.Publish(KindExternalEvent, 2, schedule.Unit{})
	<-sub.Events()
	<-sub.Events()

	if err := sub.Ack(2); err != ErrOutOfOrderAck {
		t.Fatalf("Ack(2) error = %v, want ErrOutOfOrderAck (expected 1 first)", err)
	}
	if err := sub.Ack(1); err != nil {
		t.Fatalf("Ack(1) error = %v", err)
	}
	if err := sub.Ack(2); err != nil {
		t.Fatalf("Ack(2) error = %v", err)
	}
}

func TestEnvelopeCloneDeepCopiesTacticalChangeInstructions(t *testing.T) {
	env := &Envelope{
		Payload: schedule.TacticalChange{
			TeamID:             "home",
			InstructionUpdates: map[string]string{"tempo": "high"},
		},
	}
	clone := env.Clone()
	tc := clone.Payload.(schedule.TacticalChange)
	tc.InstructionUpdates["tempo"] = "low"

	original := env.Payload.(schedule.TacticalChange)
	if original.InstructionUpdates["tempo"] != "high" {
		t.Fatalf("mutating clone's map affected the original envelope")
	}
}

func TestRetentionPrunesAcknowledgedHistory(t *testing.T) {
	stream := NewStream(Config{Retain: 2})
	sub, _ := stream.Subscribe("spectator-1", 16)
	for i := 0; i < 5; i++ {
		stream.Publish(KindExternalEvent, schedule.Tick(i), schedule.Unit{})
	}
	for i := 0; i < 5; i++ {
		env := <-sub.Events()
		if err := sub.Ack(env.Sequence); err != nil {
			t.Fatalf("Ack(%d) error = %v", env.Sequence, err)
		}
	}
	if len(stream.logOrder) > 2 {
		t.Fatalf("logOrder retained %d entries, want at most 2 after full ack", len(stream.logOrder))
	}
}
