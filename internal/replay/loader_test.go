package replay

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoaderReplayOrdering(t *testing.T) {
	dir := t.TempDir()
	current := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	recorder, err := NewRecorder(dir, clock)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	recorder.RecordEvent(5, 900, []byte(`{"event":"late"}`))
	recorder.RecordWorldFrame(3, 600, []byte(`{"frame":3}`))
	recorder.RecordTick(1, 100, []byte(`{"tick":1}`))
	recorder.RecordEvent(1, 100, []byte(`{"event":"start"}`))
	recorder.RecordWorldFrame(2, 400, []byte(`{"frame":2}`))
	recorder.RecordTick(2, 300, []byte(`{"tick":2}`))

	path, err := recorder.Roll("beta")
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}

	if filepath.Ext(path) != ".gz" {
		t.Fatalf("expected gzip artefact, got %s", path)
	}

	loader, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var sequence []string
	err = loader.Replay(func(entry TimelineEntry) error {
		//1.- Capture the ordered sequence for deterministic assertions.
		sequence = append(sequence, fmt.Sprintf("%s:%d:%d", entry.Type, entry.Tick, entry.SimulatedMs))
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	expected := []string{
		"diff:1:100",
		"event:1:100",
		"diff:2:300",
		"world:2:400",
		"world:3:600",
		"event:5:900",
	}
	if !reflect.DeepEqual(sequence, expected) {
		t.Fatalf("unexpected replay order: %v", sequence)
	}

	entries := loader.Entries()
	if len(entries) != len(sequence) {
		t.Fatalf("expected %d entries copy, got %d", len(sequence), len(entries))
	}
	if &entries[0] == &loader.entries[0] {
		t.Fatalf("Entries must return a defensive copy")
	}
}

func TestLoaderExposesMatchMetadata(t *testing.T) {
	dir := t.TempDir()
	current := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }

	recorder, err := NewRecorder(dir, clock)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	recorder.SetMatchMetadata(0xDEADBEEF, []ExternalEventRecord{
		{Sequence: 1, Tick: 200, Kind: "substitution", Payload: json.RawMessage(`{"team":"home"}`)},
	})
	recorder.RecordTick(1, 0, []byte(`{"tick":1}`))

	path, err := recorder.Roll("gamma")
	if err != nil {
		t.Fatalf("Roll: %v", err)
	}

	loader, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loader.MatchSeed() != 0xDEADBEEF {
		t.Fatalf("unexpected match seed: %#x", loader.MatchSeed())
	}
	if loader.MatchHash() == "" {
		t.Fatalf("expected a non-empty match hash")
	}
	events := loader.ExternalEvents()
	if len(events) != 1 || events[0].Kind != "substitution" {
		t.Fatalf("unexpected external events: %+v", events)
	}
}

func TestLoaderRejectsUnsupportedReplayVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json.gz")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(file)
	payload, _ := json.Marshal(replayEnvelope{
		ReplayVersion: "9.9.9",
		Frames:        []replayEnvelopeEntry{{Tick: 1, CapturedAt: time.Now().Format(time.RFC3339Nano)}},
	})
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected version mismatch to be rejected")
	}
}

func TestLoaderRejectsOutOfOrderExternalEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.json.gz")

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	gz := gzip.NewWriter(file)
	payload, _ := json.Marshal(replayEnvelope{
		ReplayVersion: ReplayFormatVersion,
		ExternalEvents: []ExternalEventRecord{
			{Sequence: 2, Tick: 10, Kind: "shout"},
			{Sequence: 1, Tick: 20, Kind: "shout"},
		},
		Frames: []replayEnvelopeEntry{{Tick: 1, CapturedAt: time.Now().Format(time.RFC3339Nano)}},
	})
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected out-of-order external events to be rejected")
	}
}
