// Command matchsim is the headless batch runner for the match engine: it
// drains a fixture to a requested final tick with no wall-clock pacing,
// optionally injecting a scripted sequence of external events, and prints
// the resulting deterministic match hash. It also hosts an "inspect"
// subcommand for examining a dumped replay artefact. Grounded on the
// teacher's tools/replay_catalog command-line shape (subcommand dispatch,
// plain stdout reporting) retargeted from vehicle telemetry bundles to this
// engine's gzip+JSON replay envelopes.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"matchsim/engine/internal/football"
	"matchsim/engine/internal/headless"
	"matchsim/engine/internal/match"
	"matchsim/engine/internal/matchsetup"
	"matchsim/engine/internal/replay"
	"matchsim/engine/internal/rng"
	"matchsim/engine/internal/schedule"
)

// runCmd drains a fixture headlessly to a final tick and dumps a replay.
type runCmd struct {
	Setup      string `arg:"--setup,required" help:"path to the YAML match setup document"`
	Seed       uint64 `arg:"--seed" help:"deterministic match seed; derived from the two team IDs if omitted"`
	FinalTick  uint32 `arg:"--final-tick,required" help:"tick to drain the match to"`
	ReplayDir  string `arg:"--replay-dir" default:"./replays" help:"directory the replay dump is written to"`
	EventsFile string `arg:"--events" help:"optional JSON file of scripted external events to inject"`
}

// inspectCmd loads a dumped replay and prints a summary.
type inspectCmd struct {
	Path string `arg:"positional,required" help:"path to a .json.gz replay artefact"`
}

type cliArgs struct {
	Run     *runCmd     `arg:"subcommand:run"`
	Inspect *inspectCmd `arg:"subcommand:inspect"`
}

// scriptedEvent is one entry of an --events JSON document: exactly one of
// Substitution/Tactical/Shout must be set, matching Kind.
type scriptedEvent struct {
	TickOffset   schedule.Tick            `json:"tick_offset"`
	Kind         string                   `json:"kind"`
	Substitution *schedule.Substitution   `json:"substitution,omitempty"`
	Tactical     *schedule.TacticalChange `json:"tactical_change,omitempty"`
	Shout        *schedule.Shout          `json:"shout,omitempty"`
}

func (e scriptedEvent) toPayload() (schedule.Payload, error) {
	switch e.Kind {
	case "substitution":
		if e.Substitution == nil {
			return nil, fmt.Errorf("matchsim: kind %q requires a substitution body", e.Kind)
		}
		return *e.Substitution, nil
	case "tactical_change":
		if e.Tactical == nil {
			return nil, fmt.Errorf("matchsim: kind %q requires a tactical_change body", e.Kind)
		}
		return *e.Tactical, nil
	case "shout":
		if e.Shout == nil {
			return nil, fmt.Errorf("matchsim: kind %q requires a shout body", e.Kind)
		}
		return *e.Shout, nil
	default:
		return nil, fmt.Errorf("matchsim: unknown external event kind %q", e.Kind)
	}
}

func main() {
	var a cliArgs
	arg.MustParse(&a)

	var err error
	switch {
	case a.Run != nil:
		err = runMatch(*a.Run)
	case a.Inspect != nil:
		err = inspectReplay(*a.Inspect)
	default:
		err = fmt.Errorf("matchsim: a subcommand (run or inspect) is required")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchsim: %v\n", err)
		os.Exit(1)
	}
}

func runMatch(a runCmd) error {
	setupDoc, err := os.ReadFile(a.Setup)
	if err != nil {
		return fmt.Errorf("read setup: %w", err)
	}
	setup, err := matchsetup.Decode(setupDoc)
	if err != nil {
		return fmt.Errorf("decode setup: %w", err)
	}

	seed := uint32(a.Seed)
	if a.Seed == 0 {
		seed = rng.DeriveSeed(setup.Home.ID, setup.Away.ID, "headless")
	}

	m, err := match.NewMatch(seed, setup)
	if err != nil {
		return fmt.Errorf("construct match: %w", err)
	}

	recorder, err := replay.NewRecorder(a.ReplayDir, nil)
	if err != nil {
		return fmt.Errorf("construct replay recorder: %w", err)
	}

	if a.EventsFile != "" {
		if err := injectScriptedEvents(m, a.EventsFile); err != nil {
			return fmt.Errorf("inject events: %w", err)
		}
	}

	registerHeadlessCallbacks(m, recorder)

	wrapper := headless.NewWrapper(m.Scheduler())
	if err := wrapper.RunTo(schedule.Tick(a.FinalTick), headless.RunToOptions{}); err != nil {
		return fmt.Errorf("run to final tick: %w", err)
	}

	recorder.SetMatchMetadata(m.Seed(), toExternalEventRecords(m))
	path, err := recorder.Roll(m.ID())
	if err != nil {
		return fmt.Errorf("roll replay: %w", err)
	}

	loader, err := replay.Load(path)
	if err != nil {
		return fmt.Errorf("reload replay for verification: %w", err)
	}

	fmt.Printf("match_id=%s seed=%d final_tick=%d replay=%s match_hash=%s\n",
		m.ID(), m.Seed(), a.FinalTick, path, loader.MatchHash())
	return nil
}

// injectScriptedEvents reads a JSON array of scriptedEvent documents and
// submits each through the match's exclusive external gate, in file order,
// before the headless drain begins.
func injectScriptedEvents(m *match.Match, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var events []scriptedEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("parse events file: %w", err)
	}
	for idx, evt := range events {
		payload, err := evt.toPayload()
		if err != nil {
			return fmt.Errorf("event %d: %w", idx, err)
		}
		if _, err := m.ScheduleExternal(evt.TickOffset, payload, nil); err != nil {
			return fmt.Errorf("event %d: schedule: %w", idx, err)
		}
	}
	return nil
}

// registerHeadlessCallbacks wires the same non-authoritative football
// stand-ins used by the real-time server, buffering a world snapshot into
// the replay recorder every snapshotPeriod ticks instead of broadcasting to
// spectators.
func registerHeadlessCallbacks(m *match.Match, recorder *replay.Recorder) {
	const snapshotPeriod = schedule.Tick(40)

	ball := &football.Ball{}
	pitch := football.Pitch{Length: 105, Width: 68}

	type snapshot struct {
		BallX float64 `json:"ball_x"`
		BallY float64 `json:"ball_y"`
		BallZ float64 `json:"ball_z"`
	}

	var ballTick schedule.Callback
	ballTick = func(e *schedule.Event) {
		ball.Integrate(0.001)
		ball.Position = pitch.Clamp(ball.Position)

		if e.Tick()%snapshotPeriod == 0 {
			payload, err := json.Marshal(snapshot{
				BallX: ball.Position.X,
				BallY: ball.Position.Y,
				BallZ: ball.Position.Z,
			})
			if err == nil {
				recorder.RecordWorldFrame(uint64(e.Tick()), int64(e.Tick()), payload)
			}
		}
		_ = e.Reschedule(1)
	}
	_, _ = m.Scheduler().Schedule(1, schedule.BallPhysics, ballTick, schedule.BallPhysicsTick{})
}

func toExternalEventRecords(m *match.Match) []replay.ExternalEventRecord {
	records := m.Log().Records()
	out := make([]replay.ExternalEventRecord, 0, len(records))
	for _, r := range records {
		payload, _ := json.Marshal(r.Payload)
		out = append(out, replay.ExternalEventRecord{
			Sequence: r.Seq,
			Tick:     uint64(r.Tick),
			Kind:     schedule.Kind(r.Payload),
			Payload:  payload,
		})
	}
	return out
}

func inspectReplay(a inspectCmd) error {
	loader, err := replay.Load(a.Path)
	if err != nil {
		return fmt.Errorf("load replay: %w", err)
	}

	var firstTick, lastTick uint64
	var entryCount int
	_ = loader.Replay(func(entry replay.TimelineEntry) error {
		if entryCount == 0 {
			firstTick = entry.Tick
		}
		lastTick = entry.Tick
		entryCount++
		return nil
	})

	fmt.Printf("seed=%d match_hash=%s external_events=%d entries=%d tick_range=[%d,%d]\n",
		loader.MatchSeed(), loader.MatchHash(), len(loader.ExternalEvents()), entryCount, firstTick, lastTick)
	for _, evt := range loader.ExternalEvents() {
		fmt.Printf("  external tick=%d seq=%d kind=%s\n", evt.Tick, evt.Sequence, evt.Kind)
	}
	return nil
}
