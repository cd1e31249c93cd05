// Command matchd runs a single football fixture in real time: it loads a
// static match setup, paces the deterministic scheduler against wall-clock
// time, broadcasts periodic world snapshots to spectator WebSocket clients,
// and exposes an HTTP control surface for admin-gated operations (submitting
// external events, triggering replay dumps). Grounded on the teacher's root
// main.go (config load -> logger -> wire components -> serve), split here
// into this server binary and the headless batch runner in cmd/matchsim.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matchsim/engine/internal/auth"
	"matchsim/engine/internal/config"
	"matchsim/engine/internal/football"
	"matchsim/engine/internal/httpapi"
	"matchsim/engine/internal/logging"
	"matchsim/engine/internal/match"
	"matchsim/engine/internal/matchsetup"
	"matchsim/engine/internal/metrics"
	"matchsim/engine/internal/realtime"
	"matchsim/engine/internal/replay"
	"matchsim/engine/internal/rng"
	"matchsim/engine/internal/schedule"
	"matchsim/engine/internal/wsbridge"
)

// args captures the command-line flags layered on top of the MATCH_* env
// vars config.Load() already reads; flags take precedence when both are
// set.
type args struct {
	Setup     string  `arg:"--setup,required" help:"path to the YAML match setup document"`
	Seed      uint64  `arg:"--seed" help:"deterministic match seed; a random one is derived if omitted"`
	ReplayDir string  `arg:"--replay-dir" default:"./replays" help:"directory replay dumps are written to"`
	Speed     float64 `arg:"--speed" default:"1.0" help:"initial real-time pacing multiplier"`
}

func main() {
	var a args
	arg.MustParse(&a)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchd: config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchd: logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(a, cfg, logger); err != nil {
		logger.Error("matchd exited with error", logging.Error(err))
		os.Exit(1)
	}
}

func run(a args, cfg *config.Config, logger *logging.Logger) error {
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
		seed = rng.DeriveSeed(setup.Home.ID, setup.Away.ID, time.Now().UTC().Format(time.RFC3339))
	}

	m, err := match.NewMatch(seed, setup)
	if err != nil {
		return fmt.Errorf("construct match: %w", err)
	}
	logger.Info("match constructed",
		logging.String("match_id", m.ID()),
		logging.Int64("seed", int64(seed)),
	)

	metricsRegistry := metrics.NewRegistry(nil)
	stream := wsbridge.NewStream(wsbridge.Config{})
	recorder, err := replay.NewRecorder(a.ReplayDir, nil)
	if err != nil {
		return fmt.Errorf("construct replay recorder: %w", err)
	}

	registerSimulationCallbacks(m, stream, metricsRegistry)

	wrapper := realtime.NewWrapper(m.Scheduler(), a.Speed)
	wrapper.Run()
	defer wrapper.Stop()

	readiness := &serverReadiness{startedAt: time.Now()}
	dumper := httpapi.ReplayDumperFunc(func(ctx context.Context) (string, error) {
		recorder.SetMatchMetadata(m.Seed(), toExternalEventRecords(m))
		return recorder.Roll(m.ID())
	})

	handlers := httpapi.NewHandlerSet(httpapi.Options{
		Logger:      logger,
		Readiness:   readiness,
		Replay:      dumper,
		AdminToken:  cfg.AdminToken,
		RateLimiter: httpapi.NewSlidingWindowLimiter(cfg.ReplayDumpWindow, cfg.ReplayDumpBurst, nil),
		ReplayStats: func() replay.Stats { return recorder.Snapshot() },
		Match:       m,
		Metrics:     metricsRegistry,
	})

	var verifier *auth.HMACTokenVerifier
	if cfg.AdminToken != "" {
		verifier, err = auth.NewHMACTokenVerifier(cfg.AdminToken, 30*time.Second)
		if err != nil {
			return fmt.Errorf("construct spectator token verifier: %w", err)
		}
	}

	mux := http.NewServeMux()
	handlers.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/spectate", func(w http.ResponseWriter, r *http.Request) {
		if verifier != nil {
			claims, err := verifier.Verify(r.URL.Query().Get("token"))
			if err != nil {
				logger.Warn("spectator connection denied", logging.Error(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			logger.Debug("spectator authenticated", logging.String("subject", claims.Subject))
		}
		subscriberID := r.URL.Query().Get("subscriber_id")
		if subscriberID == "" {
			subscriberID = uuid.NewString()
		}
		if err := wsbridge.ServeSpectator(stream, subscriberID, w, r); err != nil {
			logger.Warn("spectator connection closed", logging.Error(err))
		}
	})

	addr := listenerAddress(cfg.Address)
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("matchd listening", logging.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", logging.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("matchd shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// registerSimulationCallbacks wires the non-authoritative football
// stand-ins into the scheduler as a recurring self-rescheduling ball-physics
// event, observing each tick's duration and queue depth and broadcasting a
// world snapshot to spectators every snapshotPeriod ticks.
func registerSimulationCallbacks(m *match.Match, stream *wsbridge.Stream, reg *metrics.Registry) {
	const snapshotPeriod = schedule.Tick(40)

	ball := &football.Ball{}
	pitch := football.Pitch{Length: 105, Width: 68}

	var ballTick schedule.Callback
	ballTick = func(e *schedule.Event) {
		start := time.Now()
		ball.Integrate(0.001)
		ball.Position = pitch.Clamp(ball.Position)
		reg.ObserveTickDuration(time.Since(start))
		reg.SetSchedulerDepth(m.Scheduler().Len())

		if e.Tick()%snapshotPeriod == 0 {
			_, _ = stream.Publish(wsbridge.KindWorldSnapshot, e.Tick(), schedule.Unit{})
		}
		_ = e.Reschedule(1)
	}
	_, _ = m.Scheduler().Schedule(1, schedule.BallPhysics, ballTick, schedule.BallPhysicsTick{})
}

// toExternalEventRecords projects the match's accepted external events into
// the shape the replay recorder persists alongside each dump.
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

// serverReadiness reports process uptime for the /readyz handler.
type serverReadiness struct {
	startedAt time.Time
}

func (r *serverReadiness) StartupError() error   { return nil }
func (r *serverReadiness) Uptime() time.Duration { return time.Since(r.startedAt) }

// listenerAddress falls back to the configured default when cfg.Address is
// unset, matching the teacher's own listener-address resolution.
func listenerAddress(addr string) string {
	if addr == "" {
		return config.DefaultAddr
	}
	return addr
}
