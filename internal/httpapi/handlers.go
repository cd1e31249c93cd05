package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"matchsim/engine/internal/logging"
	"matchsim/engine/internal/metrics"
	"matchsim/engine/internal/replay"
	"matchsim/engine/internal/schedule"
)

// ReadinessProvider exposes engine state required for readiness checks.
type ReadinessProvider interface {
	StartupError() error
	Uptime() time.Duration
}

// ReplayDumper triggers a replay dump and optionally returns the artifact location.
type ReplayDumper interface {
	DumpReplay(ctx context.Context) (string, error)
}

// ReplayDumperFunc adapts a function into a ReplayDumper.
type ReplayDumperFunc func(ctx context.Context) (string, error)

// DumpReplay implements ReplayDumper.
func (f ReplayDumperFunc) DumpReplay(ctx context.Context) (string, error) { return f(ctx) }

// RateLimiter gates how frequently sensitive operations may be invoked.
type RateLimiter interface {
	Allow() bool
}

// ExternalEventSubmitter is the minimal surface of match.Match required to
// accept an admin-submitted external event over HTTP.
type ExternalEventSubmitter interface {
	ScheduleExternal(tickOffset schedule.Tick, payload schedule.Payload, callback schedule.Callback) (schedule.Handle, error)
}

// Options configures the HandlerSet.
type Options struct {
	Logger        *logging.Logger
	Readiness     ReadinessProvider
	Replay        ReplayDumper
	AdminToken    string
	RateLimiter   RateLimiter
	TimeSource    func() time.Time
	ReplayStats   func() replay.Stats
	ReplayStorage func() replay.StorageStats
	Match         ExternalEventSubmitter
	Metrics       *metrics.Registry
}

// HandlerSet bundles the engine's operational HTTP handlers.
type HandlerSet struct {
	logger        *logging.Logger
	readiness     ReadinessProvider
	replay        ReplayDumper
	adminToken    string
	rateLimiter   RateLimiter
	now           func() time.Time
	replayStats   func() replay.Stats
	replayStorage func() replay.StorageStats
	match         ExternalEventSubmitter
	metrics       *metrics.Registry
}

// NewHandlerSet constructs a HandlerSet using the provided options.
func NewHandlerSet(opts Options) *HandlerSet {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}
	return &HandlerSet{
		logger:        logger,
		readiness:     opts.Readiness,
		replay:        opts.Replay,
		adminToken:    strings.TrimSpace(opts.AdminToken),
		rateLimiter:   opts.RateLimiter,
		now:           now,
		replayStats:   opts.ReplayStats,
		replayStorage: opts.ReplayStorage,
		match:         opts.Match,
		metrics:       opts.Metrics,
	}
}

// Register attaches all handlers to the provided mux.
func (h *HandlerSet) Register(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/livez", h.LivenessHandler())
	mux.HandleFunc("/readyz", h.ReadinessHandler())
	mux.HandleFunc("/replay/dump", h.ReplayDumpHandler())
	mux.HandleFunc("/replay/stats", h.ReplayStatsHandler())
	if h.match != nil {
		mux.HandleFunc("/external-events", h.ExternalEventHandler())
	}
}

// LivenessHandler reports that the HTTP server is reachable.
func (h *HandlerSet) LivenessHandler() http.HandlerFunc {
	type response struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status:    "alive",
			Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// ReadinessHandler reports engine readiness, including startup status.
func (h *HandlerSet) ReadinessHandler() http.HandlerFunc {
	type response struct {
		Status        string  `json:"status"`
		Message       string  `json:"message,omitempty"`
		UptimeSeconds float64 `json:"uptime_seconds"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		resp := response{Status: "ok"}
		if h.readiness != nil {
			resp.UptimeSeconds = h.readiness.Uptime().Seconds()
			if err := h.readiness.StartupError(); err != nil {
				status = http.StatusServiceUnavailable
				resp.Status = "error"
				resp.Message = err.Error()
			}
		}
		writeJSON(w, status, resp)
	}
}

// ReplayDumpHandler authorises and triggers replay dump creation.
func (h *HandlerSet) ReplayDumpHandler() http.HandlerFunc {
	type response struct {
		Status   string `json:"status"`
		Location string `json:"location,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := h.logger.With(
			logging.String("handler", "replay_dump"),
			logging.String("remote_addr", r.RemoteAddr),
		)
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.adminToken == "" {
			reqLogger.Warn("replay dump denied: admin auth disabled")
			http.Error(w, "admin authentication not configured", http.StatusForbidden)
			return
		}
		if !h.authorise(r) {
			reqLogger.Warn("replay dump denied: unauthorized request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if h.rateLimiter != nil && !h.rateLimiter.Allow() {
			reqLogger.Warn("replay dump denied: rate limit exceeded")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if h.replay == nil {
			reqLogger.Warn("replay dump denied: no dumper configured")
			http.Error(w, "replay dumping is unavailable", http.StatusServiceUnavailable)
			return
		}
		location, err := h.replay.DumpReplay(r.Context())
		if err != nil {
			reqLogger.Error("replay dump trigger failed", logging.Error(err))
			http.Error(w, "failed to trigger replay dump", http.StatusInternalServerError)
			return
		}
		reqLogger.Info("replay dump triggered")
		writeJSON(w, http.StatusAccepted, response{Status: "accepted", Location: location})
	}
}

// ReplayStatsHandler reports buffered replay frame counts and retained
// on-disk storage for operators, without requiring a Prometheus scrape.
func (h *HandlerSet) ReplayStatsHandler() http.HandlerFunc {
	type response struct {
		BufferedFrames int   `json:"buffered_frames"`
		BufferedBytes  int64 `json:"buffered_bytes"`
		Dumps          int64 `json:"dumps"`
		StorageMatches int   `json:"storage_matches"`
		StorageBytes   int64 `json:"storage_bytes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var resp response
		if h.replayStats != nil {
			stats := h.replayStats()
			resp.BufferedFrames = stats.BufferedFrames
			resp.BufferedBytes = stats.BufferedBytes
			resp.Dumps = stats.Dumps
		}
		if h.replayStorage != nil {
			storage := h.replayStorage()
			resp.StorageMatches = storage.Matches
			resp.StorageBytes = storage.Bytes
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// externalEventRequest is the wire form of an admin-submitted external
// event. Exactly one of Substitution/Tactical/Shout must be set, matching
// the Kind field.
type externalEventRequest struct {
	TickOffset   schedule.Tick            `json:"tick_offset"`
	Kind         string                   `json:"kind"`
	Substitution *schedule.Substitution   `json:"substitution,omitempty"`
	Tactical     *schedule.TacticalChange `json:"tactical_change,omitempty"`
	Shout        *schedule.Shout          `json:"shout,omitempty"`
}

func (req externalEventRequest) toPayload() (schedule.Payload, error) {
	switch req.Kind {
	case "substitution":
		if req.Substitution == nil {
			return nil, fmt.Errorf("httpapi: kind %q requires a substitution body", req.Kind)
		}
		return *req.Substitution, nil
	case "tactical_change":
		if req.Tactical == nil {
			return nil, fmt.Errorf("httpapi: kind %q requires a tactical_change body", req.Kind)
		}
		return *req.Tactical, nil
	case "shout":
		if req.Shout == nil {
			return nil, fmt.Errorf("httpapi: kind %q requires a shout body", req.Kind)
		}
		return *req.Shout, nil
	default:
		return nil, fmt.Errorf("httpapi: unknown external event kind %q", req.Kind)
	}
}

// ExternalEventHandler authorises and submits an admin-issued external
// event (substitution, tactical change, or shout) to the match's exclusive
// external gate.
func (h *HandlerSet) ExternalEventHandler() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
		Tick   schedule.Tick `json:"tick"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With(
			logging.String("handler", "external_event"),
			logging.String("remote_addr", r.RemoteAddr),
		)
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.adminToken == "" {
			logger.Warn("external event denied: admin auth disabled")
			http.Error(w, "admin authentication not configured", http.StatusForbidden)
			return
		}
		if !h.authorise(r) {
			logger.Warn("external event denied: unauthorized request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if h.rateLimiter != nil && !h.rateLimiter.Allow() {
			logger.Warn("external event denied: rate limit exceeded")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		var req externalEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("external event denied: invalid payload", logging.Error(err))
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}
		payload, err := req.toPayload()
		if err != nil {
			logger.Warn("external event denied: invalid kind", logging.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handle, err := h.match.ScheduleExternal(req.TickOffset, payload, nil)
		if err != nil {
			logger.Warn("external event rejected", logging.Error(err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if h.metrics != nil {
			h.metrics.IncExternalEvent(req.Kind)
		}
		logger.Info("external event accepted", logging.String("kind", req.Kind))
		writeJSON(w, http.StatusAccepted, response{Status: "accepted", Tick: handle.Tick()})
	}
}

func (h *HandlerSet) authorise(r *http.Request) bool {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	var token string
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		token = strings.TrimSpace(header[7:])
	} else if header != "" {
		token = header
	}
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Admin-Token"))
	}
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}
