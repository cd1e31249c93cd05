// Package match provides the façade a host builds a single fixture around:
// one scheduler, its exclusively-owned external gate and log, the match's
// single PRNG stream, and the static setup both teams kicked off with.
// Grounded on the teacher's internal/match.Session (capacity bookkeeping,
// functional options, injectable clock, env-var defaults) generalized from
// "players joining a lobby" to "two matchsetup.Teams fixed at kickoff".
package match

import (
	"errors"
	"fmt"

	"matchsim/engine/internal/external"
	"matchsim/engine/internal/matchsetup"
	"matchsim/engine/internal/rng"
	"matchsim/engine/internal/schedule"
)

// ErrUnknownTeam is returned when an external event names a team ID that
// is not part of the match's static setup.
var ErrUnknownTeam = errors.New("match: unknown team id")

// ErrUnknownPlayer is returned when a substitution names a player not on
// the relevant team's roster.
var ErrUnknownPlayer = errors.New("match: unknown player id")

// Match owns the full state needed to run one fixture end to end: the
// scheduler, its external gate and log, the seeded PRNG stream, and the
// static setup.
type Match struct {
	id        string
	seed      uint32
	setup     matchsetup.Setup
	scheduler *schedule.Scheduler
	gate      *schedule.ExternalGate
	log       *external.Log
	source    *rng.Source
	subs      *SubstitutionPolicy
}

// Option configures a Match at construction.
type Option func(*Match)

// WithMatchID overrides the generated match identifier.
func WithMatchID(id string) Option {
	return func(m *Match) {
		if id != "" {
			m.id = id
		}
	}
}

// WithSubstitutionCooldown overrides the default cooldown between
// substitutions a single team may make. A zero cooldown disables the
// policy (every substitution request is immediately eligible), matching
// spec.md's gate itself, which imposes no such limit.
func WithSubstitutionCooldown(ticks schedule.Tick) Option {
	return func(m *Match) {
		m.subs = NewSubstitutionPolicy(ticks)
	}
}

// NewMatch constructs a Match from a validated static setup and a match
// seed. The scheduler's exclusive external gate is claimed here, once, for
// the lifetime of the match — per spec.md §4.4, no other code path may
// obtain it.
func NewMatch(seed uint32, setup matchsetup.Setup, opts ...Option) (*Match, error) {
	if err := setup.Validate(); err != nil {
		return nil, fmt.Errorf("match: invalid setup: %w", err)
	}
	scheduler := schedule.NewScheduler()
	gate, err := scheduler.ExclusiveExternalGate()
	if err != nil {
		// NewScheduler always starts with no gate issued; this can only
		// fail if a future change to Scheduler lets a gate be claimed
		// more than once before Match exists.
		return nil, fmt.Errorf("match: claiming external gate: %w", err)
	}
	m := &Match{
		id:        fmt.Sprintf("%s-vs-%s", setup.Home.ID, setup.Away.ID),
		seed:      seed,
		setup:     setup,
		scheduler: scheduler,
		gate:      gate,
		log:       external.NewLog(),
		source:    rng.NewSource(uint64(seed), 0),
		subs:      NewSubstitutionPolicy(DefaultSubstitutionCooldown),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// ID returns the match's identifier.
func (m *Match) ID() string { return m.id }

// Seed returns the 32-bit seed this match's PRNG stream was derived from.
func (m *Match) Seed() uint32 { return m.seed }

// Setup returns the static configuration both teams kicked off with.
func (m *Match) Setup() matchsetup.Setup { return m.setup }

// Scheduler exposes the underlying scheduler for registering simulation
// callbacks (ball physics, player physics, AI, vision).
func (m *Match) Scheduler() *schedule.Scheduler { return m.scheduler }

// RNG exposes the match's single PRNG stream.
func (m *Match) RNG() *rng.Source { return m.source }

// Log exposes the append-only external-event log for persistence.
func (m *Match) Log() *external.Log { return m.log }

// ScheduleExternal validates payload against the static setup, enforces
// the substitution cooldown policy, submits it through the exclusive
// external gate, and appends the resulting (tick, seq, payload) record to
// the log — the one path by which external input enters the match,
// matching spec.md §6.2.
func (m *Match) ScheduleExternal(tickOffset schedule.Tick, payload schedule.Payload, callback schedule.Callback) (schedule.Handle, error) {
	if err := m.validatePayload(payload); err != nil {
		return schedule.Handle{}, err
	}
	if sub, ok := payload.(schedule.Substitution); ok {
		if err := m.subs.Check(sub.TeamID, m.scheduler.CurrentTick()); err != nil {
			return schedule.Handle{}, err
		}
	}
	handle, tick, seq, err := m.gate.Schedule(tickOffset, payload, callback)
	if err != nil {
		return schedule.Handle{}, err
	}
	if sub, ok := payload.(schedule.Substitution); ok {
		m.subs.Record(sub.TeamID, tick)
	}
	m.log.Append(tick, seq, payload)
	return handle, nil
}

func (m *Match) validatePayload(payload schedule.Payload) error {
	switch p := payload.(type) {
	case schedule.Substitution:
		team, ok := m.setup.Team(p.TeamID)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, p.TeamID)
		}
		if !team.HasPlayer(p.PlayerOutID) {
			return fmt.Errorf("%w: %q not on %q's roster", ErrUnknownPlayer, p.PlayerOutID, p.TeamID)
		}
		if !team.HasPlayer(p.PlayerInID) {
			return fmt.Errorf("%w: %q not on %q's roster", ErrUnknownPlayer, p.PlayerInID, p.TeamID)
		}
	case schedule.TacticalChange:
		if _, ok := m.setup.Team(p.TeamID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, p.TeamID)
		}
	case schedule.Shout:
		if _, ok := m.setup.Team(p.TeamID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, p.TeamID)
		}
	}
	return nil
}
