// Package schedule implements the deterministic tick-driven event scheduler
// that forms the computational spine of the match simulation: a min-heap of
// scheduled events drained in strict (tick, type, seq) order.
package schedule

// Tick is one millisecond of simulated time. A 90-minute match is roughly
// 5.4 million ticks, comfortably inside uint32 range; widening to uint64 is
// a source-compatible change should a longer simulated span ever be needed.
type Tick uint32

// Type enumerates the event classes used both for semantic routing and as
// the secondary ordering key within a tick. Lower value sorts first.
type Type int

const (
	// External carries manager-injected input (substitutions, tactical
	// changes, shouts). It always sorts before every simulation event of
	// the same tick; only the external gate may assign this type.
	External Type = iota
	BallPhysics
	PlayerPhysics
	PlayerAI
	Vision
	HeadAI
	HeadPhysics
	// MatchControl covers kickoff, half-time, full-time, and other
	// fixture-lifecycle transitions driven by the match itself rather
	// than by physics or AI subsystems.
	MatchControl
)

// String renders the type for logs and test failure messages.
func (t Type) String() string {
	switch t {
	case External:
		return "EXTERNAL"
	case BallPhysics:
		return "BALL_PHYSICS"
	case PlayerPhysics:
		return "PLAYER_PHYSICS"
	case PlayerAI:
		return "PLAYER_AI"
	case Vision:
		return "VISION"
	case HeadAI:
		return "HEAD_AI"
	case HeadPhysics:
		return "HEAD_PHYSICS"
	case MatchControl:
		return "MATCH_CONTROL"
	default:
		return "UNKNOWN"
	}
}

// Sequence spaces, per the replay contract: external events draw from a
// small reserved range so they sort before simulation events of the same
// tick and so replay logs stay compact; everything else draws from the
// simulation space above it.
const (
	ExternalSeqMin uint64 = 0
	ExternalSeqMax uint64 = 999_999

	SimulationSeqMin uint64 = 1_000_000
	// SeqMax is the largest sequence number representable without losing
	// precision if a host ever round-trips sequence numbers through a
	// float64 (as JSON-based replay tooling may).
	SeqMax uint64 = 1<<53 - 1
)
