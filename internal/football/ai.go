package football

import "matchsim/engine/internal/rng"

// Decision is the outcome of one AITick stand-in: a single deterministic
// dice roll, not a behavior tree. It exists only so PLAYER_AI has a real
// callback to exercise the scheduler's self-rescheduling contract.
type Decision int

const (
	DecisionHold Decision = iota
	DecisionPressForward
	DecisionFallBack
)

// AITick consumes the match's shared PRNG stream to pick one of a small,
// fixed set of decisions. A real implementation would weigh position,
// stamina, and tactical instructions; this is a placeholder caller.
func AITick(source *rng.Source) Decision {
	if source == nil {
		return DecisionHold
	}
	return Decision(source.Intn(3))
}
