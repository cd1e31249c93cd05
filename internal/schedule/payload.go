package schedule

// Payload is the closed union of data an event may carry to its callback.
// The scheduler treats payloads opaquely; callbacks type-switch on the
// concrete implementation. Extending the set requires a corresponding
// replay format version bump (see internal/replay).
type Payload interface {
	payloadKind() string
}

// Kind returns the payload's discriminator string, primarily for logging
// and replay serialization.
func Kind(p Payload) string {
	if p == nil {
		return "none"
	}
	return p.payloadKind()
}

// Substitution swaps one player for another on a team's roster.
type Substitution struct {
	TeamID       string
	PlayerOutID  string
	PlayerInID   string
}

func (Substitution) payloadKind() string { return "substitution" }

// TacticalChange updates a team's formation and/or per-player instructions.
type TacticalChange struct {
	TeamID              string
	FormationID         string
	InstructionUpdates  map[string]string
}

func (TacticalChange) payloadKind() string { return "tactical_change" }

// ShoutKind enumerates the manager touchline instructions a Shout may carry.
type ShoutKind string

const (
	ShoutEncourage ShoutKind = "encourage"
	ShoutCriticize ShoutKind = "criticize"
	ShoutPressUp   ShoutKind = "press_up"
	ShoutSitBack   ShoutKind = "sit_back"
)

// Shout is an instantaneous touchline instruction, optionally targeted at
// a single player.
type Shout struct {
	TeamID          string
	Kind            ShoutKind
	TargetPlayerID  string
}

func (Shout) payloadKind() string { return "shout" }

// BallPhysicsTick carries nothing beyond the step duration implied by the
// scheduler's own tick cadence; it marks a recurring ball-physics update.
type BallPhysicsTick struct{}

func (BallPhysicsTick) payloadKind() string { return "ball_physics_tick" }

// PlayerPhysicsTick marks a recurring player-physics update for one player.
type PlayerPhysicsTick struct {
	PlayerID string
}

func (PlayerPhysicsTick) payloadKind() string { return "player_physics_tick" }

// PlayerAITick marks a recurring AI decision update for one player.
type PlayerAITick struct {
	PlayerID string
}

func (PlayerAITick) payloadKind() string { return "player_ai_tick" }

// VisionTick marks a recurring vision/perception update for one player.
type VisionTick struct {
	PlayerID string
}

func (VisionTick) payloadKind() string { return "vision_tick" }

// Unit is the empty payload for events that need no data.
type Unit struct{}

func (Unit) payloadKind() string { return "unit" }
