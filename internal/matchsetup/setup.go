// Package matchsetup decodes the static, pre-kickoff configuration a match
// is built from: rosters, formations, and starting tactics. Together with
// the match seed and the external-event log it is the input a match is
// reproduced from; the replay envelope written by internal/replay stores
// the seed and the external-event log but not the setup. It must decode
// deterministically and validate eagerly rather than let a malformed
// document surface as a panic deep inside the scheduler.
package matchsetup

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
)

// Player is one roster entry: a stable identifier plus the squad number and
// starting position used to seed formation lookups.
type Player struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Number   int    `yaml:"number"`
	Position string `yaml:"position"`
}

// Team is one side's full roster, starting formation, and tactical
// instructions at kickoff.
type Team struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	FormationID  string            `yaml:"formation"`
	Starting     []Player          `yaml:"starting"`
	Substitutes  []Player          `yaml:"substitutes"`
	Instructions map[string]string `yaml:"instructions"`
}

// Setup is the complete static configuration two teams kick off with.
type Setup struct {
	Home Team `yaml:"home"`
	Away Team `yaml:"away"`
}

// Decode parses a YAML match-setup document and validates it. It is the
// sole entry point for untrusted setup documents (uploaded fixtures);
// callers must not construct a match.Match from a Setup
// that failed validation.
func Decode(data []byte) (Setup, error) {
	var setup Setup
	if err := yaml.Unmarshal(data, &setup); err != nil {
		return Setup{}, fmt.Errorf("matchsetup: decode: %w", err)
	}
	if err := setup.Validate(); err != nil {
		return Setup{}, err
	}
	return setup, nil
}

// Encode renders the setup back to YAML, for fixture archival.
func Encode(setup Setup) ([]byte, error) {
	data, err := yaml.Marshal(setup)
	if err != nil {
		return nil, fmt.Errorf("matchsetup: encode: %w", err)
	}
	return data, nil
}

// Validate checks both teams and aggregates every problem found rather
// than failing on the first, so a caller fixing a fixture document sees
// every issue at once.
func (s Setup) Validate() error {
	var problems *multierror.Error
	problems = multierror.Append(problems, s.Home.validate("home"))
	problems = multierror.Append(problems, s.Away.validate("away"))
	if s.Home.ID != "" && s.Home.ID == s.Away.ID {
		problems = multierror.Append(problems, fmt.Errorf("matchsetup: home and away share id %q", s.Home.ID))
	}
	return problems.ErrorOrNil()
}

func (t Team) validate(side string) error {
	var problems *multierror.Error
	if t.ID == "" {
		problems = multierror.Append(problems, fmt.Errorf("matchsetup: %s: id must not be empty", side))
	}
	if t.FormationID == "" {
		problems = multierror.Append(problems, fmt.Errorf("matchsetup: %s: formation must not be empty", side))
	}
	if len(t.Starting) == 0 {
		problems = multierror.Append(problems, fmt.Errorf("matchsetup: %s: starting lineup must not be empty", side))
	}
	seen := make(map[string]bool, len(t.Starting)+len(t.Substitutes))
	for _, roster := range [][]Player{t.Starting, t.Substitutes} {
		for _, p := range roster {
			if p.ID == "" {
				problems = multierror.Append(problems, fmt.Errorf("matchsetup: %s: player with empty id", side))
				continue
			}
			if seen[p.ID] {
				problems = multierror.Append(problems, fmt.Errorf("matchsetup: %s: duplicate player id %q", side, p.ID))
			}
			seen[p.ID] = true
		}
	}
	return problems.ErrorOrNil()
}

// HasPlayer reports whether id belongs to the team's starting lineup or
// substitutes' bench.
func (t Team) HasPlayer(id string) bool {
	for _, p := range t.Starting {
		if p.ID == id {
			return true
		}
	}
	for _, p := range t.Substitutes {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Team looks up a team by ID, returning ok=false if neither side matches.
func (s Setup) Team(id string) (Team, bool) {
	if s.Home.ID == id {
		return s.Home, true
	}
	if s.Away.ID == id {
		return s.Away, true
	}
	return Team{}, false
}
