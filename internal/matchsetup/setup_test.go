package matchsetup

import (
	"strings"
	"testing"
)

const validYAML = `
home:
  id: home-fc
  name: Home FC
  formation: "4-4-2"
  starting:
    - {id: h1, name: Keeper, number: 1, position: GK}
    - {id: h2, name: Fullback, number: 2, position: DF}
  substitutes:
    - {id: h12, name: Sub Striker, number: 12, position: FW}
  instructions:
    tempo: high
away:
  id: away-fc
  name: Away FC
  formation: "4-3-3"
  starting:
    - {id: a1, name: Keeper, number: 1, position: GK}
    - {id: a2, name: Fullback, number: 2, position: DF}
`

func TestDecodeAcceptsWellFormedSetup(t *testing.T) {
	setup, err := Decode([]byte(validYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if setup.Home.ID != "home-fc" || setup.Away.ID != "away-fc" {
		t.Fatalf("Decode() = %+v, wrong team ids", setup)
	}
	if len(setup.Home.Starting) != 2 {
		t.Fatalf("Home.Starting = %v, want 2 players", setup.Home.Starting)
	}
}

func TestDecodeRejectsMissingFormation(t *testing.T) {
	bad := strings.Replace(validYAML, `formation: "4-4-2"`, `formation: ""`, 1)
	_, err := Decode([]byte(bad))
	if err == nil {
		t.Fatalf("expected error for missing formation")
	}
	if !strings.Contains(err.Error(), "formation") {
		t.Fatalf("error = %v, want mention of formation", err)
	}
}

func TestDecodeRejectsEmptyStartingLineup(t *testing.T) {
	setup := Setup{
		Home: Team{ID: "home-fc", FormationID: "4-4-2"},
		Away: Team{ID: "away-fc", FormationID: "4-3-3", Starting: []Player{{ID: "a1"}}},
	}
	data, err := Encode(setup)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := Decode(data); err == nil {
		t.Fatalf("expected error for empty home starting lineup")
	}
}

func TestDecodeRejectsDuplicatePlayerIDs(t *testing.T) {
	setup := Setup{
		Home: Team{
			ID: "home-fc", FormationID: "4-4-2",
			Starting:    []Player{{ID: "h1"}},
			Substitutes: []Player{{ID: "h1"}},
		},
		Away: Team{ID: "away-fc", FormationID: "4-3-3", Starting: []Player{{ID: "a1"}}},
	}
	data, _ := Encode(setup)
	_, err := Decode(data)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("Decode() error = %v, want duplicate player id error", err)
	}
}

func TestDecodeRejectsSharedTeamIDs(t *testing.T) {
	setup := Setup{
		Home: Team{ID: "same", FormationID: "4-4-2", Starting: []Player{{ID: "h1"}}},
		Away: Team{ID: "same", FormationID: "4-3-3", Starting: []Player{{ID: "a1"}}},
	}
	data, _ := Encode(setup)
	_, err := Decode(data)
	if err == nil || !strings.Contains(err.Error(), "share id") {
		t.Fatalf("Decode() error = %v, want shared id error", err)
	}
}

func TestTeamLookupByID(t *testing.T) {
	setup, err := Decode([]byte(validYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	team, ok := setup.Team("away-fc")
	if !ok || team.Name != "Away FC" {
		t.Fatalf("Team(\"away-fc\") = %+v, %v", team, ok)
	}
	if _, ok := setup.Team("nonexistent"); ok {
		t.Fatalf("Team(\"nonexistent\") unexpectedly found")
	}
}

func TestHasPlayerCoversStartingAndSubstitutes(t *testing.T) {
	setup, err := Decode([]byte(validYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !setup.Home.HasPlayer("h1") {
		t.Fatalf("expected h1 in starting lineup")
	}
	if !setup.Home.HasPlayer("h12") {
		t.Fatalf("expected h12 in substitutes")
	}
	if setup.Home.HasPlayer("ghost") {
		t.Fatalf("unexpected player found")
	}
}
