package rng

import (
	"crypto/sha256"
	"encoding/binary"
)

// DeriveSeed turns a set of stable identifiers (match ID, kickoff time,
// competition) into a deterministic 32-bit match seed, for callers that do
// not supply one explicitly. It is used exactly once, at match
// construction — unlike the teacher pattern it is adapted from
// (internal/combat.SeedForOutcome, which minted an independent math/rand
// instance per combat roll), because this spec requires every draw in a
// match to come from the single PRNG stream seeded here, not from many
// independent per-event streams.
func DeriveSeed(components ...string) uint32 {
	hasher := sha256.New()
	for _, c := range components {
		hasher.Write([]byte(c))
		hasher.Write([]byte{0})
	}
	digest := hasher.Sum(nil)
	seed := binary.LittleEndian.Uint32(digest[0:4])
	if seed == 0 {
		seed = binary.LittleEndian.Uint32(digest[4:8])
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}
