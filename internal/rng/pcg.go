// Package rng provides the single seeded pseudo-random stream the match
// simulation draws from. Every stochastic decision — AI dice rolls, physics
// noise, timing jitter, referee discretion — must come from a Source owned
// by the match and consumed only inside scheduler callbacks (spec.md §3.5);
// no package in this module touches math/rand's global state.
package rng

import "math/bits"

// pcg32 is a PCG-XSH-RR 64/32 generator: 64 bits of state, 32 bits of
// output per step, an increment that selects one of 2^63 independent
// streams. Chosen over math/rand's default source because its algorithm is
// small, fully specified, and trivially portable across engine versions —
// exactly what the replay contract's replay_version compatibility bound
// needs (spec.md §9, "the PRNG algorithm is not pinned in the source").
type pcg32 struct {
	state uint64
	inc   uint64
}

const pcgMultiplier uint64 = 6364136223846793005

func newPCG32(seed, sequence uint64) *pcg32 {
	g := &pcg32{}
	g.inc = (sequence << 1) | 1
	g.step()
	g.state += seed
	g.step()
	return g
}

func (g *pcg32) step() {
	g.state = g.state*pcgMultiplier + g.inc
}

// uint32 returns the next 32-bit output in the stream.
func (g *pcg32) uint32() uint32 {
	old := g.state
	g.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}
