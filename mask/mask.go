// Package mask implements the Even Quicker and Dirtier Generator (EQaDG),
// the 32-bit linear congruential bitstream XOR-ed into the plaintext before
// backward CA stepping.
//
// EQaDG is explicitly not cryptographic: it is a 32-bit LCG from Numerical
// Recipes, kept only for the diffusion it provides. Do not reuse it anywhere
// a real PRNG is required.
package mask

import (
	"github.com/vrypan/cacipher/bitstring"
)

const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
)

// Seed is the 32-bit EQaDG seed. 0 is reserved by the CLI as an "unset"
// sentinel; this package itself accepts 0 as any other state.
type Seed uint32

// Generator is the EQaDG bitstream: each Bit() call advances the LCG state
// by exactly one step.
type Generator struct {
	state uint32
}

// New creates a Generator from the given seed.
func New(seed Seed) *Generator {
	return &Generator{state: uint32(seed)}
}

// next advances the LCG: s = (1664525*s + 1013904223) mod 2^32, all
// arithmetic in explicit 32-bit unsigned space.
func (g *Generator) next() uint32 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return g.state
}

// Bit emits 1 if the 32-bit state, taken as signed after subtracting 2^31,
// is negative -- i.e. iff the unsigned state is below 2^31, the complement
// of its top bit.
func (g *Generator) Bit() byte {
	s := g.next()
	return byte(s>>31) ^ 1
}

// Bits produces a deterministic length-L bit sequence starting from the
// generator's current state; repeated construction with the same seed
// always reproduces the same sequence.
func (g *Generator) Bits(length int) bitstring.Bits {
	out := make(bitstring.Bits, length)
	for i := 0; i < length; i++ {
		out[i] = g.Bit()
	}
	return out
}

// Bits is the one-shot convenience form of New(seed).Bits(length).
func Bits(seed Seed, length int) bitstring.Bits {
	return New(seed).Bits(length)
}
