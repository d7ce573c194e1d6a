package ca

import (
	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/rule"
)

// stepForward computes one forward CA step over the circular tape. Rather
// than rebuilding each k-bit neighborhood by concatenation on every cell,
// it carries a k-bit integer window that is shifted left, masked, and
// OR-ed with the next right-hand cell on every position, the same
// word-shifted update rngsrc uses for its own ring evolution.
func stepForward(tape bitstring.Bits, t *rule.Table) bitstring.Bits {
	n := len(tape)
	k := t.K
	h := (k - 1) / 2
	winMask := (1 << uint(k)) - 1

	win := 0
	for i := -h; i <= h; i++ {
		win = (win << 1) | int(tape[mod(i, n)])
	}

	out := make(bitstring.Bits, n)
	for c := 0; c < n; c++ {
		out[c] = t.Bits[win]
		next := tape[mod(c+h+1, n)]
		win = ((win << 1) | int(next)) & winMask
	}
	return out
}

// mod is true (non-truncating) modulo for possibly-negative i: Go's % keeps
// the sign of the dividend, which would misindex the tape at position 0.
func mod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}
