// Package rule builds and validates CA rule tables: the mapping from a
// k-bit neighborhood to an output bit that the ca package steps with.
//
// A table is stored as a []byte of length n = 2^k indexed by the integer
// value of the k-bit neighborhood (MSB = leftmost cell), rather than a
// string-keyed map, so lookups during stepping are a plain slice index.
package rule

import (
	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/rngsrc"
)

// ruleGenCutoff bounds GenerateReversible's retries.
const ruleGenCutoff = 100

// Table is a rule table R: {0,1}^k -> {0,1}, plus its Z metrics.
type Table struct {
	K       int
	N1      int // 2^(k-1)
	N       int // 2^k
	Bits    []byte
	ZLeft   float64
	ZRight  float64
}

// validateK enforces that k is an odd positive integer.
func validateK(k int) error {
	if k < 1 {
		return errs.New(errs.InvalidArg, "neighbourhood k must be at least 1, got %d", k)
	}
	if k%2 == 0 {
		return errs.New(errs.InvalidArg, "neighbourhood k must be odd, got %d", k)
	}
	return nil
}

// newEmpty allocates an all-zero table of the right shape for k.
func newEmpty(k int) (*Table, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}
	n1 := 1 << uint(k-1)
	n := n1 * 2
	return &Table{K: k, N1: n1, N: n, Bits: make([]byte, n)}, nil
}

// index returns R's slot for neighborhood bits nb (length k, MSB first).
func index(nb bitstring.Bits) int {
	return int(nb.Uint())
}

// BitSource is anything genRulesLeft can draw a fair coin flip from.
// *rngsrc.Source satisfies it; tests may supply a deterministic stand-in.
type BitSource interface {
	Bit() byte
}

// GenerateLeft draws a single candidate table with Z_left = 1 by
// construction: for every (k-1)-bit left prefix p, one fair coin flip from
// src decides whether R(p·0)=0,R(p·1)=1 or the reverse.
func GenerateLeft(k int, src BitSource) (*Table, error) {
	t, err := newEmpty(k)
	if err != nil {
		return nil, err
	}
	for p := 0; p < t.N1; p++ {
		prefix := bitstring.FromUint(uint64(p), k-1)
		zeroIdx := index(append(append(bitstring.Bits{}, prefix...), 0))
		oneIdx := index(append(append(bitstring.Bits{}, prefix...), 1))
		if src.Bit() == 0 {
			t.Bits[zeroIdx] = 0
			t.Bits[oneIdx] = 1
		} else {
			t.Bits[zeroIdx] = 1
			t.Bits[oneIdx] = 0
		}
	}
	t.ZLeft = 1.0
	t.ZRight = t.calcZRight()
	return t, nil
}

// calcZRight computes the fraction (scaled to [0,1]) of (k-1)-bit right
// suffixes s for which R(0·s) != R(1·s).
func (t *Table) calcZRight() float64 {
	distinct := 0
	for s := 0; s < t.N1; s++ {
		suffix := bitstring.FromUint(uint64(s), t.K-1)
		zeroIdx := index(append(bitstring.Bits{0}, suffix...))
		oneIdx := index(append(bitstring.Bits{1}, suffix...))
		if t.Bits[zeroIdx] != t.Bits[oneIdx] {
			distinct += 2
		}
	}
	return float64(distinct) / float64(t.N)
}

// GenerateReversible samples candidate tables (reseeding src by +1024 on
// each retry) until one reaches Z_right >= 0.5, up to ruleGenCutoff attempts.
func GenerateReversible(k int, seed uint64) (*Table, error) {
	src := rngsrc.New(seed)
	return generateReversible(k, func() BitSource {
		seed += 1024
		src.Reseed(seed)
		return src
	}, src)
}

// generateReversible is GenerateReversible's core loop, parameterized over
// how a fresh BitSource is obtained on retry so tests can force the
// KEY_GEN_EXHAUSTED path deterministically.
func generateReversible(k int, reseed func() BitSource, first BitSource) (*Table, error) {
	src := first
	for attempt := 0; attempt < ruleGenCutoff; attempt++ {
		t, err := GenerateLeft(k, src)
		if err != nil {
			return nil, err
		}
		if t.ZRight >= 0.5 {
			return t, nil
		}
		src = reseed()
	}
	return nil, errs.New(errs.KeyGenExhausted,
		"failed to generate a valid ruleset after %d tries", ruleGenCutoff)
}

// Eval returns R(nb) for a k-bit neighborhood nb (MSB first).
func (t *Table) Eval(nb bitstring.Bits) byte {
	return t.Bits[index(nb)]
}

// OutputFor returns R(prefix·bit) for a (k-1)-bit prefix and a trailing bit,
// the operation the backward step's chain-rule propagation needs at every
// position.
func (t *Table) OutputFor(prefix bitstring.Bits, bit byte) byte {
	idx := index(prefix)<<1 | int(bit)
	return t.Bits[idx]
}

// FromBits rebuilds a Table from n = 2^k raw output bits in the canonical
// key-file order (for p = 0..n1-1, emit R(p·0) then R(p·1)), setting Z_left
// to 1 and recomputing Z_right. The Z_left invariant itself is not checked
// here; CheckZLeft does that.
func FromBits(k int, raw []byte) (*Table, error) {
	t, err := newEmpty(k)
	if err != nil {
		return nil, err
	}
	if len(raw) != t.N {
		return nil, errs.New(errs.DimensionMismatch,
			"rule table has %d bits, expected %d for k=%d", len(raw), t.N, k)
	}
	i := 0
	for p := 0; p < t.N1; p++ {
		prefix := bitstring.FromUint(uint64(p), k-1)
		zeroIdx := index(append(append(bitstring.Bits{}, prefix...), 0))
		oneIdx := index(append(append(bitstring.Bits{}, prefix...), 1))
		t.Bits[zeroIdx] = raw[i]
		i++
		t.Bits[oneIdx] = raw[i]
		i++
	}
	t.ZLeft = 1.0
	t.ZRight = t.calcZRight()
	return t, nil
}

// ToBits serializes the table in the canonical key-file order.
func (t *Table) ToBits() []byte {
	out := make([]byte, 0, t.N)
	for p := 0; p < t.N1; p++ {
		prefix := bitstring.FromUint(uint64(p), t.K-1)
		zeroIdx := index(append(append(bitstring.Bits{}, prefix...), 0))
		oneIdx := index(append(append(bitstring.Bits{}, prefix...), 1))
		out = append(out, t.Bits[zeroIdx], t.Bits[oneIdx])
	}
	return out
}

// CheckZLeft verifies the invariant the backward step depends on: for every
// (k-1)-bit prefix p, R(p·0) != R(p·1).
func (t *Table) CheckZLeft() error {
	for p := 0; p < t.N1; p++ {
		prefix := bitstring.FromUint(uint64(p), t.K-1)
		zeroIdx := index(append(append(bitstring.Bits{}, prefix...), 0))
		oneIdx := index(append(append(bitstring.Bits{}, prefix...), 1))
		if t.Bits[zeroIdx] == t.Bits[oneIdx] {
			return errs.New(errs.IODecode,
				"rule table violates Z_left=1 at prefix %v", prefix)
		}
	}
	return nil
}
