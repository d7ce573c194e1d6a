package ca

import (
	"context"
	"runtime"
	"sync"

	"github.com/fatih/semgroup"

	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/rule"
)

// stepBackward inverts stepForward: given tape = T_i and a rule table with
// Z_left=1, it recovers the unique T_{i-1} such that stepForward(T_{i-1})
// == tape.
//
// The n1 prefix guesses are independent -- each owns its own scratch
// buffer -- so they are fanned out with fatih/semgroup, bounded at
// GOMAXPROCS, while the final commit of the winning guess is serialized.
func stepBackward(tape bitstring.Bits, t *rule.Table) (bitstring.Bits, error) {
	k := t.K
	kk := k - 1
	h := kk / 2

	var mu sync.Mutex
	var result bitstring.Bits
	found := false

	group := semgroup.NewGroup(context.Background(), int64(runtime.GOMAXPROCS(0)))
	for g := 0; g < t.N1; g++ {
		guess := g
		group.Go(func() error {
			candidate, ok := tryGuess(tape, t, guess, kk, h)
			if ok {
				mu.Lock()
				if !found {
					result = candidate
					found = true
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errs.Wrap(errs.ReverseFail, err, "backward CA step")
	}
	if !found {
		return nil, errs.New(errs.ReverseFail, "no consistent predecessor tape found for any of the %d prefix guesses", t.N1)
	}
	return result, nil
}

// tryGuess runs the chain-rule propagation for one candidate (k-1)-bit
// prefix guess and reports the recovered tape plus whether the full K-bit
// wrap-around check accepted it. The check compares every one of the K
// overlap bits, not just two disjoint positions -- a partial check lets
// false positives through once k grows past a handful of cells.
func tryGuess(tape bitstring.Bits, t *rule.Table, guess, kk, h int) (bitstring.Bits, bool) {
	n := len(tape)
	prefix := bitstring.FromUint(uint64(guess), kk)

	scratch := make(bitstring.Bits, 0, n+kk)
	scratch = append(scratch, prefix...)

	prev := prefix.Clone()
	for c := 0; c < n; c++ {
		var a byte
		if t.OutputFor(prev, 1) == tape[c] {
			a = 1
		} else {
			a = 0
		}
		scratch = append(scratch, a)
		prev = append(prev[1:], a)
	}

	for i := 0; i < kk; i++ {
		if scratch[i] != scratch[n+i] {
			return nil, false
		}
	}
	return scratch[h : h+n].Clone(), true
}
