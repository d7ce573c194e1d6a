// Package ca implements the reversible cellular automaton engine: forward
// stepping, the chain-rule backward step, multi-step drivers, and mask
// application. It is the hard core of cacipher.
package ca

import (
	"time"

	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/logging"
	"github.com/vrypan/cacipher/mask"
	"github.com/vrypan/cacipher/rule"
)

// state tracks the engine lifecycle:
// empty -> configured -> ruled -> loaded -> stepped.
type state int

const (
	stateEmpty state = iota
	stateConfigured
	stateRuled
	stateLoaded
	stateStepped
)

// MaskSeed distinguishes an explicitly-set mask seed (including the value 0)
// from "unset" without an overloaded sentinel value.
type MaskSeed struct {
	Value mask.Seed
	Set   bool
}

// Engine holds the CA's (k, T, R, seed, tape) value: one owner, no aliasing
// across goroutines, tape buffers reallocated whenever input length changes.
type Engine struct {
	k     int
	t     int
	rule  *rule.Table
	seed  MaskSeed
	start bitstring.Bits
	end   bitstring.Bits
	work  bitstring.Bits
	n     int
	st    state
}

// New configures an engine with neighborhood size k and step count T.
// No rule table or tape is installed yet.
func New(k, t int) (*Engine, error) {
	if t < 1 {
		return nil, errs.New(errs.InvalidArg, "step count T must be >= 1, got %d", t)
	}
	if k < 1 || k%2 == 0 {
		return nil, errs.New(errs.InvalidArg, "neighbourhood k must be odd and >= 1, got %d", k)
	}
	return &Engine{k: k, t: t, st: stateConfigured}, nil
}

// K returns the engine's configured neighborhood size.
func (e *Engine) K() int { return e.k }

// T returns the engine's configured step count.
func (e *Engine) T() int { return e.t }

// Rule returns the engine's installed rule table, or nil if none is set.
func (e *Engine) Rule() *rule.Table { return e.rule }

// GenerateRule draws a fresh Z_left=1, Z_right>=0.5 rule table for the
// engine's k from the given seed and installs it.
func (e *Engine) GenerateRule(seed uint64) error {
	t, err := rule.GenerateReversible(e.k, seed)
	if err != nil {
		return err
	}
	return e.SetRule(t)
}

// SetRule installs an externally constructed or loaded rule table. Rules
// are set exactly once per session; loading a second table is an error.
func (e *Engine) SetRule(t *rule.Table) error {
	if e.st >= stateRuled {
		return errs.New(errs.InvalidArg, "rule table already set for this engine")
	}
	if t.K != e.k {
		return errs.New(errs.InvalidArg, "rule table k=%d does not match engine k=%d", t.K, e.k)
	}
	if err := t.CheckZLeft(); err != nil {
		return err
	}
	e.rule = t
	e.st = stateRuled
	return nil
}

// SetMaskSeed sets the noise seed used by XORStartArr/XOREndArr.
func (e *Engine) SetMaskSeed(s mask.Seed) {
	e.seed = MaskSeed{Value: s, Set: true}
}

// MaskSeed reports the engine's current mask seed, if any.
func (e *Engine) MaskSeed() MaskSeed { return e.seed }

// requireLoaded/requireRuled enforce the engine's state-machine preconditions.
func (e *Engine) requireRuled() error {
	if e.st < stateRuled {
		return errs.New(errs.Unconfigured, "rule table not set before stepping")
	}
	return nil
}

func (e *Engine) requireLoaded() error {
	if e.st < stateLoaded {
		return errs.New(errs.Unconfigured, "tape not loaded before stepping")
	}
	return nil
}

// LoadPlaintext installs a plaintext-side tape: start=end=work=copy of bits.
// Tape length must be >= k.
func (e *Engine) LoadPlaintext(bits bitstring.Bits) error {
	if err := e.requireRuled(); err != nil {
		return err
	}
	if err := validateTape(bits, e.k); err != nil {
		return err
	}
	e.start = bits.Clone()
	e.end = bits.Clone()
	e.work = bits.Clone()
	e.n = len(bits)
	e.st = stateLoaded
	return nil
}

// LoadCiphertext installs a ciphertext-side tape; identical shape to
// LoadPlaintext, kept as a distinct entry point so callers can name which
// side of the cipher they're anchoring.
func (e *Engine) LoadCiphertext(bits bitstring.Bits) error {
	return e.LoadPlaintext(bits)
}

func validateTape(bits bitstring.Bits, k int) error {
	if err := bitstring.Validate(bits); err != nil {
		return err
	}
	if len(bits) < k {
		return errs.New(errs.DimensionMismatch,
			"tape length %d is shorter than neighbourhood size %d", len(bits), k)
	}
	return nil
}

// Start returns the current plaintext-side anchor.
func (e *Engine) Start() bitstring.Bits { return e.start.Clone() }

// End returns the current ciphertext-side anchor.
func (e *Engine) End() bitstring.Bits { return e.end.Clone() }

// CASteps runs the CA forward numSteps times from start, writing the result
// to end. numSteps <= 0 reuses the engine's configured T. The optional
// onStep callback is invoked after each step with the 1-based step index
// and the tape at that point, letting callers dump intermediate state
// without the engine itself knowing about image I/O.
func (e *Engine) CASteps(numSteps int, onStep ...func(step int, tape bitstring.Bits)) error {
	if err := e.requireRuled(); err != nil {
		return err
	}
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if numSteps <= 0 {
		numSteps = e.t
	}
	e.work = e.start.Clone()
	for i := 0; i < numSteps; i++ {
		started := time.Now()
		e.work = stepForward(e.work, e.rule)
		logging.Step("forward", i+1, numSteps, float64(time.Since(started).Milliseconds()))
		for _, cb := range onStep {
			cb(i+1, e.work)
		}
	}
	e.end = e.work.Clone()
	e.st = stateStepped
	return nil
}

// CAstepsReverse runs the CA backward numSteps times from end, writing the
// result to start. numSteps <= 0 reuses the engine's configured T. See
// CASteps for onStep.
func (e *Engine) CAstepsReverse(numSteps int, onStep ...func(step int, tape bitstring.Bits)) error {
	if err := e.requireRuled(); err != nil {
		return err
	}
	if err := e.requireLoaded(); err != nil {
		return err
	}
	if numSteps <= 0 {
		numSteps = e.t
	}
	e.work = e.end.Clone()
	for i := 0; i < numSteps; i++ {
		started := time.Now()
		next, err := stepBackward(e.work, e.rule)
		if err != nil {
			return err
		}
		e.work = next
		logging.Step("backward", i+1, numSteps, float64(time.Since(started).Milliseconds()))
		for _, cb := range onStep {
			cb(i+1, e.work)
		}
	}
	e.start = e.work.Clone()
	e.st = stateStepped
	return nil
}

// XORStartArr XORs start in place with mask(seed, len(start)).
func (e *Engine) XORStartArr() error {
	if e.start == nil {
		return errs.New(errs.Unconfigured, "start array not set, cannot XOR with mask")
	}
	if !e.seed.Set {
		return errs.New(errs.Unconfigured, "mask seed not set, cannot XOR with mask")
	}
	xored, err := bitstring.XOR(e.start, mask.Bits(e.seed.Value, len(e.start)))
	if err != nil {
		return err
	}
	e.start = xored
	return nil
}

// XOREndArr XORs end in place with mask(seed, len(end)).
func (e *Engine) XOREndArr() error {
	if e.end == nil {
		return errs.New(errs.Unconfigured, "end array not set, cannot XOR with mask")
	}
	if !e.seed.Set {
		return errs.New(errs.Unconfigured, "mask seed not set, cannot XOR with mask")
	}
	xored, err := bitstring.XOR(e.end, mask.Bits(e.seed.Value, len(e.end)))
	if err != nil {
		return err
	}
	e.end = xored
	return nil
}

// Encrypt runs the full encryption data flow: plaintext is loaded as the
// engine's anchor, masked, then stepped backward T times to produce
// ciphertext. The engine must already have a rule table and mask seed set.
// onStep, if given, is forwarded to CAstepsReverse.
func Encrypt(e *Engine, plaintext bitstring.Bits, onStep ...func(step int, tape bitstring.Bits)) (bitstring.Bits, error) {
	if err := e.LoadPlaintext(plaintext); err != nil {
		return nil, err
	}
	if err := e.XOREndArr(); err != nil {
		return nil, err
	}
	if err := e.CAstepsReverse(0, onStep...); err != nil {
		return nil, err
	}
	return e.Start(), nil
}

// Decrypt runs the full decryption data flow: ciphertext is loaded as the
// engine's anchor, stepped forward T times, then unmasked to recover
// plaintext. The engine must already have a rule table and mask seed set.
// onStep, if given, is forwarded to CASteps.
func Decrypt(e *Engine, ciphertext bitstring.Bits, onStep ...func(step int, tape bitstring.Bits)) (bitstring.Bits, error) {
	if err := e.LoadCiphertext(ciphertext); err != nil {
		return nil, err
	}
	if err := e.CASteps(0, onStep...); err != nil {
		return nil, err
	}
	if err := e.XOREndArr(); err != nil {
		return nil, err
	}
	return e.End(), nil
}
