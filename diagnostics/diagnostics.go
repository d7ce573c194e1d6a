// Package diagnostics reports entropy and summary statistics over a bit
// sequence, surfaced by the CLI's -V/--verbose flag.
package diagnostics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/errs"
)

// Report summarizes a bit sequence's balance and dispersion.
type Report struct {
	Length        int
	Ones          int
	Zeros         int
	ShannonBits   float64 // Shannon entropy of the 0/1 symbol distribution, in bits.
	MetricEntropy float64 // ShannonBits normalized to [0,1] (entropy per symbol / max possible).
	Mean          float64
	StdDev        float64
}

// Analyze computes a Report over bits. An empty sequence is an error: there
// is nothing to report on.
func Analyze(bits bitstring.Bits) (Report, error) {
	if len(bits) == 0 {
		return Report{}, errs.New(errs.InvalidArg, "cannot analyze an empty bit sequence")
	}
	if err := bitstring.Validate(bits); err != nil {
		return Report{}, err
	}

	ones := 0
	samples := make([]float64, len(bits))
	for i, b := range bits {
		if b == 1 {
			ones++
		}
		samples[i] = float64(b)
	}
	zeros := len(bits) - ones

	h := shannon(ones, zeros)

	mean, err := stats.Mean(samples)
	if err != nil {
		return Report{}, errs.Wrap(errs.InvalidArg, err, "computing mean")
	}
	sd, err := stats.StandardDeviation(samples)
	if err != nil {
		return Report{}, errs.Wrap(errs.InvalidArg, err, "computing standard deviation")
	}

	return Report{
		Length:        len(bits),
		Ones:          ones,
		Zeros:         zeros,
		ShannonBits:   h,
		MetricEntropy: h, // binary alphabet: max entropy is 1 bit/symbol, so metric == Shannon.
		Mean:          mean,
		StdDev:        sd,
	}, nil
}

// shannon returns the Shannon entropy, in bits, of a binary source with the
// given symbol counts.
func shannon(ones, zeros int) float64 {
	n := float64(ones + zeros)
	h := 0.0
	for _, count := range []int{ones, zeros} {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		h -= p * math.Log2(p)
	}
	return h
}
