// Package bitstring holds the fixed-width binary representation and XOR
// helpers the rest of cacipher builds on, the Go analogue of
// CAencrypt/util.py's padLeftZeros and xorArrays.
package bitstring

import (
	"github.com/vrypan/cacipher/errs"
)

// Bits is a sequence of 0/1 values, one per cell.
type Bits []byte

// PadLeftZeros returns a width-long copy of bits, left-padded with zero
// cells so the low bits equal the input. Fails if bits is already longer
// than width.
func PadLeftZeros(bits Bits, width int) (Bits, error) {
	if len(bits) > width {
		return nil, errs.New(errs.DimensionMismatch,
			"input of length %d exceeds pad width %d", len(bits), width)
	}
	out := make(Bits, width)
	copy(out[width-len(bits):], bits)
	return out, nil
}

// FromUint pads the low k bits of v (MSB first) into a k-wide Bits value.
// Used to enumerate neighborhoods, prefixes, and suffixes by their integer
// index, zero-padded to width k.
func FromUint(v uint64, width int) Bits {
	out := make(Bits, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v & 1)
		v >>= 1
	}
	return out
}

// Uint interprets bits (MSB first) as an unsigned integer.
func (b Bits) Uint() uint64 {
	var v uint64
	for _, bit := range b {
		v = (v << 1) | uint64(bit)
	}
	return v
}

// XOR returns the elementwise XOR of a and b. Fails on length mismatch or a
// non-binary value in either operand.
func XOR(a, b Bits) (Bits, error) {
	if len(a) != len(b) {
		return nil, errs.New(errs.DimensionMismatch,
			"arrays to XOR not of equal length (%d != %d)", len(a), len(b))
	}
	out := make(Bits, len(a))
	for i := range a {
		if a[i] > 1 || b[i] > 1 {
			return nil, errs.New(errs.NonBinary, "arrays to XOR contain non-binary value")
		}
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// Validate fails if bits contains any value outside {0,1}.
func Validate(bits Bits) error {
	for _, b := range bits {
		if b > 1 {
			return errs.New(errs.NonBinary, "tape contains non-binary value %d", b)
		}
	}
	return nil
}

// Clone returns an independent copy of bits.
func (b Bits) Clone() Bits {
	out := make(Bits, len(b))
	copy(out, b)
	return out
}
