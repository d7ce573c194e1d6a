package image

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/vrypan/cacipher/rngsrc"
)

func randomBits(n int, seed uint64) []byte {
	src := rngsrc.New(seed)
	out := make([]byte, n)
	for i := range out {
		out[i] = src.Bit()
	}
	return out
}

// TestRoundTrip checks that writing then reading a greyscale PNG preserves
// both its bits and its dimensions.
func TestRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	dims := Dims{Width: 6, Height: 4}
	bits := randomBits(dims.Width*dims.Height*8, 7)

	if err := WriteGreyscale(fs, "out.png", bits, dims); err != nil {
		t.Fatalf("WriteGreyscale: %v", err)
	}

	got, gotDims, err := ReadGreyscale(fs, "out.png")
	if err != nil {
		t.Fatalf("ReadGreyscale: %v", err)
	}
	if gotDims != dims {
		t.Fatalf("dims = %+v, want %+v", gotDims, dims)
	}
	if len(got) != len(bits) {
		t.Fatalf("got %d bits, want %d", len(got), len(bits))
	}
	for i := range bits {
		if got[i] != bits[i] {
			t.Fatalf("bit %d differs: %d != %d", i, got[i], bits[i])
		}
	}
}

func TestWriteGreyscaleRejectsLengthMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	bits := randomBits(10, 1) // not a multiple of 8
	if err := WriteGreyscale(fs, "bad.png", bits, Dims{Width: 2, Height: 1}); err == nil {
		t.Fatal("expected DIMENSION_MISMATCH for a non-multiple-of-8 bit count")
	}
}

func TestWriteGreyscaleRejectsWrongDims(t *testing.T) {
	fs := afero.NewMemMapFs()
	bits := randomBits(64, 1) // 8 pixels worth
	if err := WriteGreyscale(fs, "bad.png", bits, Dims{Width: 3, Height: 3}); err == nil {
		t.Fatal("expected DIMENSION_MISMATCH when bit count doesn't match width*height*8")
	}
}

func TestReadGreyscaleMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, _, err := ReadGreyscale(fs, "nope.png"); err == nil {
		t.Fatal("expected IO_MISSING error for a missing image file")
	}
}

func TestReadGreyscaleMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "bad.png", []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadGreyscale(fs, "bad.png"); err == nil {
		t.Fatal("expected IO_DECODE error for a non-PNG file")
	}
}
