// Package image is cacipher's external-collaborator boundary for greyscale
// PNG I/O: pixel bytes in row-major order, each expanded big-endian into 8
// bits, and back. Uses the standard library's image/png codec over an
// afero.Fs so tests run against an in-memory filesystem.
package image

import (
	"bytes"
	stdimage "image"
	"image/color"
	stdpng "image/png"

	"github.com/spf13/afero"

	"github.com/vrypan/cacipher/bitstring"
	"github.com/vrypan/cacipher/errs"
)

// Dims records the pixel dimensions read from a source image, restored at
// write time.
type Dims struct {
	Width  int
	Height int
}

// ReadGreyscale decodes filename as an 8-bit greyscale PNG, returning a flat
// bit sequence (8 bits per pixel, MSB first) in row-major order.
func ReadGreyscale(fs afero.Fs, filename string) (bitstring.Bits, Dims, error) {
	exists, err := afero.Exists(fs, filename)
	if err != nil {
		return nil, Dims{}, errs.Wrap(errs.IOMissing, err, "checking image %q", filename)
	}
	if !exists {
		return nil, Dims{}, errs.New(errs.IOMissing, "image %q does not exist", filename)
	}

	f, err := fs.Open(filename)
	if err != nil {
		return nil, Dims{}, errs.Wrap(errs.IOMissing, err, "opening image %q", filename)
	}
	defer f.Close()

	img, err := stdpng.Decode(f)
	if err != nil {
		return nil, Dims{}, errs.Wrap(errs.IODecode, err, "decoding PNG %q", filename)
	}

	b := img.Bounds()
	dims := Dims{Width: b.Dx(), Height: b.Dy()}
	bits := make(bitstring.Bits, 0, dims.Width*dims.Height*8)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			for bit := 7; bit >= 0; bit-- {
				bits = append(bits, (g.Y>>uint(bit))&1)
			}
		}
	}
	return bits, dims, nil
}

// WriteGreyscale re-packs a flat bit sequence (8 bits per pixel, MSB first,
// row-major) into dims and writes it as an 8-bit greyscale PNG.
func WriteGreyscale(fs afero.Fs, filename string, bits bitstring.Bits, dims Dims) error {
	if len(bits)%8 != 0 {
		return errs.New(errs.DimensionMismatch,
			"bit sequence length %d is not a multiple of 8", len(bits))
	}
	want := dims.Width * dims.Height * 8
	if len(bits) != want {
		return errs.New(errs.DimensionMismatch,
			"bit sequence has %d bits, want %d for a %dx%d image", len(bits), want, dims.Width, dims.Height)
	}
	if err := bitstring.Validate(bits); err != nil {
		return err
	}

	img := stdimage.NewGray(stdimage.Rect(0, 0, dims.Width, dims.Height))
	for p := 0; p < dims.Width*dims.Height; p++ {
		var v byte
		for bit := 0; bit < 8; bit++ {
			v = (v << 1) | bits[p*8+bit]
		}
		img.Pix[p] = v
	}

	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		return errs.Wrap(errs.IODecode, err, "encoding PNG %q", filename)
	}
	if err := afero.WriteFile(fs, filename, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.IOMissing, err, "writing image %q", filename)
	}
	return nil
}
