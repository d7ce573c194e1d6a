package main

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/vrypan/cacipher/ca"
	"github.com/vrypan/cacipher/image"
	"github.com/vrypan/cacipher/keyfile"
	"github.com/vrypan/cacipher/mask"
	"github.com/vrypan/cacipher/rngsrc"
	"github.com/vrypan/cacipher/rule"
)

// TestEndToEndImageRoundTrip checks that key file generation, saving and
// loading, image I/O, and a full encrypt/decrypt cycle all compose to
// recover the original plaintext image exactly.
func TestEndToEndImageRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	tbl, err := rule.GenerateReversible(7, 9)
	if err != nil {
		t.Fatalf("GenerateReversible: %v", err)
	}
	if err := keyfile.Save(fs, "key.shared", 7, 5, tbl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	kf, err := keyfile.Load(fs, "key.shared")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dims := image.Dims{Width: 4, Height: 4}
	src := rngsrc.New(123)
	plaintext := make([]byte, dims.Width*dims.Height*8)
	for i := range plaintext {
		plaintext[i] = src.Bit()
	}
	if err := image.WriteGreyscale(fs, "plain.png", plaintext, dims); err != nil {
		t.Fatalf("WriteGreyscale(plain): %v", err)
	}

	bits, gotDims, err := image.ReadGreyscale(fs, "plain.png")
	if err != nil {
		t.Fatalf("ReadGreyscale(plain): %v", err)
	}
	if gotDims != dims {
		t.Fatalf("dims = %+v, want %+v", gotDims, dims)
	}

	seed := mask.Seed(7)

	encEngine, err := ca.New(kf.K, kf.T)
	if err != nil {
		t.Fatal(err)
	}
	if err := encEngine.SetRule(kf.R); err != nil {
		t.Fatal(err)
	}
	encEngine.SetMaskSeed(seed)

	ciphertext, err := ca.Encrypt(encEngine, bits)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if err := image.WriteGreyscale(fs, "cipher.png", ciphertext, dims); err != nil {
		t.Fatalf("WriteGreyscale(cipher): %v", err)
	}

	cipherBits, _, err := image.ReadGreyscale(fs, "cipher.png")
	if err != nil {
		t.Fatalf("ReadGreyscale(cipher): %v", err)
	}

	decEngine, err := ca.New(kf.K, kf.T)
	if err != nil {
		t.Fatal(err)
	}
	if err := decEngine.SetRule(kf.R); err != nil {
		t.Fatal(err)
	}
	decEngine.SetMaskSeed(seed)

	recovered, err := ca.Decrypt(decEngine, cipherBits)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if err := image.WriteGreyscale(fs, "recovered.png", recovered, dims); err != nil {
		t.Fatalf("WriteGreyscale(recovered): %v", err)
	}

	roundTripped, _, err := image.ReadGreyscale(fs, "recovered.png")
	if err != nil {
		t.Fatalf("ReadGreyscale(recovered): %v", err)
	}
	if len(roundTripped) != len(bits) {
		t.Fatalf("recovered %d bits, want %d", len(roundTripped), len(bits))
	}
	for i := range bits {
		if roundTripped[i] != bits[i] {
			t.Fatalf("bit %d differs after full round trip: %d != %d", i, roundTripped[i], bits[i])
		}
	}
}
