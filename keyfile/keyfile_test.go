package keyfile

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/vrypan/cacipher/rule"
)

// TestKeyRoundTrip checks that saving then loading a key file reproduces
// k, T, and the rule table exactly.
func TestKeyRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	tbl, err := rule.GenerateReversible(5, 3)
	if err != nil {
		t.Fatal(err)
	}

	if err := Save(fs, "key.shared", tbl.K, 3, tbl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	kf, err := Load(fs, "key.shared")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if kf.K != tbl.K {
		t.Fatalf("k = %d, want %d", kf.K, tbl.K)
	}
	if kf.T != 3 {
		t.Fatalf("T = %d, want 3", kf.T)
	}
	for i := range tbl.Bits {
		if kf.R.Bits[i] != tbl.Bits[i] {
			t.Fatalf("rule bit %d differs: %d != %d", i, kf.R.Bits[i], tbl.Bits[i])
		}
	}
	if kf.R.ZRight != tbl.ZRight {
		t.Fatalf("ZRight = %v, want %v", kf.R.ZRight, tbl.ZRight)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Load(fs, "nope.shared"); err == nil {
		t.Fatal("expected IO_MISSING error for a missing key file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "bad.shared", []byte("not a key file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(fs, "bad.shared"); err == nil {
		t.Fatal("expected IO_DECODE error for a malformed key file")
	}
}

func TestKeyFileIsWhitespaceTolerant(t *testing.T) {
	fs := afero.NewMemMapFs()
	// k=3 gives n=8 rule bits.
	raw := "\n\n#  k   :::   3\n#   T  :::  5\n# R :::  1 0 0 1 1 0 0 1\n"
	if err := afero.WriteFile(fs, "loose.shared", []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	kf, err := Load(fs, "loose.shared")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if kf.K != 3 || kf.T != 5 {
		t.Fatalf("got k=%d T=%d, want k=3 T=5", kf.K, kf.T)
	}
}
