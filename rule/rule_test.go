package rule

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vrypan/cacipher/rngsrc"
)

func TestGenerateLeftZLeftInvariant(t *testing.T) {
	src := rngsrc.New(42)
	tbl, err := GenerateLeft(5, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.CheckZLeft(); err != nil {
		t.Fatalf("Z_left invariant violated: %v", err)
	}
	if tbl.ZLeft != 1.0 {
		t.Fatalf("ZLeft = %v, want 1.0", tbl.ZLeft)
	}
}

func TestGenerateReversibleMeetsZRight(t *testing.T) {
	tbl, err := GenerateReversible(7, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.ZRight < 0.5 {
		t.Fatalf("ZRight = %v, want >= 0.5", tbl.ZRight)
	}
	if err := tbl.CheckZLeft(); err != nil {
		t.Fatalf("Z_left invariant violated: %v", err)
	}
}

// zeroBitSource always reports a fair-coin draw of 0. Under GenerateLeft
// this sets R(p·0)=0, R(p·1)=1 for every prefix p, which makes R(nb) equal
// to nb's trailing bit regardless of the rest of the neighborhood -- so
// R(0·s) == R(1·s) for every suffix s, pinning Z_right at 0 for any k.
type zeroBitSource struct{}

func (zeroBitSource) Bit() byte { return 0 }

func TestGenerateReversibleExhausted(t *testing.T) {
	calls := 0
	_, err := generateReversible(3, func() BitSource {
		calls++
		return zeroBitSource{}
	}, zeroBitSource{})
	if err == nil {
		t.Fatal("expected KEY_GEN_EXHAUSTED error")
	}
	if calls != ruleGenCutoff {
		t.Fatalf("reseed called %d times, want %d (one reseed per failed attempt, including the last)", calls, ruleGenCutoff)
	}
}

func TestKeyFileRoundTripPreservesRuleTable(t *testing.T) {
	orig, err := GenerateReversible(5, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw := orig.ToBits()
	restored, err := FromBits(orig.K, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(orig, restored); diff != "" {
		t.Fatalf("rule table changed after a ToBits/FromBits round trip (-orig +restored):\n%s", diff)
	}
}

func TestInvalidK(t *testing.T) {
	src := rngsrc.New(1)
	if _, err := GenerateLeft(4, src); err == nil {
		t.Fatal("expected error for even k")
	}
	if _, err := GenerateLeft(0, src); err == nil {
		t.Fatal("expected error for k < 1")
	}
}
