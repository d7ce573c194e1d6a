package cmd

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/mask"
)

// seedFromTime is the default rule-generation seed when none is supplied.
func seedFromTime() uint64 {
	return uint64(time.Now().UnixNano())
}

// randomMaskSeed draws a 32-bit mask seed from crypto/rand rather than
// reusing the weak EQaDG LCG to seed itself. 0 is reserved as the CLI's
// unset sentinel, so a draw of exactly 0 is bumped to 1.
func randomMaskSeed() (mask.Seed, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, errs.Wrap(errs.InvalidArg, err, "drawing a random mask seed")
	}
	v := binary.BigEndian.Uint32(buf[:])
	if v == 0 {
		v = 1
	}
	return mask.Seed(v), nil
}
