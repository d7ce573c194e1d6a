// Package keyfile codecs the shared key file: three whitespace-tolerant
// lines carrying k, T, and the rule table's raw bits in canonical order.
// I/O goes through an afero.Fs so the codec is testable against an
// in-memory filesystem without touching disk.
package keyfile

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/vrypan/cacipher/errs"
	"github.com/vrypan/cacipher/rule"
)

// KeyFile holds the decoded contents of a key file.
type KeyFile struct {
	K int
	T int
	R *rule.Table
}

// Save writes k, T, and tbl's canonical bit order to filename. It is the
// exact inverse of Load.
func Save(fs afero.Fs, filename string, k, t int, tbl *rule.Table) error {
	raw := tbl.ToBits()
	var b strings.Builder
	b.WriteString("# k ::: ")
	b.WriteString(strconv.Itoa(k))
	b.WriteString("\n# T ::: ")
	b.WriteString(strconv.Itoa(t))
	b.WriteString("\n# R :::")
	for _, bit := range raw {
		b.WriteByte(' ')
		b.WriteByte('0' + bit)
	}
	b.WriteString("\n")

	if err := afero.WriteFile(fs, filename, []byte(b.String()), 0o644); err != nil {
		return errs.Wrap(errs.IOMissing, err, "writing key file %q", filename)
	}
	return nil
}

// Load reads and decodes a key file: n1 and n are re-derived from k, Z_left
// is set to 1, and Z_right is recomputed rather than trusted.
func Load(fs afero.Fs, filename string) (*KeyFile, error) {
	exists, err := afero.Exists(fs, filename)
	if err != nil {
		return nil, errs.Wrap(errs.IOMissing, err, "checking key file %q", filename)
	}
	if !exists {
		return nil, errs.New(errs.IOMissing, "key file %q does not exist", filename)
	}

	f, err := fs.Open(filename)
	if err != nil {
		return nil, errs.Wrap(errs.IOMissing, err, "opening key file %q", filename)
	}
	defer f.Close()

	lines := make([]string, 0, 3)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() && len(lines) < 3 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.IODecode, err, "reading key file %q", filename)
	}
	if len(lines) < 3 {
		return nil, errs.New(errs.IODecode, "key file %q has fewer than 3 non-empty lines", filename)
	}

	k, err := lastIntField(lines[0])
	if err != nil {
		return nil, errs.Wrap(errs.IODecode, err, "parsing k line %q", lines[0])
	}
	t, err := lastIntField(lines[1])
	if err != nil {
		return nil, errs.Wrap(errs.IODecode, err, "parsing T line %q", lines[1])
	}

	raw, err := ruleBits(lines[2])
	if err != nil {
		return nil, errs.Wrap(errs.IODecode, err, "parsing R line %q", lines[2])
	}

	tbl, err := rule.FromBits(k, raw)
	if err != nil {
		return nil, err
	}

	return &KeyFile{K: k, T: t, R: tbl}, nil
}

// lastIntField parses the last whitespace-separated token on a line such as
// "# k ::: 7" as an integer.
func lastIntField(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, errs.New(errs.IODecode, "empty line")
	}
	return strconv.Atoi(fields[len(fields)-1])
}

// ruleBits parses "# R ::: b0 b1 ... bn-1" into a []byte of 0/1 values.
func ruleBits(line string) ([]byte, error) {
	fields := strings.Fields(line)
	idx := indexOf(fields, ":::")
	if idx < 0 || idx+1 >= len(fields) {
		return nil, errs.New(errs.IODecode, "missing ::: separator on R line")
	}
	bitFields := fields[idx+1:]
	out := make([]byte, len(bitFields))
	for i, f := range bitFields {
		switch f {
		case "0":
			out[i] = 0
		case "1":
			out[i] = 1
		default:
			return nil, errs.New(errs.NonBinary, "rule bit %q is not 0 or 1", f)
		}
	}
	return out, nil
}

func indexOf(fields []string, target string) int {
	for i, f := range fields {
		if f == target {
			return i
		}
	}
	return -1
}
