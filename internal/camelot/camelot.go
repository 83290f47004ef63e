// Package camelot implements the Camelot wheel harmonic-mixing model: 12
// positions crossed with two modes (A = minor, B = major), and the
// compatibility rule used to filter transition candidates.
package camelot

import (
	"fmt"
	"regexp"
	"strconv"
)

// Key is a parsed Camelot position, e.g. 8A or 5B.
type Key struct {
	Number int  // 1-12
	Letter byte // 'A' (minor) or 'B' (major)
}

var keyPattern = regexp.MustCompile(`^([1-9]|1[0-2])([AaBb])$`)

// Parse reads a Camelot key string such as "8A". An empty string, the
// literal "unknown", or any string that doesn't match the pattern is
// reported as no key present rather than an error: per spec.md, absent or
// unrecognized keys are always harmonically compatible, never a hard
// failure. Leading zeros ("08A") are rejected, not normalized.
func Parse(raw string) (*Key, bool) {
	if raw == "" || raw == "unknown" {
		return nil, false
	}
	m := keyPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num < 1 || num > 12 {
		return nil, false
	}
	letter := byte(m[2][0])
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return &Key{Number: num, Letter: letter}, true
}

func (k *Key) String() string {
	if k == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d%c", k.Number, k.Letter)
}

// Compatible reports whether two Camelot keys are harmonically compatible:
// same key, same number with the other mode (parallel), or adjacent number
// with the same mode. A nil key on either side (absent or unparsed) is
// always compatible.
func Compatible(a, b *Key) bool {
	if a == nil || b == nil {
		return true
	}
	if a.Number == b.Number {
		return true // identical or parallel major/minor
	}
	if a.Letter != b.Letter {
		return false
	}
	return adjacent(a.Number, b.Number)
}

func adjacent(n1, n2 int) bool {
	return wrap(n1+1) == n2 || wrap(n2+1) == n1
}

func wrap(n int) int {
	if n > 12 {
		return n - 12
	}
	if n < 1 {
		return n + 12
	}
	return n
}

// Distance returns a harmonic-distance score used only by diagnostics
// (internal/quality), not by the Selector's pass/fail filter: 0 identical,
// 1 adjacent-number-same-mode or same-number-other-mode, 2 unrelated.
func Distance(a, b *Key) int {
	if a == nil || b == nil {
		return 0
	}
	if a.Number == b.Number && a.Letter == b.Letter {
		return 0
	}
	if a.Number == b.Number || (a.Letter == b.Letter && adjacent(a.Number, b.Number)) {
		return 1
	}
	return 2
}
