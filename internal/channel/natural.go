package channel

import (
	"strings"
)

type token struct {
	num bool
	s   string // lowercased text, or digits with leading zeros stripped
}

// tokenize splits s into alternating runs of ASCII digits and non-digits.
func tokenize(s string) []token {
	var out []token
	start := 0
	for start < len(s) {
		end := start
		digit := isDigit(s[start])
		for end < len(s) && isDigit(s[end]) == digit {
			end++
		}
		run := s[start:end]
		if digit {
			run = strings.TrimLeft(run, "0")
		} else {
			run = strings.ToLower(run)
		}
		out = append(out, token{num: digit, s: run})
		start = end
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// compareDigits compares two digit runs numerically without parsing, so runs
// longer than an int64 still order correctly. Leading zeros are already gone.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// NaturalCompare orders codes the way a person reads them: "A2" < "A10" <
// "A10b". Digit runs compare numerically, text runs case-insensitively, a
// text run sorts before a digit run at the same position, and a shorter
// token sequence sorts first.
func NaturalCompare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		switch {
		case x.num && y.num:
			if c := compareDigits(x.s, y.s); c != 0 {
				return c
			}
		case !x.num && !y.num:
			if c := strings.Compare(x.s, y.s); c != 0 {
				return c
			}
		case !x.num:
			return -1
		default:
			return 1
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	}
	return 0
}
