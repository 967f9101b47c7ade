// Package ticker normalizes and validates user-supplied stock symbols.
package ticker

import (
	"regexp"
	"strings"
)

// MaxLength is the longest symbol accepted.
const MaxLength = 10

var (
	separators = regexp.MustCompile(`[,\s;]+`)
	disallowed = regexp.MustCompile(`[^A-Z0-9.\-]`)
	valid      = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)
)

// Normalize upper-cases the input, keeps its first whitespace, comma or
// semicolon separated token, strips characters outside [A-Z0-9.-] and caps
// the result at MaxLength characters. The result may still be invalid.
func Normalize(input string) string {
	upper := strings.TrimSpace(strings.ToUpper(input))

	var first string
	for _, tok := range separators.Split(upper, -1) {
		if tok != "" {
			first = tok
			break
		}
	}

	cleaned := disallowed.ReplaceAllString(first, "")
	if len(cleaned) > MaxLength {
		cleaned = cleaned[:MaxLength]
	}
	return cleaned
}

// IsValid reports whether s is a normalized symbol: a letter followed by up
// to nine letters, digits, dots or dashes.
func IsValid(s string) bool {
	return valid.MatchString(s)
}

// Parse normalizes input and reports whether the result is valid.
func Parse(input string) (string, bool) {
	s := Normalize(input)
	return s, IsValid(s)
}
