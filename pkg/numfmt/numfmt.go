// Package numfmt implements the numeric formatting shared by the BNDL
// serializer and the standalone literal rounder.
//
// Both entry points must agree bit-for-bit: the serializer calls [Format]
// inline while writing values, and [RoundLiterals] re-applies the same
// formatting to angle-bracket literals in already-emitted text. Keeping them
// in one package is what makes "round after export" a no-op.
package numfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultDigits is the decimal precision used when a caller passes a
// negative digit count. Matches the format's historical default.
const DefaultDigits = 3

// Format renders a float for BNDL output with at most digits decimal
// places. Fixed-point notation, trailing zeros stripped, then a trailing
// decimal point; negative zero collapses to "0". Negative digits clamp to
// [DefaultDigits].
//
//	Format(1.0, 3)   == "1"
//	Format(0.126, 2) == "0.13"
//	Format(-0.0, 3)  == "0"
func Format(x float64, digits int) string {
	if digits < 0 {
		digits = DefaultDigits
	}
	s := strconv.FormatFloat(x, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

var (
	// literalRe matches one angle-bracket literal. Bracket characters
	// never nest in the format, so the interior excludes both.
	literalRe = regexp.MustCompile(`<([^<>]*)>`)

	// numberRe matches a signed decimal number: an optional minus, at
	// least one integer digit, an optional fractional part. Scientific
	// notation and bare-dot forms (".5") intentionally do not match and
	// pass through untouched.
	numberRe = regexp.MustCompile(`^-?\d+\.?\d*$`)
)

// RoundLiterals normalizes every numeric component inside angle-bracket
// literals (`<...>`) of text to the given precision, leaving all other text
// unmodified. The interior is split on commas; parts matching a signed
// decimal number are reformatted with [Format], other parts (bare tokens
// such as curve handle types, booleans) pass through. Components are
// rejoined with ", " regardless of original spacing.
//
// The transform is idempotent: applying it twice with the same precision
// yields the same text. Negative digits clamp to [DefaultDigits].
func RoundLiterals(text string, digits int) string {
	if digits < 0 {
		digits = DefaultDigits
	}
	return literalRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := m[1 : len(m)-1]
		parts := strings.Split(inner, ",")
		for i, p := range parts {
			p = strings.TrimSpace(p)
			if numberRe.MatchString(p) {
				if f, err := strconv.ParseFloat(p, 64); err == nil {
					p = Format(f, digits)
				}
			}
			parts[i] = p
		}
		return "<" + strings.Join(parts, ", ") + ">"
	})
}
