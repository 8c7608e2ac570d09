package bndl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// encodeValue renders a value in its single canonical text form. Floats and
// literal components go through numfmt so the serializer and the standalone
// rounder agree bit for bit.
func encodeValue(v tree.Value, digits int) string {
	switch x := v.(type) {
	case tree.Float:
		return numfmt.Format(float64(x), digits)
	case tree.Int:
		return strconv.FormatInt(int64(x), 10)
	case tree.Bool:
		if x {
			return "true"
		}
		return "false"
	case tree.String:
		return quoteString(string(x))
	case tree.Enum:
		return enumSentinel + string(x) + enumSentinel
	case tree.Vector:
		parts := make([]string, len(x))
		for i, c := range x {
			parts[i] = numfmt.Format(c, digits)
		}
		return "<" + strings.Join(parts, ", ") + ">"
	case tree.Color:
		parts := make([]string, len(x))
		for i, c := range x {
			parts[i] = numfmt.Format(c, digits)
		}
		return "<" + strings.Join(parts, ", ") + ">"
	case tree.CurvePoint:
		return fmt.Sprintf("<%s, %s, %s>",
			numfmt.Format(x.X, digits), numfmt.Format(x.Y, digits), x.Handle)
	case tree.Datablock:
		s := SentinelFor(x.Kind)
		return quoteString(s + x.Name + s)
	default:
		return `""`
	}
}

// quoteString wraps s in double quotes, escaping backslashes and embedded
// quotes. Sentinel runes stay raw so datablock references remain greppable.
func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func unquoteString(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

var (
	// numberRe matches the signed decimal forms the format emits. Scientific
	// notation never appears in well-formed output.
	numberRe = regexp.MustCompile(`^-?\d+(\.\d*)?$`)
	intRe    = regexp.MustCompile(`^-?\d+$`)
)

// decodeValue parses the canonical text form back into a value. Datablock
// references resolve to (kind, name) pairs only; nothing is dereferenced.
// Legacy quoted enums ("©X©") decode the same as bare ©X© tokens.
func decodeValue(s string) (tree.Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}

	switch {
	case s == "true":
		return tree.Bool(true), nil
	case s == "false":
		return tree.Bool(false), nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return decodeLiteral(s[1 : len(s)-1])
	case strings.HasPrefix(s, enumSentinel) && strings.HasSuffix(s, enumSentinel) && len(s) > 2*len(enumSentinel):
		return tree.Enum(s[len(enumSentinel) : len(s)-len(enumSentinel)]), nil
	case strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2:
		return decodeQuoted(unquoteString(s[1 : len(s)-1]))
	case intRe.MatchString(s):
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer out of range: %s", s)
		}
		return tree.Int(n), nil
	case numberRe.MatchString(s):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number: %s", s)
		}
		return tree.Float(f), nil
	default:
		return nil, fmt.Errorf("unrecognized value %q", s)
	}
}

// decodeLiteral parses the interior of an angle-bracket literal: an
// all-numeric run becomes a Vector, two numbers plus a bare trailing token
// become a curve point. Mixed content anywhere else is an error.
func decodeLiteral(inner string) (tree.Value, error) {
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return nil, fmt.Errorf("empty literal <>")
	}

	numeric := true
	for _, p := range parts {
		if !numberRe.MatchString(p) {
			numeric = false
			break
		}
	}
	if numeric {
		vec := make(tree.Vector, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed component %q", p)
			}
			vec[i] = f
		}
		return vec, nil
	}

	// <x, y, HANDLE> curve point: two numbers and a bare handle token.
	if len(parts) == 3 && numberRe.MatchString(parts[0]) && numberRe.MatchString(parts[1]) {
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed component %q", parts[0])
		}
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed component %q", parts[1])
		}
		handle := parts[2]
		if handle == "" || strings.ContainsAny(handle, `"<>`) {
			return nil, fmt.Errorf("malformed handle token %q", parts[2])
		}
		return tree.CurvePoint{X: x, Y: y, Handle: handle}, nil
	}

	return nil, fmt.Errorf("unrecognized literal <%s>", inner)
}

// decodeQuoted classifies the interior of a quoted value: sentinel-wrapped
// datablock reference, legacy quoted enum, or a plain string.
func decodeQuoted(inner string) (tree.Value, error) {
	if strings.HasPrefix(inner, enumSentinel) && strings.HasSuffix(inner, enumSentinel) && len(inner) > 2*len(enumSentinel) {
		return tree.Enum(inner[len(enumSentinel) : len(inner)-len(enumSentinel)]), nil
	}
	runes := []rune(inner)
	if len(runes) >= 2 {
		first, last := string(runes[0]), string(runes[len(runes)-1])
		if first == last {
			if kind, ok := KindForSentinel(first); ok {
				return tree.Datablock{Kind: kind, Name: string(runes[1 : len(runes)-1])}, nil
			}
		}
	}
	return tree.String(inner), nil
}
