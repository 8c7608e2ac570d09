package numfmt

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		digits int
		want   string
	}{
		{"whole number", 1.0, 3, "1"},
		{"near tenth rounds up", 0.09999999403953552, 3, "0.1"},
		{"negative zero", -0.0, 3, "0"},
		{"rounds away tiny negative", -0.0004, 3, "0"},
		{"keeps sign", -2.5, 3, "-2.5"},
		{"strips trailing zeros", 1.5000, 3, "1.5"},
		{"full precision kept", 0.125, 3, "0.125"},
		{"truncates to digits", 0.123456, 3, "0.123"},
		{"two digits", 0.126, 2, "0.13"},
		{"zero digits", 1.7, 0, "2"},
		{"zero digits whole", 10.0, 0, "10"},
		{"large value", 123456.0, 3, "123456"},
		{"negative digits clamp to default", 0.123456, -1, "0.123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.x, tt.digits); got != tt.want {
				t.Errorf("Format(%v, %d) = %q, want %q", tt.x, tt.digits, got, tt.want)
			}
		})
	}
}

func TestRoundLiterals(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		digits int
		want   string
	}{
		{
			name:   "vector components",
			text:   `    "location" to <100.00000001, -250.49999999>`,
			digits: 3,
			want:   `    "location" to <100, -250.5>`,
		},
		{
			name:   "color with alpha",
			text:   "<0.800000011920929, 0.5, 0.30000001192092896, 1.0>",
			digits: 3,
			want:   "<0.8, 0.5, 0.3, 1>",
		},
		{
			name:   "bare token passes through",
			text:   "<True>",
			digits: 3,
			want:   "<True>",
		},
		{
			name:   "curve point handle preserved",
			text:   `    "mapping.curve[0].points[1]" to <0.5000001,0.25,AUTO>`,
			digits: 3,
			want:   `    "mapping.curve[0].points[1]" to <0.5, 0.25, AUTO>`,
		},
		{
			name:   "numbers outside brackets untouched",
			text:   `Create  ShaderNodeMath  "Math#1"  "MULTIPLY"`,
			digits: 3,
			want:   `Create  ShaderNodeMath  "Math#1"  "MULTIPLY"`,
		},
		{
			name:   "instance counters untouched",
			text:   "Set  [ Math#12 ]",
			digits: 3,
			want:   "Set  [ Math#12 ]",
		},
		{
			name:   "scientific notation passes through",
			text:   "<1e-07, 2.0>",
			digits: 3,
			want:   "<1e-07, 2>",
		},
		{
			name:   "empty literal",
			text:   "<>",
			digits: 3,
			want:   "<>",
		},
		{
			name:   "two digits precision",
			text:   "<0.8888, 0.1111>",
			digits: 2,
			want:   "<0.89, 0.11>",
		},
		{
			name:   "negative digits clamp",
			text:   "<0.123456>",
			digits: -5,
			want:   "<0.123>",
		},
		{
			name:   "multiple literals one line",
			text:   "<1.00, 2.00> and <3.1400>",
			digits: 3,
			want:   "<1, 2> and <3.14>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundLiterals(tt.text, tt.digits)
			if got != tt.want {
				t.Errorf("RoundLiterals(%q, %d) = %q, want %q", tt.text, tt.digits, got, tt.want)
			}
		})
	}
}

func TestRoundLiteralsIdempotent(t *testing.T) {
	inputs := []string{
		`    "location" to <100.123456, -250.654321>`,
		"<0.800000011920929, 0.5, 0.30000001192092896, 1.0>",
		"<0.5,0.25,AUTO>",
		"Connect  [ Math#1 ]  ○  Value  to  [ Output#1 ]  ⦿  Surface",
		"<>",
	}

	for _, in := range inputs {
		once := RoundLiterals(in, 3)
		twice := RoundLiterals(once, 3)
		if once != twice {
			t.Errorf("RoundLiterals not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// The serializer and the rounder must produce identical text for the same
// numeric input and precision.
func TestFormatRoundLiteralsAgree(t *testing.T) {
	values := []float64{1.0, 0.09999999403953552, -0.0, 0.125, -2.5, 123456.0, 0.30000001192092896}

	for _, v := range values {
		direct := "<" + Format(v, 3) + ">"
		rounded := RoundLiterals(direct, 3)
		if direct != rounded {
			t.Errorf("Format/RoundLiterals disagree for %v: direct %q, rounded %q", v, direct, rounded)
		}
	}
}
