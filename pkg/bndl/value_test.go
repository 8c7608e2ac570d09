package bndl

import (
	"reflect"
	"testing"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name   string
		value  tree.Value
		digits int
		want   string
	}{
		{name: "Float", value: tree.Float(0.5), digits: 3, want: "0.5"},
		{name: "FloatRounded", value: tree.Float(0.123456), digits: 3, want: "0.123"},
		{name: "FloatIntegral", value: tree.Float(1.0), digits: 3, want: "1"},
		{name: "FloatNegative", value: tree.Float(-200), digits: 3, want: "-200"},
		{name: "Int", value: tree.Int(7), digits: 3, want: "7"},
		{name: "IntNegative", value: tree.Int(-12), digits: 3, want: "-12"},
		{name: "BoolTrue", value: tree.Bool(true), digits: 3, want: "true"},
		{name: "BoolFalse", value: tree.Bool(false), digits: 3, want: "false"},
		{name: "String", value: tree.String("Rocks"), digits: 3, want: `"Rocks"`},
		{name: "StringEscaped", value: tree.String(`say "hi"`), digits: 3, want: `"say \"hi\""`},
		{name: "StringBackslash", value: tree.String(`C:\tex`), digits: 3, want: `"C:\\tex"`},
		{name: "Enum", value: tree.Enum("MULTIPLY"), digits: 3, want: "©MULTIPLY©"},
		{name: "Vector", value: tree.Vector{1, 2.5, -3}, digits: 3, want: "<1, 2.5, -3>"},
		{name: "VectorRounded", value: tree.Vector{0.333333, 0.666666}, digits: 3, want: "<0.333, 0.667>"},
		{name: "Color", value: tree.Color{0.1, 0.2, 0.3, 1}, digits: 3, want: "<0.1, 0.2, 0.3, 1>"},
		{name: "CurvePoint", value: tree.CurvePoint{X: 0.25, Y: 0.75, Handle: tree.HandleAuto}, digits: 3, want: "<0.25, 0.75, AUTO>"},
		{name: "CurvePointRounded", value: tree.CurvePoint{X: 0.126, Y: -1, Handle: "VECTOR"}, digits: 2, want: "<0.13, -1, VECTOR>"},
		{name: "DatablockMaterial", value: tree.Datablock{Kind: tree.DatablockMaterial, Name: "Steel"}, digits: 3, want: `"❆Steel❆"`},
		{name: "DatablockImage", value: tree.Datablock{Kind: tree.DatablockImage, Name: "noise.png"}, digits: 3, want: `"✷noise.png✷"`},
		{name: "DatablockFallback", value: tree.Datablock{Kind: tree.DatablockNodeTree, Name: "Scatter"}, digits: 3, want: `"❓Scatter❓"`},
		{name: "Nil", value: nil, digits: 3, want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeValue(tt.value, tt.digits); got != tt.want {
				t.Errorf("encodeValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    tree.Value
		wantErr bool
	}{
		{name: "Float", input: "0.5", want: tree.Float(0.5)},
		{name: "FloatNegative", input: "-0.25", want: tree.Float(-0.25)},
		{name: "Int", input: "7", want: tree.Int(7)},
		{name: "IntNegative", input: "-3", want: tree.Int(-3)},
		{name: "Padded", input: "  0.5  ", want: tree.Float(0.5)},
		{name: "BoolTrue", input: "true", want: tree.Bool(true)},
		{name: "BoolFalse", input: "false", want: tree.Bool(false)},
		{name: "String", input: `"Rocks"`, want: tree.String("Rocks")},
		{name: "StringEscaped", input: `"say \"hi\""`, want: tree.String(`say "hi"`)},
		{name: "QuotedNumberStaysString", input: `"0.5"`, want: tree.String("0.5")},
		{name: "DoubledLetterIsString", input: `"xx"`, want: tree.String("xx")},
		{name: "Enum", input: "©MULTIPLY©", want: tree.Enum("MULTIPLY")},
		{name: "LegacyQuotedEnum", input: `"©MULTIPLY©"`, want: tree.Enum("MULTIPLY")},
		{name: "Vector", input: "<1, 2.5, -3>", want: tree.Vector{1, 2.5, -3}},
		{name: "VectorTightSpacing", input: "<1,2>", want: tree.Vector{1, 2}},
		{name: "ColorDecodesAsVector", input: "<0.1, 0.2, 0.3, 1>", want: tree.Vector{0.1, 0.2, 0.3, 1}},
		{name: "CurvePoint", input: "<0, 0.25, AUTO>", want: tree.CurvePoint{X: 0, Y: 0.25, Handle: tree.HandleAuto}},
		{name: "CurvePointVector", input: "<1, 1, VECTOR>", want: tree.CurvePoint{X: 1, Y: 1, Handle: "VECTOR"}},
		{name: "DatablockMaterial", input: `"❆Steel❆"`, want: tree.Datablock{Kind: tree.DatablockMaterial, Name: "Steel"}},
		{name: "DatablockObject", input: `"⊞Rock⊞"`, want: tree.Datablock{Kind: tree.DatablockObject, Name: "Rock"}},
		{name: "DatablockUnknown", input: `"❓Scatter❓"`, want: tree.Datablock{Kind: tree.DatablockUnknown, Name: "Scatter"}},
		{name: "Empty", input: "", wantErr: true},
		{name: "BareWord", input: "LINEAR", wantErr: true},
		{name: "EmptyEnum", input: "©©", wantErr: true},
		{name: "EmptyLiteral", input: "<>", wantErr: true},
		{name: "MixedLiteral", input: "<1, banana>", wantErr: true},
		{name: "BadHandle", input: `<0, 1, "x">`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("decodeValue(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeValue(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeValue(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

// Values with a single canonical text form survive an encode/decode cycle
// unchanged. Integral floats and colors are the documented exceptions: "2"
// reads back as an Int and "<r, g, b, a>" as a Vector until a catalog
// coerces them.
func TestValueRoundTrip(t *testing.T) {
	values := []tree.Value{
		tree.Float(0.25),
		tree.Int(42),
		tree.Bool(true),
		tree.String(`rock "A" \ final`),
		tree.Enum("BEZIER"),
		tree.Vector{1, 2.5, -3},
		tree.CurvePoint{X: 0.25, Y: 0.75, Handle: tree.HandleAuto},
		tree.Datablock{Kind: tree.DatablockCollection, Name: "Props"},
	}

	for _, v := range values {
		text := encodeValue(v, 3)
		got, err := decodeValue(text)
		if err != nil {
			t.Fatalf("decodeValue(%q): %v", text, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Errorf("round trip of %#v via %q = %#v", v, text, got)
		}
	}
}
