package tree

import "testing"

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "FloatSame", a: Float(1.5), b: Float(1.5), want: true},
		{name: "FloatNear", a: Float(1.0), b: Float(1.0 + 1e-12), want: true},
		{name: "FloatDiffer", a: Float(1.0), b: Float(1.001), want: false},
		{name: "FloatVsInt", a: Float(1), b: Int(1), want: false},
		{name: "IntSame", a: Int(42), b: Int(42), want: true},
		{name: "BoolSame", a: Bool(true), b: Bool(true), want: true},
		{name: "BoolDiffer", a: Bool(true), b: Bool(false), want: false},
		{name: "StringSame", a: String("wood"), b: String("wood"), want: true},
		{name: "StringVsEnum", a: String("MULTIPLY"), b: Enum("MULTIPLY"), want: false},
		{name: "EnumSame", a: Enum("MULTIPLY"), b: Enum("MULTIPLY"), want: true},
		{name: "VectorSame", a: Vector{1, 2, 3}, b: Vector{1, 2, 3}, want: true},
		{name: "VectorNear", a: Vector{1, 2}, b: Vector{1 + 1e-12, 2}, want: true},
		{name: "VectorLenDiffer", a: Vector{1, 2, 3}, b: Vector{1, 2}, want: false},
		{name: "VectorVsColor", a: Vector{1, 0, 0, 1}, b: Color{1, 0, 0, 1}, want: false},
		{name: "ColorSame", a: Color{0.8, 0.8, 0.8, 1}, b: Color{0.8, 0.8, 0.8, 1}, want: true},
		{name: "ColorDiffer", a: Color{0.8, 0.8, 0.8, 1}, b: Color{0.8, 0.8, 0.8, 0.5}, want: false},
		{
			name: "CurvePointSame",
			a:    CurvePoint{X: 0.5, Y: 0.25, Handle: HandleAuto},
			b:    CurvePoint{X: 0.5, Y: 0.25, Handle: HandleAuto},
			want: true,
		},
		{
			name: "CurvePointHandleDiffer",
			a:    CurvePoint{X: 0.5, Y: 0.25, Handle: HandleAuto},
			b:    CurvePoint{X: 0.5, Y: 0.25, Handle: "VECTOR"},
			want: false,
		},
		{
			name: "DatablockSame",
			a:    Datablock{Kind: DatablockImage, Name: "wood.png"},
			b:    Datablock{Kind: DatablockImage, Name: "wood.png"},
			want: true,
		},
		{
			name: "DatablockKindDiffer",
			a:    Datablock{Kind: DatablockImage, Name: "wood.png"},
			b:    Datablock{Kind: DatablockObject, Name: "wood.png"},
			want: false,
		},
		{name: "NilBoth", a: nil, b: nil, want: true},
		{name: "NilOne", a: nil, b: Float(0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
