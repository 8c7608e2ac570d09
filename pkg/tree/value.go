package tree

import "math"

// Value is one serializable property or socket default. The concrete
// types are Float, Int, Bool, String, Enum, Vector, Color, CurvePoint
// and Datablock; a nil Value means "unset".
type Value interface {
	isValue()
}

// Float is a scalar number. Serialization rounds it to the export's
// digit budget.
type Float float64

// Int is an integer setting such as a repeat count.
type Int int64

// Bool is a toggle.
type Bool bool

// String is free-form text, quoted on the wire.
type String string

// Enum is a bare token from a fixed menu, e.g. "MULTIPLY". It is kept
// distinct from String so serialization can mark it unquoted.
type Enum string

// Vector holds 2 to 4 float components.
type Vector []float64

// Color is an RGBA quadruple.
type Color [4]float64

// HandleAuto is the default curve point handle type.
const HandleAuto = "AUTO"

// CurvePoint is one control point of a curve mapping widget.
type CurvePoint struct {
	X, Y   float64
	Handle string // handle type token, usually HandleAuto
}

// Datablock references external data by name, e.g. an image or object.
// The reference carries no payload; resolution happens at replay time
// under an asset policy.
type Datablock struct {
	Kind DatablockKind
	Name string
}

func (Float) isValue()      {}
func (Int) isValue()        {}
func (Bool) isValue()       {}
func (String) isValue()     {}
func (Enum) isValue()       {}
func (Vector) isValue()     {}
func (Color) isValue()      {}
func (CurvePoint) isValue() {}
func (Datablock) isValue()  {}

// DatablockKind names the kind of external data a Datablock points at.
// Kinds without a dedicated wire sentinel serialize with the fallback
// marker and parse back as DatablockUnknown.
type DatablockKind string

const (
	DatablockMaterial   DatablockKind = "Material"
	DatablockObject     DatablockKind = "Object"
	DatablockCollection DatablockKind = "Collection"
	DatablockImage      DatablockKind = "Image"
	DatablockMesh       DatablockKind = "Mesh"
	DatablockCurve      DatablockKind = "Curve"
	DatablockText       DatablockKind = "Text"
	DatablockArmature   DatablockKind = "Armature"
	DatablockCamera     DatablockKind = "Camera"
	DatablockLight      DatablockKind = "Light"
	DatablockNodeTree   DatablockKind = "NodeTree"
	DatablockUnknown    DatablockKind = "Unknown"
)

// Epsilon is the tolerance Equal applies to float comparisons.
const Epsilon = 1e-9

// Equal reports whether two values have the same kind and contents,
// comparing float components within Epsilon. Enum and String never
// compare equal to each other even when the text matches.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case Float:
		bv, ok := b.(Float)
		return ok && near(float64(av), float64(bv))
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Enum:
		bv, ok := b.(Enum)
		return ok && av == bv
	case Vector:
		bv, ok := b.(Vector)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !near(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Color:
		bv, ok := b.(Color)
		if !ok {
			return false
		}
		for i := range av {
			if !near(av[i], bv[i]) {
				return false
			}
		}
		return true
	case CurvePoint:
		bv, ok := b.(CurvePoint)
		return ok && near(av.X, bv.X) && near(av.Y, bv.Y) && av.Handle == bv.Handle
	case Datablock:
		bv, ok := b.(Datablock)
		return ok && av == bv
	}
	return false
}

func near(a, b float64) bool { return math.Abs(a-b) <= Epsilon }
