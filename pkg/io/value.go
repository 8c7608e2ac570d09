package io

import (
	"encoding/json"
	"fmt"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// value is the tagged JSON form of a [tree.Value]: a kind discriminator
// plus a kind-shaped payload.
type value struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

const (
	kindFloat      = "float"
	kindInt        = "int"
	kindBool       = "bool"
	kindString     = "string"
	kindEnum       = "enum"
	kindVector     = "vector"
	kindColor      = "color"
	kindCurvePoint = "curve_point"
	kindDatablock  = "datablock"
)

type curvePointData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Handle string  `json:"handle"`
}

type datablockData struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func encodeValue(v tree.Value) (value, error) {
	var (
		kind string
		data any
	)
	switch x := v.(type) {
	case tree.Float:
		kind, data = kindFloat, float64(x)
	case tree.Int:
		kind, data = kindInt, int64(x)
	case tree.Bool:
		kind, data = kindBool, bool(x)
	case tree.String:
		kind, data = kindString, string(x)
	case tree.Enum:
		kind, data = kindEnum, string(x)
	case tree.Vector:
		kind, data = kindVector, []float64(x)
	case tree.Color:
		kind, data = kindColor, x[:]
	case tree.CurvePoint:
		kind, data = kindCurvePoint, curvePointData{X: x.X, Y: x.Y, Handle: x.Handle}
	case tree.Datablock:
		kind, data = kindDatablock, datablockData{Kind: string(x.Kind), Name: x.Name}
	default:
		return value{}, fmt.Errorf("unsupported value type %T", v)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return value{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return value{Kind: kind, Data: raw}, nil
}

func (v value) decode() (tree.Value, error) {
	switch v.Kind {
	case kindFloat:
		var x float64
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Float(x), nil
	case kindInt:
		var x int64
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Int(x), nil
	case kindBool:
		var x bool
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Bool(x), nil
	case kindString:
		var x string
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.String(x), nil
	case kindEnum:
		var x string
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Enum(x), nil
	case kindVector:
		var x []float64
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Vector(x), nil
	case kindColor:
		var x []float64
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		if len(x) != 4 {
			return nil, fmt.Errorf("color needs 4 components, got %d", len(x))
		}
		return tree.Color{x[0], x[1], x[2], x[3]}, nil
	case kindCurvePoint:
		var x curvePointData
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.CurvePoint{X: x.X, Y: x.Y, Handle: x.Handle}, nil
	case kindDatablock:
		var x datablockData
		if err := json.Unmarshal(v.Data, &x); err != nil {
			return nil, err
		}
		return tree.Datablock{Kind: tree.DatablockKind(x.Kind), Name: x.Name}, nil
	}
	return nil, fmt.Errorf("unknown value kind %q", v.Kind)
}
