// Package catalog carries the node-kind vocabulary for each tree type:
// which node types exist, their socket layouts and defaults, which
// property a Create variant token sets, and the socket interface
// table. Replay consults it to instantiate nodes and coerce parsed
// values; host-specific node behavior stays out of scope.
package catalog

import (
	"math"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Socket type tags, as they appear in socket tables and interface
// declarations.
const (
	TagValue      = "VALUE"
	TagFactor     = "FACTOR"
	TagInt        = "INT"
	TagBool       = "BOOLEAN"
	TagVector     = "VECTOR"
	TagColor      = "RGBA"
	TagString     = "STRING"
	TagShader     = "SHADER"
	TagBSDF       = "BSDF"
	TagGeometry   = "GEOMETRY"
	TagMaterial   = "MATERIAL"
	TagObject     = "OBJECT"
	TagCollection = "COLLECTION"
	TagTexture    = "TEXTURE"
	TagImage      = "IMAGE"
)

// PropKind classifies a property or socket default for value coercion.
type PropKind int

const (
	KindFloat PropKind = iota
	KindInt
	KindBool
	KindString
	KindEnum
	KindVector
	KindColor
	KindDatablock
)

// SocketSpec is one socket template on a node type. A nil Default
// marks a connection-only socket with no editable value.
type SocketSpec struct {
	Name    string
	Type    string
	Default tree.Value
}

// PropSpec is one type-specific property, in emission order.
type PropSpec struct {
	Name string
	Kind PropKind
}

// TypeSpec describes one node type.
type TypeSpec struct {
	TypeID string

	// VariantAttr names the property a Create statement's variant token
	// sets, e.g. "operation" on math nodes. Empty when the type has no
	// variant. Group types ignore it; their variant is the group name.
	VariantAttr string

	Inputs  []SocketSpec
	Outputs []SocketSpec
	Props   []PropSpec

	// IsGroup marks the tree type's group instance node. Sockets come
	// from the referenced group's interface, not from this spec.
	IsGroup bool

	// CurveProps allows indexed curve mapping property paths such as
	// "mapping.curve[0].points[2]", whose names cannot be enumerated.
	CurveProps bool
}

// Catalog is the node vocabulary of one tree type. Use [For] to obtain
// a catalog preloaded with the built-in types; Register adds or
// replaces entries, so callers can extend the vocabulary.
type Catalog struct {
	treeType tree.TreeType
	types    map[string]*TypeSpec
	order    []string
	sockets  map[string]string
	groupID  string
}

// For returns a fresh catalog for the given tree type, preloaded with
// the built-in vocabulary. Unknown tree types get the shared special
// nodes (frame, reroute, group boundaries) only.
func For(t tree.TreeType) *Catalog {
	c := &Catalog{
		treeType: t,
		types:    make(map[string]*TypeSpec),
		sockets:  make(map[string]string),
	}
	for _, spec := range specialTypes {
		c.Register(spec)
	}
	var vocab []TypeSpec
	switch t {
	case tree.TreeMaterial:
		vocab = shaderTypes
		c.sockets = materialSocketTypes
		c.groupID = "ShaderNodeGroup"
	case tree.TreeGeometry:
		vocab = geometryTypes
		c.sockets = geometrySocketTypes
		c.groupID = "GeometryNodeGroup"
	case tree.TreeCompositor:
		vocab = compositorTypes
		c.sockets = compositorSocketTypes
		c.groupID = "CompositorNodeGroup"
	}
	for _, spec := range vocab {
		c.Register(spec)
	}
	return c
}

// TreeType returns the tree type this catalog describes.
func (c *Catalog) TreeType() tree.TreeType { return c.treeType }

// GroupTypeID returns the type ID of this tree type's group instance
// node, or "" for tree types without one.
func (c *Catalog) GroupTypeID() string { return c.groupID }

// Register adds a type spec, replacing any existing entry with the
// same TypeID.
func (c *Catalog) Register(spec TypeSpec) {
	if _, exists := c.types[spec.TypeID]; !exists {
		c.order = append(c.order, spec.TypeID)
	}
	s := spec
	c.types[spec.TypeID] = &s
}

// Lookup returns the spec for a type ID and true, or nil and false
// when the vocabulary does not know the type.
func (c *Catalog) Lookup(typeID string) (*TypeSpec, bool) {
	s, ok := c.types[typeID]
	return s, ok
}

// TypeIDs returns all registered type IDs in registration order.
func (c *Catalog) TypeIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SocketTag maps a socket interface type such as "NodeSocketFloat" to
// its tag for this tree type. Unknown interface types return "" and
// false.
func (c *Catalog) SocketTag(interfaceType string) (string, bool) {
	tag, ok := c.sockets[interfaceType]
	return tag, ok
}

// Instantiate builds a node of the given type with its sockets and
// defaults populated. Group types get no sockets; those come from the
// referenced group's interface. Returns nil and false for unknown
// types.
func (c *Catalog) Instantiate(typeID string) (*tree.Node, bool) {
	spec, ok := c.types[typeID]
	if !ok {
		return nil, false
	}
	n := &tree.Node{TypeID: typeID}
	if spec.IsGroup {
		return n, true
	}
	for _, s := range spec.Inputs {
		n.Inputs = append(n.Inputs, &tree.Socket{Name: s.Name, Type: s.Type, Default: cloneValue(s.Default)})
	}
	for _, s := range spec.Outputs {
		n.Outputs = append(n.Outputs, &tree.Socket{Name: s.Name, Type: s.Type})
	}
	return n, true
}

// PropKindFor returns the declared kind of a type-specific property,
// or false when the spec does not list it.
func (s *TypeSpec) PropKindFor(name string) (PropKind, bool) {
	for _, p := range s.Props {
		if p.Name == name {
			return p.Kind, true
		}
	}
	return 0, false
}

// KindForSocketTag maps a socket type tag to the value kind its
// defaults carry. Connection-only tags (SHADER, BSDF, GEOMETRY) have
// no value kind and return false.
func KindForSocketTag(tag string) (PropKind, bool) {
	switch tag {
	case TagValue, TagFactor:
		return KindFloat, true
	case TagInt:
		return KindInt, true
	case TagBool:
		return KindBool, true
	case TagVector:
		return KindVector, true
	case TagColor:
		return KindColor, true
	case TagString:
		return KindString, true
	case TagObject, TagMaterial, TagCollection, TagTexture, TagImage:
		return KindDatablock, true
	}
	return 0, false
}

// Coerce converts a parsed value to the given kind where a lossless
// conversion exists: ints widen to floats, integral floats narrow to
// ints, quoted enum tokens become enums, and 3- or 4-component vectors
// become colors. Returns nil and false when no conversion applies.
func Coerce(v tree.Value, kind PropKind) (tree.Value, bool) {
	switch kind {
	case KindFloat:
		switch x := v.(type) {
		case tree.Float:
			return x, true
		case tree.Int:
			return tree.Float(x), true
		}
	case KindInt:
		switch x := v.(type) {
		case tree.Int:
			return x, true
		case tree.Float:
			if float64(x) == math.Trunc(float64(x)) {
				return tree.Int(x), true
			}
		}
	case KindBool:
		if x, ok := v.(tree.Bool); ok {
			return x, true
		}
	case KindString:
		if x, ok := v.(tree.String); ok {
			return x, true
		}
	case KindEnum:
		switch x := v.(type) {
		case tree.Enum:
			return x, true
		case tree.String:
			// Older exports quoted enum tokens.
			return tree.Enum(x), true
		}
	case KindVector:
		if x, ok := v.(tree.Vector); ok {
			return x, true
		}
	case KindColor:
		switch x := v.(type) {
		case tree.Color:
			return x, true
		case tree.Vector:
			switch len(x) {
			case 3:
				return tree.Color{x[0], x[1], x[2], 1}, true
			case 4:
				return tree.Color{x[0], x[1], x[2], x[3]}, true
			}
		}
	case KindDatablock:
		if x, ok := v.(tree.Datablock); ok {
			return x, true
		}
	}
	return nil, false
}

func cloneValue(v tree.Value) tree.Value {
	if vec, ok := v.(tree.Vector); ok {
		out := make(tree.Vector, len(vec))
		copy(out, vec)
		return out
	}
	return v
}

// specialTypes are shared by every tree type. Frames and reroutes are
// layout nodes; group boundaries get their sockets from the enclosing
// group's interface.
var specialTypes = []TypeSpec{
	{TypeID: tree.TypeFrame},
	{
		TypeID:  tree.TypeReroute,
		Inputs:  []SocketSpec{{Name: "Input", Type: TagColor}},
		Outputs: []SocketSpec{{Name: "Output", Type: TagColor}},
	},
	{TypeID: tree.TypeGroupInput},
	{TypeID: tree.TypeGroupOutput},
}

// Socket interface tables, one per tree type.
var geometrySocketTypes = map[string]string{
	"NodeSocketGeometry":    TagGeometry,
	"NodeSocketFloat":       TagValue,
	"NodeSocketFloatFactor": TagFactor,
	"NodeSocketInt":         TagInt,
	"NodeSocketBool":        TagBool,
	"NodeSocketVector":      TagVector,
	"NodeSocketColor":       TagColor,
	"NodeSocketString":      TagString,
	"NodeSocketMaterial":    TagMaterial,
	"NodeSocketObject":      TagObject,
	"NodeSocketCollection":  TagCollection,
	"NodeSocketTexture":     TagTexture,
	"NodeSocketImage":       TagImage,
}

var materialSocketTypes = map[string]string{
	"NodeSocketShader":      TagShader,
	"NodeSocketBSDF":        TagBSDF,
	"NodeSocketFloat":       TagValue,
	"NodeSocketFloatFactor": TagFactor,
	"NodeSocketColor":       TagColor,
	"NodeSocketVector":      TagVector,
	"NodeSocketString":      TagString,
	"NodeSocketBool":        TagBool,
}

var compositorSocketTypes = map[string]string{
	"NodeSocketColor":       TagColor,
	"NodeSocketFloat":       TagValue,
	"NodeSocketFloatFactor": TagFactor,
	"NodeSocketInt":         TagInt,
	"NodeSocketBool":        TagBool,
	"NodeSocketVector":      TagVector,
	"NodeSocketString":      TagString,
}
