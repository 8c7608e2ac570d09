package catalog

import "github.com/KDB-USJP/BNDL-Lite/pkg/tree"

// geometryTypes is the built-in GEOMETRY vocabulary. Function nodes
// (math, mix) reuse their shader type IDs, matching the host.
var geometryTypes = []TypeSpec{
	{TypeID: "GeometryNodeGroup", IsGroup: true},
	{
		TypeID: "GeometryNodeSetPosition",
		Inputs: []SocketSpec{
			{Name: "Geometry", Type: TagGeometry},
			{Name: "Selection", Type: TagBool, Default: tree.Bool(true)},
			{Name: "Position", Type: TagVector},
			{Name: "Offset", Type: TagVector, Default: tree.Vector{0, 0, 0}},
		},
		Outputs: []SocketSpec{{Name: "Geometry", Type: TagGeometry}},
	},
	{
		TypeID: "GeometryNodeTransform",
		Inputs: []SocketSpec{
			{Name: "Geometry", Type: TagGeometry},
			{Name: "Translation", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Rotation", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Scale", Type: TagVector, Default: tree.Vector{1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Geometry", Type: TagGeometry}},
	},
	{
		TypeID: "GeometryNodeMeshCube",
		Inputs: []SocketSpec{
			{Name: "Size", Type: TagVector, Default: tree.Vector{1, 1, 1}},
			{Name: "Vertices X", Type: TagInt, Default: tree.Int(2)},
			{Name: "Vertices Y", Type: TagInt, Default: tree.Int(2)},
			{Name: "Vertices Z", Type: TagInt, Default: tree.Int(2)},
		},
		Outputs: []SocketSpec{{Name: "Mesh", Type: TagGeometry}},
	},
	{
		TypeID:  "GeometryNodeJoinGeometry",
		Inputs:  []SocketSpec{{Name: "Geometry", Type: TagGeometry}},
		Outputs: []SocketSpec{{Name: "Geometry", Type: TagGeometry}},
	},
	{
		TypeID: "GeometryNodeObjectInfo",
		Inputs: []SocketSpec{
			{Name: "Object", Type: TagObject},
			{Name: "As Instance", Type: TagBool, Default: tree.Bool(false)},
		},
		Outputs: []SocketSpec{
			{Name: "Location", Type: TagVector},
			{Name: "Rotation", Type: TagVector},
			{Name: "Scale", Type: TagVector},
			{Name: "Geometry", Type: TagGeometry},
		},
		Props: []PropSpec{{Name: "transform_space", Kind: KindEnum}},
	},
	{
		TypeID: "GeometryNodeInstanceOnPoints",
		Inputs: []SocketSpec{
			{Name: "Points", Type: TagGeometry},
			{Name: "Selection", Type: TagBool, Default: tree.Bool(true)},
			{Name: "Instance", Type: TagGeometry},
			{Name: "Pick Instance", Type: TagBool, Default: tree.Bool(false)},
			{Name: "Instance Index", Type: TagInt, Default: tree.Int(0)},
			{Name: "Rotation", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Scale", Type: TagVector, Default: tree.Vector{1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Instances", Type: TagGeometry}},
	},
	{
		TypeID:      "GeometryNodeCaptureAttribute",
		VariantAttr: "data_type",
		Inputs: []SocketSpec{
			{Name: "Geometry", Type: TagGeometry},
			{Name: "Value", Type: TagVector},
		},
		Outputs: []SocketSpec{
			{Name: "Geometry", Type: TagGeometry},
			{Name: "Attribute", Type: TagVector},
		},
		Props: []PropSpec{
			{Name: "data_type", Kind: KindEnum},
			{Name: "domain", Kind: KindEnum},
		},
	},
	{
		TypeID:  "GeometryNodeInputPosition",
		Outputs: []SocketSpec{{Name: "Position", Type: TagVector}},
	},
	{
		TypeID:  "GeometryNodeInputNormal",
		Outputs: []SocketSpec{{Name: "Normal", Type: TagVector}},
	},
	{
		TypeID:      "ShaderNodeMath",
		VariantAttr: "operation",
		Inputs: []SocketSpec{
			{Name: "Value", Type: TagValue, Default: tree.Float(0.5)},
			{Name: "Value", Type: TagValue, Default: tree.Float(0.5)},
			{Name: "Value", Type: TagValue, Default: tree.Float(0.5)},
		},
		Outputs: []SocketSpec{{Name: "Value", Type: TagValue}},
		Props:   []PropSpec{{Name: "use_clamp", Kind: KindBool}},
	},
	{
		TypeID:      "ShaderNodeVectorMath",
		VariantAttr: "operation",
		Inputs: []SocketSpec{
			{Name: "Vector", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Vector", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Vector", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Scale", Type: TagValue, Default: tree.Float(1)},
		},
		Outputs: []SocketSpec{
			{Name: "Vector", Type: TagVector},
			{Name: "Value", Type: TagValue},
		},
	},
}
