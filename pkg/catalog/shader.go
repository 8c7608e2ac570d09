package catalog

import "github.com/KDB-USJP/BNDL-Lite/pkg/tree"

// shaderTypes is the built-in MATERIAL vocabulary. Socket layouts
// follow the host's shader nodes; defaults are the stock values new
// nodes carry.
var shaderTypes = []TypeSpec{
	{TypeID: "ShaderNodeGroup", IsGroup: true},
	{
		TypeID: "ShaderNodeOutputMaterial",
		Inputs: []SocketSpec{
			{Name: "Surface", Type: TagShader},
			{Name: "Volume", Type: TagShader},
			{Name: "Displacement", Type: TagVector, Default: tree.Vector{0, 0, 0}},
		},
	},
	{
		TypeID: "ShaderNodeBsdfPrincipled",
		Inputs: []SocketSpec{
			{Name: "Base Color", Type: TagColor, Default: tree.Color{0.8, 0.8, 0.8, 1}},
			{Name: "Metallic", Type: TagFactor, Default: tree.Float(0)},
			{Name: "Roughness", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "IOR", Type: TagValue, Default: tree.Float(1.45)},
			{Name: "Alpha", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Normal", Type: TagVector},
			{Name: "Emission Color", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Emission Strength", Type: TagValue, Default: tree.Float(0)},
		},
		Outputs: []SocketSpec{{Name: "BSDF", Type: TagBSDF}},
	},
	{
		TypeID: "ShaderNodeBsdfDiffuse",
		Inputs: []SocketSpec{
			{Name: "Color", Type: TagColor, Default: tree.Color{0.8, 0.8, 0.8, 1}},
			{Name: "Roughness", Type: TagFactor, Default: tree.Float(0)},
			{Name: "Normal", Type: TagVector},
		},
		Outputs: []SocketSpec{{Name: "BSDF", Type: TagBSDF}},
	},
	{
		TypeID: "ShaderNodeEmission",
		Inputs: []SocketSpec{
			{Name: "Color", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Strength", Type: TagValue, Default: tree.Float(1)},
		},
		Outputs: []SocketSpec{{Name: "Emission", Type: TagShader}},
	},
	{
		TypeID: "ShaderNodeMixShader",
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "Shader", Type: TagShader},
			{Name: "Shader", Type: TagShader},
		},
		Outputs: []SocketSpec{{Name: "Shader", Type: TagShader}},
	},
	{
		TypeID: "ShaderNodeAddShader",
		Inputs: []SocketSpec{
			{Name: "Shader", Type: TagShader},
			{Name: "Shader", Type: TagShader},
		},
		Outputs: []SocketSpec{{Name: "Shader", Type: TagShader}},
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
	{
		TypeID:      "ShaderNodeMixRGB",
		VariantAttr: "blend_type",
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "Color1", Type: TagColor, Default: tree.Color{0.5, 0.5, 0.5, 1}},
			{Name: "Color2", Type: TagColor, Default: tree.Color{0.5, 0.5, 0.5, 1}},
		},
		Outputs: []SocketSpec{{Name: "Color", Type: TagColor}},
		Props: []PropSpec{
			{Name: "blend_type", Kind: KindEnum},
			{Name: "use_clamp", Kind: KindBool},
		},
	},
	{
		TypeID:      "ShaderNodeMix",
		VariantAttr: "data_type",
		Inputs: []SocketSpec{
			{Name: "Factor", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "A", Type: TagColor, Default: tree.Color{0.5, 0.5, 0.5, 1}},
			{Name: "B", Type: TagColor, Default: tree.Color{0.5, 0.5, 0.5, 1}},
		},
		Outputs: []SocketSpec{{Name: "Result", Type: TagColor}},
		Props: []PropSpec{
			{Name: "data_type", Kind: KindEnum},
			{Name: "blend_type", Kind: KindEnum},
			{Name: "clamp_factor", Kind: KindBool},
			{Name: "clamp_result", Kind: KindBool},
		},
	},
	{
		TypeID:  "ShaderNodeTexImage",
		Inputs:  []SocketSpec{{Name: "Vector", Type: TagVector}},
		Outputs: []SocketSpec{{Name: "Color", Type: TagColor}, {Name: "Alpha", Type: TagValue}},
		Props: []PropSpec{
			{Name: "image", Kind: KindDatablock},
			{Name: "interpolation", Kind: KindEnum},
			{Name: "projection", Kind: KindEnum},
			{Name: "extension", Kind: KindEnum},
		},
	},
	{
		TypeID: "ShaderNodeTexNoise",
		Inputs: []SocketSpec{
			{Name: "Vector", Type: TagVector},
			{Name: "Scale", Type: TagValue, Default: tree.Float(5)},
			{Name: "Detail", Type: TagValue, Default: tree.Float(2)},
			{Name: "Roughness", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "Distortion", Type: TagValue, Default: tree.Float(0)},
		},
		Outputs: []SocketSpec{{Name: "Fac", Type: TagValue}, {Name: "Color", Type: TagColor}},
		Props:   []PropSpec{{Name: "noise_dimensions", Kind: KindEnum}},
	},
	{
		TypeID: "ShaderNodeTexCoord",
		Outputs: []SocketSpec{
			{Name: "Generated", Type: TagVector},
			{Name: "Normal", Type: TagVector},
			{Name: "UV", Type: TagVector},
			{Name: "Object", Type: TagVector},
			{Name: "Camera", Type: TagVector},
			{Name: "Window", Type: TagVector},
			{Name: "Reflection", Type: TagVector},
		},
	},
	{
		TypeID:      "ShaderNodeMapping",
		VariantAttr: "vector_type",
		Inputs: []SocketSpec{
			{Name: "Vector", Type: TagVector},
			{Name: "Location", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Rotation", Type: TagVector, Default: tree.Vector{0, 0, 0}},
			{Name: "Scale", Type: TagVector, Default: tree.Vector{1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Vector", Type: TagVector}},
		Props:   []PropSpec{{Name: "vector_type", Kind: KindEnum}},
	},
	{
		TypeID:     "ShaderNodeRGBCurve",
		CurveProps: true,
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Color", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Color", Type: TagColor}},
	},
	{
		TypeID:  "ShaderNodeValue",
		Outputs: []SocketSpec{{Name: "Value", Type: TagValue}},
	},
	{
		TypeID:  "ShaderNodeRGB",
		Outputs: []SocketSpec{{Name: "Color", Type: TagColor}},
	},
}
