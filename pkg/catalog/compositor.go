package catalog

import "github.com/KDB-USJP/BNDL-Lite/pkg/tree"

// compositorTypes is the built-in COMPOSITOR vocabulary.
var compositorTypes = []TypeSpec{
	{TypeID: "CompositorNodeGroup", IsGroup: true},
	{
		TypeID: "CompositorNodeRLayers",
		Outputs: []SocketSpec{
			{Name: "Image", Type: TagColor},
			{Name: "Alpha", Type: TagValue},
			{Name: "Depth", Type: TagValue},
		},
	},
	{
		TypeID: "CompositorNodeComposite",
		Inputs: []SocketSpec{
			{Name: "Image", Type: TagColor, Default: tree.Color{0, 0, 0, 1}},
			{Name: "Alpha", Type: TagValue, Default: tree.Float(1)},
		},
		Props: []PropSpec{{Name: "use_alpha", Kind: KindBool}},
	},
	{
		TypeID: "CompositorNodeViewer",
		Inputs: []SocketSpec{
			{Name: "Image", Type: TagColor, Default: tree.Color{0, 0, 0, 1}},
			{Name: "Alpha", Type: TagValue, Default: tree.Float(1)},
		},
	},
	{
		TypeID:      "CompositorNodeBlur",
		VariantAttr: "filter_type",
		Inputs: []SocketSpec{
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Size", Type: TagFactor, Default: tree.Float(1)},
		},
		Outputs: []SocketSpec{{Name: "Image", Type: TagColor}},
		Props: []PropSpec{
			{Name: "filter_type", Kind: KindEnum},
			{Name: "size_x", Kind: KindInt},
			{Name: "size_y", Kind: KindInt},
			{Name: "use_relative", Kind: KindBool},
		},
	},
	{
		TypeID:      "CompositorNodeMixRGB",
		VariantAttr: "blend_type",
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Image", Type: TagColor}},
		Props: []PropSpec{
			{Name: "blend_type", Kind: KindEnum},
			{Name: "use_alpha", Kind: KindBool},
			{Name: "use_clamp", Kind: KindBool},
		},
	},
	{
		TypeID: "CompositorNodeHueSat",
		Inputs: []SocketSpec{
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Hue", Type: TagFactor, Default: tree.Float(0.5)},
			{Name: "Saturation", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Value", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Fac", Type: TagFactor, Default: tree.Float(1)},
		},
		Outputs: []SocketSpec{{Name: "Image", Type: TagColor}},
	},
	{
		TypeID: "CompositorNodeInvert",
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Color", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Color", Type: TagColor}},
		Props: []PropSpec{
			{Name: "invert_rgb", Kind: KindBool},
			{Name: "invert_alpha", Kind: KindBool},
		},
	},
	{
		TypeID: "CompositorNodeAlphaOver",
		Inputs: []SocketSpec{
			{Name: "Fac", Type: TagFactor, Default: tree.Float(1)},
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
			{Name: "Image", Type: TagColor, Default: tree.Color{1, 1, 1, 1}},
		},
		Outputs: []SocketSpec{{Name: "Image", Type: TagColor}},
		Props: []PropSpec{
			{Name: "use_premultiply", Kind: KindBool},
			{Name: "premul", Kind: KindFloat},
		},
	},
}
