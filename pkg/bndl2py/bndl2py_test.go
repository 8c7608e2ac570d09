package bndl2py

import (
	"strings"
	"testing"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

func mustGenerate(t *testing.T, text string, opts Options) string {
	t.Helper()
	doc, err := bndl.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	script, err := Generate(doc, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return script
}

// wantInOrder checks that every fragment appears in the script, each
// one after the previous match.
func wantInOrder(t *testing.T, script string, wants []string) {
	t.Helper()
	pos := 0
	for _, w := range wants {
		i := strings.Index(script[pos:], w)
		if i < 0 {
			t.Fatalf("script missing %q after offset %d", w, pos)
		}
		pos += i + len(w)
	}
}

func TestGenerateMaterial(t *testing.T) {
	const doc = `# BNDL Export v1.4
Tree_Type: MATERIAL
# Node_Tree: Mat

START GROUP NAMED Mixer
Create  ShaderNodeMath  "Math#1"  "ADD"
Declare Inputs  [ Group Input ]  ~~ Fac:NodeSocketFloat
Declare Outputs  [ Group Output ]  ~~ Result:NodeSocketFloat
Set  [ Math#1 ]
    "location" to <10, 20>
    "Value[2]" to 0.5
Connect  [ Group Input#1 ]  ○  Fac  to  [ Math#1 ]  ⦿  Value[1]
Connect  [ Math#1 ]  ○  Value  to  [ Group Output#1 ]  ⦿  Result
END GROUP NAMED Mixer

Create  ShaderNodeGroup  "Group#1"  "Mixer"
Rename  [ Group #1 ] to ~ Mix ~
Create  ShaderNodeTexImage  "Image Texture#1"
Set  [ Group#1 ]
    "Fac" to 0.25
    "location" to <-100, 0>
Set  [ Image Texture#1 ]
    "image" to "✷noise✷"
    "mute" to true
Connect  [ Group#1 ]  ○  Result  to  [ Image Texture#1 ]  ⦿  Vector
`
	script := mustGenerate(t, doc, Options{})

	wantInOrder(t, script, []string{
		`# Replay script for the MATERIAL node tree "Mat".`,
		"import bpy",
		`ASSET_MODE = "proxy"`,
		`CREATE_AS_NEW = bool(globals().get("BNDL_CREATE_AS_NEW", False))`,
		`TARGET_OBJECTS = globals().get("BNDL_TARGET_OBJECTS") or []`,
		"def _in(node, name, nth=1):",
		"def _set_input(node, name, nth, value):",
		"def _image(name):",
		"def build_group_mixer():",
		`    existing = bpy.data.node_groups.get("Mixer")`,
		`    tree = bpy.data.node_groups.new("Mixer", "ShaderNodeTree")`,
		`    tree.interface.new_socket("Fac", in_out='INPUT', socket_type='NodeSocketFloat')`,
		`    tree.interface.new_socket("Result", in_out='OUTPUT', socket_type='NodeSocketFloat')`,
		`    n_in = tree.nodes.new("NodeGroupInput")`,
		`    n_out = tree.nodes.new("NodeGroupOutput")`,
		`    n_1 = tree.nodes.new("ShaderNodeMath")`,
		`    n_1.name = "Math"`,
		"    n_1.operation = 'ADD'",
		"    n_1.location = (10, 20)",
		`    _set_input(n_1, "Value", 2, 0.5)`,
		`    _link(tree, _out(n_in, "Fac"), _in(n_1, "Value"))`,
		`    _link(tree, _out(n_1, "Value"), _in(n_out, "Result"))`,
		"    return tree",
		"def build_tree(tree):",
		"    tree.nodes.clear()",
		`    n_1 = tree.nodes.new("ShaderNodeGroup")`,
		`    n_1.name = "Group"`,
		"    n_1.node_tree = build_group_mixer()",
		`    n_1.label = "Mix"`,
		`    n_2 = tree.nodes.new("ShaderNodeTexImage")`,
		`    _set_input(n_1, "Fac", 1, 0.25)`,
		"    n_1.location = (-100, 0)",
		`    n_2.image = _image("noise")`,
		"    n_2.mute = True",
		`    _link(tree, _out(n_1, "Result"), _in(n_2, "Vector"))`,
		"def main():",
		`        mat = bpy.data.materials.get("Mat")`,
		`        mat = bpy.data.materials.new("Mat")`,
		"    mat.use_nodes = True",
		"    build_tree(mat.node_tree)",
		"    for obj in TARGET_OBJECTS:",
		`if __name__ in ("__main__", "__bndl_replay__"):`,
		"    main()",
	})

	if strings.Contains(script, "def _material(") {
		t.Errorf("unused material helper emitted")
	}
	if strings.Contains(script, "def _curve_point(") {
		t.Errorf("unused curve helper emitted")
	}
	if strings.Contains(script, "# line ") {
		t.Errorf("unexpected skip comments in script")
	}
}

func TestGenerateGeometry(t *testing.T) {
	const doc = `Create  GeometryNodeObjectInfo  "Object Info#1"
Set  [ Object Info#1 ]
    "Object" to "⊞Camera Rig⊞"
Connect  [ Group Input#1 ]  ○  Geometry  to  [ Group Output#1 ]  ⦿  Geometry
`
	script := mustGenerate(t, doc, Options{AssumeLegacyGeometry: true})

	wantInOrder(t, script, []string{
		`# Replay script for the GEOMETRY node tree "Geometry Nodes".`,
		"# No Tree_Type header, assuming GEOMETRY (legacy export).",
		"def _object(name):",
		"def build_tree(tree):",
		`    n_in = tree.nodes.new("NodeGroupInput")`,
		`    n_out = tree.nodes.new("NodeGroupOutput")`,
		`    n_1 = tree.nodes.new("GeometryNodeObjectInfo")`,
		`    _set_input(n_1, "Object", 1, _object("Camera Rig"))`,
		`    _link(tree, _out(n_in, "Geometry"), _in(n_out, "Geometry"))`,
		"def main():",
		`        tree = bpy.data.node_groups.new("Geometry Nodes", "GeometryNodeTree")`,
		`        tree.interface.new_socket("Geometry", in_out='INPUT', socket_type='NodeSocketGeometry')`,
		`        tree.interface.new_socket("Geometry", in_out='OUTPUT', socket_type='NodeSocketGeometry')`,
		"    for obj in TARGET_OBJECTS:",
		`        mod = obj.modifiers.new("Geometry Nodes", "NODES")`,
		"        mod.node_group = tree",
	})
}

func TestGenerateCompositor(t *testing.T) {
	const doc = `Tree_Type: COMPOSITOR

Create  CompositorNodeBlur  "Blur#1"  "FAST_GAUSS"
Set  [ Blur#1 ]
    "size_x" to 4
    "use_relative" to true
`
	script := mustGenerate(t, doc, Options{})

	wantInOrder(t, script, []string{
		`    n_1 = tree.nodes.new("CompositorNodeBlur")`,
		"    n_1.filter_type = 'FAST_GAUSS'",
		"    n_1.size_x = 4",
		"    n_1.use_relative = True",
		"def main():",
		"    scene = bpy.context.scene",
		"    scene.use_nodes = True",
		"    build_tree(scene.node_tree)",
	})
}

func TestGenerateCurvePoints(t *testing.T) {
	const doc = `Tree_Type: MATERIAL

Create  ShaderNodeRGBCurve  "RGB Curves#1"
Set  [ RGB Curves#1 ]
    "mapping.curves[3].points[2]" to <0.25, 0.75, AUTO>
    "mapping.curves[0].points[9]" to <1, 1, VECTOR>
    "mapping.bogus[0]" to <0, 0, AUTO>
`
	script := mustGenerate(t, doc, Options{})

	wantInOrder(t, script, []string{
		"def _curve_point(node, curve, point, x, y, handle):",
		"    _curve_point(n_1, 3, 2, 0.25, 0.75, 'AUTO')",
		"    _curve_point(n_1, 0, 9, 1, 1, 'VECTOR')",
	})
	if !strings.Contains(script, `curve path "mapping.bogus[0]" on "RGB Curves#1" not recognized`) {
		t.Errorf("bad curve path not reported")
	}
}

func TestGenerateSkips(t *testing.T) {
	const doc = `Tree_Type: MATERIAL

Create  ShaderNodeWarp  "Warp#1"
Create  ShaderNodeValue  "Value#1"
Create  ShaderNodeValue  "Value#1"
Create  ShaderNodeValue  "Bare#1"  "FOO"
Declare Inputs  [ Group Input ]  ~~ Fac:NodeSocketFloat
Set  [ Value#1 ]
    "use_glow" to 1
    "Value" to <1, banana>
Set  [ Ghost#1 ]
    "location" to <0, 0>
Connect  [ Warp#1 ]  ○  Out  to  [ Value#1 ]  ⦿  In
Parent [ Value#1 ] to [ Ghost#1 ]
`
	script := mustGenerate(t, doc, Options{})

	wants := []string{
		`unknown node type ShaderNodeWarp, skipping "Warp#1"`,
		`duplicate node identity "Value#1", keeping the first`,
		`variant "FOO" on ShaderNodeValue has no attribute, skipped`,
		"Declare outside a group block, ignored",
		`unknown property "use_glow" on ShaderNodeValue "Value#1", ignored`,
		`unusable value "<1, banana>" for "Value" on "Value#1", default kept`,
		`unknown node "Ghost#1" in Set`,
		`unknown node "Warp#1" in Connect`,
		`unknown frame "Ghost#1" in Parent`,
	}
	for _, w := range wants {
		if !strings.Contains(script, w) {
			t.Errorf("script missing skip comment %q", w)
		}
	}
	if got := strings.Count(script, "    # line "); got != len(wants) {
		t.Errorf("skip comments = %d, want %d", got, len(wants))
	}
}

func TestGenerateGroupCycle(t *testing.T) {
	const doc = `Tree_Type: GEOMETRY

START GROUP NAMED A
Create  GeometryNodeGroup  "Group#1"  "B"
END GROUP NAMED A

START GROUP NAMED B
Create  GeometryNodeGroup  "Group#1"  "A"
END GROUP NAMED B
`
	script := mustGenerate(t, doc, Options{})

	// B completes first because A waits on it; the back-reference to A
	// degrades to a comment inside B.
	wantInOrder(t, script, []string{
		"def build_group_b():",
		`node "Group#1": group "A" is part of a reference cycle`,
		"def build_group_a():",
		"    n_1.node_tree = build_group_b()",
		"def build_tree(tree):",
	})
	if got := strings.Count(script, "    # line "); got != 1 {
		t.Errorf("skip comments = %d, want 1", got)
	}
}

func TestGenerateAssetModeNone(t *testing.T) {
	const doc = `Tree_Type: MATERIAL

Create  ShaderNodeTexImage  "Image Texture#1"
Set  [ Image Texture#1 ]
    "image" to "✷noise✷"
`
	script := mustGenerate(t, doc, Options{Assets: assets.ModeNone})

	if !strings.Contains(script, `ASSET_MODE = "none"`) {
		t.Errorf("asset mode constant not baked in")
	}
	// The helper still ships; it honors the mode at runtime.
	if !strings.Contains(script, "def _image(name):") {
		t.Errorf("image helper missing")
	}
}

func TestGenerateEscaping(t *testing.T) {
	const doc = `Tree_Type: MATERIAL
# Node_Tree: Glass "Worn"

Create  ShaderNodeValue  "Value#1"
Rename  [ Value#1 ] to ~ A "B" ~
`
	script := mustGenerate(t, doc, Options{})

	if !strings.Contains(script, "mat = bpy.data.materials.get(\"Glass \\\"Worn\\\"\")") {
		t.Errorf("tree name not escaped")
	}
	if !strings.Contains(script, "n_1.label = \"A \\\"B\\\"\"") {
		t.Errorf("label not escaped")
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("NilDocument", func(t *testing.T) {
		_, err := Generate(nil, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want %v", err, errors.ErrCodeInvalidInput)
		}
	})

	t.Run("HeaderlessRejected", func(t *testing.T) {
		doc, err := bndl.Parse([]byte("Create  ShaderNodeValue  \"Value#1\"\n"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		_, err = Generate(doc, Options{})
		if !errors.Is(err, errors.ErrCodeFormat) {
			t.Errorf("err = %v, want %v", err, errors.ErrCodeFormat)
		}
	})
}

func TestFuncNameFor(t *testing.T) {
	taken := make(map[string]bool)
	tests := []struct {
		group string
		want  string
	}{
		{"Scatter", "build_group_scatter"},
		{"Scatter", "build_group_scatter_2"},
		{"Wear & Tear 2.0", "build_group_wear_tear_2_0"},
		{"::", "build_group_group"},
	}
	for _, tt := range tests {
		if got := funcNameFor(tt.group, taken); got != tt.want {
			t.Errorf("funcNameFor(%q) = %q, want %q", tt.group, got, tt.want)
		}
	}
}

func TestGenerateOptionsDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.Assets != assets.ModeProxy {
		t.Errorf("Assets = %q, want %q", opts.Assets, assets.ModeProxy)
	}
	if opts.Digits != 3 {
		t.Errorf("Digits = %d, want 3", opts.Digits)
	}
	if opts.Logger == nil {
		t.Errorf("Logger = nil, want discard logger")
	}
}
