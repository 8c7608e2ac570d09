package render

import (
	"strings"
	"testing"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

func mustAdd(t *testing.T, tr *tree.Tree, nodes ...*tree.Node) {
	t.Helper()
	for _, n := range nodes {
		if err := tr.AddNode(n); err != nil {
			t.Fatalf("AddNode %s: %v", n.Name, err)
		}
	}
}

func TestToDOT_Basic(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	val := &tree.Node{
		TypeID:  "ShaderNodeValue",
		Name:    "Value",
		Outputs: []*tree.Socket{{Name: "Value", Type: "VALUE"}},
	}
	math := &tree.Node{
		TypeID: "ShaderNodeMath",
		Name:   "Math",
		Inputs: []*tree.Socket{{Name: "Value", Type: "VALUE"}},
	}
	mustAdd(t, tr, val, math)
	if err := tr.AddLink(tree.Link{FromNode: val, ToNode: math}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	dot := ToDOT(tr, Options{})

	if !strings.Contains(dot, "digraph bndl") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `"Value"`) {
		t.Error("ToDOT() output missing node Value")
	}
	if !strings.Contains(dot, `"Math"`) {
		t.Error("ToDOT() output missing node Math")
	}
	if !strings.Contains(dot, `"Value" -> "Math";`) {
		t.Error("ToDOT() output missing link")
	}
}

func TestToDOT_FrameClusters(t *testing.T) {
	tr := tree.New(tree.TreeGeometry, "Test")
	outer := &tree.Node{TypeID: tree.TypeFrame, Name: "Frame", Label: "Stage"}
	inner := &tree.Node{TypeID: tree.TypeFrame, Name: "Frame.001", ParentFrame: outer}
	boxed := &tree.Node{TypeID: "GeometryNodeObjectInfo", Name: "Object Info", ParentFrame: inner}
	free := &tree.Node{TypeID: "ShaderNodeValue", Name: "Value"}
	mustAdd(t, tr, outer, inner, boxed, free)

	dot := ToDOT(tr, Options{})

	if !strings.Contains(dot, "subgraph cluster_0 {") {
		t.Error("ToDOT() output missing frame cluster")
	}
	if !strings.Contains(dot, "    subgraph cluster_1 {") {
		t.Error("ToDOT() output missing nested frame cluster")
	}
	if !strings.Contains(dot, `label="Stage"`) {
		t.Error("ToDOT() output missing frame label")
	}
	if !strings.Contains(dot, "style=dashed") {
		t.Error("ToDOT() frame cluster missing dashed style")
	}
	if !strings.Contains(dot, `"Object Info"`) {
		t.Error("ToDOT() output missing framed node")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	tex := &tree.Node{
		TypeID:  "ShaderNodeTexImage",
		Name:    "Image Texture",
		Outputs: []*tree.Socket{{Name: "Color", Type: "RGBA"}},
		Props:   []tree.Property{{Name: "interpolation", Value: tree.Enum("Closest")}},
	}
	math := &tree.Node{
		TypeID:  "ShaderNodeMath",
		Variant: "MULTIPLY",
		Name:    "Math",
		Inputs:  []*tree.Socket{{Name: "Value", Type: "VALUE"}},
	}
	mustAdd(t, tr, tex, math)
	if err := tr.AddLink(tree.Link{FromNode: tex, ToNode: math}); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	dot := ToDOT(tr, Options{Detailed: true})

	if !strings.Contains(dot, "type: ShaderNodeTexImage") {
		t.Error("ToDOT() detailed output missing type line")
	}
	if !strings.Contains(dot, "variant: MULTIPLY") {
		t.Error("ToDOT() detailed output missing variant line")
	}
	if !strings.Contains(dot, "interpolation: Closest") {
		t.Error("ToDOT() detailed output missing property line")
	}
	if !strings.Contains(dot, `[label="Color -> Value"]`) {
		t.Error("ToDOT() detailed output missing socket edge label")
	}
}

func TestToDOT_Reroute(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	mustAdd(t, tr, &tree.Node{TypeID: tree.TypeReroute, Name: "Reroute"})

	dot := ToDOT(tr, Options{})

	if !strings.Contains(dot, "shape=point") {
		t.Error("ToDOT() reroute missing point shape")
	}
}

func TestToDOT_Muted(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	mustAdd(t, tr, &tree.Node{TypeID: "ShaderNodeMath", Name: "Math", Muted: true})

	dot := ToDOT(tr, Options{})

	if !strings.Contains(dot, "dashed") {
		t.Error("ToDOT() muted node missing dashed style")
	}
	if !strings.Contains(dot, "lightgrey") {
		t.Error("ToDOT() muted node missing lightgrey fill")
	}
}

func TestToDOT_CustomColor(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	mustAdd(t, tr, &tree.Node{
		TypeID:         "ShaderNodeValue",
		Name:           "Value",
		UseCustomColor: true,
		Color:          [3]float64{1, 0.5, 0},
	})

	dot := ToDOT(tr, Options{})

	if !strings.Contains(dot, `fillcolor="#ff8000"`) {
		t.Errorf("ToDOT() custom color missing hex fill:\n%s", dot)
	}
}

func TestToDOT_Groups(t *testing.T) {
	tr := tree.New(tree.TreeMaterial, "Test")
	grp := tree.NewGroup("Mixer")
	math := &tree.Node{TypeID: "ShaderNodeMath", Name: "Math"}
	if err := grp.AddNode(math); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := tr.AddGroup(grp); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	inst := &tree.Node{TypeID: "ShaderNodeGroup", Variant: "Mixer", Name: "Group", Group: grp}
	mustAdd(t, tr, inst)

	plain := ToDOT(tr, Options{})
	if strings.Contains(plain, "group: Mixer") {
		t.Error("ToDOT() without Groups should not expand definitions")
	}
	if !strings.Contains(plain, "peripheries=2") {
		t.Error("ToDOT() group instance missing double border")
	}

	expanded := ToDOT(tr, Options{Groups: true})
	if !strings.Contains(expanded, `label="group: Mixer"`) {
		t.Error("ToDOT() with Groups missing definition cluster")
	}
	if !strings.Contains(expanded, `"Mixer/Math"`) {
		t.Error("ToDOT() with Groups missing prefixed body node")
	}
	if !strings.Contains(expanded, `"Mixer/Group Input"`) {
		t.Error("ToDOT() with Groups missing boundary node")
	}
	if !strings.Contains(expanded, "shape=cds") {
		t.Error("ToDOT() boundary node missing cds shape")
	}
}

func TestNodeLabel_Simple(t *testing.T) {
	n := &tree.Node{TypeID: "ShaderNodeMath", Name: "Math", Label: "Multiply"}
	if got := nodeLabel(n, false); got != "Multiply" {
		t.Errorf("nodeLabel() = %q, want %q", got, "Multiply")
	}
	n.Label = ""
	if got := nodeLabel(n, false); got != "Math" {
		t.Errorf("nodeLabel() = %q, want %q", got, "Math")
	}
}

func TestNodeLabel_Detailed(t *testing.T) {
	n := &tree.Node{
		TypeID:  "ShaderNodeMath",
		Variant: "ADD",
		Name:    "Math",
		Props:   []tree.Property{{Name: "use_clamp", Value: tree.Bool(true)}},
	}
	label := nodeLabel(n, true)

	if !strings.HasPrefix(label, "Math\n") {
		t.Errorf("nodeLabel() detailed should start with the name: %q", label)
	}
	if !strings.Contains(label, "type: ShaderNodeMath") {
		t.Errorf("nodeLabel() detailed missing type: %q", label)
	}
	if !strings.Contains(label, "variant: ADD") {
		t.Errorf("nodeLabel() detailed missing variant: %q", label)
	}
	if !strings.Contains(label, "use_clamp: true") {
		t.Errorf("nodeLabel() detailed missing property: %q", label)
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor([3]float64{1, 0.5, 0}); got != "#ff8000" {
		t.Errorf("hexColor() = %q, want #ff8000", got)
	}
	if got := hexColor([3]float64{2, -1, 0}); got != "#ff0000" {
		t.Errorf("hexColor() clamped = %q, want #ff0000", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="123pt" height="45pt" viewBox="0.00 0.00 123.00 45.00" xmlns="http://www.w3.org/2000/svg">rest`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 123.00 45.00"`) {
		t.Errorf("normalizeViewBox() missing zeroed viewBox: %q", out)
	}
	if !strings.Contains(out, `width="123" height="45"`) {
		t.Errorf("normalizeViewBox() missing pixel dimensions: %q", out)
	}
	if !strings.HasSuffix(out, ">rest") {
		t.Errorf("normalizeViewBox() lost trailing content: %q", out)
	}

	plain := []byte(`<svg xmlns="http://www.w3.org/2000/svg">`)
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox = %q, want unchanged", got)
	}
}
