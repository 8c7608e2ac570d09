package tree

import (
	"errors"
	"testing"
)

func valueNode(name string) *Node {
	return &Node{
		TypeID:  "ShaderNodeValue",
		Name:    name,
		Outputs: []*Socket{{Name: "Value", Type: "VALUE"}},
	}
}

func mathNode(name string) *Node {
	return &Node{
		TypeID:  "ShaderNodeMath",
		Variant: "ADD",
		Name:    name,
		Inputs: []*Socket{
			{Name: "Value", Type: "VALUE", Default: Float(0.5)},
			{Name: "Value", Type: "VALUE", Default: Float(0.5)},
		},
		Outputs: []*Socket{{Name: "Value", Type: "VALUE"}},
	}
}

func frameNode(name string) *Node {
	return &Node{TypeID: TypeFrame, Name: name}
}

func TestParseTreeType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TreeType
		wantErr bool
	}{
		{name: "Material", input: "MATERIAL", want: TreeMaterial},
		{name: "Lowercase", input: "material", want: TreeMaterial},
		{name: "Padded", input: "  Geometry ", want: TreeGeometry},
		{name: "Compositor", input: "COMPOSITOR", want: TreeCompositor},
		{name: "Unknown", input: "SHADER", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTreeType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTreeType) {
					t.Fatalf("error = %v, want ErrInvalidTreeType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTreeType(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("type = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddNode(t *testing.T) {
	tr := New(TreeMaterial, "Test")
	n := valueNode("Value")

	if err := tr.AddNode(n); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := tr.AddNode(n); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate error = %v, want ErrDuplicateNode", err)
	}
	if err := tr.AddNode(nil); !errors.Is(err, ErrNilNode) {
		t.Errorf("nil error = %v, want ErrNilNode", err)
	}
	if got := len(tr.Nodes); got != 1 {
		t.Errorf("nodes = %d, want 1", got)
	}
}

func TestAddLink(t *testing.T) {
	tests := []struct {
		name    string
		link    func(a, b *Node) Link
		addBoth bool
		wantErr error
	}{
		{
			name:    "Valid",
			link:    func(a, b *Node) Link { return Link{FromNode: a, ToNode: b} },
			addBoth: true,
		},
		{
			name:    "UnknownSource",
			link:    func(a, b *Node) Link { return Link{FromNode: a, ToNode: b} },
			addBoth: false,
			wantErr: ErrUnknownEndpoint,
		},
		{
			name:    "NilSource",
			link:    func(a, b *Node) Link { return Link{ToNode: b} },
			addBoth: true,
			wantErr: ErrUnknownEndpoint,
		},
		{
			name:    "SourceSocketRange",
			link:    func(a, b *Node) Link { return Link{FromNode: a, FromSocket: 3, ToNode: b} },
			addBoth: true,
			wantErr: ErrSocketOutOfRange,
		},
		{
			name:    "TargetSocketRange",
			link:    func(a, b *Node) Link { return Link{FromNode: a, ToNode: b, ToSocket: 2} },
			addBoth: true,
			wantErr: ErrSocketOutOfRange,
		},
		{
			name:    "NegativeSocket",
			link:    func(a, b *Node) Link { return Link{FromNode: a, ToNode: b, ToSocket: -1} },
			addBoth: true,
			wantErr: ErrSocketOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(TreeMaterial, "Test")
			a := valueNode("A")
			b := mathNode("B")
			if tt.addBoth {
				tr.AddNode(a)
			}
			tr.AddNode(b)

			err := tr.AddLink(tt.link(a, b))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddLink: %v", err)
			}
			if got := len(tr.Links); got != 1 {
				t.Errorf("links = %d, want 1", got)
			}
		})
	}
}

func TestAddGroup(t *testing.T) {
	tr := New(TreeGeometry, "Test")
	if err := tr.AddGroup(nil); !errors.Is(err, ErrNilGroup) {
		t.Errorf("nil error = %v, want ErrNilGroup", err)
	}
	if err := tr.AddGroup(NewGroup("Utils")); err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if err := tr.AddGroup(NewGroup("Utils")); !errors.Is(err, ErrDuplicateGroup) {
		t.Errorf("duplicate error = %v, want ErrDuplicateGroup", err)
	}
	if g, ok := tr.Group("Utils"); !ok || g.Name != "Utils" {
		t.Errorf("Group(Utils) = %v, %v", g, ok)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Tree
		wantErr error
	}{
		{
			name: "Valid",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				a := valueNode("A")
				b := mathNode("B")
				f := frameNode("F")
				tr.AddNode(a)
				tr.AddNode(b)
				tr.AddNode(f)
				a.ParentFrame = f
				tr.AddLink(Link{FromNode: a, ToNode: b})
				return tr
			},
		},
		{
			name: "BadType",
			build: func() *Tree {
				return New("SHADER", "Test")
			},
			wantErr: ErrInvalidTreeType,
		},
		{
			name: "ForeignEndpoint",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				tr.AddNode(mathNode("B"))
				// Link built directly, bypassing AddLink checks.
				tr.Links = append(tr.Links, Link{FromNode: valueNode("X"), ToNode: tr.Nodes[0]})
				return tr
			},
			wantErr: ErrUnknownEndpoint,
		},
		{
			name: "SocketRange",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				a := valueNode("A")
				b := mathNode("B")
				tr.AddNode(a)
				tr.AddNode(b)
				tr.Links = append(tr.Links, Link{FromNode: a, FromSocket: 9, ToNode: b})
				return tr
			},
			wantErr: ErrSocketOutOfRange,
		},
		{
			name: "ParentOutsideTree",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				a := valueNode("A")
				tr.AddNode(a)
				a.ParentFrame = frameNode("F")
				return tr
			},
			wantErr: ErrUnknownParent,
		},
		{
			name: "ParentNotFrame",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				a := valueNode("A")
				b := mathNode("B")
				tr.AddNode(a)
				tr.AddNode(b)
				a.ParentFrame = b
				return tr
			},
			wantErr: ErrParentNotFrame,
		},
		{
			name: "FrameCycle",
			build: func() *Tree {
				tr := New(TreeMaterial, "Test")
				f1 := frameNode("F1")
				f2 := frameNode("F2")
				tr.AddNode(f1)
				tr.AddNode(f2)
				f1.ParentFrame = f2
				f2.ParentFrame = f1
				return tr
			},
			wantErr: ErrFrameCycle,
		},
		{
			name: "UnregisteredGroupRef",
			build: func() *Tree {
				tr := New(TreeGeometry, "Test")
				n := &Node{TypeID: "GeometryNodeGroup", Name: "G", Group: NewGroup("Orphan")}
				tr.AddNode(n)
				return tr
			},
			wantErr: ErrUnknownGroupRef,
		},
		{
			name: "BadGroupBody",
			build: func() *Tree {
				tr := New(TreeGeometry, "Test")
				g := NewGroup("Utils")
				g.Links = append(g.Links, Link{FromNode: valueNode("X"), ToNode: g.OutputNode()})
				tr.AddGroup(g)
				return tr
			},
			wantErr: ErrUnknownEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodeCount(t *testing.T) {
	tr := New(TreeMaterial, "Test")
	tr.AddNode(valueNode("A"))
	tr.AddNode(mathNode("B"))
	tr.AddNode(frameNode("F"))
	tr.AddNode(&Node{TypeID: TypeReroute, Name: "R"})

	if got := tr.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
	if got := len(tr.Nodes); got != 4 {
		t.Errorf("len(Nodes) = %d, want 4", got)
	}
}

func TestRelativeLocation(t *testing.T) {
	f := frameNode("F")
	f.Location = [2]float64{100, -50}
	n := valueNode("A")
	n.Location = [2]float64{130, -70}

	if got := n.RelativeLocation(); got != n.Location {
		t.Errorf("unparented = %v, want %v", got, n.Location)
	}
	n.ParentFrame = f
	if got := n.RelativeLocation(); got != [2]float64{30, -20} {
		t.Errorf("parented = %v, want [30 -20]", got)
	}
}

func TestInputIndex(t *testing.T) {
	n := mathNode("Math")
	tests := []struct {
		name   string
		socket string
		nth    int
		want   int
		ok     bool
	}{
		{name: "First", socket: "Value", nth: 1, want: 0, ok: true},
		{name: "Second", socket: "Value", nth: 2, want: 1, ok: true},
		{name: "Missing", socket: "Vector", nth: 1},
		{name: "TooMany", socket: "Value", nth: 3},
		{name: "ZeroOccurrence", socket: "Value", nth: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.InputIndex(tt.socket, tt.nth)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("index = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSetProp(t *testing.T) {
	n := valueNode("A")
	n.SetProp("data_type", Enum("FLOAT"))
	n.SetProp("clamp", Bool(true))
	n.SetProp("data_type", Enum("VECTOR"))

	if got := len(n.Props); got != 2 {
		t.Fatalf("props = %d, want 2", got)
	}
	if n.Props[0].Name != "data_type" {
		t.Errorf("props[0] = %q, want data_type", n.Props[0].Name)
	}
	if v, _ := n.Prop("data_type"); !Equal(v, Enum("VECTOR")) {
		t.Errorf("data_type = %v, want VECTOR", v)
	}
	if _, ok := n.Prop("missing"); ok {
		t.Error("Prop(missing) found, want not found")
	}
}

func TestGroupDeclare(t *testing.T) {
	g := NewGroup("Noise Mix")

	in := g.DeclareInput("Fac", "NodeSocketFloat")
	g.DeclareInput("Fac", "NodeSocketFloat")
	out := g.DeclareOutput("Result", "NodeSocketColor")

	if in == nil || out == nil {
		t.Fatal("declared sockets are nil")
	}
	if got := len(g.InputNode().Outputs); got != 2 {
		t.Errorf("boundary outputs = %d, want 2", got)
	}
	if got := len(g.OutputNode().Inputs); got != 1 {
		t.Errorf("boundary inputs = %d, want 1", got)
	}
	if g.Inputs[1].Name != "Fac" || g.Inputs[1].Type != "NodeSocketFloat" {
		t.Errorf("interface input = %+v", g.Inputs[1])
	}

	// Boundary nodes never count as functional nodes at the top level,
	// but inside a group they are simply body nodes.
	body := mathNode("Mix")
	if err := g.AddNode(body); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	err := g.AddLink(Link{FromNode: g.InputNode(), FromSocket: 0, ToNode: body, ToSocket: 0})
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}
}
