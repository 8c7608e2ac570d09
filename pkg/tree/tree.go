// Package tree defines the in-memory model of a node graph: typed nodes
// with sockets and properties, links between sockets, frame parenting,
// and reusable group definitions. The bndl package serializes this model
// to text and the replay package rebuilds it from parsed statements.
package tree

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidTreeType is returned by [ParseTreeType] and [Tree.Validate]
	// when the tree type is not one of GEOMETRY, MATERIAL or COMPOSITOR.
	ErrInvalidTreeType = errors.New("invalid tree type")

	// ErrNilNode is returned by [Tree.AddNode] and [Group.AddNode] when
	// the node is nil.
	ErrNilNode = errors.New("node must not be nil")

	// ErrDuplicateNode is returned by [Tree.AddNode] and [Group.AddNode]
	// when the same node pointer was already added. A node belongs to
	// exactly one block.
	ErrDuplicateNode = errors.New("node already in graph")

	// ErrNilGroup is returned by [Tree.AddGroup] when the group is nil.
	ErrNilGroup = errors.New("group must not be nil")

	// ErrDuplicateGroup is returned by [Tree.AddGroup] when a group with
	// the same name is already registered. Groups are referenced by name,
	// so names must be unique per tree.
	ErrDuplicateGroup = errors.New("duplicate group name")

	// ErrUnknownEndpoint is returned by [Tree.AddLink], [Group.AddLink]
	// and Validate when a link references a node outside the block.
	ErrUnknownEndpoint = errors.New("link endpoint not in graph")

	// ErrSocketOutOfRange is returned by [Tree.AddLink], [Group.AddLink]
	// and Validate when a link's socket index does not exist on the
	// endpoint node.
	ErrSocketOutOfRange = errors.New("socket index out of range")

	// ErrUnknownParent is returned by [Tree.Validate] when a node's
	// parent frame is not part of the same block.
	ErrUnknownParent = errors.New("parent frame not in graph")

	// ErrParentNotFrame is returned by [Tree.Validate] when a node is
	// parented to something other than a frame node.
	ErrParentNotFrame = errors.New("parent node is not a frame")

	// ErrFrameCycle is returned by [Tree.Validate] when frame parenting
	// forms a cycle.
	ErrFrameCycle = errors.New("frame parenting contains a cycle")

	// ErrUnknownGroupRef is returned by [Tree.Validate] when a group node
	// references a definition that is not registered on the tree.
	ErrUnknownGroupRef = errors.New("node references a group not in the tree")
)

// TreeType identifies which editor a node graph belongs to.
type TreeType string

const (
	TreeGeometry   TreeType = "GEOMETRY"
	TreeMaterial   TreeType = "MATERIAL"
	TreeCompositor TreeType = "COMPOSITOR"
)

// Valid reports whether t is one of the recognized tree types.
func (t TreeType) Valid() bool {
	switch t {
	case TreeGeometry, TreeMaterial, TreeCompositor:
		return true
	}
	return false
}

// ParseTreeType normalizes s (case and surrounding space are ignored)
// and returns the matching tree type, or ErrInvalidTreeType.
func ParseTreeType(s string) (TreeType, error) {
	t := TreeType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTreeType
	}
	return t, nil
}

// Well-known node type IDs with special statement handling. Frames and
// reroutes are layout-only; group input and output nodes stand in for a
// group's declared interface.
const (
	TypeFrame       = "NodeFrame"
	TypeReroute     = "NodeReroute"
	TypeGroupInput  = "NodeGroupInput"
	TypeGroupOutput = "NodeGroupOutput"
)

// Socket is one connection point on a node. Inputs may carry a default
// value that applies while the socket is unlinked; outputs never do.
type Socket struct {
	Name    string
	Type    string // socket type tag, e.g. "VALUE" or "VECTOR"
	Default Value  // nil when the socket has no editable default
}

// Property is one named setting on a node. Entry order is preserved so
// serialization stays deterministic.
type Property struct {
	Name  string
	Value Value
}

// Node is a single node instance. Location is stored in absolute editor
// coordinates; frame-relative positions are a serialization concern
// (see [Node.RelativeLocation]).
//
// The zero value is usable once TypeID is set.
type Node struct {
	TypeID   string // node type identifier, e.g. "ShaderNodeMath"
	Variant  string // distinguishing attribute value, e.g. "MULTIPLY"
	Name     string
	Label    string
	Location [2]float64

	Inputs  []*Socket
	Outputs []*Socket
	Props   []Property

	Muted          bool
	UseCustomColor bool
	Color          [3]float64

	// ParentFrame points at the frame this node is pinned to, or nil.
	ParentFrame *Node

	// Group points at the definition this node instantiates. Set only on
	// group nodes; Variant then carries the definition's name.
	Group *Group
}

// IsFrame reports whether the node is a layout frame.
func (n *Node) IsFrame() bool { return n.TypeID == TypeFrame }

// IsReroute reports whether the node is a reroute. Reroutes relay a
// single value and are collapsed by [Tree.ResolvedLinks].
func (n *Node) IsReroute() bool { return n.TypeID == TypeReroute }

// IsGroupInput reports whether the node is a group's input boundary.
func (n *Node) IsGroupInput() bool { return n.TypeID == TypeGroupInput }

// IsGroupOutput reports whether the node is a group's output boundary.
func (n *Node) IsGroupOutput() bool { return n.TypeID == TypeGroupOutput }

// IsGroupNode reports whether the node instantiates a group definition.
func (n *Node) IsGroupNode() bool { return n.Group != nil }

// RelativeLocation returns the node's location relative to its parent
// frame's position, which is how locations appear on the wire.
// Unparented nodes return their absolute location unchanged.
func (n *Node) RelativeLocation() [2]float64 {
	if n.ParentFrame == nil {
		return n.Location
	}
	return [2]float64{
		n.Location[0] - n.ParentFrame.Location[0],
		n.Location[1] - n.ParentFrame.Location[1],
	}
}

// SetProp sets a property, replacing an existing entry in place so the
// original ordering is kept.
func (n *Node) SetProp(name string, v Value) {
	for i := range n.Props {
		if n.Props[i].Name == name {
			n.Props[i].Value = v
			return
		}
	}
	n.Props = append(n.Props, Property{Name: name, Value: v})
}

// Prop returns the named property value and true, or nil and false.
func (n *Node) Prop(name string) (Value, bool) {
	for _, p := range n.Props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// InputIndex returns the index of the nth input socket (1-based
// occurrence) with the given name. Several node kinds expose multiple
// sockets sharing one label, so lookups carry an occurrence number.
func (n *Node) InputIndex(name string, nth int) (int, bool) {
	return socketIndex(n.Inputs, name, nth)
}

// OutputIndex is the output-side counterpart of [Node.InputIndex].
func (n *Node) OutputIndex(name string, nth int) (int, bool) {
	return socketIndex(n.Outputs, name, nth)
}

func socketIndex(socks []*Socket, name string, nth int) (int, bool) {
	if nth < 1 {
		return 0, false
	}
	count := 0
	for i, s := range socks {
		if s.Name == name {
			count++
			if count == nth {
				return i, true
			}
		}
	}
	return 0, false
}

// Link connects an output socket to an input socket. FromSocket indexes
// into FromNode.Outputs and ToSocket into ToNode.Inputs.
type Link struct {
	FromNode   *Node
	FromSocket int
	ToNode     *Node
	ToSocket   int
}

// InterfaceSocket is one declared input or output on a group.
type InterfaceSocket struct {
	Name string
	Type string // socket interface type, e.g. "NodeSocketFloat"
}

// Group is a reusable sub-graph with a declared interface. Its node
// universe includes explicit group input and output boundary nodes so
// that interface wiring serializes like any other link.
type Group struct {
	Name    string
	Inputs  []InterfaceSocket
	Outputs []InterfaceSocket
	Nodes   []*Node
	Links   []Link
}

// NewGroup creates a group with its two boundary nodes in place.
func NewGroup(name string) *Group {
	g := &Group{Name: name}
	g.Nodes = append(g.Nodes,
		&Node{TypeID: TypeGroupInput, Name: "Group Input"},
		&Node{TypeID: TypeGroupOutput, Name: "Group Output"},
	)
	return g
}

// InputNode returns the group's input boundary node, or nil.
func (g *Group) InputNode() *Node {
	for _, n := range g.Nodes {
		if n.IsGroupInput() {
			return n
		}
	}
	return nil
}

// OutputNode returns the group's output boundary node, or nil.
func (g *Group) OutputNode() *Node {
	for _, n := range g.Nodes {
		if n.IsGroupOutput() {
			return n
		}
	}
	return nil
}

// DeclareInput adds an interface input and mirrors it as an output
// socket on the input boundary node, so body links can originate there.
// It returns the mirrored socket, or nil when the group has no boundary
// input node.
func (g *Group) DeclareInput(name, socketType string) *Socket {
	g.Inputs = append(g.Inputs, InterfaceSocket{Name: name, Type: socketType})
	in := g.InputNode()
	if in == nil {
		return nil
	}
	s := &Socket{Name: name, Type: socketType}
	in.Outputs = append(in.Outputs, s)
	return s
}

// DeclareOutput adds an interface output and mirrors it as an input
// socket on the output boundary node. It returns the mirrored socket,
// or nil when the group has no boundary output node.
func (g *Group) DeclareOutput(name, socketType string) *Socket {
	g.Outputs = append(g.Outputs, InterfaceSocket{Name: name, Type: socketType})
	out := g.OutputNode()
	if out == nil {
		return nil
	}
	s := &Socket{Name: name, Type: socketType}
	out.Inputs = append(out.Inputs, s)
	return s
}

// AddNode appends a node to the group's body.
// Returns ErrNilNode or ErrDuplicateNode.
func (g *Group) AddNode(n *Node) error { return addNode(&g.Nodes, n) }

// AddLink connects two sockets inside the group. Both endpoints must
// already be group nodes (boundary nodes included).
// Returns ErrUnknownEndpoint or ErrSocketOutOfRange.
func (g *Group) AddLink(l Link) error { return addLink(g.Nodes, &g.Links, l) }

// Tree is a complete node graph of one editor type together with the
// group definitions it references. Nodes, links and groups keep
// insertion order; serialization depends on it for stable output.
//
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	Type      TreeType
	Name      string
	SourceApp string // host application version recorded in export headers
	Nodes     []*Node
	Links     []Link
	Groups    []*Group
}

// New creates an empty tree of the given type.
func New(typ TreeType, name string) *Tree {
	return &Tree{Type: typ, Name: name}
}

// AddNode appends a top-level node.
// Returns ErrNilNode or ErrDuplicateNode.
func (t *Tree) AddNode(n *Node) error { return addNode(&t.Nodes, n) }

// AddLink connects two sockets at the top level. Both endpoints must
// already be tree nodes. Returns ErrUnknownEndpoint or
// ErrSocketOutOfRange.
func (t *Tree) AddLink(l Link) error { return addLink(t.Nodes, &t.Links, l) }

// AddGroup registers a group definition. Nested definitions referenced
// by group nodes inside other groups are registered here too, flat.
// Returns ErrNilGroup or ErrDuplicateGroup.
func (t *Tree) AddGroup(g *Group) error {
	if g == nil {
		return ErrNilGroup
	}
	for _, have := range t.Groups {
		if have.Name == g.Name {
			return ErrDuplicateGroup
		}
	}
	t.Groups = append(t.Groups, g)
	return nil
}

// Node returns the first node with the given name and true, or nil and
// false if not found.
func (t *Tree) Node(name string) (*Node, bool) {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Group returns the registered group with the given name and true, or
// nil and false if not found.
func (t *Tree) Group(name string) (*Group, bool) {
	for _, g := range t.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// NodeCount returns the number of functional top-level nodes. Frames
// and reroutes are layout aids and are excluded; exported headers
// record this count.
func (t *Tree) NodeCount() int {
	count := 0
	for _, n := range t.Nodes {
		if n.IsFrame() || n.IsReroute() {
			continue
		}
		count++
	}
	return count
}

// Validate checks graph integrity and returns nil if valid.
// It verifies, for the top level and every registered group:
//
//  1. Links reference nodes inside the same block with in-range sockets
//  2. Parent pointers reference frames inside the same block, acyclically
//  3. Group nodes reference registered definitions
//
// Returns ErrInvalidTreeType, ErrUnknownEndpoint, ErrSocketOutOfRange,
// ErrUnknownParent, ErrParentNotFrame, ErrFrameCycle or
// ErrUnknownGroupRef. Use this before serializing a programmatically
// built tree.
func (t *Tree) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTreeType
	}
	groups := make(map[*Group]bool, len(t.Groups))
	for _, g := range t.Groups {
		groups[g] = true
	}
	if err := validateBlock(t.Nodes, t.Links, groups); err != nil {
		return err
	}
	for _, g := range t.Groups {
		if err := validateBlock(g.Nodes, g.Links, groups); err != nil {
			return err
		}
	}
	return nil
}

func addNode(nodes *[]*Node, n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	for _, have := range *nodes {
		if have == n {
			return ErrDuplicateNode
		}
	}
	*nodes = append(*nodes, n)
	return nil
}

func addLink(nodes []*Node, links *[]Link, l Link) error {
	if err := checkEndpoint(nodes, l.FromNode, l.FromSocket, false); err != nil {
		return err
	}
	if err := checkEndpoint(nodes, l.ToNode, l.ToSocket, true); err != nil {
		return err
	}
	*links = append(*links, l)
	return nil
}

func checkEndpoint(nodes []*Node, n *Node, socket int, input bool) error {
	if n == nil || !containsNode(nodes, n) {
		return ErrUnknownEndpoint
	}
	socks := n.Outputs
	if input {
		socks = n.Inputs
	}
	if socket < 0 || socket >= len(socks) {
		return ErrSocketOutOfRange
	}
	return nil
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, have := range nodes {
		if have == n {
			return true
		}
	}
	return false
}

func validateBlock(nodes []*Node, links []Link, groups map[*Group]bool) error {
	inSet := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		inSet[n] = true
	}
	for _, n := range nodes {
		if n.Group != nil && !groups[n.Group] {
			return ErrUnknownGroupRef
		}
		seen := map[*Node]bool{}
		for p := n.ParentFrame; p != nil; p = p.ParentFrame {
			if !inSet[p] {
				return ErrUnknownParent
			}
			if !p.IsFrame() {
				return ErrParentNotFrame
			}
			if seen[p] {
				return ErrFrameCycle
			}
			seen[p] = true
		}
	}
	for _, l := range links {
		if l.FromNode == nil || !inSet[l.FromNode] || l.ToNode == nil || !inSet[l.ToNode] {
			return ErrUnknownEndpoint
		}
		if l.FromSocket < 0 || l.FromSocket >= len(l.FromNode.Outputs) {
			return ErrSocketOutOfRange
		}
		if l.ToSocket < 0 || l.ToSocket >= len(l.ToNode.Inputs) {
			return ErrSocketOutOfRange
		}
	}
	return nil
}
