package bndl

import (
	"fmt"
	"strings"
	"time"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// MarshalOptions configures serialization. The zero value is ready to use.
type MarshalOptions struct {
	// Digits is the float precision for values and locations. Zero or
	// negative selects numfmt.DefaultDigits. Coarser rounding of an
	// existing export is a job for numfmt.RoundLiterals.
	Digits int

	// SourceApp overrides the tree's SourceApp in the Blender_Version
	// header line. Empty keeps the tree's value; if both are empty the
	// line is omitted.
	SourceApp string

	// Date is the Export_Date header timestamp. The zero value means
	// time.Now(). Tests pin it for byte-stable output.
	Date time.Time

	// Notes chunks are rendered as the leading notes block. Empty chunks
	// are dropped.
	Notes []string
}

// Marshal serializes a tree to BNDL text: header, group blocks depth-first
// with children before parents, then the top-level block. Output is
// deterministic for a given tree and options.
//
// Returns an EXPORT_PRECONDITION error when the tree has no nodes, and an
// INVALID_INPUT error when the tree fails [tree.Tree.Validate] or carries
// a name the line-oriented format cannot represent.
func Marshal(t *tree.Tree, opts MarshalOptions) ([]byte, error) {
	if t == nil || len(t.Nodes) == 0 {
		name := "tree"
		if t != nil && t.Name != "" {
			name = fmt.Sprintf("tree %q", t.Name)
		}
		return nil, errors.New(errors.ErrCodeExportPrecondition, "%s has no nodes to export", name)
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "validate tree %q", t.Name)
	}
	if err := validateNames(t); err != nil {
		return nil, err
	}

	digits := opts.Digits
	if digits <= 0 {
		digits = numfmt.DefaultDigits
	}
	sourceApp := opts.SourceApp
	if sourceApp == "" {
		sourceApp = t.SourceApp
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	h := Header{
		Version:    Version,
		TreeType:   t.Type,
		SourceApp:  sourceApp,
		ExportDate: date,
		TreeName:   t.Name,
		NodeCount:  t.NodeCount(),
	}

	w := &writer{digits: digits, visited: make(map[string]bool)}

	lines := h.headerLines()
	lines = append(lines, bannerGroups)
	for _, g := range groupOrder(t) {
		w.writeGroup(&lines, g)
	}
	lines = append(lines, "", bannerTop)
	w.writeBlock(&lines, t.Nodes, t.Links, t.ResolvedLinks(), nil)

	text := strings.Join(lines, "\n") + "\n"
	if notes := NotesBlock(opts.Notes...); notes != "" {
		text = notes + text
	}
	return []byte(text), nil
}

// validateNames rejects names the format cannot carry. Group names render
// bare on START GROUP lines; datablock names are wrapped in sentinel runes
// and must not contain one themselves.
func validateNames(t *tree.Tree) error {
	for _, g := range t.Groups {
		if err := errors.ValidateName(g.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "group name %q", g.Name)
		}
	}
	sentinels := allSentinels()
	blocks := [][]*tree.Node{t.Nodes}
	for _, g := range t.Groups {
		blocks = append(blocks, g.Nodes)
	}
	for _, nodes := range blocks {
		for _, n := range nodes {
			for _, in := range n.Inputs {
				if err := checkDatablockName(in.Default, sentinels); err != nil {
					return err
				}
			}
			for _, p := range n.Props {
				if err := checkDatablockName(p.Value, sentinels); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkDatablockName(v tree.Value, sentinels string) error {
	db, ok := v.(tree.Datablock)
	if !ok {
		return nil
	}
	return errors.ValidateDatablockName(db.Name, sentinels)
}

// groupOrder collects every group transitively referenced from the top
// level, children strictly before the groups that contain them, each group
// once. The visited set doubles as cycle protection for malformed nesting.
func groupOrder(t *tree.Tree) []*tree.Group {
	var order []*tree.Group
	visited := make(map[string]bool)

	var visit func(g *tree.Group)
	visit = func(g *tree.Group) {
		if g == nil || visited[g.Name] {
			return
		}
		visited[g.Name] = true
		for _, n := range g.Nodes {
			visit(n.Group)
		}
		order = append(order, g)
	}

	for _, n := range t.Nodes {
		visit(n.Group)
	}
	return order
}

type writer struct {
	digits  int
	visited map[string]bool
}

func (w *writer) writeGroup(out *[]string, g *tree.Group) {
	*out = append(*out, startGroupPrefix+g.Name)
	w.writeBlock(out, g.Nodes, g.Links, g.ResolvedLinks(), g)
	*out = append(*out, endGroupPrefix+g.Name, "")
}

// writeBlock emits one block's statements: Create (+Rename), Declare for
// groups, Set per node, Connect, Parent. raw is the block's unresolved link
// list (used to tell connected inputs from unconnected ones); resolved is
// the reroute-free, deduplicated list that becomes Connect lines.
func (w *writer) writeBlock(out *[]string, nodes []*tree.Node, raw []tree.Link, resolved []tree.Link, g *tree.Group) {
	// Display identities: per-name counters in node order. Reroutes are
	// invisible; group boundary nodes are numbered so Connect lines can
	// reference them, but get no Create of their own.
	namer := tree.NewNamer()
	ids := make(map[*tree.Node]string, len(nodes))
	for _, n := range nodes {
		if n.IsReroute() {
			continue
		}
		ids[n] = namer.Next(n.BaseName())
	}

	linked := linkedInputs(raw)

	for _, n := range nodes {
		if n.IsReroute() || n.IsGroupInput() || n.IsGroupOutput() {
			continue
		}
		variant := n.Variant
		if n.Group != nil {
			variant = n.Group.Name
		}
		if variant != "" {
			*out = append(*out, fmt.Sprintf("Create  %s  %q  %q", n.TypeID, ids[n], variant))
		} else {
			*out = append(*out, fmt.Sprintf("Create  %s  %q", n.TypeID, ids[n]))
		}
		if n.Label != "" {
			base, num := SplitIdentity(ids[n])
			*out = append(*out, fmt.Sprintf("Rename  [ %s #%d ] to ~ %s ~", base, num, n.Label))
		}
	}

	if g != nil {
		if in := declareList(g.Inputs); in != "" {
			*out = append(*out, "Declare Inputs  [ Group Input ]  ~~ "+in)
		}
		if sockets := declareList(g.Outputs); sockets != "" {
			*out = append(*out, "Declare Outputs  [ Group Output ]  ~~ "+sockets)
		}
	}

	for _, n := range nodes {
		if n.IsReroute() || n.IsGroupInput() || n.IsGroupOutput() {
			continue
		}
		entries := w.setEntries(n, linked[n])
		if len(entries) == 0 {
			continue
		}
		*out = append(*out, "Set  "+formatInstance(ids[n]))
		*out = append(*out, entries...)
	}

	for _, l := range resolved {
		from, okFrom := ids[l.FromNode]
		to, okTo := ids[l.ToNode]
		if !okFrom || !okTo {
			continue
		}
		*out = append(*out, fmt.Sprintf("Connect  %s  %s  %s  to  %s  %s  %s",
			formatInstance(from), glyphOut, socketDisplay(l.FromNode.Outputs, l.FromSocket),
			formatInstance(to), glyphIn, socketDisplay(l.ToNode.Inputs, l.ToSocket)))
	}

	for _, n := range nodes {
		if n.IsReroute() || n.ParentFrame == nil {
			continue
		}
		frame, ok := ids[n.ParentFrame]
		if !ok {
			continue
		}
		*out = append(*out, fmt.Sprintf("Parent %s to %s", formatInstance(ids[n]), formatInstance(frame)))
	}
}

// setEntries builds one node's Set lines in emission order: a data_type
// property first when present, unconnected input defaults, the group tree
// reference, remaining properties, mute when set, custom color, and the
// frame-relative location always last.
func (w *writer) setEntries(n *tree.Node, linked map[int]bool) []string {
	var entries []string

	for i, in := range n.Inputs {
		if linked[i] || in.Default == nil {
			continue
		}
		entries = append(entries, w.entry(socketDisplay(n.Inputs, i), in.Default))
	}

	if n.Group != nil {
		entries = append(entries, w.entry("node_tree", tree.Datablock{Kind: tree.DatablockNodeTree, Name: n.Group.Name}))
	}

	for _, p := range n.Props {
		line := w.entry(p.Name, p.Value)
		if p.Name == "data_type" {
			entries = append([]string{line}, entries...)
		} else {
			entries = append(entries, line)
		}
	}

	if n.Muted {
		entries = append(entries, `    "mute" to true`)
	}
	if n.UseCustomColor {
		entries = append(entries, `    "use_custom_color" to true`)
		entries = append(entries, fmt.Sprintf(`    "color" to <%s, %s, %s>`,
			numfmt.Format(n.Color[0], w.digits), numfmt.Format(n.Color[1], w.digits), numfmt.Format(n.Color[2], w.digits)))
	}

	loc := n.RelativeLocation()
	entries = append(entries, fmt.Sprintf(`    "location" to <%s, %s>`,
		numfmt.Format(loc[0], w.digits), numfmt.Format(loc[1], w.digits)))

	return entries
}

func (w *writer) entry(prop string, v tree.Value) string {
	return fmt.Sprintf(`    "%s" to %s`, prop, encodeValue(v, w.digits))
}

// linkedInputs indexes which input sockets have an incoming link, per node.
// Raw links are used on purpose: an input fed through a reroute chain is
// connected even if the chain later resolves away or dangles.
func linkedInputs(links []tree.Link) map[*tree.Node]map[int]bool {
	m := make(map[*tree.Node]map[int]bool)
	for _, l := range links {
		if m[l.ToNode] == nil {
			m[l.ToNode] = make(map[int]bool)
		}
		m[l.ToNode][l.ToSocket] = true
	}
	return m
}

// socketDisplay returns the wire name for the socket at idx: the bare
// socket name when unique within the list, otherwise the name with a
// 1-based [n] occurrence suffix.
func socketDisplay(sockets []*tree.Socket, idx int) string {
	if idx < 0 || idx >= len(sockets) {
		return ""
	}
	name := sockets[idx].Name
	total, nth := 0, 0
	for i, s := range sockets {
		if s.Name != name {
			continue
		}
		total++
		if i == idx {
			nth = total
		}
	}
	if total <= 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, nth)
}

// declareList renders a group interface direction as "name:type | ..."
// with duplicate names disambiguated by a .N suffix starting at the second
// occurrence.
func declareList(sockets []tree.InterfaceSocket) string {
	if len(sockets) == 0 {
		return ""
	}
	counts := make(map[string]int, len(sockets))
	parts := make([]string, 0, len(sockets))
	for _, s := range sockets {
		c := counts[s.Name]
		counts[s.Name] = c + 1
		name := s.Name
		if c > 0 {
			name = fmt.Sprintf("%s.%d", s.Name, c)
		}
		parts = append(parts, name+":"+s.Type)
	}
	return strings.Join(parts, " | ")
}
