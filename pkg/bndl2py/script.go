package bndl2py

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/catalog"
	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// gen accumulates script state across group builders and the top-level
// block. Statements that cannot be expressed become "# line N: ..."
// comment lines at the point where the statement would have run.
type gen struct {
	cat    *catalog.Catalog
	mode   assets.Mode
	digits int
	typ    tree.TreeType
	legacy bool

	// needs marks runtime helpers referenced by the body, so the
	// prelude only carries what the script uses.
	needs   map[string]bool
	skipped int

	groups    map[string]*bndl.Block
	order     []string
	funcs     map[string]*groupFunc
	building  map[string]bool
	funcNames map[string]bool
	emitted   []string
}

// groupFunc is one generated group builder: its Python function name
// and the interface the group declares, kept for socket lookups on
// instances of the group.
type groupFunc struct {
	name    string
	inputs  []tree.InterfaceSocket
	outputs []tree.InterfaceSocket
}

// pyNode is one addressable node inside a block: its Python variable
// and the spec or group interface that decides how Set entries render.
type pyNode struct {
	pyVar string
	spec  *catalog.TypeSpec
	group *groupFunc
}

type pyScope struct {
	nodes map[string]*pyNode
	next  int
}

func newPyScope() *pyScope {
	return &pyScope{nodes: make(map[string]*pyNode), next: 1}
}

// lookup resolves an identity with the same fallback the replayer
// applies: a bare base finds occurrence #1 and vice versa.
func (sc *pyScope) lookup(id string) (*pyNode, bool) {
	if n, ok := sc.nodes[id]; ok {
		return n, true
	}
	base, num := bndl.SplitIdentity(id)
	switch num {
	case 0:
		if n, ok := sc.nodes[id+"#1"]; ok {
			return n, true
		}
	case 1:
		if n, ok := sc.nodes[base]; ok {
			return n, true
		}
	}
	return nil, false
}

// bindBoundaries registers the group boundary pair under the
// identities Connect statements use for them.
func (g *gen) bindBoundaries(sc *pyScope) {
	inSpec, _ := g.cat.Lookup(tree.TypeGroupInput)
	outSpec, _ := g.cat.Lookup(tree.TypeGroupOutput)
	in := &pyNode{pyVar: "n_in", spec: inSpec}
	out := &pyNode{pyVar: "n_out", spec: outSpec}
	sc.nodes["Group Input#1"] = in
	sc.nodes["Group Input"] = in
	sc.nodes["Group Output#1"] = out
	sc.nodes["Group Output"] = out
}

// resolveGroup emits the builder function for a named group, emitting
// referenced groups first so every call site finds its dependency
// defined above it.
func (g *gen) resolveGroup(name string) (*groupFunc, error) {
	if f, ok := g.funcs[name]; ok {
		return f, nil
	}
	if g.building[name] {
		return nil, fmt.Errorf("group %q is part of a reference cycle", name)
	}
	blk, ok := g.groups[name]
	if !ok {
		return nil, fmt.Errorf("unknown group %q", name)
	}
	g.building[name] = true
	defer delete(g.building, name)

	f := &groupFunc{name: funcNameFor(name, g.funcNames)}

	var iface []string
	declaredIn := make(map[string]bool)
	declaredOut := make(map[string]bool)
	for _, st := range blk.Statements {
		d, ok := st.(bndl.Declare)
		if !ok {
			continue
		}
		seen, inOut := declaredIn, "'INPUT'"
		if d.Output {
			seen, inOut = declaredOut, "'OUTPUT'"
		}
		for _, s := range d.Sockets {
			sockName := undecorated(s.Name, seen)
			seen[sockName] = true
			if d.Output {
				f.outputs = append(f.outputs, tree.InterfaceSocket{Name: sockName, Type: s.Type})
			} else {
				f.inputs = append(f.inputs, tree.InterfaceSocket{Name: sockName, Type: s.Type})
			}
			iface = append(iface, fmt.Sprintf("    tree.interface.new_socket(%s, in_out=%s, socket_type=%s)",
				pyString(sockName), inOut, pyEnum(s.Type)))
		}
	}

	sc := newPyScope()
	g.bindBoundaries(sc)
	var body []string
	g.emitBlock(&body, blk, sc, f)

	fn := []string{
		fmt.Sprintf("def %s():", f.name),
		fmt.Sprintf("    existing = bpy.data.node_groups.get(%s)", pyString(name)),
		"    if existing is not None and not CREATE_AS_NEW:",
		"        return existing",
		fmt.Sprintf("    tree = bpy.data.node_groups.new(%s, %s)", pyString(name), pyString(nodeTreeID(g.typ))),
	}
	fn = append(fn, iface...)
	fn = append(fn,
		`    n_in = tree.nodes.new("NodeGroupInput")`,
		"    n_in.location = (-200, 0)",
		`    n_out = tree.nodes.new("NodeGroupOutput")`,
		"    n_out.location = (200, 0)")
	fn = append(fn, body...)
	fn = append(fn, "    return tree", "", "")
	g.emitted = append(g.emitted, fn...)
	g.funcs[name] = f
	return f, nil
}

// undecorated strips a ".N" export de-duplication suffix when the bare
// name was already declared in the same direction.
func undecorated(name string, declared map[string]bool) string {
	if m := dedupSuffixRe.FindStringSubmatch(name); m != nil && declared[m[1]] {
		return m[1]
	}
	return name
}

var dedupSuffixRe = regexp.MustCompile(`^(.+)\.(\d+)$`)

// emitBlock renders one statement block in replay phase order:
// creation and renames, then properties, then links, then frame
// parenting. Locations stay frame-relative; bpy interprets a parented
// node's location relative to its frame, same as the wire format.
func (g *gen) emitBlock(out *[]string, blk *bndl.Block, sc *pyScope, grouped *groupFunc) {
	for _, st := range blk.Statements {
		switch s := st.(type) {
		case bndl.Create:
			g.emitCreate(out, sc, s)
		case bndl.Rename:
			n, ok := sc.lookup(s.Instance)
			if !ok {
				g.comment(out, s.Line, "unknown node %q in Rename", s.Instance)
				continue
			}
			*out = append(*out, fmt.Sprintf("    %s.label = %s", n.pyVar, pyString(s.Label)))
		case bndl.Declare:
			if grouped == nil {
				g.comment(out, s.Line, "Declare outside a group block, ignored")
			}
		}
	}

	for _, st := range blk.Statements {
		set, ok := st.(bndl.Set)
		if !ok {
			continue
		}
		n, found := sc.lookup(set.Instance)
		if !found {
			g.comment(out, set.Line, "unknown node %q in Set", set.Instance)
			continue
		}
		for _, e := range set.Entries {
			g.emitEntry(out, n, set.Instance, e)
		}
	}

	for _, st := range blk.Statements {
		c, ok := st.(bndl.Connect)
		if !ok {
			continue
		}
		from, found := sc.lookup(c.From)
		if !found {
			g.comment(out, c.Line, "unknown node %q in Connect", c.From)
			continue
		}
		to, found := sc.lookup(c.To)
		if !found {
			g.comment(out, c.Line, "unknown node %q in Connect", c.To)
			continue
		}
		*out = append(*out, fmt.Sprintf("    _link(tree, _out(%s), _in(%s))",
			sockArgs(from.pyVar, c.FromSocket), sockArgs(to.pyVar, c.ToSocket)))
	}

	for _, st := range blk.Statements {
		p, ok := st.(bndl.Parent)
		if !ok {
			continue
		}
		child, found := sc.lookup(p.Child)
		if !found {
			g.comment(out, p.Line, "unknown node %q in Parent", p.Child)
			continue
		}
		frame, found := sc.lookup(p.Frame)
		if !found {
			g.comment(out, p.Line, "unknown frame %q in Parent", p.Frame)
			continue
		}
		if frame.spec == nil || frame.spec.TypeID != tree.TypeFrame {
			g.comment(out, p.Line, "%q is not a frame", p.Frame)
			continue
		}
		*out = append(*out, fmt.Sprintf("    %s.parent = %s", child.pyVar, frame.pyVar))
	}
}

func (g *gen) emitCreate(out *[]string, sc *pyScope, s bndl.Create) {
	if _, dup := sc.nodes[s.Instance]; dup {
		g.comment(out, s.Line, "duplicate node identity %q, keeping the first", s.Instance)
		return
	}
	spec, ok := g.cat.Lookup(s.TypeID)
	if !ok {
		g.comment(out, s.Line, "unknown node type %s, skipping %q", s.TypeID, s.Instance)
		return
	}

	var f *groupFunc
	if spec.IsGroup {
		var err error
		f, err = g.resolveGroup(s.Variant)
		if err != nil {
			g.comment(out, s.Line, "node %q: %v", s.Instance, err)
			return
		}
	}

	v := fmt.Sprintf("n_%d", sc.next)
	sc.next++
	*out = append(*out, fmt.Sprintf("    %s = tree.nodes.new(%s)", v, pyString(s.TypeID)))
	base, _ := bndl.SplitIdentity(s.Instance)
	*out = append(*out, fmt.Sprintf("    %s.name = %s", v, pyString(base)))

	switch {
	case f != nil:
		*out = append(*out, fmt.Sprintf("    %s.node_tree = %s()", v, f.name))
	case s.Variant != "" && spec.VariantAttr != "":
		*out = append(*out, fmt.Sprintf("    %s.%s = %s", v, spec.VariantAttr, pyEnum(s.Variant)))
	case s.Variant != "":
		g.comment(out, s.Line, "variant %q on %s has no attribute, skipped", s.Variant, s.TypeID)
	}

	sc.nodes[s.Instance] = &pyNode{pyVar: v, spec: spec, group: f}
}

// emitEntry renders one Set entry. Builtin node attributes come first,
// then socket defaults, then type-specific properties, then curve
// mapping paths, mirroring the replayer's resolution order.
func (g *gen) emitEntry(out *[]string, n *pyNode, id string, e bndl.SetEntry) {
	if e.Value == nil {
		g.comment(out, e.Line, "unusable value %q for %q on %q, default kept", e.Raw, e.Prop, id)
		return
	}

	switch e.Prop {
	case "location":
		v, ok := e.Value.(tree.Vector)
		if !ok || len(v) != 2 {
			g.comment(out, e.Line, "location on %q needs a 2-component vector", id)
			return
		}
		*out = append(*out, fmt.Sprintf("    %s.location = (%s, %s)", n.pyVar, g.num(v[0]), g.num(v[1])))
		return
	case "mute":
		v, ok := e.Value.(tree.Bool)
		if !ok {
			g.comment(out, e.Line, "mute on %q needs a boolean", id)
			return
		}
		*out = append(*out, fmt.Sprintf("    %s.mute = %s", n.pyVar, pyBool(bool(v))))
		return
	case "use_custom_color":
		v, ok := e.Value.(tree.Bool)
		if !ok {
			g.comment(out, e.Line, "use_custom_color on %q needs a boolean", id)
			return
		}
		*out = append(*out, fmt.Sprintf("    %s.use_custom_color = %s", n.pyVar, pyBool(bool(v))))
		return
	case "color":
		v, ok := e.Value.(tree.Vector)
		if !ok || len(v) < 3 {
			g.comment(out, e.Line, "color on %q needs a 3-component vector", id)
			return
		}
		*out = append(*out, fmt.Sprintf("    %s.color = (%s, %s, %s)", n.pyVar, g.num(v[0]), g.num(v[1]), g.num(v[2])))
		return
	case "node_tree":
		// The Create statement already bound the group builder.
		if n.group == nil {
			g.comment(out, e.Line, "node_tree on %q, which is not a group node", id)
		}
		return
	}

	if db, ok := e.Value.(tree.Datablock); ok {
		if _, known := helperFor(db.Kind); !known {
			g.comment(out, e.Line, "unresolvable %s reference %q for %q on %q", db.Kind, db.Name, e.Prop, id)
			return
		}
	}

	ref := bndl.ParseSocketRef(e.Prop)

	if n.group != nil {
		if countSockets(n.group.inputs, ref.Name) >= ref.Index {
			g.emitSetInput(out, n, ref, e.Value)
			return
		}
		g.comment(out, e.Line, "unknown property %q on %s %q, ignored", e.Prop, n.spec.TypeID, id)
		return
	}

	if sockType, ok := specInputType(n.spec, ref); ok {
		kind, valued := catalog.KindForSocketTag(sockType)
		if !valued {
			g.comment(out, e.Line, "socket %q on %q takes no value", e.Prop, id)
			return
		}
		v, fits := catalog.Coerce(e.Value, kind)
		if !fits {
			g.comment(out, e.Line, "value %s does not fit socket %q on %q, default kept", e.Raw, e.Prop, id)
			return
		}
		g.emitSetInput(out, n, ref, v)
		return
	}

	if kind, ok := n.spec.PropKindFor(e.Prop); ok {
		v, fits := catalog.Coerce(e.Value, kind)
		if !fits {
			g.comment(out, e.Line, "value %s does not fit property %q on %q, default kept", e.Raw, e.Prop, id)
			return
		}
		*out = append(*out, fmt.Sprintf("    %s.%s = %s", n.pyVar, e.Prop, g.valueExpr(v)))
		return
	}

	if n.spec.CurveProps {
		if cp, ok := e.Value.(tree.CurvePoint); ok {
			if m := curvePathRe.FindStringSubmatch(e.Prop); m != nil {
				g.needs["_curve_point"] = true
				*out = append(*out, fmt.Sprintf("    _curve_point(%s, %s, %s, %s, %s, %s)",
					n.pyVar, m[1], m[2], g.num(cp.X), g.num(cp.Y), pyEnum(cp.Handle)))
				return
			}
			g.comment(out, e.Line, "curve path %q on %q not recognized", e.Prop, id)
			return
		}
	}

	g.comment(out, e.Line, "unknown property %q on %s %q, ignored", e.Prop, n.spec.TypeID, id)
}

var curvePathRe = regexp.MustCompile(`^mapping\.curves?\[(\d+)\]\.points\[(\d+)\]$`)

func (g *gen) emitSetInput(out *[]string, n *pyNode, ref bndl.SocketRef, v tree.Value) {
	*out = append(*out, fmt.Sprintf("    _set_input(%s, %s, %d, %s)",
		n.pyVar, pyString(ref.Name), ref.Index, g.valueExpr(v)))
}

// comment renders a dropped statement as a script comment, keeping the
// source line number so readers can find it in the export.
func (g *gen) comment(out *[]string, line int, format string, args ...any) {
	g.skipped++
	*out = append(*out, fmt.Sprintf("    # line %d: %s", line, fmt.Sprintf(format, args...)))
}

// specInputType returns the socket type tag of the nth input with the
// referenced name, per the type spec.
func specInputType(spec *catalog.TypeSpec, ref bndl.SocketRef) (string, bool) {
	nth := 0
	for _, s := range spec.Inputs {
		if s.Name == ref.Name {
			nth++
			if nth == ref.Index {
				return s.Type, true
			}
		}
	}
	return "", false
}

func countSockets(socks []tree.InterfaceSocket, name string) int {
	count := 0
	for _, s := range socks {
		if s.Name == name {
			count++
		}
	}
	return count
}

func sockArgs(pyVar string, ref bndl.SocketRef) string {
	if ref.Index > 1 {
		return fmt.Sprintf("%s, %s, %d", pyVar, pyString(ref.Name), ref.Index)
	}
	return fmt.Sprintf("%s, %s", pyVar, pyString(ref.Name))
}

// valueExpr renders a decoded value as a Python literal. Datablock
// references become helper calls resolved at script runtime.
func (g *gen) valueExpr(v tree.Value) string {
	switch x := v.(type) {
	case tree.Float:
		return g.num(float64(x))
	case tree.Int:
		return strconv.FormatInt(int64(x), 10)
	case tree.Bool:
		return pyBool(bool(x))
	case tree.String:
		return pyString(string(x))
	case tree.Enum:
		return pyEnum(string(x))
	case tree.Vector:
		return g.tuple(x)
	case tree.Color:
		return g.tuple(x[:])
	case tree.CurvePoint:
		return fmt.Sprintf("(%s, %s)", g.num(x.X), g.num(x.Y))
	case tree.Datablock:
		h, ok := helperFor(x.Kind)
		if !ok {
			return "None"
		}
		g.needs[h.fn] = true
		return fmt.Sprintf("%s(%s)", h.fn, pyString(x.Name))
	}
	return "None"
}

func (g *gen) num(x float64) string {
	return numfmt.Format(x, g.digits)
}

func (g *gen) tuple(vals []float64) string {
	parts := make([]string, len(vals))
	for i, f := range vals {
		parts[i] = g.num(f)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyString renders a double-quoted Python string literal.
func pyString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// pyEnum renders a single-quoted literal, the bpy convention for enum
// tokens and type identifiers.
func pyEnum(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

var pySlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// funcNameFor derives a unique Python function name from a group name.
func funcNameFor(group string, taken map[string]bool) string {
	base := strings.Trim(pySlugRe.ReplaceAllString(strings.ToLower(group), "_"), "_")
	if base == "" {
		base = "group"
	}
	name := "build_group_" + base
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("build_group_%s_%d", base, i)
	}
	taken[name] = true
	return name
}
