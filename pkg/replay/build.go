package replay

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/catalog"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// builder holds the cross-block replay state: the vocabulary, the
// datablock policy, and the group definitions materialized so far.
type builder struct {
	cat      *catalog.Catalog
	mode     assets.Mode
	resolver assets.Resolver
	library  *assets.Library
	logger   *log.Logger
	report   *Report

	groups   map[string]*bndl.Block
	order    []string
	built    map[string]*tree.Group
	building map[string]bool
	done     []*tree.Group // completion order, children before parents
}

// resolveGroup returns the materialized definition for name, building
// it from its block on first use. Definitions referenced while still
// being built form a cycle and fail, as do names with no block.
func (b *builder) resolveGroup(name string) (*tree.Group, error) {
	if g, ok := b.built[name]; ok {
		return g, nil
	}
	if b.building[name] {
		return nil, errors.New(errors.ErrCodeResolution, "group %q is part of a reference cycle", name)
	}
	blk, ok := b.groups[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeResolution, "group %q is not defined", name)
	}
	b.building[name] = true
	g := tree.NewGroup(name)
	b.buildBlock(blk, groupScope(g))
	delete(b.building, name)
	b.built[name] = g
	b.done = append(b.done, g)
	b.logger.Debug("materialized group", "name", name, "nodes", len(g.Nodes), "links", len(g.Links))
	return g, nil
}

// buildBlock replays one statement block in phases. Statement order
// within the file does not matter beyond ties; a Set before its Create
// still lands because creation runs first.
func (b *builder) buildBlock(blk *bndl.Block, sc *scope) {
	b.createNodes(blk, sc)
	b.declareInterface(blk, sc)
	b.applyProperties(blk, sc)
	b.connectLinks(blk, sc)
	b.parentFrames(blk, sc)
	b.absoluteLocations(sc)
}

func (b *builder) createNodes(blk *bndl.Block, sc *scope) {
	for _, st := range blk.Statements {
		switch s := st.(type) {
		case bndl.Create:
			b.createNode(s, sc)
		case bndl.Rename:
			n, ok := sc.lookup(s.Instance)
			if !ok {
				b.warnf(s.Line, "unknown node %q in Rename", s.Instance)
				b.report.Skipped++
				continue
			}
			n.Label = s.Label
			b.report.Applied++
		}
	}
}

func (b *builder) createNode(s bndl.Create, sc *scope) {
	if _, dup := sc.nodes[s.Instance]; dup {
		b.warnf(s.Line, "duplicate node identity %q, keeping the first", s.Instance)
		b.report.Skipped++
		return
	}
	spec, ok := b.cat.Lookup(s.TypeID)
	if !ok {
		b.warnf(s.Line, "unknown node type %s, skipping %q", s.TypeID, s.Instance)
		b.report.Skipped++
		return
	}
	n, _ := b.cat.Instantiate(s.TypeID)
	base, _ := bndl.SplitIdentity(s.Instance)
	n.Name = base

	if spec.IsGroup {
		g, err := b.resolveGroup(s.Variant)
		if err != nil {
			b.warnf(s.Line, "node %q: %v", s.Instance, err)
			b.report.Skipped++
			return
		}
		n.Group = g
		n.Variant = g.Name
		bindGroupSockets(n, g, b.cat)
	} else {
		n.Variant = s.Variant
	}

	if err := sc.addNode(n); err != nil {
		b.warnf(s.Line, "node %q: %v", s.Instance, err)
		b.report.Skipped++
		return
	}
	sc.nodes[s.Instance] = n
	b.report.Applied++
}

// bindGroupSockets mirrors a group's declared interface onto an
// instance node, one socket per declaration.
func bindGroupSockets(n *tree.Node, g *tree.Group, cat *catalog.Catalog) {
	for _, s := range g.Inputs {
		n.Inputs = append(n.Inputs, &tree.Socket{Name: s.Name, Type: socketTagFor(cat, s.Type)})
	}
	for _, s := range g.Outputs {
		n.Outputs = append(n.Outputs, &tree.Socket{Name: s.Name, Type: socketTagFor(cat, s.Type)})
	}
}

func socketTagFor(cat *catalog.Catalog, interfaceType string) string {
	if tag, ok := cat.SocketTag(interfaceType); ok {
		return tag
	}
	return interfaceType
}

func (b *builder) declareInterface(blk *bndl.Block, sc *scope) {
	for _, st := range blk.Statements {
		d, ok := st.(bndl.Declare)
		if !ok {
			continue
		}
		if sc.group == nil {
			b.warnf(d.Line, "Declare outside a group block, ignored")
			b.report.Skipped += len(d.Sockets)
			continue
		}
		seen := sc.declaredIn
		if d.Output {
			seen = sc.declaredOut
		}
		for _, s := range d.Sockets {
			name := undecoratedName(s.Name, seen)
			if d.Output {
				sc.group.DeclareOutput(name, s.Type)
			} else {
				sc.group.DeclareInput(name, s.Type)
			}
			seen[name] = true
			b.report.Applied++
		}
	}
}

var dedupSuffixRe = regexp.MustCompile(`^(.+)\.(\d+)$`)

// undecoratedName strips the .N suffix the exporter appends to repeated
// interface names, but only when the undecorated name was already
// declared in the same direction. Other dotted names pass through.
func undecoratedName(name string, declared map[string]bool) string {
	if m := dedupSuffixRe.FindStringSubmatch(name); m != nil && declared[m[1]] {
		return m[1]
	}
	return name
}

func (b *builder) applyProperties(blk *bndl.Block, sc *scope) {
	for _, st := range blk.Statements {
		set, ok := st.(bndl.Set)
		if !ok {
			continue
		}
		n, ok := sc.lookup(set.Instance)
		if !ok {
			b.warnf(set.Line, "unknown node %q in Set", set.Instance)
			b.report.Skipped += len(set.Entries)
			continue
		}
		for _, e := range set.Entries {
			b.applyEntry(n, e)
		}
	}
}

// applyEntry lands one property line on its node: built-in display
// settings first, then unconnected input defaults by socket display
// name, then type-specific properties.
func (b *builder) applyEntry(n *tree.Node, e bndl.SetEntry) {
	if e.Value == nil {
		b.warnf(e.Line, "unusable value %q for %q on %q, default kept", e.Raw, e.Prop, n.Name)
		b.report.Skipped++
		return
	}

	switch e.Prop {
	case "location":
		v, ok := e.Value.(tree.Vector)
		if !ok || len(v) != 2 {
			b.warnf(e.Line, "location on %q needs a 2-component vector", n.Name)
			b.report.Skipped++
			return
		}
		// Frame-relative until parenting resolves; see absoluteLocations.
		n.Location = [2]float64{v[0], v[1]}
		b.report.Applied++
		return
	case "mute":
		v, ok := e.Value.(tree.Bool)
		if !ok {
			b.warnf(e.Line, "mute on %q needs a boolean", n.Name)
			b.report.Skipped++
			return
		}
		n.Muted = bool(v)
		b.report.Applied++
		return
	case "use_custom_color":
		v, ok := e.Value.(tree.Bool)
		if !ok {
			b.warnf(e.Line, "use_custom_color on %q needs a boolean", n.Name)
			b.report.Skipped++
			return
		}
		n.UseCustomColor = bool(v)
		b.report.Applied++
		return
	case "color":
		v, ok := e.Value.(tree.Vector)
		if !ok || len(v) < 3 {
			b.warnf(e.Line, "color on %q needs a 3-component vector", n.Name)
			b.report.Skipped++
			return
		}
		n.Color = [3]float64{v[0], v[1], v[2]}
		b.report.Applied++
		return
	case "node_tree":
		// The Create statement already bound the definition; the entry
		// restates it for readers.
		if n.Group == nil {
			b.warnf(e.Line, "node_tree on %q, which is not a group node", n.Name)
			b.report.Skipped++
			return
		}
		b.report.Applied++
		return
	}

	ref := bndl.ParseSocketRef(e.Prop)
	if idx, ok := n.InputIndex(ref.Name, ref.Index); ok {
		b.applySocketDefault(n, idx, e)
		return
	}

	if spec, ok := b.cat.Lookup(n.TypeID); ok {
		if kind, ok := spec.PropKindFor(e.Prop); ok {
			b.applyProp(n, kind, e)
			return
		}
		if spec.CurveProps {
			if cp, ok := e.Value.(tree.CurvePoint); ok {
				n.SetProp(e.Prop, cp)
				b.report.Applied++
				return
			}
		}
	}
	b.warnf(e.Line, "unknown property %q on %s %q, ignored", e.Prop, n.TypeID, n.Name)
	b.report.Skipped++
}

func (b *builder) applySocketDefault(n *tree.Node, idx int, e bndl.SetEntry) {
	sock := n.Inputs[idx]
	kind, ok := catalog.KindForSocketTag(sock.Type)
	if !ok {
		b.warnf(e.Line, "socket %q on %q takes no value", e.Prop, n.Name)
		b.report.Skipped++
		return
	}
	v, ok := catalog.Coerce(e.Value, kind)
	if !ok {
		b.warnf(e.Line, "value %s does not fit socket %q on %q, default kept", e.Raw, e.Prop, n.Name)
		b.report.Skipped++
		return
	}
	if db, ok := v.(tree.Datablock); ok {
		resolved, keep := b.resolveDatablock(db, e)
		if !keep {
			return
		}
		v = resolved
	}
	sock.Default = v
	b.report.Applied++
}

func (b *builder) applyProp(n *tree.Node, kind catalog.PropKind, e bndl.SetEntry) {
	v, ok := catalog.Coerce(e.Value, kind)
	if !ok {
		b.warnf(e.Line, "value %s does not fit property %q on %q, default kept", e.Raw, e.Prop, n.Name)
		b.report.Skipped++
		return
	}
	if db, ok := v.(tree.Datablock); ok {
		resolved, keep := b.resolveDatablock(db, e)
		if !keep {
			return
		}
		v = resolved
	}
	n.SetProp(e.Prop, v)
	b.report.Applied++
}

// resolveDatablock applies the configured asset policy to one
// reference. The returned bool is false when the property should stay
// unset.
func (b *builder) resolveDatablock(db tree.Datablock, e bndl.SetEntry) (tree.Value, bool) {
	if db.Kind == tree.DatablockUnknown || db.Kind == tree.DatablockNodeTree {
		return db, true
	}
	ref := assets.Ref{Kind: db.Kind, Name: db.Name}
	kind := strings.ToLower(string(db.Kind))
	switch b.mode {
	case assets.ModeNone:
		b.warnf(e.Line, "%s %q left unresolved (asset mode none)", kind, db.Name)
		b.report.Skipped++
		return nil, false
	case assets.ModeBundle:
		a, ok, err := b.resolver.Resolve(ref)
		if err != nil {
			b.warnf(e.Line, "resolving %s %q: %v, proxy created instead", kind, db.Name, err)
			b.ensureProxy(ref)
			return db, true
		}
		if !ok {
			b.warnf(e.Line, "%s %q is not in the asset bundle, proxy created instead", kind, db.Name)
			b.ensureProxy(ref)
			return db, true
		}
		b.logger.Debug("resolved bundled asset", "kind", kind, "name", db.Name, "file", a.Filename)
		return db, true
	default:
		b.ensureProxy(ref)
		return db, true
	}
}

func (b *builder) ensureProxy(ref assets.Ref) {
	before := b.library.Len()
	p := b.library.Ensure(ref)
	if b.library.Len() > before {
		b.report.Proxies = append(b.report.Proxies, p)
		b.logger.Debug("created proxy datablock", "kind", ref.Kind, "name", ref.Name)
	}
}

func (b *builder) connectLinks(blk *bndl.Block, sc *scope) {
	for _, st := range blk.Statements {
		c, ok := st.(bndl.Connect)
		if !ok {
			continue
		}
		from, ok := sc.lookup(c.From)
		if !ok {
			b.warnf(c.Line, "unknown node %q in Connect", c.From)
			b.report.Skipped++
			continue
		}
		to, ok := sc.lookup(c.To)
		if !ok {
			b.warnf(c.Line, "unknown node %q in Connect", c.To)
			b.report.Skipped++
			continue
		}
		fi, ok := from.OutputIndex(c.FromSocket.Name, c.FromSocket.Index)
		if !ok {
			b.warnf(c.Line, "no output %s on %q", c.FromSocket, c.From)
			b.report.Skipped++
			continue
		}
		ti, ok := to.InputIndex(c.ToSocket.Name, c.ToSocket.Index)
		if !ok {
			b.warnf(c.Line, "no input %s on %q", c.ToSocket, c.To)
			b.report.Skipped++
			continue
		}
		l := tree.Link{FromNode: from, FromSocket: fi, ToNode: to, ToSocket: ti}
		if err := sc.addLink(l); err != nil {
			b.warnf(c.Line, "connect %q to %q: %v", c.From, c.To, err)
			b.report.Skipped++
			continue
		}
		b.report.Applied++
	}
}

func (b *builder) parentFrames(blk *bndl.Block, sc *scope) {
	for _, st := range blk.Statements {
		p, ok := st.(bndl.Parent)
		if !ok {
			continue
		}
		child, ok := sc.lookup(p.Child)
		if !ok {
			b.warnf(p.Line, "unknown node %q in Parent", p.Child)
			b.report.Skipped++
			continue
		}
		frame, ok := sc.lookup(p.Frame)
		if !ok {
			b.warnf(p.Line, "unknown frame %q in Parent", p.Frame)
			b.report.Skipped++
			continue
		}
		if !frame.IsFrame() {
			b.warnf(p.Line, "%q is not a frame", p.Frame)
			b.report.Skipped++
			continue
		}
		if framesCycle(child, frame) {
			b.warnf(p.Line, "parenting %q to %q would form a cycle", p.Child, p.Frame)
			b.report.Skipped++
			continue
		}
		child.ParentFrame = frame
		b.report.Applied++
	}
}

// framesCycle reports whether child already sits above frame in the
// parenting chain.
func framesCycle(child, frame *tree.Node) bool {
	for p := frame; p != nil; p = p.ParentFrame {
		if p == child {
			return true
		}
	}
	return false
}

// absoluteLocations converts stored frame-relative offsets back to
// absolute editor coordinates, outermost frames first.
func (b *builder) absoluteLocations(sc *scope) {
	done := make(map[*tree.Node]bool)
	var fix func(n *tree.Node)
	fix = func(n *tree.Node) {
		if done[n] {
			return
		}
		done[n] = true
		if n.ParentFrame == nil {
			return
		}
		fix(n.ParentFrame)
		n.Location[0] += n.ParentFrame.Location[0]
		n.Location[1] += n.ParentFrame.Location[1]
	}
	for _, n := range sc.list() {
		fix(n)
	}
}

// scope is the per-block node universe: either a group under
// construction or the tree's top level.
type scope struct {
	tree  *tree.Tree
	group *tree.Group
	nodes map[string]*tree.Node

	declaredIn  map[string]bool
	declaredOut map[string]bool
}

func topScope(t *tree.Tree) *scope {
	return &scope{
		tree:        t,
		nodes:       make(map[string]*tree.Node),
		declaredIn:  make(map[string]bool),
		declaredOut: make(map[string]bool),
	}
}

// groupScope prepares a group's universe. The boundary nodes exist
// before any Create statement runs and are addressable under their
// numbered and bare identities.
func groupScope(g *tree.Group) *scope {
	sc := &scope{
		group:       g,
		nodes:       make(map[string]*tree.Node),
		declaredIn:  make(map[string]bool),
		declaredOut: make(map[string]bool),
	}
	if in := g.InputNode(); in != nil {
		sc.nodes["Group Input#1"] = in
		sc.nodes["Group Input"] = in
	}
	if out := g.OutputNode(); out != nil {
		sc.nodes["Group Output#1"] = out
		sc.nodes["Group Output"] = out
	}
	return sc
}

func (sc *scope) addNode(n *tree.Node) error {
	if sc.group != nil {
		return sc.group.AddNode(n)
	}
	return sc.tree.AddNode(n)
}

func (sc *scope) addLink(l tree.Link) error {
	if sc.group != nil {
		return sc.group.AddLink(l)
	}
	return sc.tree.AddLink(l)
}

func (sc *scope) list() []*tree.Node {
	if sc.group != nil {
		return sc.group.Nodes
	}
	return sc.tree.Nodes
}

// lookup resolves a display identity, accepting the bare base name for
// occurrence 1 so legacy statements and numbered ones address the same
// node.
func (sc *scope) lookup(id string) (*tree.Node, bool) {
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

func (b *builder) warnf(line int, format string, args ...any) {
	if line > 0 {
		format = "line %d: " + format
		args = append([]any{line}, args...)
	}
	b.report.Warnings.Add(errors.ErrCodeResolution, format, args...)
}
