// Package bndl2py turns a parsed BNDL document into a standalone Python
// script that rebuilds the node tree through Blender's bpy API.
//
// The script mirrors the replay phases: group builder functions come
// first (children before the groups that reference them), then a
// build_tree function for the top-level block, then a main function
// that creates or reuses the target datablock per tree type. Statements
// the generator cannot resolve (an unknown node type, an undecodable
// value) become comment lines in the output instead of failing the
// whole generation, so the script documents exactly what was dropped.
//
// Host integration matches the replay operators: the script reads
// BNDL_TARGET_OBJECTS and BNDL_CREATE_AS_NEW from its globals when a
// caller injects them, and falls back to safe defaults when run as a
// plain script from Blender's text editor.
package bndl2py

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/catalog"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Options configures script generation. The zero value generates with
// the built-in catalog, proxy asset mode and default float precision.
type Options struct {
	// Catalog supplies the node vocabulary. Nil selects the built-in
	// catalog for the document's tree type.
	Catalog *catalog.Catalog

	// Assets is baked into the script's ASSET_MODE constant and decides
	// whether the datablock helpers create placeholders for missing
	// references. Empty selects [assets.ModeProxy].
	Assets assets.Mode

	// Digits is the float precision for rendered literals. Zero or
	// negative selects numfmt.DefaultDigits.
	Digits int

	// AssumeLegacyGeometry treats documents without a Tree_Type header
	// as GEOMETRY exports, the same policy the replayer applies.
	AssumeLegacyGeometry bool

	// Logger receives debug progress. Nil discards.
	Logger *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by
// defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Assets == "" {
		opts.Assets = assets.ModeProxy
	}
	if opts.Digits <= 0 {
		opts.Digits = numfmt.DefaultDigits
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Generate emits the Python replay script for a parsed document.
//
// Returns an INVALID_FORMAT error when the document's tree type is
// absent (and AssumeLegacyGeometry is off), and an INVALID_INPUT error
// for a nil document. Unresolvable statements degrade to comment lines
// inside the script.
func Generate(doc *bndl.Document, opts Options) (string, error) {
	if doc == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "document must not be nil")
	}
	opts = opts.WithDefaults()

	typ := doc.Header.TreeType
	legacy := false
	if typ == "" {
		if !opts.AssumeLegacyGeometry {
			return "", errors.New(errors.ErrCodeFormat, "no Tree_Type header, cannot determine the tree type")
		}
		typ = tree.TreeGeometry
		legacy = true
	}

	cat := opts.Catalog
	if cat == nil {
		cat = catalog.For(typ)
	}

	g := &gen{
		cat:       cat,
		mode:      opts.Assets,
		digits:    opts.Digits,
		typ:       typ,
		legacy:    legacy,
		needs:     make(map[string]bool),
		groups:    make(map[string]*bndl.Block),
		funcs:     make(map[string]*groupFunc),
		building:  make(map[string]bool),
		funcNames: make(map[string]bool),
	}
	for _, blk := range doc.Groups {
		if _, seen := g.groups[blk.Name]; !seen {
			g.groups[blk.Name] = blk
			g.order = append(g.order, blk.Name)
		}
	}
	opts.Logger.Debug("generating replay script", "type", typ, "groups", len(g.order))

	// Every name in order has a block, so resolveGroup cannot fail
	// here; cycles surface as comments inside the involved builders.
	for _, name := range g.order {
		g.resolveGroup(name)
	}

	var top []string
	topScope := newPyScope()
	if typ == tree.TreeGeometry {
		// Modifier trees always carry the boundary pair; statements may
		// reference them the way group blocks do.
		top = append(top,
			`    n_in = tree.nodes.new("NodeGroupInput")`,
			`    n_in.location = (-200, 0)`,
			`    n_out = tree.nodes.new("NodeGroupOutput")`,
			`    n_out.location = (200, 0)`)
		g.bindBoundaries(topScope)
	}
	if doc.Top != nil {
		g.emitBlock(&top, doc.Top, topScope, nil)
	}

	name := doc.Header.TreeName
	if name == "" {
		name = defaultTreeName(typ)
	}

	var out []string
	out = append(out, g.prelude(doc, typ)...)
	out = append(out, g.emitted...)
	out = append(out, "def build_tree(tree):", "    tree.nodes.clear()")
	out = append(out, top...)
	out = append(out, "", "")
	out = append(out, g.mainFunc(typ, name)...)
	out = append(out, "", "", `if __name__ in ("__main__", "__bndl_replay__"):`, "    main()")

	opts.Logger.Debug("script generated", "lines", len(out), "skipped", g.skipped)
	return strings.Join(out, "\n") + "\n", nil
}

// prelude renders the header comment, the import, the host-injected
// constants, and every runtime helper the body needs.
func (g *gen) prelude(doc *bndl.Document, typ tree.TreeType) []string {
	title := doc.Header.TreeName
	if title == "" {
		title = defaultTreeName(typ)
	}
	lines := []string{
		fmt.Sprintf("# Replay script for the %s node tree %s.", typ, pyString(title)),
		"# Generated from a BNDL export; run inside Blender.",
	}
	if g.legacy {
		lines = append(lines, "# No Tree_Type header, assuming GEOMETRY (legacy export).")
	}
	lines = append(lines,
		"",
		"import bpy",
		"",
		fmt.Sprintf("ASSET_MODE = %s", pyString(string(g.mode))),
		`CREATE_AS_NEW = bool(globals().get("BNDL_CREATE_AS_NEW", False))`,
		`TARGET_OBJECTS = globals().get("BNDL_TARGET_OBJECTS") or []`,
		"",
		"")
	lines = append(lines, coreHelpers...)
	for _, h := range datablockHelperOrder {
		if g.needs[h.fn] {
			lines = append(lines, h.body...)
		}
	}
	if g.needs["_curve_point"] {
		lines = append(lines, curveHelper...)
	}
	return lines
}

// mainFunc renders the per-tree-type entry point: material scripts
// assign the built material to the injected targets, geometry scripts
// attach a nodes modifier, compositor scripts fill the scene tree.
func (g *gen) mainFunc(typ tree.TreeType, name string) []string {
	switch typ {
	case tree.TreeMaterial:
		return []string{
			"def main():",
			"    mat = None",
			"    if not CREATE_AS_NEW:",
			fmt.Sprintf("        mat = bpy.data.materials.get(%s)", pyString(name)),
			"    if mat is None:",
			fmt.Sprintf("        mat = bpy.data.materials.new(%s)", pyString(name)),
			"    mat.use_nodes = True",
			"    build_tree(mat.node_tree)",
			"    for obj in TARGET_OBJECTS:",
			`        data = getattr(obj, "data", None)`,
			`        if data is None or not hasattr(data, "materials"):`,
			"            continue",
			"        if data.materials:",
			"            data.materials[0] = mat",
			"        else:",
			"            data.materials.append(mat)",
		}
	case tree.TreeCompositor:
		return []string{
			"def main():",
			"    scene = bpy.context.scene",
			"    scene.use_nodes = True",
			"    build_tree(scene.node_tree)",
		}
	default:
		return []string{
			"def main():",
			"    tree = None",
			"    if not CREATE_AS_NEW:",
			fmt.Sprintf("        tree = bpy.data.node_groups.get(%s)", pyString(name)),
			"    if tree is None:",
			fmt.Sprintf("        tree = bpy.data.node_groups.new(%s, \"GeometryNodeTree\")", pyString(name)),
			`        tree.interface.new_socket("Geometry", in_out='INPUT', socket_type='NodeSocketGeometry')`,
			`        tree.interface.new_socket("Geometry", in_out='OUTPUT', socket_type='NodeSocketGeometry')`,
			"    build_tree(tree)",
			"    for obj in TARGET_OBJECTS:",
			fmt.Sprintf("        mod = obj.modifiers.new(%s, \"NODES\")", pyString(name)),
			"        mod.node_group = tree",
		}
	}
}

func defaultTreeName(typ tree.TreeType) string {
	switch typ {
	case tree.TreeMaterial:
		return "Material"
	case tree.TreeCompositor:
		return "Compositor Nodes"
	default:
		return "Geometry Nodes"
	}
}

// nodeTreeID returns the bpy node-group type for a tree type.
func nodeTreeID(typ tree.TreeType) string {
	switch typ {
	case tree.TreeMaterial:
		return "ShaderNodeTree"
	case tree.TreeCompositor:
		return "CompositorNodeTree"
	default:
		return "GeometryNodeTree"
	}
}
