package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes type, variant and property lines in node labels
	// and socket names on edges. When false, only the display name is
	// shown.
	Detailed bool

	// Groups appends one cluster per group definition after the top
	// level, so instanced sub-graphs render alongside their callers.
	Groups bool
}

// ToDOT converts a tree to Graphviz DOT format for node-link visualization.
// Frames become clusters, reroutes collapse to points and muted nodes are
// rendered dashed and grey. The resulting DOT string can be rendered using
// [RenderSVG], [RenderPDF], or [RenderPNG].
//
// The tree must satisfy [tree.Tree.Validate]; a frame parenting cycle
// would make the cluster walk recurse without bound.
func ToDOT(t *tree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph bndl {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=9, fontcolor=grey30];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")

	seq := 0
	writeBlock(&buf, "  ", "", t.Nodes, t.Links, opts, &seq)

	if opts.Groups {
		for _, g := range t.Groups {
			fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", seq)
			seq++
			fmt.Fprintf(&buf, "    label=%q;\n", "group: "+g.Name)
			buf.WriteString("    style=rounded;\n")
			buf.WriteString("    bgcolor=grey96;\n")
			writeBlock(&buf, "    ", g.Name+"/", g.Nodes, g.Links, opts, &seq)
			buf.WriteString("  }\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeBlock emits one node universe (top level or a group body): nodes
// grouped into frame clusters first, then the links. Node IDs carry the
// block prefix so group bodies never collide with top-level names.
func writeBlock(buf *bytes.Buffer, indent, prefix string, nodes []*tree.Node, links []tree.Link, opts Options, seq *int) {
	byFrame := make(map[*tree.Node][]*tree.Node, len(nodes))
	for _, n := range nodes {
		byFrame[n.ParentFrame] = append(byFrame[n.ParentFrame], n)
	}

	buf.WriteString("\n")
	writeLevel(buf, indent, prefix, nil, byFrame, opts, seq)

	if len(links) == 0 {
		return
	}
	buf.WriteString("\n")
	for _, l := range links {
		from := prefix + l.FromNode.Name
		to := prefix + l.ToNode.Name
		if !opts.Detailed {
			fmt.Fprintf(buf, "%s%q -> %q;\n", indent, from, to)
			continue
		}
		label := socketName(l.FromNode.Outputs, l.FromSocket) + " -> " + socketName(l.ToNode.Inputs, l.ToSocket)
		fmt.Fprintf(buf, "%s%q -> %q [label=%q];\n", indent, from, to, label)
	}
}

// writeLevel emits the nodes parented to frame (nil for the block root).
// Child frames open nested clusters and recurse.
func writeLevel(buf *bytes.Buffer, indent, prefix string, frame *tree.Node, byFrame map[*tree.Node][]*tree.Node, opts Options, seq *int) {
	for _, n := range byFrame[frame] {
		if n.IsFrame() {
			fmt.Fprintf(buf, "%ssubgraph cluster_%d {\n", indent, *seq)
			*seq++
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, displayName(n))
			fmt.Fprintf(buf, "%s  style=dashed;\n", indent)
			writeLevel(buf, indent+"  ", prefix, n, byFrame, opts, seq)
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, prefix+n.Name, strings.Join(nodeAttrs(n, opts), ", "))
	}
}

func displayName(n *tree.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

func nodeLabel(n *tree.Node, detailed bool) string {
	name := displayName(n)
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("type: %s", n.TypeID)}
	if n.Variant != "" {
		parts = append(parts, fmt.Sprintf("variant: %s", n.Variant))
	}
	for _, p := range n.Props {
		parts = append(parts, fmt.Sprintf("%s: %v", p.Name, p.Value))
	}

	return name + "\n" + strings.Join(parts, "\n")
}

func nodeAttrs(n *tree.Node, opts Options) []string {
	if n.IsReroute() {
		return []string{`label=""`, "shape=point", "width=0.08"}
	}

	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed))}
	switch {
	case n.IsGroupNode():
		attrs = append(attrs, "peripheries=2")
	case n.IsGroupInput(), n.IsGroupOutput():
		attrs = append(attrs, "shape=cds")
	}
	if n.UseCustomColor {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", hexColor(n.Color)))
	}
	if n.Muted {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey40")
	}
	return attrs
}

func socketName(socks []*tree.Socket, i int) string {
	if i >= 0 && i < len(socks) {
		return socks[i].Name
	}
	return strconv.Itoa(i)
}

func hexColor(c [3]float64) string {
	comp := func(v float64) int {
		x := int(v*255 + 0.5)
		if x < 0 {
			return 0
		}
		if x > 255 {
			return 255
		}
		return x
	}
	return fmt.Sprintf("#%02x%02x%02x", comp(c[0]), comp(c[1]), comp(c[2]))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
