// Package render provides visualization rendering for node trees.
//
// # Overview
//
// This package contains the rendering pipeline that turns parsed trees
// into node-link diagrams. It provides:
//
//   - DOT generation with frames as clusters ([ToDOT])
//   - Graphviz rendering to responsive SVG ([RenderSVG])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Node-Link Diagrams
//
// [ToDOT] lays a tree out as a traditional directed graph: nodes appear
// as boxes connected by arrows. Frames become Graphviz clusters (nested
// when frames are parented to frames), reroutes collapse to points,
// group nodes get a double border, and muted nodes render dashed and
// grey. With [Options].Detailed, labels carry the node type, variant and
// properties, and edges are annotated with socket names. With
// [Options].Groups, group definitions render as their own clusters after
// the top level.
//
//	dot := render.ToDOT(t, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats
// using the external rsvg-convert tool (from librsvg).
//
//	svg, err := render.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [RenderPDF] and [RenderPNG] bundle the two steps for callers that only
// need the final bytes.
package render
