// Package pkg provides the core libraries for the BNDL toolchain.
//
// # Overview
//
// BNDL is a line-oriented text serialization for node trees: the geometry,
// material and compositor graphs of a 3D scene. The pkg directory is
// organized into three main areas:
//
//  1. Format (parsing, formatting, numeric literals)
//  2. Graph (tree model, catalog, replay, outputs)
//  3. Infrastructure (assets, caching, errors, observability)
//
// # Architecture
//
// The typical data flow through the toolchain:
//
//	.bndl document
//	      ↓
//	  [bndl] package (parse → Document)
//	      ↓
//	  [replay] package (statements → tree.Tree)
//	      ↓
//	  [render] / [io] / [bndl2py] output
//
// Exporting runs the reverse direction: a [tree.Tree] is serialized back
// to text by [bndl.Marshal].
//
// # Quick Start
//
// Parse a document and rebuild the tree:
//
//	import (
//	    "github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
//	    "github.com/KDB-USJP/BNDL-Lite/pkg/render"
//	    "github.com/KDB-USJP/BNDL-Lite/pkg/replay"
//	)
//
//	// 1. Parse the text into a document
//	doc, _ := bndl.Parse(content)
//
//	// 2. Replay the statements into a tree
//	t, report, _ := replay.Build(doc, replay.Options{})
//
//	// 3. Render a diagram
//	dot := render.ToDOT(t, render.Options{})
//	svg, _ := render.RenderSVG(dot)
//
// # Main Packages
//
// ## Format
//
// [bndl] - The document codec. Parses .bndl text into a [bndl.Document]
// (header, notes, group blocks, statements) and marshals trees back to
// canonical text. Also owns export filename conventions and companion
// file discovery.
//
// [numfmt] - Numeric literal formatting: fixed-precision floats, vectors
// and colors, plus the literal rounder used by the round command.
//
// ## Graph
//
// [tree] - The in-memory node tree model: nodes with typed properties,
// links between sockets, frames and group definitions.
//
// [catalog] - The node type catalog. Maps type identifiers to socket
// layouts and variant rules so replay can resolve connections.
//
// [replay] - Rebuilds a [tree.Tree] from a parsed document, statement by
// statement, accumulating recoverable problems into a report instead of
// failing on the first unknown node.
//
// [bndl2py] - Generates standalone Python scripts that rebuild the tree
// through the bpy API.
//
// [render] - Node-link diagrams: DOT generation with frames as clusters,
// Graphviz SVG rendering, and PDF/PNG conversion.
//
// [io] - JSON interchange for trees, the CLI's graph input and output
// format.
//
// ## Infrastructure
//
// [assets] - Datablock policies (none, proxy, bundle) and .bndlpack
// archive resolution for replaying documents with external assets.
//
// [cache] - Result caching behind a single interface: FileCache for the
// CLI, RedisCache for shared deployments, NullCache to disable, with
// scoped key prefixes and content hashing.
//
// [errors] - Coded errors ([errors.Error]) and accumulated warnings
// ([errors.Warnings]) shared by the parser, replayer, CLI and server.
//
// [observability] - Optional instrumentation hooks for replay, render
// and cache events. No-op by default; embedders register backends at
// startup.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Common Workflows
//
// Round literals in place:
//
//	rounded := numfmt.RoundLiterals(text, 3)
//
// Generate a replay script with bundled assets:
//
//	script, _ := bndl2py.Generate(doc, bndl2py.Options{
//	    Assets: assets.ModeBundle,
//	})
//
// Export a tree to canonical text:
//
//	text, _ := bndl.Marshal(t, bndl.MarshalOptions{Digits: 3})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/replay/...   # Specific package
//	go test -run Example       # Examples only
//
// [bndl]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/bndl
// [numfmt]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/numfmt
// [tree]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/tree
// [catalog]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/catalog
// [replay]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/replay
// [bndl2py]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/bndl2py
// [render]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/render
// [io]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/io
// [assets]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/assets
// [cache]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/cache
// [errors]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/errors
// [observability]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/KDB-USJP/BNDL-Lite/pkg/buildinfo
package pkg
