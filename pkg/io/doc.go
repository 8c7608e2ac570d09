// Package io provides JSON import and export for node trees.
//
// # Overview
//
// This package enables serialization of [tree.Tree] values to and from a
// structured JSON format. The format is designed for:
//
//   - Machine-readable inspection of parsed exports
//   - Integration with external tools that produce or consume graph data
//   - Caching of parsed trees for faster re-rendering
//   - Round-trip preservation: import, transform, export, and re-import
//     identically
//
// The JSON format is not the wire format. Text exports use the line-based
// statement grammar handled by the bndl package; this package is the
// structured interchange for everything downstream of parsing.
//
// # JSON Format
//
// The format has a required "type" field and a "nodes" array:
//
//	{
//	  "type": "MATERIAL",
//	  "name": "Glass",
//	  "groups": [
//	    {"name": "Mixer", "inputs": [...], "nodes": [...], "links": [...]}
//	  ],
//	  "nodes": [
//	    {"type_id": "ShaderNodeMath", "variant": "ADD", "name": "Math"},
//	    {"type_id": "ShaderNodeGroup", "name": "Group", "group": "Mixer"}
//	  ],
//	  "links": [
//	    {"from": 0, "from_socket": 0, "to": 1, "to_socket": 0}
//	  ]
//	}
//
// Group definitions serialize children first, so a definition always
// precedes any node that instantiates it. Each group carries its declared
// interface ("inputs" and "outputs") plus its own node and link blocks in
// the same shape as the top level.
//
// # Node Fields
//
// Required:
//   - type_id: Node type identifier, e.g. "ShaderNodeMath"
//
// Optional:
//   - variant: Distinguishing attribute value, e.g. "MULTIPLY"
//   - name, label: Instance identity and display label
//   - location: Editor coordinates as a two-element array
//   - inputs, outputs: Socket lists with type tags and default values
//   - props: Named settings, in declaration order
//   - muted, use_custom_color, color: Display state
//   - parent: Index of the parent frame in the same node array
//   - group: Name of the group definition this node instantiates
//
// # Values
//
// Socket defaults and property values encode as tagged objects so that
// numeric width and semantic kind survive the round trip:
//
//	{"kind": "float", "data": 0.5}
//	{"kind": "vector", "data": [1, 2, 3]}
//	{"kind": "curve_point", "data": {"x": 0.25, "y": 0.75, "handle": "AUTO"}}
//	{"kind": "datablock", "data": {"kind": "Image", "name": "noise"}}
//
// Recognized kinds are float, int, bool, string, enum, vector, color,
// curve_point and datablock. Unknown kinds fail the import.
//
// # Import
//
// Use [ImportJSON] to read a tree from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	t, err := io.ImportJSON("tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the JSON structure and the assembled graph
// (known tree type, in-range link and parent indexes, declared group
// references). Errors are wrapped with context about which group, node or
// link caused the problem.
//
// # Export
//
// Use [ExportJSON] to write a tree to a file, or [WriteJSON] to write to
// any io.Writer:
//
//	err := io.ExportJSON(t, "tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The export includes all node and link data, group definitions with
// their interfaces, socket defaults, properties and frame parenting.
// Fields at their zero value are omitted. This enables full round-trip
// fidelity: import a tree, transform it, export the result, and re-import
// identically.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same tree, but not with concurrent modifications to the
// tree. The [ReadJSON] and [ImportJSON] functions create independent tree
// instances that can be used and modified freely after import.
package io
