// Package bndl implements the BNDL text format: a line-oriented, UTF-8
// serialization of node trees that can be read, diffed, and versioned like
// source code, then replayed back into a live node graph.
//
// # File Layout
//
// A .bndl file is assembled from four regions, in order:
//
//	; --- NOTES ---              optional freeform notes block
//	; <line>
//	; --- END NOTES ---
//
//	# BNDL Export v1.4           header: version, Tree_Type, provenance
//	Tree_Type: MATERIAL
//	# Node_Tree: <name>
//	# Node_Count: <int>
//
//	# === GROUP DEFINITIONS ===  one block per node group, children first
//	START GROUP NAMED <name>
//	...statements...
//	END GROUP NAMED <name>
//
//	# === NODE TREE ===          top-level statements, same grammar
//	...statements...
//
// # Statements
//
// Six statement kinds describe a block. Tokens are separated by runs of
// whitespace; instance identities carry a #N per-name occurrence counter:
//
//	Create  <type_id>  "<instance>"  ["<variant>"]
//	Rename  [ <base> #<n> ] to ~ <label> ~
//	Declare Inputs  [ Group Input ]  ~~ name:type | name:type
//	Set  [ <instance> ]
//	    "<prop>" to <value>
//	Connect  [ <from> ]  ○  <socket>  to  [ <to> ]  ⦿  <socket>
//	Parent [ <child> ] to [ <frame> ]
//
// # Values
//
// Each value kind has exactly one encoding: floats via [numfmt.Format],
// booleans as bare true/false, strings quoted, enum tokens wrapped in ©,
// vectors and colors as comma-separated angle-bracket literals, and
// datablock references as a quoted name wrapped in a kind-specific sentinel
// rune (❆Material❆, ✷Image✷, ...).
//
// # Entry Points
//
// [Marshal] serializes a [tree.Tree] to BNDL text; [Parse] reads text back
// into a [Document] of ordered statements without touching any live graph.
// Replaying a Document into a tree is the job of the replay package; this
// package never dereferences datablock names.
//
// [numfmt.Format]: github.com/KDB-USJP/BNDL-Lite/pkg/numfmt
package bndl
