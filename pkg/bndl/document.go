package bndl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Document is the parsed form of a .bndl file: header fields, note lines,
// and ordered statement blocks. It is a faithful intermediate representation;
// nothing is resolved against a catalog or a live graph yet.
type Document struct {
	Header Header
	Notes  []string

	// Groups holds one block per START/END GROUP pair, in file order
	// (children precede the groups that reference them in well-formed
	// exports). Top holds everything outside group blocks.
	Groups []*Block
	Top    *Block

	// Warnings accumulated while parsing: recoverable conditions such as a
	// missing Tree_Type header or an undecodable Set value.
	Warnings errors.Warnings
}

// Group returns the named group block, or nil.
func (d *Document) Group(name string) *Block {
	for _, g := range d.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Block is one statement scope: a named group definition or the top-level
// tree (Name empty).
type Block struct {
	Name       string
	Statements []Statement
}

// Statement is one parsed line (or line run, for Set) of a block. The
// concrete types are Create, Rename, Declare, Set, Connect and Parent.
type Statement interface {
	isStatement()
	// Pos returns the 1-based line number the statement started on.
	Pos() int
}

// Create instantiates a node.
type Create struct {
	TypeID   string // engine type identifier, e.g. ShaderNodeMath
	Instance string // display identity Base#N, normalized
	Variant  string // optional sub-type or referenced group name
	Line     int
}

// Rename records a display label for a node.
type Rename struct {
	Instance string
	Label    string
	Line     int
}

// Declare lists a group's interface sockets for one direction.
type Declare struct {
	Output  bool // false: Declare Inputs, true: Declare Outputs
	Sockets []tree.InterfaceSocket
	Line    int
}

// Set assigns property values to a node. Entries keep file order.
type Set struct {
	Instance string
	Entries  []SetEntry
	Line     int
}

// SetEntry is one "prop" to value line under a Set statement. Value is nil
// when the text could not be decoded; Raw always preserves the original
// value text so replay can report what it skipped.
type SetEntry struct {
	Prop  string
	Value tree.Value
	Raw   string
	Line  int
}

// Connect joins an output socket to an input socket by display identity.
type Connect struct {
	From       string
	FromSocket SocketRef
	To         string
	ToSocket   SocketRef
	Line       int
}

// Parent attaches a node to a frame.
type Parent struct {
	Child string
	Frame string
	Line  int
}

func (Create) isStatement()  {}
func (Rename) isStatement()  {}
func (Declare) isStatement() {}
func (Set) isStatement()     {}
func (Connect) isStatement() {}
func (Parent) isStatement()  {}

func (s Create) Pos() int  { return s.Line }
func (s Rename) Pos() int  { return s.Line }
func (s Declare) Pos() int { return s.Line }
func (s Set) Pos() int     { return s.Line }
func (s Connect) Pos() int { return s.Line }
func (s Parent) Pos() int  { return s.Line }

// SocketRef names a socket by display name plus the 1-based occurrence
// index among same-named sockets. A bare name is occurrence 1; "Value[3]"
// is the third input named Value.
type SocketRef struct {
	Name  string
	Index int
}

// String renders the display form: the bare name for occurrence 1, the
// bracketed index otherwise.
func (r SocketRef) String() string {
	if r.Index <= 1 {
		return r.Name
	}
	return r.Name + "[" + strconv.Itoa(r.Index) + "]"
}

var socketIndexRe = regexp.MustCompile(`^(.*)\[(\d+)\]$`)

// ParseSocketRef splits a trailing [n] disambiguation suffix off a socket
// display name. Malformed or zero indexes are treated as part of the name.
func ParseSocketRef(s string) SocketRef {
	s = strings.TrimSpace(s)
	if m := socketIndexRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n >= 1 {
			return SocketRef{Name: m[1], Index: n}
		}
	}
	return SocketRef{Name: s, Index: 1}
}

var identitySpaceRe = regexp.MustCompile(`\s*#\s*`)

// normalizeIdentity collapses whitespace around the # counter marker so
// "Math #2" (the Rename form) and "Math#2" compare equal.
func normalizeIdentity(s string) string {
	return identitySpaceRe.ReplaceAllString(strings.TrimSpace(s), "#")
}

// SplitIdentity separates a display identity into its base name and
// occurrence counter. Identities without a counter report n=0.
func SplitIdentity(id string) (base string, n int) {
	i := strings.LastIndex(id, "#")
	if i < 0 {
		return id, 0
	}
	num, err := strconv.Atoi(id[i+1:])
	if err != nil || num < 1 {
		return id, 0
	}
	return id[:i], num
}
