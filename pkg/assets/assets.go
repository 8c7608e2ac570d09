// Package assets resolves the datablock references a BNDL file carries:
// materials, objects, images and the other external payloads a node tree
// names but does not contain.
//
// The package offers three replay policies ([Mode]), a proxy bookkeeping
// [Library] for placeholder datablocks, raw-text reference extraction
// ([ExtractRefs]) and a reader for `.bndlpack` archives ([OpenPack]). It
// never creates archives; packing is the exporting host's job.
package assets

import (
	"regexp"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Mode is the datablock policy applied while replaying a document.
type Mode string

const (
	// ModeNone leaves datablock properties unset and records a warning
	// for each reference.
	ModeNone Mode = "none"

	// ModeProxy creates an empty placeholder per referenced datablock so
	// the rebuilt tree keeps its wiring. The default.
	ModeProxy Mode = "proxy"

	// ModeBundle resolves references through a Resolver, typically backed
	// by the companion .bndlpack archive. Unresolvable references fall
	// back to proxy behavior.
	ModeBundle Mode = "bundle"
)

// ParseMode normalizes a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNone:
		return ModeNone, nil
	case ModeProxy, "":
		return ModeProxy, nil
	case ModeBundle:
		return ModeBundle, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown asset mode %q (want none, proxy or bundle)", s)
	}
}

// Ref names one external datablock: its kind and its datablock name.
type Ref struct {
	Kind tree.DatablockKind
	Name string
}

// assetKinds are the datablock kinds that name external payloads, in the
// order ExtractRefs scans them. Node-group references (the ❓ fallback) are
// internal to the file and excluded.
var assetKinds = []tree.DatablockKind{
	tree.DatablockMaterial,
	tree.DatablockObject,
	tree.DatablockCollection,
	tree.DatablockImage,
	tree.DatablockMesh,
	tree.DatablockCurve,
	tree.DatablockText,
	tree.DatablockArmature,
	tree.DatablockCamera,
	tree.DatablockLight,
}

var refPatterns = func() map[tree.DatablockKind]*regexp.Regexp {
	m := make(map[tree.DatablockKind]*regexp.Regexp, len(assetKinds))
	for _, kind := range assetKinds {
		s := regexp.QuoteMeta(bndl.SentinelFor(kind))
		m[kind] = regexp.MustCompile(`"` + s + `([^` + s + `"]+)` + s + `"`)
	}
	return m
}()

// ExtractRefs scans raw BNDL text for sentinel-wrapped datablock references
// and returns them deduplicated, grouped by kind in a fixed kind order and
// by first appearance within a kind. It works on unparsed (even malformed)
// content; names containing escaped quotes are not recognized.
func ExtractRefs(content []byte) []Ref {
	text := string(content)
	var refs []Ref
	seen := make(map[Ref]bool)
	for _, kind := range assetKinds {
		for _, m := range refPatterns[kind].FindAllStringSubmatch(text, -1) {
			ref := Ref{Kind: kind, Name: m[1]}
			if seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// Proxy is a placeholder datablock created in place of an unresolvable
// reference.
type Proxy struct {
	Kind tree.DatablockKind
	Name string
}

// Library tracks the proxies created during one replay. Ensure is
// idempotent per reference, so repeated mentions of the same datablock
// reuse one placeholder.
type Library struct {
	proxies map[Ref]*Proxy
	order   []Ref
}

// NewLibrary creates an empty proxy library.
func NewLibrary() *Library {
	return &Library{proxies: make(map[Ref]*Proxy)}
}

// Ensure returns the proxy for ref, creating it on first use.
func (l *Library) Ensure(ref Ref) *Proxy {
	if p, ok := l.proxies[ref]; ok {
		return p
	}
	p := &Proxy{Kind: ref.Kind, Name: ref.Name}
	l.proxies[ref] = p
	l.order = append(l.order, ref)
	return p
}

// Get returns the proxy for ref and whether one exists.
func (l *Library) Get(ref Ref) (*Proxy, bool) {
	p, ok := l.proxies[ref]
	return p, ok
}

// Proxies returns all created proxies in creation order.
func (l *Library) Proxies() []*Proxy {
	out := make([]*Proxy, 0, len(l.order))
	for _, ref := range l.order {
		out = append(out, l.proxies[ref])
	}
	return out
}

// Len returns the number of distinct proxies created.
func (l *Library) Len() int { return len(l.order) }
