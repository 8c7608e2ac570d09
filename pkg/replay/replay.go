// Package replay rebuilds a [tree.Tree] from a parsed BNDL document.
//
// Build walks each statement block in phases: create nodes, declare
// group interfaces, apply properties, connect links, parent frames.
// Recoverable problems (an unknown node type, a socket index past the
// end, a datablock that cannot be resolved) skip the affected item and
// record a warning; only a missing or mismatched tree type aborts the
// whole replay. The returned [Report] carries the applied and skipped
// counts the caller should surface.
package replay

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/catalog"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Options configures replay behavior. The zero value replays with the
// built-in catalog and proxy datablocks.
type Options struct {
	// Catalog supplies the node vocabulary. Nil selects the built-in
	// catalog for the document's tree type.
	Catalog *catalog.Catalog

	// Assets is the datablock policy. Empty selects [assets.ModeProxy].
	Assets assets.Mode

	// Resolver looks up bundled payloads in [assets.ModeBundle].
	// Required in that mode, unused otherwise.
	Resolver assets.Resolver

	// Library collects proxy datablocks. Nil allocates a fresh one.
	Library *assets.Library

	// ExpectType rejects documents of any other tree type. Empty
	// accepts all types.
	ExpectType tree.TreeType

	// AssumeLegacyGeometry treats documents without a Tree_Type header
	// as GEOMETRY exports. Early archives predate the header and are
	// all geometry trees.
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
	if opts.Library == nil {
		opts.Library = assets.NewLibrary()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Report summarizes one replay: how many statements and property
// entries took effect, how many were skipped, the warnings behind the
// skips, and the proxy datablocks created along the way.
type Report struct {
	Applied  int
	Skipped  int
	Warnings errors.Warnings
	Proxies  []*assets.Proxy
}

// Warned returns the number of recorded warnings.
func (r *Report) Warned() int { return len(r.Warnings) }

// Summary renders the applied, skipped and warning counts on one line.
func (r *Report) Summary() string {
	return fmt.Sprintf("applied %d, skipped %d, warnings %d", r.Applied, r.Skipped, r.Warned())
}

// Build rebuilds the node tree a document describes. Group blocks are
// materialized before the blocks that reference them, then the
// top-level block is replayed onto the returned tree.
//
// Returns an INVALID_FORMAT error when the document's tree type is
// absent (and AssumeLegacyGeometry is off) or does not match
// ExpectType, and an INVALID_INPUT error for a nil document or a
// bundle-mode replay without a resolver. Everything else degrades to
// warnings in the report.
func Build(doc *bndl.Document, opts Options) (*tree.Tree, *Report, error) {
	if doc == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "document must not be nil")
	}
	opts = opts.WithDefaults()
	if opts.Assets == assets.ModeBundle && opts.Resolver == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "asset mode %q needs a resolver", opts.Assets)
	}

	report := &Report{}
	typ, err := resolveTreeType(doc.Header.TreeType, opts, report)
	if err != nil {
		return nil, nil, err
	}

	cat := opts.Catalog
	if cat == nil {
		cat = catalog.For(typ)
	}

	t := tree.New(typ, doc.Header.TreeName)
	t.SourceApp = doc.Header.SourceApp

	b := &builder{
		cat:      cat,
		mode:     opts.Assets,
		resolver: opts.Resolver,
		library:  opts.Library,
		logger:   opts.Logger,
		report:   report,
		groups:   make(map[string]*bndl.Block),
		built:    make(map[string]*tree.Group),
		building: make(map[string]bool),
	}

	// First definition wins when a file repeats a group name; the
	// parser has already warned about the duplicate.
	for _, blk := range doc.Groups {
		if _, seen := b.groups[blk.Name]; !seen {
			b.groups[blk.Name] = blk
			b.order = append(b.order, blk.Name)
		}
	}
	opts.Logger.Debug("replaying document", "type", typ, "groups", len(b.order))

	// Every name in order has a block, so resolveGroup cannot fail here.
	for _, name := range b.order {
		b.resolveGroup(name)
	}
	for _, g := range b.done {
		if err := t.AddGroup(g); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "register group %q", g.Name)
		}
	}

	if doc.Top != nil {
		b.buildBlock(doc.Top, topScope(t))
	}

	opts.Logger.Debug("replay complete",
		"nodes", len(t.Nodes), "links", len(t.Links),
		"applied", report.Applied, "skipped", report.Skipped, "warnings", report.Warned())
	return t, report, nil
}

// resolveTreeType applies the header policy: a missing Tree_Type is
// fatal unless legacy geometry files are expected, and ExpectType
// narrows which documents the caller accepts.
func resolveTreeType(header tree.TreeType, opts Options, report *Report) (tree.TreeType, error) {
	typ := header
	if typ == "" {
		if !opts.AssumeLegacyGeometry {
			return "", errors.New(errors.ErrCodeFormat, "no Tree_Type header, cannot determine the tree type")
		}
		typ = tree.TreeGeometry
		report.Warnings.Add(errors.ErrCodeFormat, "no Tree_Type header, assuming GEOMETRY (legacy export)")
	}
	if opts.ExpectType != "" && typ != opts.ExpectType {
		return "", errors.New(errors.ErrCodeFormat, "tree type is %s, expected %s", typ, opts.ExpectType)
	}
	return typ, nil
}
