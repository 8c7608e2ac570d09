package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/replay"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	legacy bool // accept headerless documents as geometry
}

// newInspectCmd creates the inspect command for examining documents
// without writing any output files.
func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [file or directory]",
		Short: "Show header, statistics and warnings for a document",
		Long: `Inspect parses and replays a BNDL document and reports what it
contains: the header fields, group and node counts, companion files,
referenced datablocks, notes, and every warning the replay produced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "accept headerless documents as geometry exports")

	return cmd
}

func runInspect(ctx context.Context, input string, opts *inspectOpts) error {
	path, err := resolveInput(input)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := bndl.Parse(content)
	if err != nil {
		return err
	}

	t, rep, err := replay.Build(doc, replay.Options{
		AssumeLegacyGeometry: opts.legacy,
		Logger:               loggerFromContext(ctx),
	})
	if err != nil {
		printHeader(doc)
		printWarnings(doc.Warnings)
		return err
	}

	printHeader(doc)
	if len(doc.Groups) > 0 {
		names := make([]string, len(doc.Groups))
		for i, g := range doc.Groups {
			names[i] = g.Name
		}
		printKeyValue("Groups", strings.Join(names, ", "))
	}
	printCompanions(path)
	printRefs(content)
	printNotes(doc.Notes)

	printStats(t.NodeCount(), len(t.Links), len(t.Groups))
	printReport(rep)
	printWarnings(doc.Warnings)
	printWarnings(rep.Warnings)

	if doc.Header.NodeCount > 0 && doc.Header.NodeCount != t.NodeCount() {
		printWarning("header claims %d nodes, replay built %d", doc.Header.NodeCount, t.NodeCount())
	}
	return nil
}

// printHeader prints the parsed header fields, skipping absent ones.
func printHeader(doc *bndl.Document) {
	h := doc.Header
	if h.Version != "" {
		printKeyValue("Format", h.Version)
	}
	if h.TreeType != "" {
		printKeyValue("Tree type", string(h.TreeType))
	}
	if h.TreeName != "" {
		printKeyValue("Name", h.TreeName)
	}
	if h.SourceApp != "" {
		printKeyValue("Source", h.SourceApp)
	}
	if !h.ExportDate.IsZero() {
		printKeyValue("Exported", h.ExportDate.Format(bndl.DateLayout))
	}
	if h.NodeCount > 0 {
		printKeyValue("Node count", strconv.Itoa(h.NodeCount))
	}
}

// printCompanions lists archive files sitting next to the document.
func printCompanions(path string) {
	if pack, ok := assets.FindPack(path); ok {
		printKeyValue("Asset pack", pack)
	}
	if blend, ok := assets.FindAssetBlend(path); ok {
		printKeyValue("Asset blend", blend)
	}
}

// printRefs lists the external datablocks the raw text references.
func printRefs(content []byte) {
	refs := assets.ExtractRefs(content)
	if len(refs) == 0 {
		return
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = fmt.Sprintf("%s %q", strings.ToLower(string(r.Kind)), r.Name)
	}
	printKeyValue("References", strings.Join(parts, ", "))
}

// printNotes prints the notes block, one detail line per note.
func printNotes(notes []string) {
	for _, n := range notes {
		printDetail("note: %s", n)
	}
}
