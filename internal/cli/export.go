package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	treeio "github.com/KDB-USJP/BNDL-Lite/pkg/io"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output string   // output file path (generated from the tree name if empty)
	digits int      // float precision override
	notes  []string // extra lines for the notes block
}

// newExportCmd creates the export command for converting JSON node
// graphs into .bndl documents.
func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Convert a JSON node graph to a .bndl document",
		Long: `Export reads a node graph in the JSON interchange format and writes
it as a BNDL text document. The output filename is generated from the
tree type and name unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("digits") {
				opts.digits = configFromContext(cmd.Context()).Digits
			}
			return runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: generated in the current directory)")
	cmd.Flags().IntVar(&opts.digits, "digits", 0, "float precision for literals (default: 3)")
	cmd.Flags().StringArrayVar(&opts.notes, "note", nil, "append a line to the notes block (repeatable)")

	return cmd
}

func runExport(ctx context.Context, input string, opts *exportOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	t, err := treeio.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded graph: %d nodes, %d links, %d groups", len(t.Nodes), len(t.Links), len(t.Groups))

	data, err := bndl.Marshal(t, bndl.MarshalOptions{
		Digits: opts.digits,
		Notes:  opts.notes,
	})
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		base := t.Name
		if base == "" {
			base = "tree"
		}
		path = bndl.ExportFilename(t.Type, base, cfg.Names.Affixes(), "")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	prog.done(fmt.Sprintf("Exported %d nodes", t.NodeCount()))
	printSuccess("Exported %q", t.Name)
	printFile(path)
	printStats(t.NodeCount(), len(t.Links), len(t.Groups))
	printNextStep("Replay it", fmt.Sprintf("%s replay %s", appName, filepath.Base(path)))
	return nil
}
