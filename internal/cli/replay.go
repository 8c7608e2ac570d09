package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	treeio "github.com/KDB-USJP/BNDL-Lite/pkg/io"
	"github.com/KDB-USJP/BNDL-Lite/pkg/replay"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// replayOpts holds the command-line flags for the replay command.
type replayOpts struct {
	output     string // output file path (stdout if empty)
	assetMode  string // datablock policy: none, proxy, bundle
	pack       string // explicit .bndlpack path for bundle mode
	expectType string // reject documents of any other tree type
	legacy     bool   // accept headerless documents as geometry
}

// newReplayCmd creates the replay command for rebuilding node graphs
// from .bndl documents.
func newReplayCmd() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [file or directory]",
		Short: "Rebuild a node graph from a .bndl document",
		Long: `Replay parses a BNDL document, rebuilds the node graph it describes,
and writes the graph in the JSON interchange format. Statements that
cannot be applied are skipped with warnings.

A directory argument opens an interactive picker for its .bndl files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("assets") {
				opts.assetMode = configFromContext(cmd.Context()).AssetMode
			}
			return runReplay(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.assetMode, "assets", "", "datablock policy: none, proxy (default), bundle")
	cmd.Flags().StringVar(&opts.pack, "pack", "", "asset pack for bundle mode (default: companion .bndlpack)")
	cmd.Flags().StringVar(&opts.expectType, "expect-type", "", "reject documents that are not this tree type")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "accept headerless documents as geometry exports")

	return cmd
}

func runReplay(ctx context.Context, input string, opts *replayOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

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

	buildOpts, closeResolver, err := buildOptions(path, opts)
	if err != nil {
		return err
	}
	defer closeResolver()
	buildOpts.Logger = logger

	t, rep, err := replay.Build(doc, buildOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Replayed %q", t.Name))

	toFile := opts.output != ""
	if toFile {
		printWarnings(doc.Warnings)
		printWarnings(rep.Warnings)
	} else {
		for _, w := range append(doc.Warnings, rep.Warnings...) {
			logger.Warnf("%s", w.Message)
		}
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := treeio.WriteJSON(t, out); err != nil {
		return err
	}

	if toFile {
		printSuccess("Replayed %q", t.Name)
		printFile(opts.output)
		printStats(t.NodeCount(), len(t.Links), len(t.Groups))
		printReport(rep)
	}
	return nil
}

// buildOptions assembles replay options from the flags. In bundle mode
// the companion .bndlpack next to the document is opened unless --pack
// names another archive. The returned func closes the resolver.
func buildOptions(docPath string, opts *replayOpts) (replay.Options, func(), error) {
	nop := func() {}

	mode, err := assets.ParseMode(opts.assetMode)
	if err != nil {
		return replay.Options{}, nop, err
	}

	buildOpts := replay.Options{
		Assets:               mode,
		AssumeLegacyGeometry: opts.legacy,
	}

	if opts.expectType != "" {
		typ, err := tree.ParseTreeType(opts.expectType)
		if err != nil {
			return replay.Options{}, nop, errors.New(errors.ErrCodeInvalidInput,
				"invalid --expect-type %q (want GEOMETRY, MATERIAL or COMPOSITOR)", opts.expectType)
		}
		buildOpts.ExpectType = typ
	}

	if mode == assets.ModeBundle {
		packPath := opts.pack
		if packPath == "" {
			p, ok := assets.FindPack(docPath)
			if !ok {
				return replay.Options{}, nop, errors.New(errors.ErrCodeFileNotFound,
					"no asset pack next to %s (expected %s, or use --pack)", docPath, bndl.CompanionPack(docPath))
			}
			packPath = p
		}
		pack, err := assets.OpenPack(packPath)
		if err != nil {
			return replay.Options{}, nop, err
		}
		buildOpts.Resolver = pack
		return buildOpts, func() { pack.Close() }, nil
	}

	return buildOpts, nop, nil
}
