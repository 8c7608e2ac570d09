package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/assets"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl2py"
)

// scriptOpts holds the command-line flags for the script command.
type scriptOpts struct {
	output    string // output file path (derived from the input if empty)
	assetMode string // datablock policy baked into the script
	digits    int    // float precision override
	legacy    bool   // accept headerless documents as geometry
	stdout    bool   // write the script to stdout instead of a file
}

// newScriptCmd creates the script command for generating Python replay
// scripts.
func newScriptCmd() *cobra.Command {
	var opts scriptOpts

	cmd := &cobra.Command{
		Use:   "script [file or directory]",
		Short: "Generate a Python replay script from a .bndl document",
		Long: `Script converts a BNDL document into a standalone Python script that
rebuilds the node tree through the bpy API. Statements that cannot be
resolved become comment lines inside the script.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if !cmd.Flags().Changed("assets") {
				opts.assetMode = cfg.AssetMode
			}
			if !cmd.Flags().Changed("digits") {
				opts.digits = cfg.Digits
			}
			return runScript(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: document name with .py)")
	cmd.Flags().StringVar(&opts.assetMode, "assets", "", "datablock policy: none, proxy (default), bundle")
	cmd.Flags().IntVar(&opts.digits, "digits", 0, "float precision for literals (default: 3)")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "accept headerless documents as geometry exports")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "write the script to stdout")

	return cmd
}

func runScript(ctx context.Context, input string, opts *scriptOpts) error {
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

	mode, err := assets.ParseMode(opts.assetMode)
	if err != nil {
		return err
	}

	script, err := bndl2py.Generate(doc, bndl2py.Options{
		Assets:               mode,
		Digits:               opts.digits,
		AssumeLegacyGeometry: opts.legacy,
		Logger:               logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated script for %q", doc.Header.TreeName))

	if opts.stdout {
		for _, w := range doc.Warnings {
			logger.Warnf("%s", w.Message)
		}
		fmt.Print(script)
		return nil
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".py"
	}
	if err := os.WriteFile(out, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printWarnings(doc.Warnings)
	printSuccess("Generated script for %q", doc.Header.TreeName)
	printFile(out)
	printNextStep("Run it in Blender", fmt.Sprintf("blender --python %s", filepath.Base(out)))
	return nil
}
