package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/render"
	"github.com/KDB-USJP/BNDL-Lite/pkg/replay"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
	formatPNG = "png"
	formatPDF = "pdf"

	// defaultPNGScale doubles PNG dimensions for screen-density output.
	defaultPNGScale = 2.0
)

// validFormats is the set of supported render formats.
var validFormats = map[string]bool{formatSVG: true, formatDOT: true, formatPNG: true, formatPDF: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path (derived from the input if empty)
	format   string  // svg, dot, png or pdf
	detailed bool    // show sockets, types and properties
	groups   bool    // expand group definitions as clusters
	scale    float64 // PNG scale factor
	legacy   bool    // accept headerless documents as geometry
}

// newRenderCmd creates the render command for drawing node-link
// diagrams of documents.
//
// Default settings:
//   - format: svg (or inferred from the --output extension)
//   - scale: 2.0 (png only)
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file or directory]",
		Short: "Draw a document's node graph as SVG, PNG, PDF or DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveFormat(&opts); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: document name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, png, pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show socket names, types and property values")
	cmd.Flags().BoolVar(&opts.groups, "groups", false, "expand group definitions as clusters")
	cmd.Flags().Float64Var(&opts.scale, "scale", defaultPNGScale, "scale factor for PNG output")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "accept headerless documents as geometry exports")

	return cmd
}

// resolveFormat settles the output format: an explicit --format wins,
// then the --output extension, then svg.
func resolveFormat(opts *renderOpts) error {
	if opts.format == "" && opts.output != "" {
		ext := strings.TrimPrefix(filepath.Ext(opts.output), ".")
		if validFormats[ext] {
			opts.format = ext
		}
	}
	if opts.format == "" {
		opts.format = formatSVG
	}
	if !validFormats[opts.format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format %q (want svg, dot, png or pdf)", opts.format)
	}
	return nil
}

func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

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
		Logger:               logger,
	})
	if err != nil {
		return err
	}
	printWarnings(doc.Warnings)
	printWarnings(rep.Warnings)

	dot := render.ToDOT(t, render.Options{Detailed: opts.detailed, Groups: opts.groups})
	logger.Debugf("Generated DOT: %d bytes", len(dot))

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("rendering %s", opts.format))
	sp.Start()
	data, err := convert(dot, opts)
	sp.Stop()
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(path, filepath.Ext(path)) + "." + opts.format
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	printSuccess("Rendered %q", t.Name)
	printFile(outputPath)
	printStats(t.NodeCount(), len(t.Links), len(t.Groups))
	return nil
}

// convert turns DOT text into the requested output format.
func convert(dot string, opts *renderOpts) ([]byte, error) {
	switch opts.format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return render.RenderSVG(dot)
	case formatPNG:
		return render.RenderPNG(dot, opts.scale)
	case formatPDF:
		return render.RenderPDF(dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q", opts.format)
	}
}
