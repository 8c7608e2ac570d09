package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/numfmt"
)

// roundOpts holds the command-line flags for the round command.
type roundOpts struct {
	output  string // output file path (stdout if empty)
	digits  int    // float precision
	inPlace bool   // overwrite the input file
}

// newRoundCmd creates the round command for shortening numeric
// literals in a document.
func newRoundCmd() *cobra.Command {
	var opts roundOpts

	cmd := &cobra.Command{
		Use:   "round [file or directory]",
		Short: "Round numeric literals in a document",
		Long: `Round rewrites the <...> literals of a BNDL document with a fixed
float precision, leaving everything else byte for byte intact. The
operation is idempotent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.inPlace && opts.output != "" {
				return errors.New(errors.ErrCodeInvalidInput, "--write and --output are mutually exclusive")
			}
			if !cmd.Flags().Changed("digits") {
				opts.digits = configFromContext(cmd.Context()).Digits
				if opts.digits <= 0 {
					opts.digits = numfmt.DefaultDigits
				}
			}
			return runRound(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&opts.digits, "digits", 0, "float precision (default: 3)")
	cmd.Flags().BoolVarP(&opts.inPlace, "write", "w", false, "rewrite the input file in place")

	return cmd
}

func runRound(ctx context.Context, input string, opts *roundOpts) error {
	path, err := resolveInput(input)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	rounded := numfmt.RoundLiterals(string(content), opts.digits)

	if opts.inPlace {
		if rounded == string(content) {
			printInfo("No literals changed in %s", path)
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(rounded), info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printSuccess("Rounded literals to %d digits", opts.digits)
		printFile(path)
		return nil
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write([]byte(rounded)); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Rounded literals to %d digits", opts.digits)
		printFile(opts.output)
	}
	return nil
}
