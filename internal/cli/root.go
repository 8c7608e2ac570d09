package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.4.0")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the bndl CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, loads
// the TOML config, configures logging from --log-level, and executes
// the command tree. The logger and config are attached to the context
// and accessible to all commands via loggerFromContext and
// configFromContext.
func Execute(ctx context.Context) error {
	var (
		logLevel   string
		quiet      bool
		configFile string
	)

	root := &cobra.Command{
		Use:          "bndl",
		Short:        "bndl converts node graphs to and from BNDL text documents",
		Long:         `bndl is a toolchain for the BNDL format, a line-oriented text serialization of geometry, material and compositor node graphs. It exports graphs to text, replays text back into graphs, generates Python replay scripts, and renders diagrams.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if logLevel != "" {
				l, err := charmlog.ParseLevel(logLevel)
				if err != nil {
					return fmt.Errorf("invalid log level %q", logLevel)
				}
				level = l
			}
			if quiet {
				level = charmlog.ErrorLevel
			}
			quietMode = quiet

			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("bndl %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/bndl/config.toml)")

	root.AddCommand(newExportCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newScriptCmd())
	root.AddCommand(newRoundCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
