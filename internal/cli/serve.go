package cli

import (
	"github.com/spf13/cobra"

	"github.com/KDB-USJP/BNDL-Lite/internal/server"
)

// newServeCmd creates the serve command for running the HTTP API.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve starts the BNDL HTTP API. The API accepts documents as JSON
payloads and offers validation, literal rounding, graph conversion,
script generation and diagram rendering. It shuts down gracefully on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}

			c := newCache(ctx, cfg)
			defer c.Close()

			srv := server.New(server.Config{
				Logger: loggerFromContext(ctx),
				Cache:  c,
				TTL:    cfg.Cache.TTL.Duration,
			})

			printInfo("Serving on %s", addr)
			printNextStep("Check health", "curl http://localhost"+addr+"/healthz")
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")

	return cmd
}
