package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/villas/pkg/pipeline"
	"github.com/matzehuels/villas/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes room validation, rendering, region analysis, path finding and
the blueprint store over HTTP. Renders share the configured cache; stored
blueprints use the configured store backend. The server stops gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cfg

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := server.New(server.Config{
				Runner: runner,
				Store:  st,
				Logger: c.Logger,
				Defaults: pipeline.Options{
					CellSize: cfg.Render.CellSize,
					Scale:    cfg.Render.Scale,
					Regions:  cfg.Render.Regions,
					Frame:    cfg.Render.Frame,
				},
				Addr:            cfg.Server.Addr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
			if err != nil {
				return err
			}

			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("store: %s", cfg.Store.Backend)
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
