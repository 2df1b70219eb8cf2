package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/internal/server"
	"github.com/matzehuels/flowcanvas/pkg/docstore"
)

// serveCommand creates the "serve" command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flow HTTP API",
		Long: `Serve the flow HTTP API on top of the configured document store.

Documents are kept in memory after first use so that undo and redo work
across requests; every change is written back to the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.withDocs(cmd.Context(), func(docs docstore.Store) error {
				printInfo("Serving %s on %s", c.Config.Storage.Backend, StyleHighlight.Render(addr))
				srv := server.New(docs, c.Config, c.Logger)
				return srv.ListenAndServe(cmd.Context(), addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
