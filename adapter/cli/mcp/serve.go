package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/shiftgrid/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return cli.ErrNotInitialized
		}

		err := mcpinternal.Serve(cmd.Context(), app.Container, cli.Version, cli.Logger())
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
