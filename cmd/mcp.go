package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/BhavyaPagadala/urbix/internal/mcp"
	"github.com/BhavyaPagadala/urbix/internal/report"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing report listing, statistics, status updates and the pulse summary to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "urbix MCP server started on stdio (reports=%d)\n", len(a.store.List(report.Filter{})))

		srv := mcpserver.NewServer(a.engine, a.pulse, a.loc)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
