package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mvp-joe/jacbridge/internal/bridge"
	"github.com/mvp-joe/jacbridge/internal/mcp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var mcpWatch bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for Jac module resolution",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants ask
which Python imports are Jac modules.

The MCP server provides:
- jac_resolve: resolve an import name against the Jac search path
- jac_annotate: list Jac module references in a Python file
- jac_suppress: turn analyzer unresolved-import diagnostics into Jac overrides

It communicates via stdio (standard MCP transport).

Example:
  jacbridge mcp`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", false, "watch the workspace for Jac module changes")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := newBridge(bridge.WithModuleWatcher(mcpWatch))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "jacbridge MCP Server\n")
	fmt.Fprintf(os.Stderr, "Workspace: %s\n\n", b.Roots()[0])

	server, err := mcp.NewMCPServer(b, afero.NewOsFs())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Serve(ctx)
}
