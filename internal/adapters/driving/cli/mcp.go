package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask the
support assistant questions and manage its knowledge base.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  voxdesk mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  voxdesk mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "voxdesk": {
        "command": "/path/to/voxdesk",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if voiceService == nil || conversationService == nil || knowledgeService == nil {
		return errors.New("assistant services not configured")
	}

	ports := &mcp.Ports{
		Voice:        voiceService,
		Conversation: conversationService,
		Knowledge:    knowledgeService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(commandContext(cmd))
	defer stop()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
