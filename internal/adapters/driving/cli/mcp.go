package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pharmacy-rag/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so chatbot front ends and AI
assistants can call the retrieval pipeline.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start a streamable HTTP server instead.

Tools:
  search_knowledge  ranked chunks and the search type that produced them
  get_context       context block for grounding a reply
  answer_question   templated answer with suggested actions

Examples:
  # Stdio mode (default)
  pharmacy-rag mcp serve

  # HTTP mode
  pharmacy-rag mcp serve --port 8080`,
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

	server, err := mcp.NewServer(&mcp.Ports{Retrieval: retrievalService})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
