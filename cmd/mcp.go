package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xmazu/envsync/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server (stdio) for AI/IDE integration",
	Long: `Run the Model Context Protocol server on stdio. Exposes list_templates,
check_env (missing/empty/extra key names), sync_env (non-interactive update with
backup), audit_show and audit_verify. Never returns env values.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	return mcpserver.Run(commandContext(cmd), version())
}
