package cmd

import (
	"github.com/huangsam/signalboard/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Signalboard MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents compute signal scores,
mindshare, leaderboards and smart followers via standard tools.

Tool calls never write snapshots.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		// Tool calls share the process with the protocol; keep them quiet unless asked
		if !cmd.Flags().Changed("log-level") {
			cfg.LogLevel = "error"
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
