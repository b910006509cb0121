package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dmorales/huq/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for agent integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an agent drive the review workflow natively: list the queue,
read refined specifications, submit tracker items, and approve or reject
them with the same validation as the CLI. Configure with:

  {
    "mcpServers": {
      "huq": { "command": "huq", "args": ["mcp"] }
    }
  }

Available tools: huq_list_hus, huq_show_hu, huq_submit_hu,
huq_approve_hu, huq_reject_hu`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, api, err := requireSession()
		if err != nil {
			return err
		}
		ctrl := newController(api)
		srv := mcp.NewServer(ctrl, appState, api, reviewerName(sess))
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
