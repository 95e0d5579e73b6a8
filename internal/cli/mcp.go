package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	swarmmcp "github.com/valter-silva-au/swarm/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the swarm MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the swarm MCP server on stdio",
	Long: `Start the swarm MCP server on stdio transport.

The server exposes swarm functionality as MCP tools that AI assistants can
call: list_cards, get_task, get_overview, record_action, get_metrics,
get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil || Actions == nil {
			return fmt.Errorf("services not initialized")
		}

		srv := swarmmcp.NewServer(ViewModel, Actions, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
