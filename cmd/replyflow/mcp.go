package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/replyflow/replyflow/internal/cli"
	mcpadapter "github.com/replyflow/replyflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long:  `Exposes the chat surface as Model Context Protocol tools over stdio or SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sse, _ := cmd.Flags().GetBool("sse")
		port, _ := cmd.Flags().GetInt("port")
		botFiles, _ := cmd.Flags().GetStringArray("bot")

		opts := optionsFromFlags(cmd)
		logger := cli.NewLogger(opts.Debug)
		engine, err := cli.CreateEngine(opts, logger)
		if err != nil {
			return err
		}
		if _, err := seedBotFiles(cmd.Context(), engine.Store(), botFiles); err != nil {
			return err
		}

		srv := mcpadapter.NewServer(engine, engine.Store())

		if sse {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return srv.ServeSSE(ctx, port)
		}
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().Int("port", 8081, "Port for SSE mode")
	mcpCmd.Flags().StringArray("bot", nil, "Bot definition YAML file to seed on startup (repeatable)")
}
