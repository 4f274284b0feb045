package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/longkey1/xhsnote/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
get_xiaohongshu_note tool. Logs are written to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("mcp server starting")
	if err := mcptool.Serve(ctx, newFetcher(cfg, log), log.Named("mcp")); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}
