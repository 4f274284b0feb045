package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/longkey1/xhsnote/internal/xhsnote/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Show current configuration settings.

Displays the effective configuration from environment variables,
the config file and defaults. The token is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(w io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Fprintln(w, "Current Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	if cfg.Token != "" {
		fmt.Fprintf(w, "Token:      %s\n", config.MaskToken(cfg.Token))
	} else {
		fmt.Fprintln(w, "Token:      (not set)")
	}
	fmt.Fprintf(w, "Base URL:   %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "Timeout:    %s\n", cfg.Timeout)
	fmt.Fprintf(w, "Log level:  %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "Listen:     %s\n", cfg.Listen)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources")
	fmt.Fprintln(w, "-------")

	for _, env := range []string{
		"XHSNOTE_TOKEN", "TIKHUB_TOKEN", "XHSNOTE_BASE_URL",
		"XHSNOTE_TIMEOUT", "XHSNOTE_LOG_LEVEL", "XHSNOTE_LISTEN",
	} {
		if os.Getenv(env) != "" {
			fmt.Fprintf(w, "%-19s set\n", env+":")
		}
	}

	configPath, err := config.ConfigFilePath()
	if err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fmt.Fprintf(w, "Config file:       %s\n", configPath)
		} else {
			fmt.Fprintln(w, "Config file:       (not found)")
		}
	}

	return nil
}
