package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/logger"
	"github.com/longkey1/xhsnote/internal/tikhub"
	"github.com/longkey1/xhsnote/internal/xhsnote"
	"github.com/longkey1/xhsnote/internal/xhsnote/config"
)

type rootOptions struct {
	logLevel string
	debug    bool
}

var rootOpts = &rootOptions{}

var rootCmd = &cobra.Command{
	Use:   "xhsnote",
	Short: "Fetch Xiaohongshu notes through the TikHub API",
	Long: `xhsnote fetches a single Xiaohongshu note by ID or share link and
prints it in a normalized shape. It can also serve the same lookup over
HTTP or as an MCP tool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.debug, "debug", false, "Human-readable debug logging")
}

// newLogger builds the logger from flags and config
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if rootOpts.logLevel != "" {
		level = rootOpts.logLevel
	}
	if rootOpts.debug {
		level = "debug"
	}
	return logger.New(level, rootOpts.debug)
}

// newFetcher wires the TikHub client into a Fetcher
func newFetcher(cfg *config.Config, log *zap.Logger, opts ...xhsnote.FetcherOption) *xhsnote.Fetcher {
	client := tikhub.NewClient(
		tikhub.WithBaseURL(cfg.BaseURL),
		tikhub.WithToken(cfg.Token),
		tikhub.WithTimeout(cfg.Timeout),
		tikhub.WithLogger(log.Named("tikhub")),
	)
	opts = append([]xhsnote.FetcherOption{xhsnote.WithFetcherLogger(log.Named("fetcher"))}, opts...)
	return xhsnote.NewFetcher(client, opts...)
}

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
