package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/longkey1/xhsnote/internal/xhsnote"
)

type getOptions struct {
	noteID   string
	shareURL string
	format   string
}

var getOpts = &getOptions{}

var getCmd = &cobra.Command{
	Use:   "get [note_id|share_url]",
	Short: "Get a single Xiaohongshu note",
	Long: `Retrieve a Xiaohongshu note by its ID or share link and display it.

The positional argument is treated as a share link when it contains "/",
otherwise as a note ID. --note-id takes precedence over --share-url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGet(cmd.Context(), args, getOpts)
	},
}

// errFetchFailed makes the process exit non-zero after the error envelope
// has been printed
var errFetchFailed = fmt.Errorf("fetch failed")

func init() {
	getCmd.Flags().StringVar(&getOpts.noteID, "note-id", "", "Note ID")
	getCmd.Flags().StringVar(&getOpts.shareURL, "share-url", "", "Share link containing the note ID")
	getCmd.Flags().StringVarP(&getOpts.format, "format", "f", "json", "Output format: json, text, table")

	rootCmd.AddCommand(getCmd)
}

func runGet(ctx context.Context, args []string, opts *getOptions) error {
	format, err := xhsnote.ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	req := buildRequest(args, opts)
	result := newFetcher(cfg, log).FetchNote(ctx, req)

	formatter := xhsnote.NewFormatter(format, os.Stdout)
	if err := formatter.FormatResult(result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !result.OK() {
		return errFetchFailed
	}
	return nil
}

// buildRequest merges the positional argument with the flags
func buildRequest(args []string, opts *getOptions) xhsnote.FetchRequest {
	req := xhsnote.FetchRequest{
		NoteID:   opts.noteID,
		ShareURL: opts.shareURL,
	}
	if len(args) == 0 {
		return req
	}
	arg := strings.TrimSpace(args[0])
	if strings.Contains(arg, "/") {
		if req.ShareURL == "" {
			req.ShareURL = arg
		}
	} else if req.NoteID == "" {
		req.NoteID = arg
	}
	return req
}
