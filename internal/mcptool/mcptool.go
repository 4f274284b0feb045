// Package mcptool serves note fetching as an MCP tool.
package mcptool

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/version"
	"github.com/longkey1/xhsnote/internal/xhsnote"
)

// ToolName is the name the tool is registered under
const ToolName = "get_xiaohongshu_note"

// NoteFetcher is implemented by *xhsnote.Fetcher
type NoteFetcher interface {
	FetchNote(ctx context.Context, req xhsnote.FetchRequest) xhsnote.Result
}

// Tool describes get_xiaohongshu_note
var Tool = &mcp.Tool{
	Name:        ToolName,
	Description: "Fetch a Xiaohongshu (RED) note by note ID or share link and return its title, author, text, images and statistics.",
	Annotations: &mcp.ToolAnnotations{Title: "Get Xiaohongshu note"},
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"note_id": map[string]any{
				"type":        "string",
				"description": "Xiaohongshu note ID. Takes precedence over share_url.",
			},
			"share_url": map[string]any{
				"type":        "string",
				"description": "Share link containing the note ID, e.g. https://www.xiaohongshu.com/explore/<id>?xsec_token=...",
			},
		},
	},
}

// NewServer creates an MCP server exposing the tool
func NewServer(fetcher NoteFetcher, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "xhsnote",
		Version: version.Get(),
	}, nil)
	server.AddTool(Tool, Handler(fetcher, logger))
	return server
}

// Serve runs the MCP server over stdin/stdout until ctx is done or the
// client disconnects
func Serve(ctx context.Context, fetcher NoteFetcher, logger *zap.Logger) error {
	return NewServer(fetcher, logger).Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the tool handler. Error envelopes are returned as tool
// results with IsError set, never as protocol errors.
func Handler(fetcher NoteFetcher, logger *zap.Logger) mcp.ToolHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in xhsnote.FetchRequest
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
				logger.Debug("invalid tool arguments", zap.Error(err))
				return textResult(xhsnote.Result{
					Status:  xhsnote.StatusError,
					Message: "invalid arguments: " + err.Error(),
				})
			}
		}
		return textResult(fetcher.FetchNote(ctx, in))
	}
}

func textResult(result xhsnote.Result) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		IsError: !result.OK(),
	}, nil
}
