// Package tools registers the GitHub, Jenkins and cache administration
// tools on an MCP server.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/logging"
	"github.com/huangjien/devops-mcps/internal/metrics"
	"github.com/huangjien/devops-mcps/internal/observability"
)

// textResult creates a CallToolResult with plain text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errResult creates a CallToolResult carrying the error message. Tool
// failures are reported in-band so the LLM sees them, not as protocol
// errors.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
		IsError: true,
	}
}

// jsonResult marshals the handler's value as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

// addTool registers a tool whose handler returns a JSON-serializable
// value. The wrapper assigns an invocation id, records metrics and a
// trace span, and converts handler errors into in-band tool errors.
func addTool[In any](s *mcp.Server, tool *mcp.Tool, handler func(ctx context.Context, args In) (any, error)) {
	mcp.AddTool(s, tool, func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, any, error) {
		ctx, span := observability.StartSpan(ctx, "tool."+tool.Name)
		defer span.End()

		log := logging.Op().With("tool", tool.Name, "invocation_id", uuid.NewString())
		start := time.Now()

		value, err := handler(ctx, args)
		elapsed := time.Since(start)
		if err != nil {
			metrics.RecordToolInvocation(tool.Name, "error", elapsed)
			log.Warn("tool failed", "error", err, "elapsed_ms", elapsed.Milliseconds())
			return errResult(err), nil, nil
		}

		metrics.RecordToolInvocation(tool.Name, "ok", elapsed)
		log.Debug("tool completed", "elapsed_ms", elapsed.Milliseconds())

		if text, ok := value.(string); ok {
			return textResult(text), nil, nil
		}
		result, err := jsonResult(value)
		if err != nil {
			return errResult(err), nil, nil
		}
		return result, nil, nil
	})
}
