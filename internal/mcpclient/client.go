// Package mcpclient is a thin MCP client used by the CLI "call" and
// "tools" subcommands. It connects to a running HTTP server or spawns
// the stdio server as a child process.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/logging"
)

// ToolInfo is the subset of tool metadata shown by the "tools" listing.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client holds an open MCP session.
type Client struct {
	session *mcp.ClientSession
}

// ConnectHTTP opens a session against a streamable-HTTP MCP endpoint.
func ConnectHTTP(ctx context.Context, endpoint string) (*Client, error) {
	transport := &mcp.StreamableClientTransport{Endpoint: endpoint}
	return connect(ctx, transport)
}

// ConnectStdio spawns the given command and speaks MCP over its
// stdin/stdout. Stderr passes through so server logs stay visible.
func ConnectStdio(ctx context.Context, command string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = os.Stderr
	return connect(ctx, &mcp.CommandTransport{Command: cmd})
}

func connect(ctx context.Context, transport mcp.Transport) (*Client, error) {
	impl := &mcp.Implementation{Name: "devops-mcps-cli", Version: "1.0.0"}
	session, err := mcp.NewClient(impl, nil).Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server: %w", err)
	}
	logging.Op().Debug("mcp session established")
	return &Client{session: session}, nil
}

// ListTools returns the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	res, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	out := make([]ToolInfo, 0, len(res.Tools))
	for _, t := range res.Tools {
		out = append(out, ToolInfo{Name: t.Name, Description: t.Description})
	}
	return out, nil
}

// CallTool invokes a tool with JSON arguments and returns the
// concatenated text content. A tool-level error comes back as a Go
// error carrying the tool's message.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	params := &mcp.CallToolParams{Name: name}
	if len(args) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(args, &decoded); err != nil {
			return "", fmt.Errorf("arguments must be a JSON object: %w", err)
		}
		params.Arguments = decoded
	}

	res, err := c.session.CallTool(ctx, params)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}

	var b strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	if res.IsError {
		return "", fmt.Errorf("%s failed: %s", name, b.String())
	}
	return b.String(), nil
}

// Close tears down the session.
func (c *Client) Close() error {
	return c.session.Close()
}
