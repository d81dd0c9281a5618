package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/huangjien/devops-mcps/internal/cache"
	"github.com/huangjien/devops-mcps/internal/logging"
)

// RegisterCacheTools adds cache administration tools. When an
// invalidator is present, a flush is broadcast so other instances drop
// their local layers too.
func RegisterCacheTools(s *mcp.Server, c cache.Cache, inv *cache.Invalidator) {
	addTool(s, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Clear all cached GitHub and Jenkins results so the next calls hit the upstream APIs",
	}, func(ctx context.Context, _ noArgs) (any, error) {
		if err := c.Clear(ctx); err != nil {
			return nil, err
		}
		if inv != nil {
			if err := inv.PublishFlush(ctx); err != nil {
				logging.Op().Warn("flush broadcast failed", "error", err)
			}
		}
		return "Cache cleared.", nil
	})
}
