package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON retrieves and decodes a memoized value into out. The boolean
// reports a usable hit; decode failures and backend errors are treated
// as misses so callers always fall back to the authoritative upstream
// call.
func GetJSON(ctx context.Context, c Cache, key string, out any) bool {
	data, err := c.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON encodes and stores a value. Errors are swallowed for the same
// reason: a failed cache write must not fail the tool call that just
// succeeded upstream.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, data, ttl)
}
