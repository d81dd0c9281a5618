// Package github wraps the GitHub SDK behind memoized, error-normalized
// operations exposed as MCP tools.
package github

import (
	"errors"
	"fmt"
	"sync"

	gh "github.com/google/go-github/v69/github"

	"github.com/huangjien/devops-mcps/internal/config"
	"github.com/huangjien/devops-mcps/internal/logging"
)

// ErrNotConfigured is returned by authenticated-only operations when no
// GitHub token is available. Tool handlers surface it as actionable
// guidance. Read-only public operations work without a token, at
// unauthenticated rate limits.
var ErrNotConfigured = errors.New(
	"GitHub client not initialized. Please set the GITHUB_PERSONAL_ACCESS_TOKEN environment variable")

// Client lazily constructs the underlying SDK client on first use and
// memoizes it. It is constructed once and passed by reference; there is
// no package-level client.
type Client struct {
	cfg config.GitHubConfig

	mu  sync.Mutex
	api *gh.Client
}

// NewClient creates a client from configuration. The SDK connection is
// not established until the first operation needs it.
func NewClient(cfg config.GitHubConfig) *Client {
	return &Client{cfg: cfg}
}

// HasToken reports whether a personal access token is configured.
func (c *Client) HasToken() bool {
	return c.cfg.Token != ""
}

// API returns the SDK client, initializing it on first call. Without a
// token the client is unauthenticated.
func (c *Client) API() (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}

	api := gh.NewClient(nil)
	if c.cfg.Token != "" {
		api = api.WithAuthToken(c.cfg.Token)
	}
	if c.cfg.BaseURL != "" {
		var err error
		api, err = api.WithEnterpriseURLs(c.cfg.BaseURL, c.cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("configure GitHub base URL: %w", err)
		}
	}
	logging.Op().Info("GitHub client initialized",
		"authenticated", c.cfg.Token != "", "enterprise", c.cfg.BaseURL != "")
	c.api = api
	return c.api, nil
}

// SetAPIForTesting injects a pre-built SDK client, bypassing lazy
// initialization. Test use only.
func (c *Client) SetAPIForTesting(api *gh.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.api = api
}
