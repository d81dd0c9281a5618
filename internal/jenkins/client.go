// Package jenkins wraps the Jenkins JSON API behind memoized,
// error-normalized operations exposed as MCP tools.
package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/huangjien/devops-mcps/internal/config"
)

// ErrNotConfigured is returned by every operation when Jenkins
// credentials are missing.
var ErrNotConfigured = errors.New(
	"Jenkins client not initialized. Please set the JENKINS_URL, JENKINS_USER, and JENKINS_TOKEN environment variables")

// StatusError carries an upstream HTTP status for per-operation mapping
// (404 job vs build not found, and so on).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Jenkins API returned status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Client wraps HTTP calls to the Jenkins JSON API. Console log fetches
// use a separate client with a longer timeout since logs can be large.
type Client struct {
	cfg  config.JenkinsConfig
	api  *http.Client
	logs *http.Client
}

// NewClient creates a Jenkins client from configuration.
func NewClient(cfg config.JenkinsConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		api:  &http.Client{Timeout: timeout},
		logs: &http.Client{Timeout: 2 * timeout},
	}
}

// Configured reports whether URL, user and token are all present.
func (c *Client) Configured() bool {
	return c.cfg.URL != "" && c.cfg.User != "" && c.cfg.Token != ""
}

// LogLength is the maximum number of console log bytes returned.
func (c *Client) LogLength() int {
	if c.cfg.LogLength > 0 {
		return c.cfg.LogLength
	}
	return 10240
}

// jobPath builds a Jenkins job path supporting nested folders.
// "folder/jobName" -> "/job/folder/job/jobName"
func jobPath(jobName string) string {
	segs := strings.Split(jobName, "/")
	var b strings.Builder
	for _, s := range segs {
		if s == "" {
			continue
		}
		b.WriteString("/job/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) do(ctx context.Context, client *http.Client, apiPath, accept string) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	fullURL := strings.TrimRight(c.cfg.URL, "/") + apiPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.User, c.cfg.Token)
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not connect to Jenkins API: %w", err)
	}
	return resp, nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, apiPath string, out any) error {
	resp, err := c.do(ctx, c.api, apiPath, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getText performs a GET returning the raw body, used for console logs.
func (c *Client) getText(ctx context.Context, apiPath string) (string, error) {
	resp, err := c.do(ctx, c.logs, apiPath, "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
