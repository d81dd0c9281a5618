package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangjien/devops-mcps/internal/cache"
	"github.com/huangjien/devops-mcps/internal/config"
	"github.com/huangjien/devops-mcps/internal/jenkins"
)

// newSession registers the given tools on a fresh server and opens an
// in-memory client session against it.
func newSession(t *testing.T, register func(s *mcp.Server)) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "devops-mcps-test", Version: "0.0.0"}, nil)
	register(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func newJenkinsService(t *testing.T, handler http.Handler) (*jenkins.Service, cache.Cache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := jenkins.NewClient(config.JenkinsConfig{
		URL:     srv.URL,
		User:    "bot",
		Token:   "secret",
		Timeout: 5 * time.Second,
	})
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { mc.Close() })
	return jenkins.NewService(client, mc), mc
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestGetJenkinsJobsTool(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs": [{"name": "deploy", "url": "http://jenkins/job/deploy/", "color": "blue", "buildable": true}]}`)
	})
	svc, _ := newJenkinsService(t, mux)

	session := newSession(t, func(s *mcp.Server) {
		RegisterJenkinsTools(s, svc)
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "get_jenkins_jobs"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textContent(t, res), `"name": "deploy"`)
}

func TestToolErrorIsInBand(t *testing.T) {
	// Unconfigured Jenkins: the tool must return an in-band error, not a
	// protocol failure.
	client := jenkins.NewClient(config.JenkinsConfig{})
	mc := cache.NewMemoryCache()
	defer mc.Close()
	svc := jenkins.NewService(client, mc)

	session := newSession(t, func(s *mcp.Server) {
		RegisterJenkinsTools(s, svc)
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "get_jenkins_queue"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textContent(t, res), "Jenkins client not initialized")
}

func TestClearCacheTool(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()
	require.NoError(t, mc.Set(ctx, "jenkins:jobs:all", []byte(`[]`), time.Minute))

	session := newSession(t, func(s *mcp.Server) {
		RegisterCacheTools(s, mc, nil)
	})

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "clear_cache"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textContent(t, res), "Cache cleared")

	_, err = mc.Get(ctx, "jenkins:jobs:all")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestBuildLogToolPassesThroughText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/job/deploy/3/logText/progressiveText", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Finished: FAILURE")
	})
	svc, _ := newJenkinsService(t, mux)

	session := newSession(t, func(s *mcp.Server) {
		RegisterJenkinsTools(s, svc)
	})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_jenkins_build_log",
		Arguments: map[string]any{"job_name": "deploy", "build_number": 3},
	})
	require.NoError(t, err)
	// Logs come back as plain text, not JSON-quoted strings.
	assert.Equal(t, "Finished: FAILURE", textContent(t, res))
}

func TestFailureDiagnosisPrompt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/job/deploy/5/logText/progressiveText", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ERROR: Test failures in module core\nFinished: FAILURE")
	})
	svc, _ := newJenkinsService(t, mux)

	session := newSession(t, func(s *mcp.Server) {
		RegisterPrompts(s, svc)
	})

	res, err := session.GetPrompt(context.Background(), &mcp.GetPromptParams{
		Name:      "jenkins_failure_diagnosis",
		Arguments: map[string]string{"job_name": "deploy", "build_number": "5"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Test failures: Review test cases")
	assert.Contains(t, text, "Finished: FAILURE")
}

func TestDiagnosisText_NoPatternMatch(t *testing.T) {
	text := diagnosisText("deploy", "nothing interesting here")
	assert.Contains(t, text, "No specific patterns detected - manual review required")
}
