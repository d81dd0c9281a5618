package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/huangjien/devops-mcps/internal/cache"
	"github.com/huangjien/devops-mcps/internal/config"
	"github.com/huangjien/devops-mcps/internal/github"
	"github.com/huangjien/devops-mcps/internal/jenkins"
	"github.com/huangjien/devops-mcps/internal/logging"
	"github.com/huangjien/devops-mcps/internal/markdown"
	"github.com/huangjien/devops-mcps/internal/mcpclient"
	"github.com/huangjien/devops-mcps/internal/metrics"
	"github.com/huangjien/devops-mcps/internal/observability"
	"github.com/huangjien/devops-mcps/internal/tools"
)

const version = "1.0.0"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "devops-mcps",
		Short: "MCP server exposing GitHub and Jenkins as LLM-callable tools",
		Long: "devops-mcps is a Model Context Protocol server that exposes GitHub " +
			"repository operations and Jenkins CI state as tools, with a shared " +
			"TTL cache in front of both upstream APIs.",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	rootCmd.AddCommand(
		serveCmd(),
		callCmd(),
		toolsCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var httpAddr string
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio by default, HTTP with --http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if metricsAddr != "" {
				cfg.Server.MetricsAddr = metricsAddr
			}
			logging.SetLevelFromString(cfg.Server.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			metrics.Init("devops_mcps")
			if err := observability.Init(ctx, observability.Config{
				Enabled:     cfg.Telemetry.Enabled,
				Endpoint:    cfg.Telemetry.Endpoint,
				ServiceName: "devops-mcps",
				SampleRate:  cfg.Telemetry.SampleRate,
			}); err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() {
				shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				observability.Shutdown(shutCtx)
			}()

			store, invalidator, err := buildCache(ctx, cfg.Cache)
			if err != nil {
				return err
			}
			defer store.Close()
			if invalidator != nil {
				defer invalidator.Close()
			}

			server := newServer(cfg, store, invalidator)

			if cfg.Server.MetricsAddr != "" {
				go serveMetrics(cfg.Server.MetricsAddr)
			}

			if httpAddr != "" {
				return serveHTTP(ctx, server, httpAddr)
			}
			logging.Op().Info("starting MCP server on stdio",
				"github_configured", cfg.GitHub.Token != "",
				"jenkins_configured", cfg.Jenkins.URL != "",
				"cache_backend", cfg.Cache.Backend)
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve MCP over streamable HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on this address")
	return cmd
}

func newServer(cfg *config.Config, store cache.Cache, invalidator *cache.Invalidator) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "devops-mcps",
		Version: version,
	}, &mcp.ServerOptions{
		Instructions: "devops-mcps exposes GitHub repositories, issues and code search, " +
			"plus Jenkins jobs, builds and queue state, as tools. Results are cached " +
			"with per-operation TTLs; use clear_cache to force fresh data.",
	})

	ghService := github.NewService(github.NewClient(cfg.GitHub), store)
	jkService := jenkins.NewService(jenkins.NewClient(cfg.Jenkins), store)

	tools.RegisterGitHubTools(server, ghService)
	tools.RegisterJenkinsTools(server, jkService)
	tools.RegisterCacheTools(server, store, invalidator)
	tools.RegisterPrompts(server, jkService)
	return server
}

// buildCache constructs the configured backend. The tiered backend also
// gets a Pub/Sub invalidator so L1 layers stay coherent across
// instances.
func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, *cache.Invalidator, error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemoryCache(), nil, nil
	case "redis":
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err := rc.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return rc, nil, nil
	case "tiered":
		local := cache.NewMemoryCache()
		remote := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err := remote.Ping(ctx); err != nil {
			local.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		invalidator := cache.NewInvalidator(local, remote.Client())
		go invalidator.Start(ctx)
		return cache.NewTieredCache(local, remote, cfg.L1TTL), invalidator, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q (want memory, redis or tiered)", cfg.Backend)
	}
}

func serveHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	httpServer := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutCtx)
	}()

	logging.Op().Info("starting MCP server on HTTP", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func serveMetrics(addr string) {
	handler := metrics.Handler()
	if handler == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	logging.Op().Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Op().Error("metrics listener failed", "error", err)
	}
}

// connectClient opens a session against --endpoint, or spawns this
// binary's own serve subcommand over stdio.
func connectClient(ctx context.Context, endpoint string) (*mcpclient.Client, error) {
	if endpoint != "" {
		return mcpclient.ConnectHTTP(ctx, endpoint)
	}
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate own binary: %w", err)
	}
	serveArgs := []string{"serve"}
	if configPath != "" {
		serveArgs = append(serveArgs, "--config", configPath)
	}
	return mcpclient.ConnectStdio(ctx, self, serveArgs...)
}

func callCmd() *cobra.Command {
	var endpoint string
	var rawJSON bool

	cmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke a tool and print the result as markdown",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := connectClient(ctx, endpoint)
			if err != nil {
				return err
			}
			defer client.Close()

			var toolArgs json.RawMessage
			if len(args) == 2 {
				toolArgs = json.RawMessage(args[1])
			}

			result, err := client.CallTool(ctx, args[0], toolArgs)
			if err != nil {
				return err
			}
			if rawJSON {
				fmt.Println(result)
				return nil
			}
			fmt.Println(markdown.Render([]byte(result)))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "MCP HTTP endpoint (spawns a stdio server when empty)")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Print the raw tool output instead of markdown")
	return cmd
}

func toolsCmd() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := connectClient(ctx, endpoint)
			if err != nil {
				return err
			}
			defer client.Close()

			list, err := client.ListTools(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "MCP HTTP endpoint (spawns a stdio server when empty)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the devops-mcps version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("devops-mcps %s\n", version)
		},
	}
}
