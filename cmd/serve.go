package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/harness"
	mcptools "github.com/evalgate/evalgate/internal/mcp"
	"github.com/evalgate/evalgate/internal/prompt"
	"github.com/evalgate/evalgate/internal/server"
	"github.com/evalgate/evalgate/internal/telemetry"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

func newServeCmd() *cobra.Command {
	var (
		transport    string
		httpAddr     string
		httpEndpoint string
		promptsDir   string
		suitesDir    string
		outputDir    string
		judgeTO      time.Duration
		debug        bool

		enableOAuth     bool
		oauthPublicURL  string
		dexIssuerURL    string
		dexClientID     string
		dexClientSecret string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose evaluation tools via the Model Context Protocol.

Supports multiple transport types:
  - stdio: Standard input/output (default, for IDE integration)
  - streamable-http: HTTP with streaming support (for remote access)

When using streamable-http transport, OAuth 2.1 authentication can be enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			runner, err := newJudgeRunner(ctx, cfg, "", "", judgeTO, 1)
			if err != nil {
				slog.Warn("judge not available; run_suite and evaluate_case will be rejected", "error", err)
				runner = nil
			}

			publisher, err := telemetry.NewPublisher(cfg.Dashboard)
			if err != nil {
				return err
			}

			prompts := prompt.NewStore(promptsDir)

			sc := &server.ServerContext{
				Runner:    runner,
				Prompts:   prompts,
				SuitesDir: suitesDir,
				OutputDir: outputDir,
			}
			if runner != nil {
				sc.Harness = harness.New(prompts, runner,
					newSubjectFactory(cfg, subjectOverrides{}),
					harness.WithSuitesDir(suitesDir),
					harness.WithOutputDir(outputDir),
					harness.WithJudgeFactory(newJudgeFactory(cfg, judgeTO, 1)),
					harness.WithPublisher(publisher),
				)
			}

			mcpSrv := mcpserver.NewMCPServer("evalgate", rootCmd.Version,
				mcpserver.WithToolCapabilities(true),
			)

			if err := mcptools.RegisterTools(mcpSrv, sc); err != nil {
				return fmt.Errorf("failed to register MCP tools: %w", err)
			}

			shutdownCtx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			switch transport {
			case transportStdio:
				return runStdioServer(mcpSrv)
			case transportStreamableHTTP:
				fmt.Printf("Starting evalgate MCP server with %s transport...\n", transport)
				if enableOAuth {
					return runOAuthHTTPServer(shutdownCtx, mcpSrv, httpAddr, httpEndpoint, server.AuthConfig{
						PublicURL:    oauthPublicURL,
						IssuerURL:    dexIssuerURL,
						ClientID:     dexClientID,
						ClientSecret: dexClientSecret,
					})
				}
				return runHTTPServer(shutdownCtx, mcpSrv, httpAddr, httpEndpoint)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, streamable-http)", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http)")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http)")
	cmd.Flags().StringVar(&promptsDir, "prompts-dir", "", "External prompts directory (optional)")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External suites directory (optional)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run artifacts")
	cmd.Flags().DurationVar(&judgeTO, "judge-timeout", 60*time.Second, "Per-metric judge call timeout")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.Flags().BoolVar(&enableOAuth, "enable-oauth", false, "Enable OAuth 2.1 authentication (for HTTP transport)")
	cmd.Flags().StringVar(&oauthPublicURL, "oauth-public-url", "", "Externally visible base URL (e.g. https://evalgate.example.com)")
	cmd.Flags().StringVar(&dexIssuerURL, "dex-issuer-url", "", "Dex OIDC issuer URL")
	cmd.Flags().StringVar(&dexClientID, "dex-client-id", "", "Dex OAuth client ID")
	cmd.Flags().StringVar(&dexClientSecret, "dex-client-secret", "", "Dex OAuth client secret")

	return cmd
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, endpoint string) error {
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(endpoint, mcpHandler)

	// Health check.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	fmt.Printf("  HTTP endpoint: %s\n", endpoint)
	fmt.Printf("  Health: /healthz\n")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	fmt.Println("HTTP server stopped")
	return nil
}

func runOAuthHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, endpoint string, cfg server.AuthConfig) error {
	// Credentials fall back to env vars when flags are not set.
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = os.Getenv("DEX_ISSUER_URL")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("DEX_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("DEX_CLIENT_SECRET")
	}

	if cfg.PublicURL == "" {
		return fmt.Errorf("--oauth-public-url is required when --enable-oauth is set")
	}

	authSrv, err := server.NewAuthHTTPServer(mcpSrv, addr, endpoint, cfg)
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	fmt.Printf("OAuth-enabled HTTP server starting on %s\n", addr)
	fmt.Printf("  Public URL: %s\n", cfg.PublicURL)
	fmt.Printf("  MCP endpoint: %s (requires OAuth Bearer token)\n", endpoint)
	fmt.Printf("  Health: /healthz\n")
	fmt.Printf("  OAuth endpoints:\n")
	fmt.Printf("    - Authorization Server Metadata: /.well-known/oauth-authorization-server\n")
	fmt.Printf("    - Protected Resource Metadata: /.well-known/oauth-protected-resource\n")
	fmt.Printf("    - Client Registration: /oauth/register\n")
	fmt.Printf("    - Authorization: /oauth/authorize\n")
	fmt.Printf("    - Token: /oauth/token\n")
	fmt.Printf("    - Callback: /oauth/callback\n")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := authSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping OAuth HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := authSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down OAuth HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("OAuth HTTP server error: %w", err)
		}
	}

	fmt.Println("OAuth HTTP server stopped")
	return nil
}
