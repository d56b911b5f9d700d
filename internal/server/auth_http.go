package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers/dex"
	oauthserver "github.com/giantswarm/mcp-oauth/server"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 120 * time.Second
)

// AuthConfig configures OAuth 2.1 protection for the HTTP transport.
// Dex is the only supported OIDC provider.
type AuthConfig struct {
	// PublicURL is the server's externally visible base URL.
	PublicURL string

	// IssuerURL is the Dex OIDC issuer.
	IssuerURL string

	// ClientID and ClientSecret identify this server at Dex.
	ClientID     string
	ClientSecret string
}

func (c AuthConfig) validate() error {
	if c.IssuerURL == "" {
		return fmt.Errorf("OIDC issuer URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("OAuth client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("OAuth client secret is required")
	}
	return requireHTTPSOrLoopback(c.PublicURL)
}

// AuthHTTPServer serves the MCP endpoint behind OAuth token validation,
// with the OAuth flow endpoints mounted alongside it.
type AuthHTTPServer struct {
	oauthServer *oauth.Server
	httpServer  *http.Server
}

// NewAuthHTTPServer wires the MCP streamable-HTTP handler behind an OAuth
// 2.1 server backed by Dex, with in-memory token storage (single instance).
func NewAuthHTTPServer(mcpSrv *mcpserver.MCPServer, addr, mcpEndpoint string, cfg AuthConfig) (*AuthHTTPServer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid auth configuration: %w", err)
	}

	provider, err := dex.NewProvider(&dex.Config{
		IssuerURL:    cfg.IssuerURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.PublicURL + "/oauth/callback",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Dex provider: %w", err)
	}

	store := memory.New()
	logger := slog.Default()

	oauthSrv, err := oauth.NewServer(
		provider,
		store,
		store,
		store,
		&oauthserver.Config{
			Issuer:                    cfg.PublicURL,
			AllowRefreshTokenRotation: true,
			MaxClientsPerIP:           10,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth server: %w", err)
	}

	handler := oauth.NewHandler(oauthSrv, logger)

	mux := http.NewServeMux()
	handler.RegisterAuthorizationServerMetadataRoutes(mux)
	handler.RegisterProtectedResourceMetadataRoutes(mux, mcpEndpoint)
	mux.HandleFunc("/oauth/authorize", handler.ServeAuthorization)
	mux.HandleFunc("/oauth/token", handler.ServeToken)
	mux.HandleFunc("/oauth/callback", handler.ServeCallback)
	mux.HandleFunc("/oauth/register", handler.ServeClientRegistration)
	mux.HandleFunc("/oauth/revoke", handler.ServeTokenRevocation)
	mux.HandleFunc("/oauth/introspect", handler.ServeTokenIntrospection)

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(mcpEndpoint),
	)
	mux.Handle(mcpEndpoint, handler.ValidateToken(mcpHandler))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &AuthHTTPServer{
		oauthServer: oauthSrv,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		},
	}, nil
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *AuthHTTPServer) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the OAuth server and then the HTTP listener.
func (s *AuthHTTPServer) Shutdown(ctx context.Context) error {
	if err := s.oauthServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown OAuth server", "error", err)
	}
	return s.httpServer.Shutdown(ctx)
}

// requireHTTPSOrLoopback enforces the OAuth 2.1 HTTPS rule, allowing plain
// HTTP only on loopback hosts for local development.
func requireHTTPSOrLoopback(publicURL string) error {
	if publicURL == "" {
		return fmt.Errorf("public URL is required")
	}

	u, err := url.Parse(publicURL)
	if err != nil {
		return fmt.Errorf("invalid public URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return nil
		}
		return fmt.Errorf("http is only allowed for loopback hosts, got %q", publicURL)
	default:
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
}
