package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hfabio/mcp-servers/backend/internal/cache"
	"github.com/hfabio/mcp-servers/backend/internal/credentials"
	"github.com/hfabio/mcp-servers/backend/internal/reddit"
	"github.com/hfabio/mcp-servers/backend/internal/server"
	"github.com/hfabio/mcp-servers/backend/internal/tools"
	"github.com/hfabio/mcp-servers/backend/internal/twitter"
	"github.com/hfabio/mcp-servers/backend/internal/youtube"
	"github.com/hfabio/mcp-servers/backend/pkg/config"
	"github.com/hfabio/mcp-servers/backend/pkg/logger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// app bundles everything main wires together
type app struct {
	mcpServer *mcp.Server
	cache     *cache.Writer
	handler   http.Handler
}

// newApp builds the provider clients once and injects them into the toolset
func newApp(cfg *config.Config, log *zap.Logger) *app {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := credentials.NewFileStore(cfg.CredentialsPath, log.Named("credentials"))
	auth := reddit.NewTokenAcquirer(cfg.RedditAuthURL, reddit.Credentials{
		ClientID:        cfg.RedditClientID,
		ClientSecret:    cfg.RedditClientSecret,
		Username:        cfg.RedditUsername,
		Password:        cfg.RedditPassword,
		ApplicationName: cfg.RedditApplicationName,
	}, store, httpClient, log.Named("reddit"))

	redditClient := reddit.NewClient(cfg.RedditAPIURL, auth, httpClient, log.Named("reddit"))
	twitterClient := twitter.NewClient(cfg.TwitterAPIURL, cfg.TwitterBearerToken, httpClient, log.Named("twitter"))
	youtubeClient := youtube.NewClient(cfg.YouTubeAPIURL, cfg.YouTubeTranscriptURL, cfg.YouTubeAPIKey, httpClient, log.Named("youtube"))

	cacheWriter := cache.NewWriter(cfg.CacheDir, cfg.CacheEnabled, log.Named("cache"))
	toolset := tools.NewToolset(redditClient, twitterClient, youtubeClient, cacheWriter, log.Named("tools"))
	mcpServer := tools.NewServer(toolset)

	browseDir := ""
	if cfg.CacheEnabled {
		browseDir = cfg.CacheDir
	}
	router := server.NewRouter(server.Options{
		MCPServer: mcpServer,
		CacheDir:  browseDir,
		Release:   cfg.IsProduction(),
		Logger:    log.Named("http"),
	})

	return &app{
		mcpServer: mcpServer,
		cache:     cacheWriter,
		handler:   server.Handler(router, cfg.CORSOrigins),
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	a := newApp(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Transport == "stdio" {
		log.Info("Starting MCP server on stdio...")
		if err := a.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			log.Error("MCP server stopped", zap.Error(err))
		}
		a.cache.Wait()
		return
	}

	log.Info("Starting HTTP MCP server...")

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: a.handler,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	<-ctx.Done()

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.cache.Wait()

	log.Info("Server exited")
}
