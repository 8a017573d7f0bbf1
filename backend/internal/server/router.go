package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hfabio/mcp-servers/backend/internal/cache"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// JSON-RPC error codes used outside the MCP layer
const (
	codeMethodNotAllowed = -32000
	codeInternalError    = -32603
)

// Options configures the HTTP front door
type Options struct {
	MCPServer *mcp.Server
	CacheDir  string // empty disables the cache browser
	Release   bool
	Logger    *zap.Logger
}

// rpcError is a JSON-RPC error response with a null id
func rpcError(code int, message string) gin.H {
	return gin.H{
		"jsonrpc": "2.0",
		"error": gin.H{
			"code":    code,
			"message": message,
		},
		"id": nil,
	}
}

// NewRouter builds the gin engine serving MCP, health and the cache browser
func NewRouter(opts Options) *gin.Engine {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	log := opts.Logger

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Panic while handling request",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, rpcError(codeInternalError, "Internal server error"))
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Stateless streamable HTTP: every POST carries a complete exchange
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return opts.MCPServer
	}, &mcp.StreamableHTTPOptions{Stateless: true})
	router.POST("/", gin.WrapH(mcpHandler))

	methodNotAllowed := func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, rpcError(codeMethodNotAllowed, "Method not allowed."))
	}
	router.GET("/", methodNotAllowed)
	router.DELETE("/", methodNotAllowed)

	if opts.CacheDir != "" {
		browser := cache.NewBrowser(opts.CacheDir, "/cache", log)
		router.GET("/cache", browser.Handle)
		router.GET("/cache/*path", browser.Handle)
	}

	return router
}

// Handler wraps the router with CORS handling
func Handler(router http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: false,
	}).Handler(router)
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
