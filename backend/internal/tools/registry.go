package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server identity reported to clients
const (
	ServerName    = "mcp-servers"
	ServerVersion = "1.0.0"
)

// handlerFor adapts a toolset method to the MCP handler signature.
// Errors returned here are reported by the SDK as tool errors.
func handlerFor[In any](run func(context.Context, In) (*Envelope, error)) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		env, err := run(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return env.ToCallToolResult(), nil, nil
	}
}

// Register adds every tool to server
func (t *Toolset) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchSubredditPosts,
		Description: descSearchSubredditPosts,
	}, handlerFor(t.SearchSubredditPosts))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchSubreddit,
		Description: descSearchSubreddit,
	}, handlerFor(t.SearchSubreddit))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchTweets,
		Description: descSearchTweets,
	}, handlerFor(t.SearchTweets))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearchYouTubeVideos,
		Description: descSearchYouTubeVideos,
	}, handlerFor(t.SearchYouTubeVideos))
}

// NewServer creates an MCP server exposing the toolset
func NewServer(t *Toolset) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	t.Register(server)
	return server
}
