package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hfabio/mcp-servers/backend/internal/cache"
	"github.com/hfabio/mcp-servers/backend/internal/reddit"
	"github.com/hfabio/mcp-servers/backend/internal/twitter"
	"github.com/hfabio/mcp-servers/backend/internal/youtube"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"go.uber.org/zap"
)

// RedditClient is the subset of the Reddit client the tools use
type RedditClient interface {
	SearchPosts(ctx context.Context, params reddit.SearchParams) ([]reddit.PostMeta, json.RawMessage, error)
	AssemblePosts(ctx context.Context, posts []reddit.PostMeta, maxComments, maxDepth int) ([]*reddit.PostRecord, error)
	SearchSubreddits(ctx context.Context, params reddit.SubredditSearchParams) ([]reddit.SubredditSummary, json.RawMessage, error)
}

// TwitterClient searches recent tweets
type TwitterClient interface {
	SearchRecent(ctx context.Context, params twitter.SearchParams) ([]twitter.Tweet, json.RawMessage, error)
}

// YouTubeClient searches videos and their transcripts
type YouTubeClient interface {
	SearchVideos(ctx context.Context, params youtube.SearchParams) ([]youtube.Video, json.RawMessage, error)
	AttachTranscripts(ctx context.Context, videos []youtube.Video) []youtube.Video
}

// ExecutionContext holds context for a single tool invocation
type ExecutionContext struct {
	InvocationID string
	Tool         string
	CacheContext string
	Started      time.Time
}

// Toolset executes tool calls against injected provider clients
type Toolset struct {
	reddit  RedditClient
	twitter TwitterClient
	youtube YouTubeClient
	cache   cache.Sink
	logger  *zap.Logger
	now     func() time.Time
}

// NewToolset creates a toolset. Clients are built once and shared by every call.
func NewToolset(redditClient RedditClient, twitterClient TwitterClient, youtubeClient YouTubeClient, sink cache.Sink, logger *zap.Logger) *Toolset {
	return &Toolset{
		reddit:  redditClient,
		twitter: twitterClient,
		youtube: youtubeClient,
		cache:   sink,
		logger:  logger,
		now:     time.Now,
	}
}

// begin starts an invocation and logs it
func (t *Toolset) begin(tool, cacheContext string) *ExecutionContext {
	execCtx := &ExecutionContext{
		InvocationID: uuid.New().String(),
		Tool:         tool,
		CacheContext: cacheContext,
		Started:      t.now(),
	}
	t.logger.Debug("Executing tool",
		zap.String("tool", tool),
		zap.String("invocation_id", execCtx.InvocationID),
	)
	return execCtx
}

// finish caches the raw payload and the response, then logs completion
func (t *Toolset) finish(execCtx *ExecutionContext, raw interface{}, env *Envelope) *Envelope {
	t.cache.Write(execCtx.CacheContext, execCtx.Tool, cache.KindRawData, raw)
	t.cache.Write(execCtx.CacheContext, execCtx.Tool, cache.KindResponse, env)

	t.logger.Info("Tool executed",
		zap.String("tool", execCtx.Tool),
		zap.String("invocation_id", execCtx.InvocationID),
		zap.Int("blocks", len(env.Content)),
		zap.Duration("elapsed", time.Since(execCtx.Started)),
	)
	return env
}

// fail turns an error into the call's outcome. Configuration and validation
// errors are returned to the protocol layer; anything else becomes a text
// error block so the caller can read what went wrong.
func (t *Toolset) fail(execCtx *ExecutionContext, err error) (*Envelope, error) {
	t.logger.Error("Tool execution failed",
		zap.String("tool", execCtx.Tool),
		zap.String("invocation_id", execCtx.InvocationID),
		zap.Error(err),
	)

	if apperrors.IsFatal(err) {
		return nil, err
	}

	env := textEnvelope(describeError(err))
	env.IsError = true
	return env, nil
}

// describeError renders an upstream failure for the caller
func describeError(err error) string {
	var rateLimitErr *apperrors.RateLimitError
	if errors.As(err, &rateLimitErr) {
		wait := rateLimitErr.RetryAfter.Round(time.Second)
		if wait <= 0 {
			return fmt.Sprintf("Rate limit reached for %s. Try again later.", rateLimitErr.Provider)
		}
		return fmt.Sprintf("Rate limit reached for %s. Try again in %s.", rateLimitErr.Provider, wait)
	}

	var authErr *apperrors.AuthenticationError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("Authentication failed (status %d): %s", authErr.Status, authErr.Body)
	}

	var fetchErr *apperrors.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Status != 0 {
			return fmt.Sprintf("Error fetching from %s: status %d", fetchErr.Provider, fetchErr.Status)
		}
		return fmt.Sprintf("Error fetching from %s: %v", fetchErr.Provider, fetchErr.Unwrap())
	}

	return "Error: " + err.Error()
}
