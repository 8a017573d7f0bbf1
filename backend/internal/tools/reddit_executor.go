package tools

import (
	"context"
	"strings"

	"github.com/hfabio/mcp-servers/backend/internal/reddit"
	"go.uber.org/zap"
)

// ============================================================================
// Reddit Tool Implementations
// ============================================================================

// SearchSubredditPosts searches posts and assembles each one with its thread
func (t *Toolset) SearchSubredditPosts(ctx context.Context, args SearchSubredditPostsArgs) (*Envelope, error) {
	execCtx := t.begin(ToolSearchSubredditPosts, CacheContextReddit)

	params, err := args.resolve()
	if err != nil {
		return t.fail(execCtx, err)
	}

	posts, raw, err := t.reddit.SearchPosts(ctx, reddit.SearchParams{
		Subreddit: params.Subreddit,
		Query:     params.Query,
		Sort:      params.Sort,
		Time:      params.Time,
		Limit:     params.Limit,
	})
	if err != nil {
		return t.fail(execCtx, err)
	}

	records, err := t.reddit.AssemblePosts(ctx, posts, params.MaxComments, params.Depth)
	if err != nil {
		return t.fail(execCtx, err)
	}

	env := &Envelope{Content: make([]ContentBlock, 0, len(records))}
	tokens := 0
	for _, record := range records {
		tokens += record.EstimatedTokenCount
		env.Content = append(env.Content, ContentBlock{
			Type:  BlockText,
			Text:  strings.TrimSpace(record.NormalizedText),
			URL:   reddit.SiteURL + record.Permalink,
			Title: record.Title,
		})
	}

	t.logger.Debug("Posts assembled",
		zap.String("invocation_id", execCtx.InvocationID),
		zap.Int("posts", len(records)),
		zap.Int("estimated_tokens", tokens),
	)
	return t.finish(execCtx, raw, env), nil
}

// SearchSubreddit finds subreddits and summarizes each match
func (t *Toolset) SearchSubreddit(ctx context.Context, args SearchSubredditArgs) (*Envelope, error) {
	execCtx := t.begin(ToolSearchSubreddit, CacheContextReddit)

	params, err := args.resolve()
	if err != nil {
		return t.fail(execCtx, err)
	}

	summaries, raw, err := t.reddit.SearchSubreddits(ctx, reddit.SubredditSearchParams{
		Query:     params.Query,
		Count:     params.Count,
		Limit:     params.Limit,
		ShowUsers: params.ShowUsers,
		Sort:      params.Sort,
		Details:   params.Details,
	})
	if err != nil {
		return t.fail(execCtx, err)
	}

	env := &Envelope{Content: make([]ContentBlock, 0, len(summaries))}
	for _, summary := range summaries {
		env.Content = append(env.Content, ContentBlock{
			Type:  BlockText,
			Text:  summary.NormalizedText,
			URL:   reddit.SiteURL + summary.URL,
			Title: summary.DisplayLabel,
		})
	}

	return t.finish(execCtx, raw, env), nil
}
