package tools

import (
	"context"

	"github.com/hfabio/mcp-servers/backend/internal/textutil"
	"github.com/hfabio/mcp-servers/backend/internal/twitter"
)

// SearchTweets searches recent tweets, one text block per tweet
func (t *Toolset) SearchTweets(ctx context.Context, args SearchTweetsArgs) (*Envelope, error) {
	execCtx := t.begin(ToolSearchTweets, CacheContextTwitter)

	params, err := args.resolve()
	if err != nil {
		return t.fail(execCtx, err)
	}

	tweets, raw, err := t.twitter.SearchRecent(ctx, twitter.SearchParams{
		Query:      params.Query,
		MaxResults: params.MaxResults,
		Lang:       params.Lang,
		SortOrder:  params.ResultType,
	})
	if err != nil {
		return t.fail(execCtx, err)
	}

	env := &Envelope{Content: make([]ContentBlock, 0, len(tweets))}
	for _, tweet := range tweets {
		env.Content = append(env.Content, ContentBlock{
			Type: BlockText,
			Text: textutil.Sanitize(tweet.Text),
			URL:  tweet.URL(),
		})
	}

	return t.finish(execCtx, raw, env), nil
}
