package reddit

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SearchParams are the query values for a post search
type SearchParams struct {
	Subreddit string
	Query     string
	Sort      string
	Time      string
	Limit     int
}

// SearchPosts runs a post search, optionally restricted to one subreddit.
// The raw listing is returned alongside the decoded posts.
func (c *Client) SearchPosts(ctx context.Context, params SearchParams) ([]PostMeta, json.RawMessage, error) {
	path := "/search"
	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("sort", params.Sort)
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("t", params.Time)
	if params.Subreddit != "" {
		path = "/r/" + url.PathEscape(params.Subreddit) + "/search"
		query.Set("restrict_sr", "on")
	}

	var result listing
	raw, err := c.getJSON(ctx, path, query, &result)
	if err != nil {
		return nil, nil, err
	}

	posts, err := decodePosts(result.Data.Children)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug("Post search complete",
		zap.String("query", params.Query),
		zap.String("subreddit", params.Subreddit),
		zap.Int("results", len(posts)),
	)
	return posts, raw, nil
}

// AssemblePosts assembles every post concurrently, preserving input order.
// The first failure cancels the rest and is returned.
func (c *Client) AssemblePosts(ctx context.Context, posts []PostMeta, maxComments, maxDepth int) ([]*PostRecord, error) {
	records := make([]*PostRecord, len(posts))
	g, gctx := errgroup.WithContext(ctx)

	for i, meta := range posts {
		g.Go(func() error {
			record, err := c.AssemblePost(gctx, meta, maxComments, maxDepth)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
