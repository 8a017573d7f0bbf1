package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hfabio/mcp-servers/backend/internal/textutil"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"go.uber.org/zap"
)

// AssemblePost fetches a post's thread and renders it as normalized text.
// Any upstream failure is logged and returned; no partial record is built.
func (c *Client) AssemblePost(ctx context.Context, meta PostMeta, maxComments, maxDepth int) (*PostRecord, error) {
	var thread []listing
	if _, err := c.getJSON(ctx, meta.Permalink, nil, &thread); err != nil {
		c.logger.Error("Failed to fetch post thread",
			zap.String("permalink", meta.Permalink),
			zap.Error(err),
		)
		return nil, err
	}

	if len(thread) == 0 || len(thread[0].Data.Children) == 0 {
		err := apperrors.NewFetchError(providerName, c.baseURL+meta.Permalink, 200, fmt.Errorf("thread response has no post"))
		c.logger.Error("Malformed post thread", zap.String("permalink", meta.Permalink), zap.Error(err))
		return nil, err
	}

	var post rawPost
	if err := json.Unmarshal(thread[0].Data.Children[0].Data, &post); err != nil {
		err = apperrors.NewFetchError(providerName, c.baseURL+meta.Permalink, 200, fmt.Errorf("decode post: %w", err))
		c.logger.Error("Malformed post thread", zap.String("permalink", meta.Permalink), zap.Error(err))
		return nil, err
	}

	var nodes []*CommentNode
	if len(thread) > 1 {
		decoded, err := decodeComments(thread[1].Data.Children)
		if err != nil {
			err = apperrors.NewFetchError(providerName, c.baseURL+meta.Permalink, 200, err)
			c.logger.Error("Malformed comment listing", zap.String("permalink", meta.Permalink), zap.Error(err))
			return nil, err
		}
		nodes = decoded
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\nby %s on subreddit %s\nurl: %s\nAuthor message:\n%s",
		meta.Title, meta.Author, meta.SubredditLabel, meta.URL, textutil.Sanitize(post.Selftext))

	replies := make([]*ParsedComment, 0, len(nodes))
	for _, node := range nodes {
		replies = append(replies, ParseComment(node, false))
	}
	if len(replies) > 0 {
		b.WriteString("\n\n# Replies:\n")
		b.WriteString(Flatten(replies, maxComments, maxDepth))
	}

	text := textutil.Sanitize(b.String())

	return &PostRecord{
		ID:                  meta.ID,
		Title:               meta.Title,
		Author:              meta.Author,
		URL:                 meta.URL,
		SubredditLabel:      meta.SubredditLabel,
		Permalink:           meta.Permalink,
		NormalizedText:      text,
		EstimatedTokenCount: textutil.EstimateTokens(text),
		TopLevelReplies:     replies,
	}, nil
}
