package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hfabio/mcp-servers/backend/internal/textutil"
	"go.uber.org/zap"
)

// SubredditSearchParams are the query values for a subreddit search
type SubredditSearchParams struct {
	Query     string
	Count     int
	Limit     int
	ShowUsers bool
	Sort      string
	Details   bool
}

// SearchSubreddits finds subreddits matching a query and summarizes each one
func (c *Client) SearchSubreddits(ctx context.Context, params SubredditSearchParams) ([]SubredditSummary, json.RawMessage, error) {
	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("count", strconv.Itoa(params.Count))
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("show_users", strconv.FormatBool(params.ShowUsers))
	query.Set("sort", params.Sort)
	query.Set("sr_detail", strconv.FormatBool(params.Details))

	var result listing
	raw, err := c.getJSON(ctx, "/subreddits/search", query, &result)
	if err != nil {
		return nil, nil, err
	}

	summaries := make([]SubredditSummary, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		if child.Kind != kindSubreddit {
			continue
		}
		var sr rawSubreddit
		if err := json.Unmarshal(child.Data, &sr); err != nil {
			return nil, nil, fmt.Errorf("decode subreddit: %w", err)
		}
		summaries = append(summaries, summarize(sr))
	}

	c.logger.Debug("Subreddit search complete",
		zap.String("query", params.Query),
		zap.Int("results", len(summaries)),
	)
	return summaries, raw, nil
}

func summarize(sr rawSubreddit) SubredditSummary {
	active := sr.AccountsActive
	if active == nil {
		active = sr.ActiveUserCount
	}

	s := SubredditSummary{
		Title:            sr.Title,
		DisplayLabel:     sr.DisplayNamePrefixed,
		ShortDescription: sr.PublicDescription,
		LongDescription:  textutil.Sanitize(sr.Description),
		SubscriberCount:  sr.Subscribers,
		ActiveUserCount:  active,
		CreatedAt:        int64(sr.CreatedUTC),
		Category:         sr.AdvertiserCategory,
		URL:              sr.URL,
	}

	activeText := "unknown"
	if active != nil {
		activeText = strconv.Itoa(*active)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n", s.Title, s.DisplayLabel)
	fmt.Fprintf(&b, "url: %s%s\n", SiteURL, s.URL)
	fmt.Fprintf(&b, "subscribers: %d\n", s.SubscriberCount)
	fmt.Fprintf(&b, "active users: %s\n", activeText)
	fmt.Fprintf(&b, "created at: %s\n", formatCreated(s.CreatedAt))
	if s.Category != "" {
		fmt.Fprintf(&b, "category: %s\n", s.Category)
	}
	fmt.Fprintf(&b, "description: %s\n%s", s.ShortDescription, s.LongDescription)

	s.NormalizedText = textutil.Sanitize(b.String())
	s.EstimatedTokenCount = textutil.EstimateTokens(s.NormalizedText)
	return s
}
