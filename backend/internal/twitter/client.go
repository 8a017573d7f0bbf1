package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"go.uber.org/zap"
)

const providerName = "twitter"

// The recent search endpoint only accepts page sizes in this range
const (
	minPageSize = 10
	maxPageSize = 100
)

// Result orderings accepted by the recent search endpoint
const (
	SortRecency   = "recency"
	SortRelevancy = "relevancy"
)

// Tweet is one search hit
type Tweet struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	AuthorID  string         `json:"author_id"`
	CreatedAt string         `json:"created_at,omitempty"`
	Lang      string         `json:"lang,omitempty"`
	Metrics   *PublicMetrics `json:"public_metrics,omitempty"`
}

// PublicMetrics are the engagement counters attached to a tweet
type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// URL is the public link to the tweet
func (t Tweet) URL() string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", t.AuthorID, t.ID)
}

// SearchParams are the inputs of a recent search
type SearchParams struct {
	Query      string
	MaxResults int
	Lang       string
	SortOrder  string
}

type searchResponse struct {
	Data []Tweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// Client calls the Twitter v2 API with an app-only bearer token
type Client struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a Twitter API client
func NewClient(baseURL, bearerToken string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		bearerToken: bearerToken,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// SearchRecent returns at most params.MaxResults tweets from the last seven days.
// The raw response body is returned for caching.
func (c *Client) SearchRecent(ctx context.Context, params SearchParams) ([]Tweet, json.RawMessage, error) {
	if c.bearerToken == "" {
		return nil, nil, apperrors.NewConfigurationError("TWITTER_BEARER_TOKEN")
	}

	q := params.Query
	if params.Lang != "" {
		q += " lang:" + params.Lang
	}

	query := url.Values{}
	query.Set("query", q)
	query.Set("max_results", strconv.Itoa(pageSize(params.MaxResults)))
	if params.SortOrder != "" {
		query.Set("sort_order", params.SortOrder)
	}
	query.Set("expansions", "author_id")
	query.Set("tweet.fields", "author_id,created_at,lang,public_metrics,source,note_tweet")
	query.Set("user.fields", "name,username,description,location,url")
	query.Set("media.fields", "preview_image_url,url,alt_text")

	endpoint := c.baseURL + "/2/tweets/search/recent?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, nil, apperrors.NewRateLimitError(providerName, resetIn(resp.Header, time.Now()))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil, apperrors.NewAuthenticationError(providerName, resp.StatusCode, string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, fmt.Errorf("%s", string(body)))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	tweets := result.Data
	if params.MaxResults > 0 && len(tweets) > params.MaxResults {
		tweets = tweets[:params.MaxResults]
	}

	c.logger.Debug("Tweet search complete",
		zap.String("query", q),
		zap.Int("results", len(tweets)),
	)
	return tweets, body, nil
}

func pageSize(n int) int {
	if n < minPageSize {
		return minPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// resetIn converts the epoch-seconds x-rate-limit-reset header into a wait
func resetIn(h http.Header, now time.Time) time.Duration {
	v := h.Get("X-Rate-Limit-Reset")
	if v == "" {
		return 0
	}
	epoch, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return time.Unix(epoch, 0).Sub(now)
}
