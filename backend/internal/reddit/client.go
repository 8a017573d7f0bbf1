package reddit

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

const providerName = "reddit"

// SiteURL is the public Reddit origin used to build links in normalized text
const SiteURL = "https://www.reddit.com"

// Client performs authenticated calls against the Reddit OAuth API
type Client struct {
	baseURL    string
	auth       *TokenAcquirer
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Reddit API client rooted at baseURL (e.g. https://oauth.reddit.com)
func NewClient(baseURL string, auth *TokenAcquirer, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		auth:       auth,
		httpClient: httpClient,
		logger:     logger,
	}
}

// getJSON issues an authenticated GET and decodes the body into out.
// The raw body is returned so callers can cache it.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (json.RawMessage, error) {
	token, err := c.auth.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.auth.UserAgent())

	c.logger.Debug("Reddit request", zap.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(providerName, endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitError(providerName, retryAfter(resp.Header))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, fmt.Errorf("%s", truncate(string(body), 300)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	return body, nil
}

// retryAfter reads Reddit's reset header (seconds until the window resets),
// falling back to the standard Retry-After header
func retryAfter(h http.Header) time.Duration {
	for _, key := range []string{"X-Ratelimit-Reset", "Retry-After"} {
		if v := h.Get(key); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func formatCreated(epochSeconds int64) string {
	return time.Unix(epochSeconds, 0).UTC().Format("1/2/2006, 3:04:05 PM")
}
