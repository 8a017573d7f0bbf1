package youtube

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

const providerName = "youtube"

// regionCode pins search results to one region
const regionCode = "ca"

// Video is one search hit, optionally with its transcript
type Video struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	ChannelTitle        string `json:"channel_title"`
	PublishedAt         string `json:"published_at"`
	Transcription       string `json:"transcription,omitempty"`
	TranscriptionTokens int    `json:"transcription_tokens,omitempty"`
}

// Link is the public watch URL of the video
func (v Video) Link() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// SearchParams are the inputs of a video search
type SearchParams struct {
	Query             string
	MaxResults        int
	PublishedAfter    time.Time
	PublishedBefore   time.Time
	IncludeTranscript bool
}

type searchResponse struct {
	Kind     string `json:"kind"`
	PageInfo struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// Client calls the YouTube Data API and the public timedtext endpoint
type Client struct {
	apiURL        string
	transcriptURL string
	apiKey        string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a YouTube client
func NewClient(apiURL, transcriptURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		apiURL:        strings.TrimSuffix(apiURL, "/"),
		transcriptURL: transcriptURL,
		apiKey:        apiKey,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// SearchVideos lists videos published inside the requested window.
// When transcripts are requested only captioned videos are matched.
func (c *Client) SearchVideos(ctx context.Context, params SearchParams) ([]Video, json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, nil, apperrors.NewConfigurationError("YOUTUBE_API_KEY")
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("q", params.Query)
	query.Set("type", "video")
	query.Set("regionCode", regionCode)
	query.Set("maxResults", strconv.Itoa(params.MaxResults))
	query.Set("publishedAfter", params.PublishedAfter.UTC().Format(time.RFC3339))
	query.Set("publishedBefore", params.PublishedBefore.UTC().Format(time.RFC3339))
	if params.IncludeTranscript {
		query.Set("videoCaption", "closedCaption")
	}
	query.Set("key", c.apiKey)

	endpoint := c.apiURL + "/search?" + query.Encode()
	// never log the key
	logged := c.apiURL + "/search"

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, logged, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, nil, apperrors.NewRateLimitError(providerName, 0)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, logged, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, apperrors.NewFetchError(providerName, logged, resp.StatusCode, fmt.Errorf("%s", string(body)))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, apperrors.NewFetchError(providerName, logged, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}

	videos := make([]Video, 0, len(result.Items))
	for _, item := range result.Items {
		videos = append(videos, Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}

	c.logger.Info("YouTube search complete",
		zap.String("query", params.Query),
		zap.String("kind", result.Kind),
		zap.Int("total_results", result.PageInfo.TotalResults),
		zap.Int("items", len(videos)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return videos, body, nil
}
