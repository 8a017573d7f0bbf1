package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hfabio/mcp-servers/backend/internal/textutil"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NoTranscript replaces a transcript that could not be fetched
const NoTranscript = "No transcription available"

// Transcript fetches the English captions of a video as a single line of text
func (c *Client) Transcript(ctx context.Context, videoID string) (string, error) {
	query := url.Values{}
	query.Set("lang", "en")
	query.Set("v", videoID)
	endpoint := c.transcriptURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewFetchError(providerName, endpoint, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.NewFetchError(providerName, endpoint, resp.StatusCode, nil)
	}

	return parseTranscript(resp.Body)
}

// parseTranscript joins the text of every caption cue.
// An empty document means the video has no captions in that language.
func parseTranscript(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}

	var parts []string
	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		if line := strings.TrimSpace(s.Text()); line != "" {
			parts = append(parts, line)
		}
	})
	if len(parts) == 0 {
		return "", fmt.Errorf("no captions found")
	}

	return textutil.Sanitize(strings.Join(parts, " ")), nil
}

// AttachTranscripts fetches every transcript concurrently. A failed fetch
// is logged and replaced with NoTranscript; it never fails the batch.
func (c *Client) AttachTranscripts(ctx context.Context, videos []Video) []Video {
	out := make([]Video, len(videos))
	copy(out, videos)

	var g errgroup.Group
	for i := range out {
		g.Go(func() error {
			text, err := c.Transcript(ctx, out[i].ID)
			if err != nil {
				c.logger.Warn("Error fetching transcription",
					zap.String("video_id", out[i].ID),
					zap.Error(err),
				)
				text = NoTranscript
			}
			out[i].Transcription = text
			out[i].TranscriptionTokens = textutil.EstimateTokens(text)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// FormatResults renders the search hits as one text block
func FormatResults(query string, videos []Video, includeTranscript bool) string {
	entries := make([]string, 0, len(videos))
	for i, v := range videos {
		entry := fmt.Sprintf("Video #%d Title: %s\nDescription: %s\nLink: %s", i+1, v.Title, v.Description, v.Link())
		if includeTranscript {
			entry += "\nTranscription: " + v.Transcription
		}
		entries = append(entries, entry)
	}

	text := fmt.Sprintf("Found %d videos for \"%s\":\n%s", len(videos), query, strings.Join(entries, "\n\n"))
	return strings.TrimSpace(text)
}
