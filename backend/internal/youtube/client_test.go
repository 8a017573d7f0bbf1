package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const searchJSON = `{
  "kind": "youtube#searchListResponse",
  "pageInfo": {"totalResults": 2},
  "items": [
    {"id": {"videoId": "v1"}, "snippet": {"title": "First", "description": "one", "channelTitle": "c"}},
    {"id": {"videoId": "v2"}, "snippet": {"title": "Second", "description": "two", "channelTitle": "c"}}
  ]
}`

const transcriptXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.5">Hello   there</text>
<text start="1.5" dur="2">general &amp;amp; kenobi</text>
</transcript>`

func newFakeYouTube(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "ca", q.Get("regionCode"))
		assert.Equal(t, "key", q.Get("key"))
		assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("publishedAfter"))
		assert.Equal(t, "2024-01-08T00:00:00Z", q.Get("publishedBefore"))
		_, _ = w.Write([]byte(searchJSON))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		if r.URL.Query().Get("v") == "v2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(transcriptXML))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testParams(includeTranscript bool) SearchParams {
	return SearchParams{
		Query:             "gophers",
		MaxResults:        5,
		PublishedAfter:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PublishedBefore:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		IncludeTranscript: includeTranscript,
	}
}

func TestSearchVideos(t *testing.T) {
	server := newFakeYouTube(t)
	client := NewClient(server.URL, server.URL+"/timedtext", "key", server.Client(), zap.NewNop())

	videos, raw, err := client.SearchVideos(context.Background(), testParams(true))
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "https://www.youtube.com/watch?v=v2", videos[1].Link())
	assert.Contains(t, string(raw), "youtube#searchListResponse")
}

func TestSearchVideos_MissingKey(t *testing.T) {
	client := NewClient("http://unused", "http://unused", "", http.DefaultClient, zap.NewNop())

	_, _, err := client.SearchVideos(context.Background(), testParams(false))

	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"YOUTUBE_API_KEY"}, cfgErr.Fields)
}

func TestAttachTranscripts_FailureIsNotAnError(t *testing.T) {
	server := newFakeYouTube(t)
	client := NewClient(server.URL, server.URL+"/timedtext", "key", server.Client(), zap.NewNop())

	videos := client.AttachTranscripts(context.Background(), []Video{{ID: "v1"}, {ID: "v2"}})

	require.Len(t, videos, 2)
	assert.Equal(t, "Hello there general kenobi", videos[0].Transcription)
	assert.Equal(t, 7, videos[0].TranscriptionTokens)
	assert.Equal(t, NoTranscript, videos[1].Transcription)
}

func TestParseTranscript_Empty(t *testing.T) {
	_, err := parseTranscript(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFormatResults(t *testing.T) {
	videos := []Video{
		{ID: "v1", Title: "First", Description: "one", Transcription: "words"},
		{ID: "v2", Title: "Second", Description: "two", Transcription: NoTranscript},
	}

	expected := "Found 2 videos for \"gophers\":\n" +
		"Video #1 Title: First\nDescription: one\nLink: https://www.youtube.com/watch?v=v1\nTranscription: words\n\n" +
		"Video #2 Title: Second\nDescription: two\nLink: https://www.youtube.com/watch?v=v2\nTranscription: No transcription available"
	assert.Equal(t, expected, FormatResults("gophers", videos, true))

	withoutTranscript := FormatResults("gophers", videos[:1], false)
	assert.NotContains(t, withoutTranscript, "Transcription")
}

func TestFormatResults_NoVideos(t *testing.T) {
	assert.Equal(t, "Found 0 videos for \"x\":", FormatResults("x", nil, true))
}
