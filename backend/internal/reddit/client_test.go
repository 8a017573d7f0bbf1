package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hfabio/mcp-servers/backend/internal/credentials"
	"github.com/hfabio/mcp-servers/backend/internal/textutil"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const threadJSON = `[
  {"kind":"Listing","data":{"children":[{"kind":"t3","data":{
    "id":"abc","title":"Go tips","author":"op","url":"https://example.com",
    "subreddit_name_prefixed":"r/golang","permalink":"/r/golang/comments/abc/go_tips/",
    "selftext":"Use  &amp; <b>enjoy</b>"}}]}},
  {"kind":"Listing","data":{"children":[
    {"kind":"t1","data":{"author":"alice","body":"first","ups":3,"downs":0,"score":3,"created":0,"depth":0,
      "distinguished":"moderator","stickied":true,
      "replies":{"kind":"Listing","data":{"children":[
        {"kind":"t1","data":{"author":"bob","body":"nested","ups":1,"downs":0,"score":1,"created":0,"depth":1,"replies":""}}
      ]}}}},
    {"kind":"t1","data":{"author":"carol","body":"second","ups":2,"downs":1,"score":1,"created":0,"depth":0,"replies":""}},
    {"kind":"more","data":{"count":4,"children":["x","y"]}}
  ]}}
]`

// newTestClient returns a client with a cached token pointed at a fake API
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newMemStore(map[string]string{credentials.RedditTokenKey: "tok"})
	auth := NewTokenAcquirer("http://unused", testCreds, store, server.Client(), zap.NewNop())
	return NewClient(server.URL, auth, server.Client(), zap.NewNop())
}

func TestAssemblePost(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/comments/abc/go_tips/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "go:app:v1.0.0 (by /u/user)", r.UserAgent())
		_, _ = w.Write([]byte(threadJSON))
	}))

	meta := PostMeta{
		ID:             "abc",
		Title:          "Go tips",
		Author:         "op",
		URL:            "https://example.com",
		SubredditLabel: "r/golang",
		Permalink:      "/r/golang/comments/abc/go_tips/",
	}

	record, err := client.AssemblePost(context.Background(), meta, 10, 2)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.NormalizedText,
		"# Go tips\nby op on subreddit r/golang\nurl: https://example.com\nAuthor message:\nUse enjoy\n\n# Replies:\n"))
	assert.Contains(t, record.NormalizedText, "## Comment by alice (moderator) **stickied reply**")
	assert.Contains(t, record.NormalizedText, "\t## Reply to comment by bob")
	assert.Contains(t, record.NormalizedText, "## Comment by carol")
	assert.Less(t, strings.Index(record.NormalizedText, "bob"), strings.Index(record.NormalizedText, "carol"))
	assert.Equal(t, textutil.EstimateTokens(record.NormalizedText), record.EstimatedTokenCount)
	assert.Equal(t, textutil.Sanitize(record.NormalizedText), record.NormalizedText)
	require.Len(t, record.TopLevelReplies, 2)
	assert.Equal(t, PermissionAdmin, record.TopLevelReplies[0].Permission)
}

func TestAssemblePost_NoComments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"kind":"Listing","data":{"children":[{"kind":"t3","data":{"selftext":""}}]}},
			{"kind":"Listing","data":{"children":[]}}]`))
	}))

	record, err := client.AssemblePost(context.Background(), PostMeta{Title: "T", Author: "a", SubredditLabel: "r/x", URL: "u", Permalink: "/p"}, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, "# T\nby a on subreddit r/x\nurl: u\nAuthor message:", record.NormalizedText)
	assert.NotContains(t, record.NormalizedText, "# Replies:")
}

func TestAssemblePost_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	record, err := client.AssemblePost(context.Background(), PostMeta{Permalink: "/p"}, 10, 2)
	assert.Nil(t, record)

	var fetchErr *apperrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.Status)
	assert.False(t, apperrors.IsFatal(err))
}

func TestGetJSON_RateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Reset", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, _, err := client.SearchPosts(context.Background(), SearchParams{Query: "go", Sort: "relevance", Time: "all", Limit: 5})

	var rlErr *apperrors.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 42*time.Second, rlErr.RetryAfter)
}

func TestSearchPosts_RestrictsToSubreddit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/golang/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "generics", q.Get("q"))
		assert.Equal(t, "top", q.Get("sort"))
		assert.Equal(t, "3", q.Get("limit"))
		assert.Equal(t, "week", q.Get("t"))
		assert.Equal(t, "on", q.Get("restrict_sr"))
		_, _ = w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t3","data":{"id":"1","title":"one","permalink":"/r/golang/comments/1/"}},
			{"kind":"t3","data":{"id":"2","title":"two","permalink":"/r/golang/comments/2/"}}]}}`))
	}))

	posts, raw, err := client.SearchPosts(context.Background(), SearchParams{
		Subreddit: "golang", Query: "generics", Sort: "top", Time: "week", Limit: 3,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0].Title)
	assert.Equal(t, "/r/golang/comments/2/", posts[1].Permalink)
	assert.Contains(t, string(raw), `"Listing"`)
}

func TestSearchPosts_Sitewide(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("restrict_sr"))
		_, _ = w.Write([]byte(`{"kind":"Listing","data":{"children":[]}}`))
	}))

	posts, _, err := client.SearchPosts(context.Background(), SearchParams{Query: "go", Sort: "relevance", Time: "all", Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAssemblePosts_PreservesOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(20 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`[{"kind":"Listing","data":{"children":[{"kind":"t3","data":{}}]}}]`))
	}))

	records, err := client.AssemblePosts(context.Background(), []PostMeta{
		{Title: "slow", Permalink: "/slow"},
		{Title: "fast", Permalink: "/fast"},
	}, 10, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "slow", records[0].Title)
	assert.Equal(t, "fast", records[1].Title)
}

func TestSearchSubreddits(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subreddits/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "golang", q.Get("q"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "false", q.Get("show_users"))
		assert.Equal(t, "relevance", q.Get("sort"))
		assert.Equal(t, "false", q.Get("sr_detail"))
		_, _ = w.Write([]byte(`{"kind":"Listing","data":{"children":[
			{"kind":"t5","data":{"title":"The Go Programming Language","display_name_prefixed":"r/golang",
			  "public_description":"Ask questions","description":"&gt; Rules <i>apply</i>",
			  "subscribers":250000,"accounts_active":120,"created_utc":1700000000.0,"url":"/r/golang/"}},
			{"kind":"t5","data":{"title":"Quiet","display_name_prefixed":"r/quiet","subscribers":3,
			  "created_utc":0,"url":"/r/quiet/","advertiser_category":"Technology"}}]}}`))
	}))

	summaries, _, err := client.SearchSubreddits(context.Background(), SubredditSearchParams{
		Query: "golang", Limit: 25, Sort: "relevance",
	})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	first := summaries[0]
	require.NotNil(t, first.ActiveUserCount)
	assert.Equal(t, 120, *first.ActiveUserCount)
	assert.Equal(t, "Rules apply", first.LongDescription)
	assert.Contains(t, first.NormalizedText, "# The Go Programming Language (r/golang)")
	assert.Contains(t, first.NormalizedText, "url: https://www.reddit.com/r/golang/")
	assert.Contains(t, first.NormalizedText, "subscribers: 250000")
	assert.Contains(t, first.NormalizedText, "active users: 120")
	assert.Contains(t, first.NormalizedText, "created at: 11/14/2023, 10:13:20 PM")
	assert.NotContains(t, first.NormalizedText, "category:")
	assert.Equal(t, textutil.EstimateTokens(first.NormalizedText), first.EstimatedTokenCount)

	second := summaries[1]
	assert.Nil(t, second.ActiveUserCount)
	assert.Contains(t, second.NormalizedText, "active users: unknown")
	assert.Contains(t, second.NormalizedText, "category: Technology")
}
