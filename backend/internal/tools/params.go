package tools

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hfabio/mcp-servers/backend/internal/constants"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
)

// ============================================================================
// Tool arguments (as received)
// ============================================================================

// SearchSubredditPostsArgs are the arguments of search-subreddit-posts
type SearchSubredditPostsArgs struct {
	Subreddit   *string `json:"subreddit,omitempty" jsonschema:"subreddit to search in; all of Reddit when omitted"`
	Query       string  `json:"query" jsonschema:"search query"`
	Sort        *string `json:"sort,omitempty" jsonschema:"one of relevance, hot, new, top, rising (default relevance)"`
	Time        *string `json:"time,omitempty" jsonschema:"one of hour, day, week, month, year, all (default all)"`
	Limit       *int    `json:"limit,omitempty" jsonschema:"number of posts to return (default 5)"`
	MaxComments *int    `json:"max_comments,omitempty" jsonschema:"top-level comments per post; one fewer than this is included (default 10)"`
	Depth       *int    `json:"depth,omitempty" jsonschema:"deepest reply level to include (default 2)"`
}

// SearchSubredditArgs are the arguments of search-subreddit
type SearchSubredditArgs struct {
	Query            string  `json:"query" jsonschema:"search query"`
	Count            *int    `json:"count,omitempty" jsonschema:"number of items already seen in this listing (default 0)"`
	Limit            *int    `json:"limit,omitempty" jsonschema:"maximum number of subreddits (default 25)"`
	ShowUsers        *bool   `json:"show_users,omitempty" jsonschema:"include user profiles (default false)"`
	Sort             *string `json:"sort,omitempty" jsonschema:"one of relevance, activity (default relevance)"`
	SubRedditDetails *bool   `json:"sub_reddit_details,omitempty" jsonschema:"expand subreddit details (default false)"`
}

// SearchTweetsArgs are the arguments of search-tweets
type SearchTweetsArgs struct {
	Query      string  `json:"query" jsonschema:"The search query"`
	MaxResults *int    `json:"maxResults,omitempty" jsonschema:"The maximum number of results to return (default 25)"`
	Lang       *string `json:"lang,omitempty" jsonschema:"The language of the tweets"`
	ResultType *string `json:"resultType,omitempty" jsonschema:"The type of results to return: recency or relevancy (default relevancy)"`
}

// SearchYouTubeVideosArgs are the arguments of search-youtube-videos
type SearchYouTubeVideosArgs struct {
	Query             string  `json:"query" jsonschema:"search query"`
	IncludeTranscript *bool   `json:"include_transcript,omitempty" jsonschema:"fetch English transcripts (default true)"`
	MaxResults        *int    `json:"max_results,omitempty" jsonschema:"maximum number of videos (default 5)"`
	StartDate         *string `json:"start_date,omitempty" jsonschema:"RFC3339 start of the publish window (default seven days ago)"`
	EndDate           *string `json:"end_date,omitempty" jsonschema:"RFC3339 end of the publish window (default now)"`
}

// ============================================================================
// Resolved parameters (defaults applied, validated)
// ============================================================================

type postSearchParams struct {
	Subreddit   string `json:"subreddit"`
	Query       string `json:"query"`
	Sort        string `json:"sort"`
	Time        string `json:"time"`
	Limit       int    `json:"limit"`
	MaxComments int    `json:"max_comments"`
	Depth       int    `json:"depth"`
}

func (a SearchSubredditPostsArgs) resolve() (postSearchParams, error) {
	p := postSearchParams{
		Subreddit:   stringOr(a.Subreddit, ""),
		Query:       a.Query,
		Sort:        stringOr(a.Sort, constants.DefaultPostSort),
		Time:        stringOr(a.Time, constants.DefaultPostTime),
		Limit:       intOr(a.Limit, constants.DefaultPostLimit),
		MaxComments: intOr(a.MaxComments, constants.DefaultMaxComments),
		Depth:       intOr(a.Depth, constants.DefaultReplyDepth),
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Query, validation.Required),
		validation.Field(&p.Sort, validation.In("relevance", "hot", "new", "top", "rising")),
		validation.Field(&p.Time, validation.In("hour", "day", "week", "month", "year", "all")),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(constants.MaxRedditLimit)),
		validation.Field(&p.MaxComments, validation.Min(0)),
		validation.Field(&p.Depth, validation.Min(0)),
	)
	return p, toValidationError(err)
}

type subredditSearchParams struct {
	Query     string `json:"query"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	ShowUsers bool   `json:"show_users"`
	Sort      string `json:"sort"`
	Details   bool   `json:"sub_reddit_details"`
}

func (a SearchSubredditArgs) resolve() (subredditSearchParams, error) {
	p := subredditSearchParams{
		Query:     a.Query,
		Count:     intOr(a.Count, 0),
		Limit:     intOr(a.Limit, constants.DefaultSubredditLimit),
		ShowUsers: boolOr(a.ShowUsers, false),
		Sort:      stringOr(a.Sort, constants.DefaultSubredditSort),
		Details:   boolOr(a.SubRedditDetails, false),
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Query, validation.Required),
		validation.Field(&p.Count, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(constants.MaxRedditLimit)),
		validation.Field(&p.Sort, validation.In("relevance", "activity")),
	)
	return p, toValidationError(err)
}

type tweetSearchParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
	Lang       string `json:"lang"`
	ResultType string `json:"resultType"`
}

func (a SearchTweetsArgs) resolve() (tweetSearchParams, error) {
	p := tweetSearchParams{
		Query:      a.Query,
		MaxResults: intOr(a.MaxResults, constants.DefaultTweetResults),
		Lang:       stringOr(a.Lang, ""),
		ResultType: stringOr(a.ResultType, constants.DefaultTweetResultType),
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Query, validation.Required),
		validation.Field(&p.MaxResults, validation.Required, validation.Min(1), validation.Max(constants.MaxTweetLimit)),
		validation.Field(&p.ResultType, validation.In("recency", "relevancy")),
	)
	return p, toValidationError(err)
}

type videoSearchParams struct {
	Query             string `json:"query"`
	IncludeTranscript bool   `json:"include_transcript"`
	MaxResults        int    `json:"max_results"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`

	start time.Time
	end   time.Time
}

func (a SearchYouTubeVideosArgs) resolve(now time.Time) (videoSearchParams, error) {
	now = now.UTC()
	p := videoSearchParams{
		Query:             a.Query,
		IncludeTranscript: boolOr(a.IncludeTranscript, true),
		MaxResults:        intOr(a.MaxResults, constants.DefaultVideoResults),
		StartDate:         stringOr(a.StartDate, now.Add(-constants.DefaultVideoWindow).Format(time.RFC3339)),
		EndDate:           stringOr(a.EndDate, now.Format(time.RFC3339)),
	}
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Query, validation.Required),
		validation.Field(&p.MaxResults, validation.Required, validation.Min(1), validation.Max(constants.MaxVideoLimit)),
		validation.Field(&p.StartDate, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&p.EndDate, validation.Required, validation.Date(time.RFC3339)),
	)
	if err != nil {
		return p, toValidationError(err)
	}

	p.start, _ = time.Parse(time.RFC3339, p.StartDate)
	p.end, _ = time.Parse(time.RFC3339, p.EndDate)
	if p.start.After(p.end) {
		return p, apperrors.NewValidationError(map[string]string{"start_date": "must not be after end_date"})
	}
	return p, nil
}

// toValidationError converts ozzo field errors into a ValidationError
// keyed by JSON field name
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		fields[name] = fieldErr.Error()
	}
	return apperrors.NewValidationError(fields)
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
