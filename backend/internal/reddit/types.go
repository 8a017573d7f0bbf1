package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reddit thing kinds
const (
	kindComment   = "t1"
	kindPost      = "t3"
	kindSubreddit = "t5"
)

// PermissionModerator is the permission level Reddit reports for moderator comments
const PermissionModerator = "moderator"

// Derived comment permissions
const (
	PermissionAdmin = "admin"
	PermissionUser  = "user"
)

// CommentNode is a comment as Reddit shapes it, with optional fields
// resolved to their defaults.
type CommentNode struct {
	Author          string
	Body            string
	PermissionLevel string // "moderator" or empty
	Upvotes         int
	Downvotes       int
	Score           int
	Stickied        bool
	CreatedAt       int64 // epoch seconds
	Depth           int   // 0 for top-level replies
	Children        []*CommentNode
}

// ParsedComment is the formatted, normalized form of a CommentNode.
// It is built once and never mutated afterwards.
type ParsedComment struct {
	FormattedText string           `json:"formatted_text"`
	Author        string           `json:"author"`
	Body          string           `json:"body"`
	Permission    string           `json:"permission"`
	Upvotes       int              `json:"ups"`
	Downvotes     int              `json:"downs"`
	Score         int              `json:"score"`
	Stickied      bool             `json:"stickied"`
	Depth         int              `json:"depth"`
	CreatedAt     int64            `json:"created"`
	Replies       []*ParsedComment `json:"replies,omitempty"`
}

// PostMeta identifies a post found by search
type PostMeta struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	URL            string `json:"url"`
	SubredditLabel string `json:"subreddit_name_prefixed"`
	Permalink      string `json:"permalink"`
}

// PostRecord is one assembled post with its flattened thread
type PostRecord struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Author              string           `json:"author"`
	URL                 string           `json:"url"`
	SubredditLabel      string           `json:"subreddit_name_prefixed"`
	Permalink           string           `json:"permalink"`
	NormalizedText      string           `json:"sanitized_response"`
	EstimatedTokenCount int              `json:"estimated_tokens"`
	TopLevelReplies     []*ParsedComment `json:"replies,omitempty"`
}

// SubredditSummary is one subreddit search result
type SubredditSummary struct {
	Title               string `json:"title"`
	DisplayLabel        string `json:"display_name_prefixed"`
	ShortDescription    string `json:"public_description"`
	LongDescription     string `json:"description"`
	SubscriberCount     int    `json:"subscribers"`
	ActiveUserCount     *int   `json:"active_user_count"`
	CreatedAt           int64  `json:"created_utc"`
	Category            string `json:"advertiser_category"`
	URL                 string `json:"url"`
	NormalizedText      string `json:"sanitized_response"`
	EstimatedTokenCount int    `json:"estimated_tokens"`
}

// ============================================================================
// Raw API shapes
// ============================================================================

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type rawComment struct {
	Author        string  `json:"author"`
	Body          string  `json:"body"`
	Distinguished string  `json:"distinguished"`
	Permission    string  `json:"permission"`
	Ups           int     `json:"ups"`
	Downs         int     `json:"downs"`
	Score         int     `json:"score"`
	Stickied      bool    `json:"stickied"`
	Created       float64 `json:"created"`
	Depth         int     `json:"depth"`
	Replies       replies `json:"replies"`
}

// replies is either an empty string or a listing in Reddit's API
type replies struct {
	Children []thing
}

func (r *replies) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] == '"' {
		r.Children = nil
		return nil
	}
	var l listing
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return fmt.Errorf("decode replies: %w", err)
	}
	r.Children = l.Data.Children
	return nil
}

type rawPost struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Author                string `json:"author"`
	URL                   string `json:"url"`
	SubredditNamePrefixed string `json:"subreddit_name_prefixed"`
	Permalink             string `json:"permalink"`
	Selftext              string `json:"selftext"`
}

type rawSubreddit struct {
	Title               string  `json:"title"`
	DisplayNamePrefixed string  `json:"display_name_prefixed"`
	PublicDescription   string  `json:"public_description"`
	Description         string  `json:"description"`
	Subscribers         int     `json:"subscribers"`
	AccountsActive      *int    `json:"accounts_active"`
	ActiveUserCount     *int    `json:"active_user_count"`
	CreatedUTC          float64 `json:"created_utc"`
	AdvertiserCategory  string  `json:"advertiser_category"`
	URL                 string  `json:"url"`
}

// decodeComments converts a listing's children into comment nodes.
// Non-comment things ("more" stubs) carry no author or body and are not comments.
func decodeComments(children []thing) ([]*CommentNode, error) {
	nodes := make([]*CommentNode, 0, len(children))
	for _, child := range children {
		if child.Kind != kindComment {
			continue
		}

		var raw rawComment
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}

		kids, err := decodeComments(raw.Replies.Children)
		if err != nil {
			return nil, err
		}

		level := raw.Distinguished
		if level == "" {
			level = raw.Permission
		}

		depth := raw.Depth
		if depth < 0 {
			depth = 0
		}

		nodes = append(nodes, &CommentNode{
			Author:          raw.Author,
			Body:            raw.Body,
			PermissionLevel: level,
			Upvotes:         raw.Ups,
			Downvotes:       raw.Downs,
			Score:           raw.Score,
			Stickied:        raw.Stickied,
			CreatedAt:       int64(raw.Created),
			Depth:           depth,
			Children:        kids,
		})
	}
	return nodes, nil
}

// decodePosts extracts post metadata from a search listing
func decodePosts(children []thing) ([]PostMeta, error) {
	posts := make([]PostMeta, 0, len(children))
	for _, child := range children {
		if child.Kind != kindPost {
			continue
		}
		var raw rawPost
		if err := json.Unmarshal(child.Data, &raw); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, PostMeta{
			ID:             raw.ID,
			Title:          raw.Title,
			Author:         raw.Author,
			URL:            raw.URL,
			SubredditLabel: raw.SubredditNamePrefixed,
			Permalink:      raw.Permalink,
		})
	}
	return posts, nil
}
