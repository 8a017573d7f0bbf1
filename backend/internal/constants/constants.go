package constants

import "time"

// Reddit post search defaults
const (
	DefaultPostSort  = "relevance"
	DefaultPostTime  = "all"
	DefaultPostLimit = 5

	// DefaultMaxComments bounds top-level replies per post; the flattener
	// keeps one fewer than this
	DefaultMaxComments = 10

	// DefaultReplyDepth is the deepest reply level rendered under a post
	DefaultReplyDepth = 2
)

// Subreddit search defaults
const (
	DefaultSubredditLimit = 25
	DefaultSubredditSort  = "relevance"
)

// Twitter defaults
const (
	DefaultTweetResults    = 25
	DefaultTweetResultType = "relevancy"
)

// YouTube defaults
const (
	DefaultVideoResults = 5

	// DefaultVideoWindow is how far back a search looks when no start date is given
	DefaultVideoWindow = 7 * 24 * time.Hour
)

// Upper bounds accepted by the providers
const (
	MaxRedditLimit = 100
	MaxTweetLimit  = 100
	MaxVideoLimit  = 50
)
