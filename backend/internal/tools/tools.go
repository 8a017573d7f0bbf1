package tools

// Tool names - Reddit Tools
const (
	ToolSearchSubredditPosts = "search-subreddit-posts"
	ToolSearchSubreddit      = "search-subreddit"
)

// Tool names - Twitter Tools
const (
	ToolSearchTweets = "search-tweets"
)

// Tool names - YouTube Tools
const (
	ToolSearchYouTubeVideos = "search-youtube-videos"
)

// Cache contexts, one directory per provider
const (
	CacheContextReddit  = "Reddit"
	CacheContextTwitter = "Twitter"
	CacheContextYouTube = "YouTube"
)

// Tool descriptions shown to clients
const (
	descSearchSubredditPosts = "Search Reddit posts, optionally within one subreddit, and return each post with its comment thread flattened into compact text."
	descSearchSubreddit      = "Search for subreddits by name or topic and return a summary of each match (subscribers, activity, description)."
	descSearchTweets         = "Search recent tweets (last seven days) and return each tweet's text with a link to it."
	descSearchYouTubeVideos  = "Search YouTube videos published in a date window, optionally including their English transcripts."
)
