package tools

import (
	"context"

	"github.com/hfabio/mcp-servers/backend/internal/youtube"
)

// SearchYouTubeVideos searches videos and renders them as one text block
func (t *Toolset) SearchYouTubeVideos(ctx context.Context, args SearchYouTubeVideosArgs) (*Envelope, error) {
	execCtx := t.begin(ToolSearchYouTubeVideos, CacheContextYouTube)

	params, err := args.resolve(t.now())
	if err != nil {
		return t.fail(execCtx, err)
	}

	videos, raw, err := t.youtube.SearchVideos(ctx, youtube.SearchParams{
		Query:             params.Query,
		MaxResults:        params.MaxResults,
		PublishedAfter:    params.start,
		PublishedBefore:   params.end,
		IncludeTranscript: params.IncludeTranscript,
	})
	if err != nil {
		return t.fail(execCtx, err)
	}

	if params.IncludeTranscript {
		videos = t.youtube.AttachTranscripts(ctx, videos)
	}

	env := textEnvelope(youtube.FormatResults(params.Query, videos, params.IncludeTranscript))
	return t.finish(execCtx, raw, env), nil
}
