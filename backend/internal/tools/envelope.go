package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Content block types
const (
	BlockText  = "text"
	BlockImage = "image"
	BlockVideo = "video"
	BlockAudio = "audio"
	BlockFile  = "file"
)

// ContentBlock is one item of a tool response
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty"`
	Title    string `json:"title,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// Envelope is the provider-neutral response of every tool
type Envelope struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// textEnvelope wraps a single text block
func textEnvelope(text string) *Envelope {
	return &Envelope{Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// ToCallToolResult converts the envelope into MCP content. Text blocks
// become text content; any block carrying a URL also yields a resource link,
// which is all a non-text block becomes.
func (e *Envelope) ToCallToolResult() *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(e.Content))
	for _, block := range e.Content {
		if block.Type == BlockText {
			content = append(content, &mcp.TextContent{Text: block.Text})
		}
		if block.URL == "" {
			continue
		}
		name := block.Title
		if name == "" {
			name = block.URL
		}
		content = append(content, &mcp.ResourceLink{
			URI:      block.URL,
			Name:     name,
			MIMEType: block.MimeType,
		})
	}

	return &mcp.CallToolResult{
		Content: content,
		IsError: e.IsError,
	}
}
