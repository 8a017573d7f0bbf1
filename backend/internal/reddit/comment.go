package reddit

import (
	"fmt"
	"strings"
)

// ParseComment formats node and, recursively, every descendant.
// Each line of the heading block is indented by one tab per depth level.
// Children inherit depth from their own node, not from the caller.
func ParseComment(node *CommentNode, isReply bool) *ParsedComment {
	depth := node.Depth
	if depth < 0 {
		depth = 0
	}
	indent := strings.Repeat("\t", depth)

	var b strings.Builder
	b.WriteString(indent)
	if isReply || depth > 0 {
		b.WriteString("## Reply to comment by ")
	} else {
		b.WriteString("## Comment by ")
	}
	b.WriteString(node.Author)
	if node.PermissionLevel == PermissionModerator {
		b.WriteString(" (moderator)")
	}
	if node.Stickied {
		b.WriteString(" **stickied reply**")
	}
	fmt.Fprintf(&b, "\n%s%s", indent, node.Body)
	fmt.Fprintf(&b, "\n%sCreated at: %s", indent, formatCreated(node.CreatedAt))
	fmt.Fprintf(&b, "\n%sScore: %d (%d upvotes, %d downvotes)\n", indent, node.Score, node.Upvotes, node.Downvotes)

	permission := PermissionUser
	if node.PermissionLevel != "" {
		permission = PermissionAdmin
	}

	replies := make([]*ParsedComment, 0, len(node.Children))
	for _, child := range node.Children {
		replies = append(replies, ParseComment(child, true))
	}

	return &ParsedComment{
		FormattedText: b.String(),
		Author:        node.Author,
		Body:          node.Body,
		Permission:    permission,
		Upvotes:       node.Upvotes,
		Downvotes:     node.Downvotes,
		Score:         node.Score,
		Stickied:      node.Stickied,
		Depth:         depth,
		CreatedAt:     node.CreatedAt,
		Replies:       replies,
	}
}
