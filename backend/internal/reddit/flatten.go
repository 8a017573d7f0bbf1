package reddit

import "strings"

// Flatten concatenates formatted comments in pre-order.
//
// Top-level replies are taken in order and processing stops once
// index+1 reaches maxTopLevel, so at most maxTopLevel-1 are included.
// Below each top-level reply the first node deeper than maxDepth ends the
// walk for that reply: nodes still pending under it are dropped, but the
// next top-level reply is processed normally.
func Flatten(replies []*ParsedComment, maxTopLevel, maxDepth int) string {
	var b strings.Builder

	for i, reply := range replies {
		if i+1 >= maxTopLevel {
			break
		}
		b.WriteString(reply.FormattedText)

		// top of the stack is the front of the work-list
		stack := pushChildren(nil, reply.Replies)
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if node.Depth > maxDepth {
				break
			}
			b.WriteString(node.FormattedText)
			stack = pushChildren(stack, node.Replies)
		}
	}

	return b.String()
}

// pushChildren pushes children so the first child is popped first
func pushChildren(stack, children []*ParsedComment) []*ParsedComment {
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i])
	}
	return stack
}
