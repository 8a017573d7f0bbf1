// Package textutil holds the text cleanup applied to every provider body
// before it is returned to a caller.
package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf16"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	entityPattern  = regexp.MustCompile(`&[^;\s]+;`)
	invisibleChars = regexp.MustCompile(`[\x{00AD}\x{180E}\x{200B}-\x{200F}\x{2060}-\x{2064}\x{FEFF}]`)
	spaceRuns      = regexp.MustCompile(` {2,}`)
)

// Sanitize strips markup, HTML entities and invisible characters, then
// collapses runs of spaces and trims the result. Passes run in a fixed
// order: tags first, so entities exposed by tag removal are still caught.
// Tabs and newlines inside the text are kept; only spaces are collapsed.
func Sanitize(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = entityPattern.ReplaceAllString(text, "")
	text = invisibleChars.ReplaceAllString(text, "")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// EstimateTokens approximates a language-model token count as
// ceil(length/4), where length counts UTF-16 code units.
func EstimateTokens(text string) int {
	n := len(utf16.Encode([]rune(text)))
	return int(math.Ceil(float64(n) / 4))
}
