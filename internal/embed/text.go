package embed

import "strings"

// maxTextLen is the character ceiling applied to input text before
// submission to the embedding service.
const maxTextLen = 6000

// Preprocess collapses runs of whitespace into single spaces, trims,
// and truncates the text to the service's character ceiling. An empty
// result means the text should not be submitted at all.
func Preprocess(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if len(cleaned) > maxTextLen {
		cleaned = cleaned[:maxTextLen]
	}
	return cleaned
}
