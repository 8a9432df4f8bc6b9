package memory

import (
	"strings"
	"unicode"
)

// Normalize maps free text to the canonical dedup key used by the store:
// lower-cased, every non-alphanumeric rune replaced with a space, runs of
// whitespace collapsed, ends trimmed. Two texts with the same key are
// treated as the same memory.
func Normalize(text string) string {
	t := strings.ToLower(text)
	t = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, t)
	return strings.Join(strings.Fields(t), " ")
}
