package chunker

import (
	"strings"
	"unicode"
)

// overlapSuffix computes the trailing context copied from the end of a
// flushed chunk into the start of the next one. The suffix is at most size
// runes and is truncated backward to a sentence boundary, or failing that a
// word boundary, so overlap never begins mid-word. Returns "" when no clean
// boundary exists inside the budget.
func overlapSuffix(text string, size int) string {
	if size <= 0 {
		return ""
	}
	t := strings.TrimRight(text, " \t\n")
	runes := []rune(t)
	if len(runes) == 0 {
		return ""
	}
	if len(runes) <= size {
		return t
	}

	window := string(runes[len(runes)-size:])
	if idx := firstSentenceStart(window); idx >= 0 {
		return window[idx:]
	}
	if unicode.IsSpace(runes[len(runes)-size-1]) {
		return strings.TrimLeft(window, " \t\n")
	}
	if idx := strings.IndexAny(window, " \t\n"); idx >= 0 {
		return strings.TrimLeft(window[idx:], " \t\n")
	}
	return ""
}

// firstSentenceStart returns the byte index of the first rune that begins a
// new sentence inside s, or -1.
func firstSentenceStart(s string) int {
	for i := 0; i < len(s)-1; i++ {
		if isSentenceEnd(s[i]) && (s[i+1] == ' ' || s[i+1] == '\n') {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n') {
				j++
			}
			if j < len(s) {
				return j
			}
			return -1
		}
	}
	return -1
}
