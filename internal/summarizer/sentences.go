package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences breaks text at whitespace that follows '.', '!' or '?'.
// Pieces are trimmed and empty pieces dropped.
func SplitSentences(text string) []string {
	text = strings.TrimFunc(text, isSpace)

	var sentences []string
	add := func(s string) {
		if s = strings.TrimFunc(s, isSpace); s != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	var prev rune
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isSpace(r) && isTerminal(prev) {
			end := i
			for end < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[end:])
				if !isSpace(r2) {
					break
				}
				end += s2
			}
			add(text[start:i])
			start = end
			prev = 0
			i = end
			continue
		}
		prev = r
		i += size
	}
	add(text[start:])

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isSpace treats the information separators U+001C to U+001F as whitespace
// in addition to unicode.IsSpace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
