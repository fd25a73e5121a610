package textops

import (
	"strings"
	"unicode"
)

// Normalize cleans raw OCR output into readable text: control characters are
// dropped, runs of spaces and tabs collapse to one space, and sentence
// punctuation is always followed by a single space.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := false
	for _, r := range raw {
		if r == '\n' {
			b.WriteRune('\n')
			lastSpace = false
			continue
		}
		if r == ' ' || r == '\t' {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	out := b.String()
	out = spaceAfterPunct(out)
	return strings.TrimSpace(out)
}

func spaceAfterPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	runes := []rune(s)
	for i, r := range runes {
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) {
			continue
		}
		next := runes[i+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
