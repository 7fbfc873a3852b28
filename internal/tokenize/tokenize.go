// Package tokenize splits poem lines into normalized word tokens. Every
// constraint in the gauntlet sees the same token stream, so the rules here
// decide what counts as a "word" for syllables, rhymes and repetition.
package tokenize

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9']+`)

// Words returns the lowercase tokens of line in order. Runs of letters,
// digits and apostrophes form a token; surrounding apostrophes are trimmed and
// tokens left empty are dropped.
func Words(line string) []string {
	matches := wordPattern.FindAllString(line, -1)
	if len(matches) == 0 {
		return nil
	}
	words := make([]string, 0, len(matches))
	for _, match := range matches {
		if token := clean(match); token != "" {
			words = append(words, token)
		}
	}
	return words
}

// Letters keeps only the ASCII letters of a token, lowercased.
func Letters(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range strings.ToLower(token) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNumeric reports whether token is made entirely of ASCII digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clean(token string) string {
	return strings.ToLower(strings.Trim(token, punctuation))
}

// punctuation mirrors the ASCII punctuation class; only the apostrophe can
// survive the word pattern but the full set keeps clean() honest if it changes.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
