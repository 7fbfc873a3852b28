// Package lexicon holds the fixed word-class tables the gauntlet checks
// against. The tables are built once at init and never mutated, so they are
// safe to share across concurrent validations.
package lexicon

import (
	"regexp"
	"sort"
)

// Set is an immutable word-class membership table.
type Set struct {
	words    map[string]struct{}
	patterns map[string]*regexp.Regexp
}

// nonWord is a character outside Unicode letters, digits and underscore. Go's
// \b only knows ASCII, so "éred" would otherwise contain "red".
const nonWord = `[^\p{L}\p{N}_]`

func newSet(words ...string) Set {
	set := Set{
		words:    make(map[string]struct{}, len(words)),
		patterns: make(map[string]*regexp.Regexp, len(words)),
	}
	for _, word := range words {
		set.words[word] = struct{}{}
		set.patterns[word] = regexp.MustCompile(`(?:^|` + nonWord + `)` + regexp.QuoteMeta(word) + `(?:$|` + nonWord + `)`)
	}
	return set
}

// Has reports whether word belongs to the set.
func (s Set) Has(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words in the set.
func (s Set) Len() int {
	return len(s.words)
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s.words))
	for word := range s.words {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// Detect returns, sorted, every member that appears in text as a whole word.
// Callers pass lowercased text. The result is never nil.
func (s Set) Detect(text string) []string {
	found := []string{}
	for word, pattern := range s.patterns {
		if pattern.MatchString(text) {
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return found
}

// Category is a named semantic vocabulary.
type Category struct {
	Name  string
	Words Set
}

// FunctionWords are exempt from the repetition and alliteration checks.
var FunctionWords = newSet(
	"a", "an", "the", "and", "or", "but", "nor", "so", "yet",
	"in", "on", "at", "to", "of", "for", "from", "by", "with", "as", "into", "onto", "over", "under", "between", "among", "through", "during", "after", "before", "within", "without", "around", "across", "near", "upon",
	"is", "am", "are", "was", "were", "be", "been", "being",
	"do", "does", "did", "doing", "done",
	"have", "has", "had", "having",
	"can", "could", "may", "might", "must", "shall", "should", "will", "would",
	"i", "me", "my", "mine", "we", "us", "our", "ours", "you", "your", "yours", "he", "him", "his", "she", "her", "hers", "they", "them", "their", "theirs", "it", "its",
	"this", "that", "these", "those",
	"who", "whom", "whose", "which", "what",
	"not", "no", "yes",
	"up", "down", "out", "off", "away", "again", "still", "just", "only", "also", "too", "very", "more", "most", "less", "least",
	"if", "then", "than", "because", "since", "while", "when", "where", "why", "how",
	"here", "there",
)

var (
	Colors = newSet(
		"red", "blue", "green", "yellow", "orange", "purple", "violet", "indigo", "black", "white", "gray", "grey", "pink", "brown", "azure", "crimson", "scarlet", "amber", "teal", "cyan", "magenta", "silver", "gold", "golden",
	)
	Numbers = newSet(
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten", "dozen", "hundred", "thousand",
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	)
	Weather = newSet(
		"rain", "rains", "rainy", "storm", "storms", "wind", "winds", "windy", "snow", "snows", "snowy", "hail", "fog", "foggy", "cloud", "clouds", "cloudy", "sun", "sunny", "thunder", "lightning", "drizzle", "gale", "breeze",
	)
	Animals = newSet(
		"otter", "fox", "wolf", "eagle", "falcon", "bear", "cat", "dog", "whale", "dolphin", "shark", "lion", "tiger", "owl", "hare", "deer", "horse", "snake", "bee", "ant", "crow", "raven",
	)
	Instruments = newSet(
		"cello", "violin", "fiddle", "guitar", "piano", "drum", "drums", "flute", "clarinet", "trumpet", "trombone", "harp", "banjo", "sax", "saxophone", "oboe", "bass",
	)
)

// Theme is the discovery/exploration/building vocabulary.
var Theme = newSet(
	"discover", "discovery", "explore", "exploration", "build", "building", "craft", "forge", "map", "mapping", "cartography", "navigate", "navigation", "seek", "search", "frontier", "survey", "design", "create", "construct", "assemble",
)

// BannedStarters may not open a line.
var BannedStarters = newSet("the", "and", "but", "a", "in", "it")

// Categories lists the semantic vocabularies in reporting order.
var Categories = []Category{
	{Name: "color", Words: Colors},
	{Name: "number", Words: Numbers},
	{Name: "weather", Words: Weather},
	{Name: "animal", Words: Animals},
	{Name: "instrument", Words: Instruments},
}
