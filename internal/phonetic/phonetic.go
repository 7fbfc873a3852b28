// Package phonetic estimates syllable counts and rhyme classes for single
// words. Two providers implement the same capability: a CMU-style
// pronunciation dictionary and a vowel-cluster heuristic used when no
// dictionary is available. Callers pick one at startup with Select and never
// branch on which one is active afterwards.
//
// Both providers lean toward leniency: the dictionary reports the smallest
// syllable count across a word's pronunciations and unions the rhyme classes
// of every pronunciation.
package phonetic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoDictionary is returned by Select when no dictionary path is configured.
var ErrNoDictionary = errors.New("phonetic: no pronunciation dictionary configured")

// Provider is the phonetic capability the constraint engine depends on.
type Provider interface {
	// Syllables returns the estimated syllable count of word; 0 when the word
	// has nothing pronounceable in it.
	Syllables(word string) int
	// RhymeClasses returns the sorted, de-duplicated rhyme classes of word.
	RhymeClasses(word string) []string
	// Approximate reports whether results come only from the heuristic.
	Approximate() bool
}

// Select opens the dictionary at path. When path is empty or the file cannot
// be loaded it returns the heuristic provider together with the reason, which
// callers surface as a warning; the returned provider is always usable.
func Select(path string) (Provider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Heuristic{}, ErrNoDictionary
	}
	dict, err := Open(path)
	if err != nil {
		return Heuristic{}, err
	}
	return dict, nil
}

// Rhymes reports whether a and b share at least one rhyme class. It is
// symmetric by construction.
func Rhymes(p Provider, a, b string) bool {
	return len(SharedClasses(p, a, b)) > 0
}

// SharedClasses returns the sorted intersection of the rhyme classes of a and b.
func SharedClasses(p Provider, a, b string) []string {
	left := p.RhymeClasses(a)
	right := make(map[string]struct{}, len(left))
	for _, class := range p.RhymeClasses(b) {
		right[class] = struct{}{}
	}
	shared := []string{}
	for _, class := range left {
		if _, ok := right[class]; ok {
			shared = append(shared, class)
		}
	}
	sort.Strings(shared)
	return shared
}

// Name describes a provider for diagnostics.
func Name(p Provider) string {
	switch v := p.(type) {
	case *Dictionary:
		return fmt.Sprintf("dictionary (%d words)", v.Len())
	case Heuristic:
		return "heuristic"
	case nil:
		return "none"
	default:
		if p.Approximate() {
			return "heuristic"
		}
		return "dictionary"
	}
}

// normalizeWord lowercases word and keeps letters and apostrophes, the key
// form dictionary entries use.
func normalizeWord(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if (r >= 'a' && r <= 'z') || r == '\'' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sortedUnique(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
