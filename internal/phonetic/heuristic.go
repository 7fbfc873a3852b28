package phonetic

import "strings"

// Heuristic estimates phonetics from spelling alone.
type Heuristic struct{}

// Syllables counts vowel clusters (a e i o u y), discounting a final silent e.
func (Heuristic) Syllables(word string) int {
	return heuristicSyllables(word)
}

// RhymeClasses returns the last three letters of the word (or the whole word
// when shorter) as its only class.
func (Heuristic) RhymeClasses(word string) []string {
	return []string{spellingTail(word)}
}

// Approximate is always true for the heuristic.
func (Heuristic) Approximate() bool { return true }

func heuristicSyllables(word string) int {
	w := lettersOnly(word)
	if w == "" {
		return 0
	}
	count := 0
	inCluster := false
	for _, r := range w {
		if isVowel(r) {
			if !inCluster {
				count++
			}
			inCluster = true
			continue
		}
		inCluster = false
	}
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && !strings.HasSuffix(w, "ye") {
		count--
	}
	return max(1, count)
}

func spellingTail(word string) string {
	w := lettersOnly(word)
	if len(w) >= 3 {
		return w[len(w)-3:]
	}
	return w
}

func lettersOnly(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
