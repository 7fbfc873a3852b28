package gauntlet

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kingrea/gauntlet/internal/extract"
	"github.com/kingrea/gauntlet/internal/lexicon"
	"github.com/kingrea/gauntlet/internal/phonetic"
	"github.com/kingrea/gauntlet/internal/tokenize"
)

const (
	minLineSyllables     = 8
	maxLineSyllables     = 10
	polysyllabicMinimum  = 4
	minPolysyllabicWords = 5
	exactWordLength      = 5
	minExactLengthLines  = 8
	minAlliterationLines = 4
	maxRepeatsShown      = 20
)

// Constraint describes one rule of the gauntlet.
type Constraint struct {
	ID          int
	Name        string
	Description string
	// Advisory constraints produce warnings and never affect Result.OK.
	Advisory bool

	check func(*evaluation) string
}

// Constraints lists the rules in evaluation order.
func Constraints() []Constraint {
	out := make([]Constraint, len(constraints))
	copy(out, constraints)
	return out
}

var constraints = []Constraint{
	{ID: 1, Name: "line_count", Description: "exactly 12 lines", check: checkLineCount},
	{ID: 2, Name: "acrostic", Description: "first letters spell the target", check: checkAcrostic},
	{ID: 3, Name: "syllables_per_line", Description: "8-10 syllables on every line", check: checkSyllables},
	{ID: 4, Name: "semantic_detected", Description: "a color, number, weather, animal and instrument word", Advisory: true, check: checkCategories},
	{ID: 5, Name: "repeated_words", Description: "no content word used twice", check: checkRepeats},
	{ID: 6, Name: "four_plus_syllable_words", Description: "at least 5 distinct words of 4+ syllables", check: checkPolysyllabic},
	{ID: 7, Name: "theme_keywords_detected", Description: "discovery/exploration/building theme", Advisory: true, check: checkTheme},
	{ID: 8, Name: "terminal_punctuation", Description: "line 12 ends with a question mark", check: checkTerminal},
	{ID: 9, Name: "rhyme_pairs", Description: "couplets (1-2, 3-4, ...) rhyme", check: checkCouplets},
	{ID: 10, Name: "lines_with_5_letter_word", Description: "at least 8 lines contain a 5-letter word", check: checkExactLength},
	{ID: 11, Name: "banned_starts", Description: "no line opens with The/And/But/A/In/It", check: checkBannedStarts},
	{ID: 12, Name: "alliteration_lines", Description: "at least 4 alliterative lines", check: checkAlliteration},
}

func checkLineCount(ev *evaluation) string {
	ev.details.LineCount = len(ev.lines)
	if len(ev.lines) != extract.PoemLines {
		return fmt.Sprintf("Expected 12 lines, got %d", len(ev.lines))
	}
	return ""
}

func checkAcrostic(ev *evaluation) string {
	got := extract.Acrostic(ev.lines)
	ev.details.Acrostic = got
	if got != ev.engine.target {
		return fmt.Sprintf("Acrostic mismatch: got %q, expected %q", got, ev.engine.target)
	}
	return ""
}

func checkSyllables(ev *evaluation) string {
	counts := make([]int, len(ev.lines))
	var bad []string
	for i, words := range ev.tokens {
		for _, w := range words {
			counts[i] += ev.syllables(w)
		}
		if counts[i] < minLineSyllables || counts[i] > maxLineSyllables {
			bad = append(bad, fmt.Sprintf("L%d=%d", i+1, counts[i]))
		}
	}
	ev.details.SyllablesPerLine = counts
	if len(bad) > 0 {
		return "Syllable count out of range (8-10): " + strings.Join(bad, ", ")
	}
	return ""
}

func checkCategories(ev *evaluation) string {
	found := make(map[string][]string, len(lexicon.Categories))
	var missing []string
	for _, category := range lexicon.Categories {
		words := category.Words.Detect(ev.text)
		found[category.Name] = words
		if len(words) == 0 {
			missing = append(missing, category.Name)
		}
	}
	ev.details.SemanticDetected = found
	if len(missing) > 0 {
		return "Semantic category not detected (best-effort lists): " + strings.Join(missing, ", ")
	}
	return ""
}

// contentStem folds possessives and simple plurals so "river", "rivers" and
// "river's" collide. A trailing s is only dropped from words longer than
// three letters.
func contentStem(token string) string {
	stem := strings.TrimSuffix(token, "'s")
	if len(stem) > 3 {
		stem = strings.TrimSuffix(stem, "s")
	}
	return stem
}

func checkRepeats(ev *evaluation) string {
	seen := make(map[string]int)
	repeats := []Repeat{}
	for i, words := range ev.tokens {
		line := i + 1
		for _, w := range words {
			if lexicon.FunctionWords.Has(w) {
				continue
			}
			stem := contentStem(w)
			if first, ok := seen[stem]; ok {
				repeats = append(repeats, Repeat{Word: stem, FirstLine: first, Line: line})
				continue
			}
			seen[stem] = line
		}
	}
	ev.details.RepeatedWords = repeats
	if len(repeats) == 0 {
		return ""
	}
	shown := repeats
	if len(shown) > maxRepeatsShown {
		shown = shown[:maxRepeatsShown]
	}
	parts := make([]string, len(shown))
	for i, r := range shown {
		parts[i] = fmt.Sprintf("%s(L%d&L%d)", r.Word, r.FirstLine, r.Line)
	}
	msg := "Repeated content words: " + strings.Join(parts, ", ")
	if len(repeats) > maxRepeatsShown {
		msg += " ..."
	}
	return msg
}

func checkPolysyllabic(ev *evaluation) string {
	distinct := make(map[string]struct{})
	for _, words := range ev.tokens {
		for _, w := range words {
			if ev.syllables(w) >= polysyllabicMinimum {
				distinct[w] = struct{}{}
			}
		}
	}
	found := make([]string, 0, len(distinct))
	for w := range distinct {
		found = append(found, w)
	}
	sort.Strings(found)
	ev.details.FourPlusSyllableWords = found
	if len(found) < minPolysyllabicWords {
		return fmt.Sprintf("Need >=5 words with 4+ syllables; got %d", len(found))
	}
	return ""
}

func checkTheme(ev *evaluation) string {
	found := lexicon.Theme.Detect(ev.text)
	ev.details.ThemeKeywordsDetected = found
	if len(found) == 0 {
		return "Theme keywords not detected (best-effort): discovery/exploration/building"
	}
	return ""
}

func checkTerminal(ev *evaluation) string {
	if len(ev.lines) == 0 {
		return ""
	}
	last := strings.TrimRightFunc(ev.lines[len(ev.lines)-1], unicode.IsSpace)
	ev.details.TerminalPunctuation = strings.HasSuffix(last, "?")
	if !ev.details.TerminalPunctuation {
		return "Line 12 must end with '?'"
	}
	return ""
}

// lastContentWord returns the last non-numeric token, falling back to the
// last token when every token is numeric.
func lastContentWord(words []string) string {
	for i := len(words) - 1; i >= 0; i-- {
		if !tokenize.IsNumeric(words[i]) {
			return words[i]
		}
	}
	if len(words) > 0 {
		return words[len(words)-1]
	}
	return ""
}

func checkCouplets(ev *evaluation) string {
	pairs := []RhymePair{}
	var bad []string
	limit := min(len(ev.lines), extract.PoemLines)
	for a := 0; a+1 < limit; a += 2 {
		w1 := lastContentWord(ev.tokens[a])
		w2 := lastContentWord(ev.tokens[a+1])
		pair := RhymePair{Lines: [2]int{a + 1, a + 2}, W1: w1, W2: w2, Intersect: []string{}}
		if w1 == "" || w2 == "" {
			pair.Missing = true
			pairs = append(pairs, pair)
			bad = append(bad, fmt.Sprintf("(%d,%d) <missing-last-word>", a+1, a+2))
			continue
		}
		pair.Intersect = phonetic.SharedClasses(ev.engine.phonetics, w1, w2)
		pairs = append(pairs, pair)
		if len(pair.Intersect) == 0 {
			bad = append(bad, fmt.Sprintf("(%d,%d) %s/%s", a+1, a+2, w1, w2))
		}
	}
	ev.details.RhymePairs = pairs
	if len(bad) > 0 {
		return "Couplet rhyme failures: " + strings.Join(bad, ", ")
	}
	return ""
}

func checkExactLength(ev *evaluation) string {
	lines := []int{}
	for i, words := range ev.tokens {
		for _, w := range words {
			if len(tokenize.Letters(w)) == exactWordLength {
				lines = append(lines, i+1)
				break
			}
		}
	}
	ev.details.LinesWith5LetterWord = lines
	if len(lines) < minExactLengthLines {
		return fmt.Sprintf("Need >=8 lines with a 5-letter word; got %d", len(lines))
	}
	return ""
}

func checkBannedStarts(ev *evaluation) string {
	banned := []BannedStart{}
	for i, words := range ev.tokens {
		if len(words) > 0 && lexicon.BannedStarters.Has(words[0]) {
			banned = append(banned, BannedStart{Line: i + 1, Word: words[0]})
		}
	}
	ev.details.BannedStarts = banned
	if len(banned) == 0 {
		return ""
	}
	parts := make([]string, len(banned))
	for i, b := range banned {
		parts[i] = fmt.Sprintf("L%d=%s", b.Line, b.Word)
	}
	return "Banned line starts: " + strings.Join(parts, ", ")
}

func alliterates(words []string) bool {
	initials := make(map[byte]int)
	for _, w := range words {
		if lexicon.FunctionWords.Has(w) {
			continue
		}
		letters := tokenize.Letters(w)
		if letters == "" {
			continue
		}
		initials[letters[0]]++
		if initials[letters[0]] >= 2 {
			return true
		}
	}
	return false
}

func checkAlliteration(ev *evaluation) string {
	lines := []int{}
	for i, words := range ev.tokens {
		if alliterates(words) {
			lines = append(lines, i+1)
		}
	}
	ev.details.AlliterationLines = lines
	if len(lines) < minAlliterationLines {
		return fmt.Sprintf("Need >=4 alliteration lines; got %d", len(lines))
	}
	return ""
}
