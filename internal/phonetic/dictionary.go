package phonetic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Dictionary answers phonetic queries from a CMU-format pronunciation
// dictionary. Words it does not know fall back to the heuristic. A loaded
// Dictionary is read-only and safe for concurrent use.
type Dictionary struct {
	entries map[string][][]string
}

// Open loads a dictionary file from disk.
func Open(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("phonetic: open dictionary: %w", err)
	}
	defer f.Close()
	dict, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("phonetic: load %s: %w", path, err)
	}
	return dict, nil
}

// Load parses CMU dictionary lines of the form
//
//	WORD  W ER1 D
//	WORD(2)  W ER0 D
//
// Lines starting with ";;;" and trailing "# ..." comments are ignored. Words
// are matched case-insensitively.
func Load(r io.Reader) (*Dictionary, error) {
	entries := make(map[string][][]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}
		if idx := strings.Index(line, " #"); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		word := strings.ToLower(stripVariant(fields[0]))
		phones := make([]string, len(fields)-1)
		for i, phone := range fields[1:] {
			phones[i] = strings.ToUpper(phone)
		}
		entries[word] = append(entries[word], phones)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dictionary has no entries")
	}
	return &Dictionary{entries: entries}, nil
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Pronunciations returns the phone sequences recorded for word.
func (d *Dictionary) Pronunciations(word string) [][]string {
	if d == nil {
		return nil
	}
	return d.entries[normalizeWord(word)]
}

// Syllables returns the smallest syllable count across the word's
// pronunciations, or the heuristic estimate for unknown words.
func (d *Dictionary) Syllables(word string) int {
	w := normalizeWord(word)
	if w == "" {
		return 0
	}
	prons := d.Pronunciations(w)
	if len(prons) == 0 {
		return heuristicSyllables(w)
	}
	best := -1
	for _, phones := range prons {
		n := stressedVowels(phones)
		if best < 0 || n < best {
			best = n
		}
	}
	return best
}

// RhymeClasses returns the rhyming tail of every pronunciation with stress
// digits removed, or the spelling tail for unknown words.
func (d *Dictionary) RhymeClasses(word string) []string {
	w := normalizeWord(word)
	prons := d.Pronunciations(w)
	if len(prons) == 0 {
		return []string{spellingTail(w)}
	}
	classes := make(map[string]struct{}, len(prons))
	for _, phones := range prons {
		classes[stripStress(rhymingPart(phones))] = struct{}{}
	}
	return sortedUnique(classes)
}

// Approximate is false: known words are answered from the dictionary.
func (d *Dictionary) Approximate() bool { return false }

// rhymingPart returns the phones from the last stressed vowel to the end. The
// first phone is never taken as the start; a pronunciation whose only stress
// sits there rhymes as a whole.
func rhymingPart(phones []string) string {
	for i := len(phones) - 1; i > 0; i-- {
		last := phones[i][len(phones[i])-1]
		if last == '1' || last == '2' {
			return strings.Join(phones[i:], " ")
		}
	}
	return strings.Join(phones, " ")
}

func stressedVowels(phones []string) int {
	n := 0
	for _, phone := range phones {
		if last := phone[len(phone)-1]; last >= '0' && last <= '9' {
			n++
		}
	}
	return n
}

func stripStress(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}

func stripVariant(word string) string {
	if idx := strings.IndexByte(word, '('); idx > 0 && strings.HasSuffix(word, ")") {
		return word[:idx]
	}
	return word
}
