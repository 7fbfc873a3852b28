// Package extract finds the acrostic poem inside a loosely formatted
// submission. Documents are usually markdown with prose around the poem, so
// the extractor slides a 12-line window over the non-structural lines and
// keeps every window whose first letters spell the target. Windows inside
// fenced code blocks are preferred over matches in the document at large.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PoemLines is the number of lines every candidate window holds.
const PoemLines = 12

// Severity classifies an extraction note.
type Severity string

const (
	SeverityFailure Severity = "failure"
	SeverityWarning Severity = "warning"
)

// Note is a diagnostic produced while extracting.
type Note struct {
	Severity Severity
	Message  string
}

// Result is the outcome of Extract.
type Result struct {
	// Poem is the selected window, nil when nothing matched.
	Poem []string
	// Candidates counts distinct matching windows.
	Candidates int
	Notes      []Note
}

// Found reports whether a poem was selected.
func (r Result) Found() bool {
	return len(r.Poem) == PoemLines
}

// Failures returns the messages of failure notes.
func (r Result) Failures() []string {
	return r.messages(SeverityFailure)
}

// Warnings returns the messages of warning notes.
func (r Result) Warnings() []string {
	return r.messages(SeverityWarning)
}

func (r Result) messages(severity Severity) []string {
	var out []string
	for _, note := range r.Notes {
		if note.Severity == severity {
			out = append(out, note.Message)
		}
	}
	return out
}

var (
	fencePattern      = regexp.MustCompile("^\\s*`{3,}\\s*(\\w+)?\\s*$")
	structuralPattern = regexp.MustCompile(`^\s*(#{1,6}\s|[-*+]\s|>\s)`)
)

// Extract returns the first window whose acrostic equals target. Fenced
// blocks are searched before the whole document and duplicate windows are
// counted once.
func Extract(document, target string) Result {
	lines := splitLines(document)

	var candidates [][]string
	for _, block := range fencedBlocks(lines) {
		candidates = append(candidates, matchingWindows(block, target)...)
	}
	candidates = append(candidates, matchingWindows(lines, target)...)
	candidates = dedupe(candidates)

	switch len(candidates) {
	case 0:
		return Result{Notes: []Note{{
			Severity: SeverityFailure,
			Message:  fmt.Sprintf("No 12-line candidate found with acrostic %s", target),
		}}}
	case 1:
		return Result{Poem: candidates[0], Candidates: 1}
	default:
		return Result{
			Poem:       candidates[0],
			Candidates: len(candidates),
			Notes: []Note{{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Multiple candidates found (%d); using the first", len(candidates)),
			}},
		}
	}
}

// Acrostic joins the first character of every left-trimmed line. Blank lines
// contribute nothing.
func Acrostic(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		for _, r := range trimmed {
			b.WriteRune(r)
			break
		}
	}
	return b.String()
}

// fencedBlocks returns the body lines of every closed backtick fence. Any
// fence line closes an open block; an unterminated block is discarded.
func fencedBlocks(lines []string) [][]string {
	var (
		blocks [][]string
		buf    []string
		open   bool
	)
	for _, line := range lines {
		if fencePattern.MatchString(line) {
			if open {
				blocks = append(blocks, buf)
			}
			open = !open
			buf = nil
			continue
		}
		if open {
			buf = append(buf, line)
		}
	}
	return blocks
}

func matchingWindows(src []string, target string) [][]string {
	usable := usableLines(src)
	var out [][]string
	for i := 0; i+PoemLines <= len(usable); i++ {
		window := usable[i : i+PoemLines]
		if Acrostic(window) == target {
			out = append(out, append([]string(nil), window...))
		}
	}
	return out
}

// usableLines drops blank lines and markdown headings, bullets and quotes.
func usableLines(src []string) []string {
	out := make([]string, 0, len(src))
	for _, line := range src {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if structuralPattern.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupe(candidates [][]string) [][]string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		key := strings.Join(c, "\n")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// splitLines breaks document at every Unicode line boundary (LF, CR, CRLF,
// VT, FF, FS, GS, RS, NEL, LS and PS). A trailing separator does not add an
// empty line.
func splitLines(document string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(document); {
		r, size := utf8.DecodeRuneInString(document[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, document[start:i])
		i += size
		if r == '\r' && i < len(document) && document[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(document) {
		lines = append(lines, document[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
