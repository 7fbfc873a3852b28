package extract

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const target = "VILLAGECODES"

func readPoem(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile("testdata/poem.txt")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, PoemLines)
	return lines
}

func TestExtractPlainDocument(t *testing.T) {
	poem := readPoem(t)
	doc := "# Challenge 3 submission\n\nBy someone.\n\n" + strings.Join(poem, "\n") + "\n\n- notes: written quickly\n"
	res := Extract(doc, target)
	require.True(t, res.Found())
	assert.Equal(t, poem, res.Poem)
	assert.Equal(t, 1, res.Candidates)
	assert.Empty(t, res.Notes)
}

func TestExtractSkipsBlankAndStructuralLines(t *testing.T) {
	poem := readPoem(t)
	var b strings.Builder
	for i, line := range poem {
		b.WriteString(line + "\n")
		if i == 3 {
			b.WriteString("\n> an aside\n## Stanza two\n* bullet\n")
		}
	}
	res := Extract(b.String(), target)
	require.True(t, res.Found())
	assert.Equal(t, poem, res.Poem)
}

func TestExtractTooShort(t *testing.T) {
	poem := readPoem(t)
	doc := strings.Join(poem[:10], "\n")
	res := Extract(doc, target)
	assert.False(t, res.Found())
	assert.Nil(t, res.Poem)
	assert.Equal(t, []string{"No 12-line candidate found with acrostic VILLAGECODES"}, res.Failures())
	assert.Empty(t, res.Warnings())
}

func TestExtractPrefersFencedBlock(t *testing.T) {
	poem := readPoem(t)
	other := append([]string(nil), poem...)
	other[0] = "Vast valleys shimmer in the light"
	doc := strings.Join(other, "\n") + "\n\nFinal version:\n\n```text\n" + strings.Join(poem, "\n") + "\n```\n"

	res := Extract(doc, target)
	require.True(t, res.Found())
	assert.Equal(t, poem, res.Poem, "fenced candidate wins even though it appears later")
	assert.Equal(t, 2, res.Candidates)
	assert.Equal(t, []string{"Multiple candidates found (2); using the first"}, res.Warnings())
	assert.Empty(t, res.Failures())
}

func TestExtractDeduplicatesIdenticalWindows(t *testing.T) {
	poem := readPoem(t)
	doc := "```\n" + strings.Join(poem, "\n") + "\n```\n\n" + strings.Join(poem, "\n") + "\n"
	res := Extract(doc, target)
	require.True(t, res.Found())
	assert.Equal(t, 1, res.Candidates)
	assert.Empty(t, res.Notes)
}

func TestExtractIndentedFencedPoem(t *testing.T) {
	poem := readPoem(t)
	indented := make([]string, len(poem))
	for i, line := range poem {
		indented[i] = "    " + line
	}
	doc := "```\n" + strings.Join(indented, "\n") + "\n```\n"
	res := Extract(doc, target)
	require.True(t, res.Found())
	assert.Equal(t, indented, res.Poem)
}

func TestExtractTildeBlockIsNotAFence(t *testing.T) {
	poem := readPoem(t)
	other := append([]string(nil), poem...)
	other[0] = "Vast valleys shimmer in the light"
	doc := strings.Join(other, "\n") + "\n\n~~~\n" + strings.Join(poem, "\n") + "\n~~~\n"

	res := Extract(doc, target)
	require.True(t, res.Found())
	assert.Equal(t, other, res.Poem, "earlier candidate wins when no backtick fence exists")
	assert.Equal(t, 2, res.Candidates)
}

func TestExtractSplitsOnUnicodeLineBreaks(t *testing.T) {
	poem := readPoem(t)
	for name, sep := range map[string]string{
		"form feed":      "\f",
		"vertical tab":   "\v",
		"next line":      "\u0085",
		"line separator": "\u2028",
		"para separator": "\u2029",
		"record sep":     "\x1e",
	} {
		t.Run(name, func(t *testing.T) {
			doc := strings.Join(poem[:6], "\n") + sep + strings.Join(poem[6:], "\n") + "\n"
			res := Extract(doc, target)
			require.True(t, res.Found())
			assert.Equal(t, poem, res.Poem)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "", "c"}, splitLines("a\r\nb\r\rc\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\fb"))
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{""}, splitLines("\n"))
}

func TestExtractIsCaseSensitive(t *testing.T) {
	poem := readPoem(t)
	lowered := append([]string(nil), poem...)
	lowered[0] = strings.ToLower(lowered[0])
	res := Extract(strings.Join(lowered, "\n"), target)
	assert.False(t, res.Found())
}

func TestExtractIsOrderStable(t *testing.T) {
	poem := readPoem(t)
	doc := "intro\r\n" + strings.Join(poem, "\r\n") + "\r\noutro\r\n"
	first := Extract(doc, target)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(doc, target))
	}
	assert.Equal(t, poem, first.Poem)
}

func TestFencedBlocksIgnoresUnterminated(t *testing.T) {
	blocks := fencedBlocks([]string{"```", "a", "```", "```go", "b"})
	assert.Equal(t, [][]string{{"a"}}, blocks)
	blocks = fencedBlocks([]string{"~~~", "a", "~~~"})
	assert.Empty(t, blocks)
}

func TestAcrostic(t *testing.T) {
	assert.Equal(t, "ab", Acrostic([]string{"  apple", "", "\tbanana"}))
	assert.Equal(t, target, Acrostic(readPoem(t)))
}
