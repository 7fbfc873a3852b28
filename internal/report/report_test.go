package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/gauntlet/internal/gauntlet"
)

func poemDocument(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/poem.txt")
	require.NoError(t, err)
	return "# My entry\n\n```\n" + string(data) + "```\n"
}

func TestValidatePassingDocument(t *testing.T) {
	rep := Validate(poemDocument(t), gauntlet.New())
	assert.True(t, rep.OK)
	assert.Empty(t, rep.Failures)
	assert.Len(t, rep.Poem, 12)
	require.NotNil(t, rep.Details)
	assert.Equal(t, "VILLAGECODES", rep.Details.Acrostic)
	assert.Equal(t, ExitOK, rep.ExitCode())
}

func TestValidateExtractionFailure(t *testing.T) {
	doc := strings.Join(strings.Split(poemDocument(t), "\n")[:12], "\n")
	rep := Validate(doc, gauntlet.New())
	assert.False(t, rep.OK)
	assert.Equal(t, []string{"No 12-line candidate found with acrostic VILLAGECODES", ExtractionFailed}, rep.Failures)
	assert.Empty(t, rep.Poem)
	assert.Nil(t, rep.Details)
	assert.Equal(t, ExitFailed, rep.ExitCode())
}

func TestValidateFoldsExtractionWarningsFirst(t *testing.T) {
	doc := poemDocument(t)
	data, err := os.ReadFile("testdata/poem.txt")
	require.NoError(t, err)
	variant := strings.Replace(string(data), "Violet valleys glimmer", "Violet vistas glimmer", 1)
	doc += "\nEarlier draft:\n\n" + variant

	rep := Validate(doc, gauntlet.New())
	require.GreaterOrEqual(t, len(rep.Warnings), 2)
	assert.Equal(t, "Multiple candidates found (2); using the first", rep.Warnings[0])
	assert.Equal(t, gauntlet.ApproximateWarning, rep.Warnings[1])
	assert.Equal(t, "Violet valleys glimmer in the light", rep.Poem[0])
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "challenge-03-someone.md")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbf"+poemDocument(t)), 0o644))
	rep, err := ValidateFile(path, gauntlet.New())
	require.NoError(t, err)
	assert.True(t, rep.OK)
	assert.Equal(t, path, rep.Path)

	_, err = ValidateFile(filepath.Join(dir, "missing.md"), gauntlet.New())
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, 'x'}, 0o644))
	_, err = ValidateFile(bad, gauntlet.New())
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestWriteJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Validate(poemDocument(t), gauntlet.New())))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"ok", "failures", "warnings", "details", "poem"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "path")
	details := decoded["details"].(map[string]any)
	for _, key := range []string{"acrostic", "syllables_per_line", "rhyme_pairs", "semantic_detected", "theme_keywords_detected", "lines_with_5_letter_word", "alliteration_lines", "four_plus_syllable_words", "repeated_words", "banned_starts"} {
		assert.Contains(t, details, key)
	}
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestWriteJSONExtractionFailureShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Validate("too short", gauntlet.New())))
	assert.Contains(t, buf.String(), `"details": {}`)
	assert.Contains(t, buf.String(), `"poem": []`)
	assert.Contains(t, buf.String(), `"ok": false`)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, Validate(poemDocument(t), gauntlet.New())))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["ok"])
	assert.Len(t, decoded["poem"], 12)
}

func TestWriteText(t *testing.T) {
	rep := Report{
		OK:       false,
		Failures: []string{"Line 12 must end with '?'"},
		Warnings: []string{"Theme keywords not detected (best-effort): discovery/exploration/building"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, rep))
	assert.Equal(t, "FAIL\nFAIL: Line 12 must end with '?'\nWARN: Theme keywords not detected (best-effort): discovery/exploration/building\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, Report{OK: true}, FormatText, false))
	assert.Equal(t, "OK\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteText(&buf, Validate(poemDocument(t), gauntlet.New())))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "OK", lines[0])
	assert.Equal(t, "Poem lines: 12", lines[1])
}

func TestWriteStyledKeepsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Report{OK: false, Failures: []string{"boom"}}, FormatText, true))
	assert.Contains(t, buf.String(), "FAIL")
	assert.Contains(t, buf.String(), "boom")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}
