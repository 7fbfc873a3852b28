package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func readPoem(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/poem.txt")
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExpandSortsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	x := writeFile(t, filepath.Join(dir, "sub", "x.md"), "x")
	y := writeFile(t, filepath.Join(dir, "y.md"), "y")
	writeFile(t, filepath.Join(dir, "z.txt"), "z")

	files, err := Expand([]string{filepath.Join(dir, "**", "*.md"), y, " "})
	require.NoError(t, err)
	assert.Equal(t, []string{x, y}, files)
}

func TestExpandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Expand([]string{filepath.Join(dir, "*.md")})
	assert.ErrorIs(t, err, ErrNoMatches)

	_, err = Expand([]string{filepath.Join(dir, "missing.md")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunPreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	poem := readPoem(t)
	failing := strings.Replace(poem, "remains to find?", "remains to find.", 1)

	var paths []string
	for i := 0; i < 10; i++ {
		body := poem
		if i%3 == 0 {
			body = failing
		}
		paths = append(paths, writeFile(t, filepath.Join(dir, fmt.Sprintf("entry-%02d.md", i)), body))
	}

	book, err := logbook.New(filepath.Join(dir, "history.log"))
	require.NoError(t, err)
	runner := NewRunner(gauntlet.New(), WithWorkers(3), WithHistory(book))
	runner.newID = func() string { return "run-1" }

	run, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	require.Len(t, run.Items, len(paths))
	for i, item := range run.Items {
		assert.Equal(t, paths[i], item.Path)
		assert.NoError(t, item.Err)
		assert.Equal(t, i%3 != 0, item.Report.OK, "entry %d", i)
	}
	passed, failed, errored := run.Counts()
	assert.Equal(t, 6, passed)
	assert.Equal(t, 4, failed)
	assert.Equal(t, 0, errored)
	assert.Equal(t, report.ExitFailed, run.ExitCode())

	lines, total := book.Tail(20)
	assert.Equal(t, 11, total)
	for _, line := range lines {
		assert.Contains(t, line, "run=run-1")
	}
	assert.Contains(t, lines[len(lines)-1], "INFO  batch  passed=6 failed=4 errored=0 run=run-1")
}

func TestRunUnreadableDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.md"), readPoem(t))
	bad := writeFile(t, filepath.Join(dir, "bad.md"), "\xff\xfe\xfd")

	run, err := NewRunner(gauntlet.New()).Run(context.Background(), []string{good, bad})
	require.NoError(t, err)
	assert.True(t, run.Items[0].Report.OK)
	assert.ErrorIs(t, run.Items[1].Err, report.ErrInvalidEncoding)
	assert.Equal(t, report.ExitFatal, run.ExitCode())
}

func TestRunCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "good.md"), readPoem(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	book, err := logbook.New(filepath.Join(dir, "history.log"))
	require.NoError(t, err)
	runner := NewRunner(gauntlet.New(), WithHistory(book))
	runner.newID = func() string { return "run-x" }

	_, err = runner.Run(ctx, []string{path, path})
	assert.True(t, errors.Is(err, context.Canceled))

	lines, total := book.Tail(5)
	require.Equal(t, 1, total)
	assert.Contains(t, lines[0], "WARN  batch interrupted")
	assert.Contains(t, lines[0], "context canceled run=run-x")
}

func TestRunEmpty(t *testing.T) {
	run, err := NewRunner(gauntlet.New(), WithWorkers(0)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, run.Items)
	assert.Equal(t, report.ExitOK, run.ExitCode())
}

func TestWriteSummaryCapsWarnings(t *testing.T) {
	warnings := make([]string, 10)
	for i := range warnings {
		warnings[i] = fmt.Sprintf("w%d", i)
	}
	run := Run{
		ID: "abc",
		Items: []Item{
			{Path: "a.md", Report: report.Report{OK: false, Failures: []string{"Line 12 must end with '?'"}, Warnings: warnings}},
			{Path: "b.md", Report: report.Report{OK: true}},
			{Path: "c.md", Err: errors.New("report: read c.md: permission denied")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, run))
	out := buf.String()

	assert.Contains(t, out, "a.md: poem=FAIL\n  - Line 12 must end with '?'\n  * w0\n")
	assert.Contains(t, out, "  * w7\n  * (+2 more warnings)\n")
	assert.NotContains(t, out, "w8")
	assert.Contains(t, out, "b.md: poem=OK\n")
	assert.Contains(t, out, "c.md: ERROR\n  - report: read c.md: permission denied\n")
	assert.True(t, strings.HasSuffix(out, "run abc: 1 passed, 1 failed, 1 errored\n"))
}

func TestWriteJSONArray(t *testing.T) {
	run := Run{
		Items: []Item{
			{Path: "a.md", Report: report.Report{OK: true, Path: "a.md"}},
			{Path: "b.md", Err: errors.New("boom")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, run))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, true, decoded[0]["ok"])
	assert.Equal(t, "a.md", decoded[0]["path"])
	assert.Contains(t, decoded[0], "details")
	assert.Equal(t, false, decoded[1]["ok"])
	assert.Equal(t, "boom", decoded[1]["error"])
}
