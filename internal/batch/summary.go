package batch

import (
	"fmt"
	"io"

	"github.com/kingrea/gauntlet/internal/report"
)

// maxSummaryWarnings caps warnings listed per document in the text summary.
const maxSummaryWarnings = 8

type errorEntry struct {
	Path  string `json:"path" yaml:"path"`
	OK    bool   `json:"ok" yaml:"ok"`
	Error string `json:"error" yaml:"error"`
}

// Entries returns one encodable value per item, in order: the report for
// validated documents and an {path, ok, error} record for unreadable ones.
func Entries(run Run) []any {
	entries := make([]any, 0, len(run.Items))
	for _, item := range run.Items {
		if item.Err != nil {
			entries = append(entries, errorEntry{Path: item.Path, Error: item.Err.Error()})
			continue
		}
		entries = append(entries, item.Report)
	}
	return entries
}

// WriteJSON writes the run as a JSON array of per-document records.
func WriteJSON(w io.Writer, run Run) error {
	return report.WriteJSON(w, Entries(run))
}

// WriteYAML writes the run as a YAML sequence of per-document records.
func WriteYAML(w io.Writer, run Run) error {
	return report.WriteYAML(w, Entries(run))
}

// WriteSummary prints a block per document followed by a one-line total.
func WriteSummary(w io.Writer, run Run) error {
	for _, item := range run.Items {
		if err := writeItem(w, item); err != nil {
			return err
		}
	}
	passed, failed, errored := run.Counts()
	_, err := fmt.Fprintf(w, "run %s: %d passed, %d failed, %d errored\n", run.ID, passed, failed, errored)
	return err
}

func writeItem(w io.Writer, item Item) error {
	if item.Err != nil {
		_, err := fmt.Fprintf(w, "%s: ERROR\n  - %v\n\n", item.Path, item.Err)
		return err
	}
	rep := item.Report
	status := "OK"
	if !rep.OK {
		status = "FAIL"
	}
	lines := []string{fmt.Sprintf("%s: poem=%s", item.Path, status)}
	for _, f := range rep.Failures {
		lines = append(lines, "  - "+f)
	}
	shown := rep.Warnings
	if len(shown) > maxSummaryWarnings {
		shown = shown[:maxSummaryWarnings]
	}
	for _, warning := range shown {
		lines = append(lines, "  * "+warning)
	}
	if extra := len(rep.Warnings) - maxSummaryWarnings; extra > 0 {
		lines = append(lines, fmt.Sprintf("  * (+%d more warnings)", extra))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
