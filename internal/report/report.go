// Package report turns a submission into a gauntlet verdict and renders it.
// It is the only layer that knows about both extraction and the constraint
// engine, and it owns the external contract: the structured record
// (ok/failures/warnings/details/poem), the OK/FAIL text form and the exit
// codes consumed by wrapper scripts.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/kingrea/gauntlet/internal/extract"
	"github.com/kingrea/gauntlet/internal/gauntlet"
)

// Exit codes of the validate command.
const (
	ExitOK     = 0
	ExitFatal  = 1
	ExitFailed = 2
)

// ExtractionFailed closes the failure list when no poem was found.
const ExtractionFailed = "Poem extraction failed"

// ErrInvalidEncoding marks input that is not UTF-8 text.
var ErrInvalidEncoding = errors.New("report: document is not valid UTF-8")

// Report is the full outcome for one document.
type Report struct {
	OK       bool
	Failures []string
	Warnings []string
	// Details is nil when no poem could be extracted.
	Details *gauntlet.Details
	Poem    []string
	// Path names the source document, empty for in-memory input.
	Path string
}

// ExitCode maps a verdict to the process exit status.
func (r Report) ExitCode() int {
	return ExitCode(r.OK)
}

// ExitCode maps ok to ExitOK or ExitFailed.
func ExitCode(ok bool) int {
	if ok {
		return ExitOK
	}
	return ExitFailed
}

// Validate extracts the poem from document and runs the engine on it.
// Extraction problems become failures and warnings; they never abort.
func Validate(document string, engine *gauntlet.Engine) Report {
	ext := extract.Extract(document, engine.Target())
	if !ext.Found() {
		failures := append(append([]string{}, ext.Failures()...), ExtractionFailed)
		return Report{
			OK:       false,
			Failures: failures,
			Warnings: append([]string{}, ext.Warnings()...),
			Poem:     []string{},
		}
	}
	res := engine.Validate(ext.Poem)
	warnings := append(append([]string{}, ext.Warnings()...), res.Warnings...)
	details := res.Details
	return Report{
		OK:       res.OK,
		Failures: res.Failures,
		Warnings: warnings,
		Details:  &details,
		Poem:     ext.Poem,
	}
}

// ValidateReader reads a whole document from r. name is recorded as the
// report path.
func ValidateReader(r io.Reader, name string, engine *gauntlet.Engine) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("report: read %s: %w", name, err)
	}
	return validateBytes(data, name, engine)
}

// ValidateFile reads and validates the document at path. Only unreadable or
// non-UTF-8 input returns an error.
func ValidateFile(path string, engine *gauntlet.Engine) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("report: read %s: %w", path, err)
	}
	return validateBytes(data, path, engine)
}

func validateBytes(data []byte, name string, engine *gauntlet.Engine) (Report, error) {
	if !utf8.Valid(data) {
		return Report{}, fmt.Errorf("%w: %s", ErrInvalidEncoding, name)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	rep := Validate(string(data), engine)
	rep.Path = name
	return rep, nil
}
