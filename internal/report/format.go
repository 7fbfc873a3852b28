package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(value))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("report: unknown format %q (want text, json or yaml)", value)
	}
}

// wire is the stable external shape of a report.
type wire struct {
	OK       bool     `json:"ok" yaml:"ok"`
	Failures []string `json:"failures" yaml:"failures"`
	Warnings []string `json:"warnings" yaml:"warnings"`
	Details  any      `json:"details" yaml:"details"`
	Poem     []string `json:"poem" yaml:"poem"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
}

func (r Report) wire() wire {
	w := wire{
		OK:       r.OK,
		Failures: nonNil(r.Failures),
		Warnings: nonNil(r.Warnings),
		Details:  map[string]any{},
		Poem:     nonNil(r.Poem),
		Path:     r.Path,
	}
	if r.Details != nil {
		w.Details = r.Details
	}
	return w
}

// MarshalJSON renders the stable field set; absent details encode as {}.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// MarshalYAML mirrors MarshalJSON.
func (r Report) MarshalYAML() (any, error) {
	return r.wire(), nil
}

// Write renders r in the requested format. styled only affects text output.
func Write(w io.Writer, r Report, format Format, styled bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		if styled {
			return WriteStyled(w, r)
		}
		return WriteText(w, r)
	}
}

// WriteJSON writes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteYAML writes r as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteText writes the OK/FAIL header, the poem line count when a poem was
// extracted, then FAIL: and WARN: lines.
func WriteText(w io.Writer, r Report) error {
	return writeLines(w, textLines(r, plainStyles))
}

// WriteStyled is WriteText with terminal colors.
func WriteStyled(w io.Writer, r Report) error {
	return writeLines(w, textLines(r, colorStyles))
}

// Lines returns the plain text form without a trailing newline per entry.
func Lines(r Report) []string {
	return textLines(r, plainStyles)
}

type styles struct {
	ok, fail, warn lipgloss.Style
}

var (
	plainStyles = styles{ok: lipgloss.NewStyle(), fail: lipgloss.NewStyle(), warn: lipgloss.NewStyle()}
	colorStyles = styles{
		ok:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		fail: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")),
	}
)

func textLines(r Report, s styles) []string {
	lines := make([]string, 0, 1+len(r.Failures)+len(r.Warnings))
	if r.OK {
		lines = append(lines, s.ok.Render("OK"))
	} else {
		lines = append(lines, s.fail.Render("FAIL"))
	}
	if len(r.Poem) > 0 {
		lines = append(lines, fmt.Sprintf("Poem lines: %d", len(r.Poem)))
	}
	for _, f := range r.Failures {
		lines = append(lines, s.fail.Render("FAIL:")+" "+f)
	}
	for _, warning := range r.Warnings {
		lines = append(lines, s.warn.Render("WARN:")+" "+warning)
	}
	return lines
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
