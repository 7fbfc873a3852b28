package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/gauntlet/internal/batch"
	"github.com/kingrea/gauntlet/internal/report"
)

// View renders the current screen.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorFail).
		MarginBottom(1).
		Render("⬡ GAUNTLET")

	var body string
	switch a.state {
	case stateDetail:
		body = a.detail.View()
	default:
		body = a.list.View()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(body)

	sections := []string{header, a.renderSummary(), box}
	if a.state == stateList {
		if panel := a.renderLogPanel(); panel != "" {
			sections = append(sections, panel)
		}
	}
	sections = append(sections, a.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderSummary() string {
	passed, failed, errored := a.run.Counts()
	parts := []string{
		lipgloss.NewStyle().Foreground(colorOK).Render(fmt.Sprintf("%d ok", passed)),
		lipgloss.NewStyle().Foreground(colorFail).Render(fmt.Sprintf("%d failed", failed)),
	}
	if errored > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("%d errored", errored)))
	}
	if a.failingOnly {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorMuted).Render("(failing only)"))
	}
	return strings.Join(parts, " · ")
}

func (a *App) renderFooter() string {
	hint := "enter: open · f: failing only · r: re-validate · q: quit"
	if a.state == stateDetail {
		hint = "↑/↓: scroll · r: re-validate · esc: back · ctrl+c: quit"
	}
	lines := []string{lipgloss.NewStyle().Foreground(colorMuted).Render(hint)}
	if a.statusMsg != "" {
		lines = append([]string{lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(a.statusMsg)}, lines...)
	}
	return lipgloss.NewStyle().MarginTop(1).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(5)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccent).
		Render(fmt.Sprintf("HISTORY · %s (%d entries)", filepath.Base(a.logbook.Path()), total))
	body := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Render(head + "\n" + body)
}

// renderDetail lays out one document: verdict, failures, warnings and the
// poem with per-line syllable counts.
func (a *App) renderDetail(item batch.Item) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(item.Path)
	if item.Err != nil {
		return title + "\n\n" + lipgloss.NewStyle().Foreground(colorWarn).Render(item.Err.Error())
	}
	rep := item.Report
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(report.Lines(rep), "\n"))
	if len(rep.Poem) > 0 {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Poem"))
		b.WriteString("\n")
		b.WriteString(strings.Join(poemLines(rep), "\n"))
	}
	return b.String()
}

func poemLines(rep report.Report) []string {
	lines := make([]string, len(rep.Poem))
	for i, line := range rep.Poem {
		syllables := "  "
		if rep.Details != nil && i < len(rep.Details.SyllablesPerLine) {
			syllables = fmt.Sprintf("%2d", rep.Details.SyllablesPerLine[i])
		}
		lines[i] = fmt.Sprintf("%2d │ %s │ %s", i+1, syllables, line)
	}
	return lines
}
