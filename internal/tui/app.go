// internal/tui/app.go
//
// Interactive browser over a batch of validated submissions. It uses
// bubbletea (The Elm Architecture): App holds the state, Update folds
// messages into it and View renders it.
//
// Screens: a list of documents with their verdict, and a detail view with
// the failures, warnings and the extracted poem annotated per line.

package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/gauntlet/internal/batch"
	"github.com/kingrea/gauntlet/internal/gauntlet"
	"github.com/kingrea/gauntlet/internal/logbook"
	"github.com/kingrea/gauntlet/internal/report"
)

// appState represents which screen we're on
type appState int

const (
	stateList appState = iota
	stateDetail
)

var (
	colorAccent = lipgloss.Color("#5B8DEF")
	colorOK     = lipgloss.Color("#4CAF50")
	colorFail   = lipgloss.Color("#FF6B6B")
	colorWarn   = lipgloss.Color("#F7B801")
	colorMuted  = lipgloss.Color("#AAAAAA")
	colorBorder = lipgloss.Color("#444444")
)

// revalidatedMsg carries a fresh result for one document.
type revalidatedMsg struct {
	index int
	item  batch.Item
}

// docItem implements list.Item for one batch entry.
type docItem struct {
	item batch.Item
}

func (d docItem) Title() string {
	return fmt.Sprintf("%s  %s", verdict(d.item), filepath.Base(d.item.Path))
}

func (d docItem) Description() string {
	if d.item.Err != nil {
		return d.item.Err.Error()
	}
	return fmt.Sprintf("%d failures · %d warnings · %s", len(d.item.Report.Failures), len(d.item.Report.Warnings), d.item.Path)
}

func (d docItem) FilterValue() string { return d.item.Path }

func verdict(item batch.Item) string {
	switch {
	case item.Err != nil:
		return "ERROR"
	case item.Report.OK:
		return "OK"
	default:
		return "FAIL"
	}
}

// AppOption customizes App construction.
type AppOption func(*App)

// WithLogbook shows the run history panel and records re-validations.
func WithLogbook(book *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = book
	}
}

// App is the browser model.
type App struct {
	state   appState
	engine  *gauntlet.Engine
	run     batch.Run
	logbook *logbook.Logbook

	list        list.Model
	detail      viewport.Model
	failingOnly bool
	visible     []int // indexes into run.Items shown in the list
	selected    int   // index into run.Items of the open detail
	statusMsg   string

	width  int
	height int
}

// NewApp builds the browser over a completed run.
func NewApp(engine *gauntlet.Engine, run batch.Run, opts ...AppOption) *App {
	docs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	docs.Title = "GAUNTLET · " + engine.Target()
	docs.SetShowStatusBar(false)
	docs.SetFilteringEnabled(false)

	app := &App{
		state:  stateList,
		engine: engine,
		run:    run,
		list:   docs,
		detail: viewport.New(80, 20),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refreshList()
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		a.detail.Width = max(20, msg.Width-6)
		a.detail.Height = max(5, msg.Height-8)
		if a.state == stateDetail {
			a.detail.SetContent(a.renderDetail(a.run.Items[a.selected]))
		}
		return a, nil

	case revalidatedMsg:
		if msg.index < 0 || msg.index >= len(a.run.Items) {
			return a, nil
		}
		a.run.Items[msg.index] = msg.item
		a.statusMsg = fmt.Sprintf("Re-validated %s: %s", filepath.Base(msg.item.Path), verdict(msg.item))
		a.recordHistory(msg.item)
		a.refreshList()
		if a.state == stateDetail && a.selected == msg.index {
			a.detail.SetContent(a.renderDetail(msg.item))
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateList {
				return a, tea.Quit
			}
			a.state = stateList
			return a, nil
		case "esc", "backspace":
			if a.state == stateDetail {
				a.state = stateList
				return a, nil
			}
		case "enter":
			if a.state == stateList {
				return a.openSelected()
			}
		case "f":
			if a.state == stateList {
				a.failingOnly = !a.failingOnly
				a.refreshList()
				return a, nil
			}
		case "r":
			if idx, ok := a.currentIndex(); ok {
				a.statusMsg = "Re-validating " + filepath.Base(a.run.Items[idx].Path) + "..."
				return a, a.revalidate(idx)
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateList:
		a.list, cmd = a.list.Update(msg)
	case stateDetail:
		a.detail, cmd = a.detail.Update(msg)
	}
	return a, cmd
}

// refreshList rebuilds the visible entries, keeping the cursor on the same
// document where possible.
func (a *App) refreshList() {
	current, hadCurrent := a.currentListIndex()
	a.visible = a.visible[:0]
	items := []list.Item{}
	for idx, item := range a.run.Items {
		if a.failingOnly && item.Err == nil && item.Report.OK {
			continue
		}
		a.visible = append(a.visible, idx)
		items = append(items, docItem{item: item})
	}
	a.list.SetItems(items)
	if !hadCurrent {
		return
	}
	for pos, idx := range a.visible {
		if idx == current {
			a.list.Select(pos)
			return
		}
	}
}

func (a *App) currentListIndex() (int, bool) {
	pos := a.list.Index()
	if pos < 0 || pos >= len(a.visible) {
		return 0, false
	}
	return a.visible[pos], true
}

// currentIndex is the document under focus on either screen.
func (a *App) currentIndex() (int, bool) {
	if a.state == stateDetail {
		return a.selected, a.selected >= 0 && a.selected < len(a.run.Items)
	}
	return a.currentListIndex()
}

func (a *App) openSelected() (tea.Model, tea.Cmd) {
	idx, ok := a.currentListIndex()
	if !ok {
		return a, nil
	}
	a.selected = idx
	a.state = stateDetail
	a.detail.SetContent(a.renderDetail(a.run.Items[idx]))
	a.detail.GotoTop()
	return a, nil
}

func (a *App) revalidate(idx int) tea.Cmd {
	path := a.run.Items[idx].Path
	engine := a.engine
	return func() tea.Msg {
		rep, err := report.ValidateFile(path, engine)
		if err != nil {
			return revalidatedMsg{index: idx, item: batch.Item{Path: path, Err: err}}
		}
		return revalidatedMsg{index: idx, item: batch.Item{Path: path, Report: rep}}
	}
}

func (a *App) recordHistory(item batch.Item) {
	if a.logbook == nil {
		return
	}
	if item.Err != nil {
		a.logbook.Error("error  %s %v", item.Path, item.Err)
		return
	}
	a.logbook.Record(logbook.Run{
		RunID:    a.run.ID,
		Path:     item.Path,
		OK:       item.Report.OK,
		Failures: len(item.Report.Failures),
		Warnings: len(item.Report.Warnings),
	})
}
