// Package tui is the read-only collection browser: a list of workflows and a
// per-cell detail view. It browses and validates, it does not edit.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwicho38/mcli-sub001/internal/collection"
	"github.com/gwicho38/mcli-sub001/internal/convert"
	"github.com/gwicho38/mcli-sub001/internal/models"
	"github.com/gwicho38/mcli-sub001/internal/validate"
)

type View int

const (
	ViewList View = iota
	ViewDetail
)

// detailChromeHeight is the number of lines the detail view spends on its
// header and footer around the viewport.
const detailChromeHeight = 8

// item is one list row: the entry plus its schema finding count, computed at
// load time. Flat workflows are not schema-checked and carry -1.
type item struct {
	entry  *collection.Entry
	issues int
}

type App struct {
	store *collection.Store

	view        View
	items       []item
	selectedIdx int
	selected    *collection.Entry

	findings   []validate.Finding
	validated  bool
	validating bool
	viewport   viewport.Model
	ready      bool

	width  int
	height int
	err    error
}

func NewApp(store *collection.Store) *App {
	return &App{
		store: store,
		view:  ViewList,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadEntries
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		vh := msg.Height - detailChromeHeight
		if vh < 3 {
			vh = 3
		}
		if !a.ready {
			a.viewport = viewport.New(msg.Width, vh)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = vh
		}
		if a.selected != nil {
			a.viewport.SetContent(a.detailContent())
		}
		return a, nil

	case entriesLoadedMsg:
		a.items = msg.items
		a.err = msg.err
		if a.selectedIdx >= len(a.items) && a.selectedIdx > 0 {
			a.selectedIdx = len(a.items) - 1
		}
		return a, nil

	case entryDeletedMsg:
		a.err = msg.err
		a.view = ViewList
		a.selected = nil
		return a, a.loadEntries

	case findingsMsg:
		a.validating = false
		a.validated = msg.err == nil
		a.findings = msg.findings
		a.err = msg.err
		a.viewport.SetContent(a.detailContent())
		a.viewport.GotoTop()
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.view {
	case ViewList:
		return a.handleListKey(msg)
	case ViewDetail:
		return a.handleDetailKey(msg)
	}
	return a, nil
}

func (a *App) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "up", "k":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case "down", "j":
		if a.selectedIdx < len(a.items)-1 {
			a.selectedIdx++
		}

	case "enter":
		if len(a.items) > 0 && a.selectedIdx < len(a.items) {
			a.openDetail(a.items[a.selectedIdx].entry)
		}

	case "r":
		return a, a.loadEntries

	case "d":
		if len(a.items) > 0 && a.selectedIdx < len(a.items) {
			return a, a.deleteEntry(a.items[a.selectedIdx].entry.Name())
		}
	}

	return a, nil
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		a.view = ViewList
		a.selected = nil
		a.findings = nil
		a.validated = false
		a.validating = false

	case "ctrl+c":
		return a, tea.Quit

	case "v":
		if a.selected != nil && !a.validating {
			a.validating = true
			return a, a.runValidation(a.selected)
		}

	case "d":
		if a.selected != nil {
			return a, a.deleteEntry(a.selected.Name())
		}

	default:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) openDetail(entry *collection.Entry) {
	a.selected = entry
	a.findings = nil
	a.validated = false
	a.validating = false
	a.viewport.SetContent(a.detailContent())
	a.viewport.GotoTop()
	a.view = ViewDetail
}

func (a *App) View() string {
	switch a.view {
	case ViewList:
		return a.viewList()
	case ViewDetail:
		return a.viewDetail()
	}
	return ""
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))

	cellHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

func (a *App) viewList() string {
	s := titleStyle.Render("wfnb") + "  " + dimStyle.Render(a.store.Dir()) + "\n\n"

	if a.err != nil {
		s += statusBad.Render(fmt.Sprintf("Error: %v", a.err)) + "\n\n"
	}

	if len(a.items) == 0 {
		s += "No workflows in the collection.\n"
	} else {
		s += "Workflows\n"
		s += "─────────\n"

		for i, it := range a.items {
			line := a.formatItemLine(it)
			if i == a.selectedIdx {
				line = selectedStyle.Render("▶ " + line)
			} else {
				line = "  " + line
			}
			s += line + "\n"
		}
	}

	s += "\n" + helpStyle.Render("[enter] view  [d] delete  [r] refresh  [q] quit")

	return s
}

func (a *App) formatItemLine(it item) string {
	e := it.entry
	shape := "flat"
	if e.Format == models.FormatNotebook {
		shape = fmt.Sprintf("%d cells", e.CellCount())
	}
	return fmt.Sprintf("%-20s %-12s %-8s %-9s %s",
		truncate(e.Name(), 20), truncate(e.Group(), 12), e.Language(), shape, a.formatBadge(it))
}

func (a *App) formatBadge(it item) string {
	switch {
	case it.issues < 0:
		return dimStyle.Render("◌ unchecked")
	case it.issues == 0:
		return statusOK.Render("✓ schema ok")
	default:
		return statusBad.Render(fmt.Sprintf("✗ %d issues", it.issues))
	}
}

func (a *App) viewDetail() string {
	if a.selected == nil {
		return "No workflow selected"
	}

	e := a.selected

	header := titleStyle.Render(e.Name())
	switch {
	case a.validating:
		header += "  " + statusWarn.Render("● validating")
	case a.validated && len(a.findings) == 0:
		header += "  " + statusOK.Render("✓ valid")
	case a.validated:
		header += "  " + statusBad.Render(fmt.Sprintf("✗ %d findings", len(a.findings)))
	}
	s := header + "\n"

	if desc := e.Description(); desc != "" {
		s += dimStyle.Render(truncate(strings.ReplaceAll(desc, "\n", " "), 72)) + "\n"
	} else {
		s += "\n"
	}

	s += labelStyle.Render("group: ") + e.Group() +
		labelStyle.Render("  language: ") + string(e.Language()) +
		labelStyle.Render("  format: ") + string(e.Format) + "\n"
	s += labelStyle.Render("path: ") + dimStyle.Render(e.Path) + "\n\n"

	s += a.viewport.View() + "\n"

	s += "\n" + helpStyle.Render("[↑/↓] scroll  [v] validate  [d] delete  [esc] back  [q] quit")

	return s
}

// detailContent renders the scrollable body: validation findings when a run
// has happened, then every cell's source.
func (a *App) detailContent() string {
	e := a.selected
	if e == nil {
		return ""
	}

	var b strings.Builder

	if a.validated {
		b.WriteString(a.findingsSection())
	}

	switch {
	case e.Format == models.FormatNotebook && e.Notebook != nil:
		for i, cell := range e.Notebook.Cells {
			b.WriteString(cellHeaderStyle.Render(cellHeader(i, cell)) + "\n")
			writeSource(&b, cell.Text())
		}
	case e.Workflow != nil:
		b.WriteString(cellHeaderStyle.Render(fmt.Sprintf("── script · %s", e.Language())) + "\n")
		writeSource(&b, e.Workflow.Code)
	}

	return b.String()
}

func cellHeader(i int, cell models.Cell) string {
	if cell.Type == models.CellTypeCode {
		lang := cell.Metadata.Language
		if lang == "" {
			lang = models.DefaultLanguage
		}
		return fmt.Sprintf("── cell %d · code (%s)", i, lang)
	}
	return fmt.Sprintf("── cell %d · %s", i, cell.Type)
}

func writeSource(b *strings.Builder, text string) {
	if strings.TrimSpace(text) == "" {
		b.WriteString(dimStyle.Render("(empty)") + "\n\n")
		return
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (a *App) findingsSection() string {
	if len(a.findings) == 0 {
		return statusOK.Render("✓ no findings") + "\n\n"
	}

	s := fmt.Sprintf("Findings (%d)\n", len(a.findings))
	for _, f := range a.findings {
		line := f.String()
		if f.Severity == validate.SeverityWarning {
			line = statusWarn.Render(line)
		} else {
			line = statusBad.Render(line)
		}
		s += line + "\n"
	}
	return s + "\n"
}

// Messages

type entriesLoadedMsg struct {
	items []item
	err   error
}

type entryDeletedMsg struct {
	name string
	err  error
}

type findingsMsg struct {
	findings []validate.Finding
	err      error
}

// Commands

func (a *App) loadEntries() tea.Msg {
	entries, err := a.store.List()
	if err != nil {
		return entriesLoadedMsg{err: err}
	}

	items := make([]item, 0, len(entries))
	for _, e := range entries {
		issues := -1
		if e.Format == models.FormatNotebook {
			issues = len(validate.Schema(e.Raw))
		}
		items = append(items, item{entry: e, issues: issues})
	}
	return entriesLoadedMsg{items: items}
}

func (a *App) deleteEntry(name string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Remove(name); err != nil {
			return entryDeletedMsg{err: err}
		}
		return entryDeletedMsg{name: name}
	}
}

// runValidation checks the document with both passes. Flat workflows are
// converted to notebook form first, the same way the validate command does.
func (a *App) runValidation(entry *collection.Entry) tea.Cmd {
	return func() tea.Msg {
		raw := entry.Raw
		if entry.Format == models.FormatWorkflow {
			converted, err := convert.Convert(raw, models.FormatNotebook)
			if err != nil {
				return findingsMsg{err: err}
			}
			raw = converted
		}
		return findingsMsg{findings: validate.Document(context.Background(), raw, validate.ModeAll)}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
