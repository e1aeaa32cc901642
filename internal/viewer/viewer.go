// Package viewer is an interactive terminal browser for the tokens,
// syntax tree and diagnostics of one source file.
package viewer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/you-not-fish/scl/internal/render"
	"github.com/you-not-fish/scl/internal/syntax"
)

const (
	headerHeight = 3 // title + tabs + blank
	footerHeight = 2 // blank + help
)

type tab struct {
	title   string
	content string
}

// Model is the bubbletea model of the viewer.
type Model struct {
	file   string
	tabs   []tab
	active int
	errors int

	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

// New prepares a Model for the results of tokenizing and parsing file.
func New(file string, toks []syntax.Token, prog *syntax.Program, diags []syntax.Diagnostic) Model {
	var tokBuf, treeBuf, diagBuf bytes.Buffer
	render.Tokens(&tokBuf, toks)
	if prog != nil {
		syntax.Fprint(&treeBuf, prog)
	}
	if len(diags) == 0 {
		diagBuf.WriteString("no diagnostics\n")
	} else {
		render.Diagnostics(&diagBuf, diags)
	}

	return Model{
		file: file,
		tabs: []tab{
			{title: "Tokens", content: tokBuf.String()},
			{title: "Tree", content: treeBuf.String()},
			{title: "Diagnostics", content: diagBuf.String()},
		},
		errors: len(diags),
	}
}

// Active returns the index of the selected tab.
func (m Model) Active() int { return m.active }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.selectTab(m.active + 1)
			return m, nil
		case "shift+tab", "left", "h":
			m.selectTab(m.active - 1)
			return m, nil
		case "1", "2", "3":
			m.selectTab(int(msg.String()[0] - '1'))
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		height := msg.Height - headerHeight - footerHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.tabs[m.active].content)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) selectTab(i int) {
	n := len(m.tabs)
	m.active = ((i % n) + n) % n
	if m.ready {
		m.viewport.SetContent(m.tabs[m.active].content)
		m.viewport.GotoTop()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	title := titleStyle.Render("sclc view") + "  " + m.file
	switch {
	case m.errors == 1:
		title += "  " + badgeStyle.Render("1 error")
	case m.errors > 1:
		title += "  " + badgeStyle.Render(fmt.Sprintf("%d errors", m.errors))
	}

	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		label := fmt.Sprintf("%d %s", i+1, t.title)
		if i == m.active {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}

	help := helpStyle.Render(fmt.Sprintf("tab/1-3 switch • ↑/↓ scroll • q quit • %3.f%%", m.viewport.ScrollPercent()*100))

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")
	b.WriteString(m.viewport.View() + "\n\n")
	b.WriteString(help)
	return b.String()
}

// Run shows m full-screen until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
