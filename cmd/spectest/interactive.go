package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	spectest "github.com/wippyai/wasm-spectest"
	"github.com/wippyai/wasm-spectest/config"
	"github.com/wippyai/wasm-spectest/result"
	"github.com/wippyai/wasm-spectest/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize bounds the rows shown in list views.
const pageSize = 20

type modelState int

const (
	stateLoading modelState = iota
	stateScripts
	stateOutcomes
	stateDetail
)

// statusFilter cycles all, fail, skip, pass.
type statusFilter int

const (
	filterAll statusFilter = iota
	filterFail
	filterSkip
	filterPass
)

func (f statusFilter) String() string {
	return [...]string{"all", "fail", "skip", "pass"}[f]
}

func (f statusFilter) match(s result.Status) bool {
	switch f {
	case filterFail:
		return s == result.StatusFail
	case filterSkip:
		return s == result.StatusSkip
	case filterPass:
		return s == result.StatusPass
	default:
		return true
	}
}

type browserModel struct {
	ctx      context.Context
	summary  *result.Summary
	err      error
	cfg      *config.Config
	paths    []string
	visible  []result.Outcome
	filter   textinput.Model
	script   int
	selected int
	status   statusFilter
	state    modelState
}

type summaryMsg struct {
	err     error
	summary *result.Summary
}

func newBrowserModel(ctx context.Context, cfg *config.Config, paths []string) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	return &browserModel{
		ctx:    ctx,
		cfg:    cfg,
		paths:  paths,
		filter: ti,
		state:  stateLoading,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.runScripts
}

func (m *browserModel) runScripts() tea.Msg {
	s, err := spectest.Run(m.ctx, m.paths, &spectest.Options{Config: m.cfg})
	return summaryMsg{summary: s, err: err}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.state = stateScripts
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.refilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < m.rows()-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateScripts:
				if m.rows() > 0 {
					m.script = m.selected
					m.selected = 0
					m.state = stateOutcomes
					m.refilter()
				}
			case stateOutcomes:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			}

		case "tab":
			if m.state == stateOutcomes {
				m.status = (m.status + 1) % 4
				m.refilter()
			}

		case "/":
			if m.state == stateOutcomes {
				return m, m.filter.Focus()
			}

		case "esc":
			switch m.state {
			case stateOutcomes:
				m.state = stateScripts
				m.selected = m.script
			case stateDetail:
				m.state = stateOutcomes
			}
		}
	}
	return m, nil
}

func (m *browserModel) rows() int {
	switch m.state {
	case stateScripts:
		if m.summary == nil {
			return 0
		}
		return len(m.summary.Scripts)
	case stateOutcomes:
		return len(m.visible)
	default:
		return 0
	}
}

func (m *browserModel) refilter() {
	res := m.summary.Scripts[m.script]
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, o := range res.Outcomes {
		if !m.status.match(o.Status) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(o.Description()), needle) {
			continue
		}
		m.visible = append(m.visible, o)
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.state == stateLoading {
		return "Running scripts..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Spectest"))
	c := m.summary.Counts
	fmt.Fprintf(&b, " %d passed, %d skipped, %d failed\n\n", c.Passed, c.Skipped, c.Failed)

	switch m.state {
	case stateScripts:
		start := window(m.selected, len(m.summary.Scripts))
		for i, res := range m.summary.Scripts[start:min(start+pageSize, len(m.summary.Scripts))] {
			m.row(&b, start+i, scriptLine(res))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • q quit"))

	case stateOutcomes:
		res := m.summary.Scripts[m.script]
		fmt.Fprintf(&b, "%s  [%s]\n%s\n\n", res.Name, m.status, m.filter.View())
		start := window(m.selected, len(m.visible))
		for i, o := range m.visible[start:min(start+pageSize, len(m.visible))] {
			m.row(&b, start+i, statusLabel(o.Status)+" "+script.Describe(o.Command))
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching commands"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • tab status • / filter • esc back"))

	case stateDetail:
		o := m.visible[m.selected]
		b.WriteString(statusLabel(o.Status))
		b.WriteString(" ")
		b.WriteString(script.Describe(o.Command))
		b.WriteString("\n\n")
		if o.Err != nil {
			fmt.Fprintf(&b, "reason: %s\n\n", o.Reason)
			b.WriteString(errorStyle.Render(o.Err.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
	}
	return b.String()
}

func (m *browserModel) row(b *strings.Builder, i int, text string) {
	if i == m.selected {
		b.WriteString(selectedStyle.Render("> " + text))
	} else {
		b.WriteString("  " + text)
	}
	b.WriteString("\n")
}

// window returns the first row of the page holding the selection.
func window(selected, n int) int {
	if n <= pageSize {
		return 0
	}
	return min(max(selected-pageSize/2, 0), n-pageSize)
}

func scriptLine(res *result.ScriptResult) string {
	if res.Err != nil {
		return errorStyle.Render("ERROR") + " " + res.Name
	}
	c := res.Counts()
	label := passStyle.Render("PASS ")
	if c.Failed > 0 {
		label = errorStyle.Render("FAIL ")
	}
	return fmt.Sprintf("%s %s (%d/%d/%d)", label, res.Name, c.Passed, c.Skipped, c.Failed)
}

func statusLabel(s result.Status) string {
	switch s {
	case result.StatusFail:
		return errorStyle.Render("fail")
	case result.StatusSkip:
		return skipStyle.Render("skip")
	default:
		return passStyle.Render("pass")
	}
}

func runInteractive(ctx context.Context, cfg *config.Config, paths []string) error {
	p := tea.NewProgram(newBrowserModel(ctx, cfg, paths), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
