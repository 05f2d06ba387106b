package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/rvsdg"
	"github.com/wippyai/rvsdg/ir"
	"github.com/wippyai/rvsdg/prune"
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

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateDetail
)

type interactiveModel struct {
	err      error
	out      *rvsdg.Output
	filename string
	visible  []int
	filter   textinput.Model
	detail   viewport.Model
	cfg      rvsdg.Config
	src      []byte
	selected int
	width    int
	height   int
	state    modelState
}

type transformedMsg struct {
	err error
	out *rvsdg.Output
}

func newInteractiveModel(filename string, src []byte, cfg rvsdg.Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "rewritten, skipped, opaque-use, %12 ..."
	ti.Prompt = "filter: "
	ti.Width = 40
	return &interactiveModel{
		filename: filename,
		src:      src,
		cfg:      cfg,
		filter:   ti,
		detail:   viewport.New(80, 20),
		state:    stateList,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.transform
}

func (m *interactiveModel) transform() tea.Msg {
	out, err := rvsdg.Transform(context.Background(), m.src, m.cfg)
	return transformedMsg{out: out, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-6, 3)

	case transformedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.out = msg.out
		m.applyFilter()

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateList
				m.applyFilter()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "/":
			if m.state == stateList {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateList && len(m.visible) > 0 {
				m.detail.SetContent(m.describeSelected())
				m.detail.GotoTop()
				m.state = stateDetail
				return m, nil
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
				return m, nil
			}
		}
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyFilter keeps the occurrences whose summary line contains every
// word of the filter.
func (m *interactiveModel) applyFilter() {
	if m.out == nil {
		return
	}
	words := strings.Fields(strings.ToLower(m.filter.Value()))
	m.visible = m.visible[:0]
	for i := range m.out.Result.Occurrences {
		line := strings.ToLower(summary(&m.out.Result.Occurrences[i]))
		keep := true
		for _, w := range words {
			if !strings.Contains(line, w) {
				keep = false
				break
			}
		}
		if keep {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func summary(occ *prune.Occurrence) string {
	if occ.Rewritten() {
		return fmt.Sprintf("round %d  %%%d  rewritten  eliminated %v", occ.Round, occ.IfElse, occ.Eliminated)
	}
	return fmt.Sprintf("round %d  %%%d  skipped  %s", occ.Round, occ.IfElse, occ.Skip)
}

func (m *interactiveModel) describeSelected() string {
	occ := &m.out.Result.Occurrences[m.visible[m.selected]]
	g := m.out.Graph

	var b strings.Builder
	section := func(label, body string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	section("then passthroughs", mappings(occ.Then))
	section("else passthroughs", mappings(occ.Else))
	section("common", mappings(occ.Common))
	section("before", indent(ir.Format(g, occ.IfElse)))
	if occ.Rewritten() {
		section("eliminated", fmt.Sprint(occ.Eliminated))
		section("after", indent(ir.Format(g, occ.Replacement)))
		section("references", fmt.Sprintf("%d redirected to operands, %d renumbered", occ.Redirected, occ.Shifted))
	} else {
		section("skipped", string(occ.Skip))
	}
	return b.String()
}

// indent breaks a formatted term before each nested end or operands form.
func indent(s string) string {
	r := strings.NewReplacer(" (end ", "\n  (end ", " (operands", "\n  (operands")
	return r.Replace(s)
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.out == nil {
		return "Transforming graph..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("IfElse Pruning"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	res := m.out.Result
	fmt.Fprintf(&b, "  rounds %d, rewritten %d, skipped %d, eliminated %d\n\n",
		res.Rounds, res.Rewritten, res.Skipped, res.Eliminated)

	switch m.state {
	case stateList, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString("No occurrences.\n")
		}
		for i, idx := range m.visible {
			line := summary(&res.Occurrences[idx])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • / filter • q quit"))

	case stateDetail:
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string, src []byte, cfg rvsdg.Config) error {
	p := tea.NewProgram(newInteractiveModel(filename, src, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
