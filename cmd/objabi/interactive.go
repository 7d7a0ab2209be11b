package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/object-abi/iface"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	methodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entry struct {
	ifc *iface.Interface
	m   *iface.Method
}

func (e entry) label() string {
	return e.ifc.Name + "." + e.m.Name
}

type modelState int

const (
	stateSelectMethod modelState = iota
	stateShowLayout
)

type interactiveModel struct {
	source   string
	entries  []entry
	visible  []entry
	filter   textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(source string, ifcs []*iface.Interface) *interactiveModel {
	var entries []entry
	for _, ifc := range ifcs {
		for _, m := range ifc.All() {
			entries = append(entries, entry{ifc: ifc, m: m})
		}
	}
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &interactiveModel{
		source:  source,
		entries: entries,
		filter:  ti,
		state:   stateSelectMethod,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for _, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.label()), q) {
			m.visible = append(m.visible, e)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateSelectMethod && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateSelectMethod && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateSelectMethod:
				if len(m.visible) > 0 {
					m.state = stateShowLayout
				}
			case stateShowLayout:
				m.state = stateSelectMethod
			}
			return m, nil

		case "esc":
			if m.state == stateShowLayout {
				m.state = stateSelectMethod
				return m, nil
			}
			return m, tea.Quit

		case "q":
			if m.state == stateShowLayout {
				return m, tea.Quit
			}
		}
	}

	if m.state != stateSelectMethod {
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Object ABI"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMethod:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching methods"))
			b.WriteString("\n")
		}
		for i, e := range m.visible {
			line := fmt.Sprintf("%-40s %s", e.label(), countsLine(e.m))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter layout • esc quit"))

	case stateShowLayout:
		e := m.visible[m.selected]
		b.WriteString(methodStyle.Render(e.label()))
		b.WriteString(fmt.Sprintf(" (id %d)\n", uint32(e.m.ID)))
		b.WriteString(countsStyle.Render(countsLine(e.m)))
		b.WriteString("\n\n")
		for _, p := range e.m.Params {
			b.WriteString("  " + p.String() + "\n")
		}
		b.WriteString("\n")
		for _, line := range slotLines(e.m) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func runInteractive(declFile string, ifcs []*iface.Interface) error {
	source := declFile
	if source == "" {
		source = "built-in test interfaces"
	}
	p := tea.NewProgram(newInteractiveModel(source, ifcs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
