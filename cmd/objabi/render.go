package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/object-abi/iface"
)

type styles struct {
	title  lipgloss.Style
	method lipgloss.Style
	counts lipgloss.Style
	slot   lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, method: s, counts: s, slot: s, pass: s, fail: s}
}

func colorStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		method: lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		counts: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		slot:   lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
}

func renderInterface(w io.Writer, ifc *iface.Interface, st styles) {
	title := ifc.Name
	if ifc.Base != nil {
		title += " : " + ifc.Base.Name
	}
	fmt.Fprintln(w, st.title.Render(title))
	for _, m := range ifc.All() {
		fmt.Fprintf(w, "  %s %s\n", st.method.Render(methodTitle(m)), st.counts.Render(countsLine(m)))
		for _, line := range slotLines(m) {
			fmt.Fprintln(w, "      "+st.slot.Render(line))
		}
	}
	fmt.Fprintln(w)
}

func methodTitle(m *iface.Method) string {
	return fmt.Sprintf("%4d %s", uint32(m.ID), m.Name)
}

func countsLine(m *iface.Method) string {
	k := m.Counts()
	return fmt.Sprintf("counts %#06x  BI=%d BO=%d OI=%d OO=%d",
		uint32(k), k.NumBI(), k.NumBO(), k.NumOI(), k.NumOO())
}

// slotLines describes every argument slot of m in index order.
func slotLines(m *iface.Method) []string {
	p := m.Plan()
	lines := make([]string, 0, len(p.Slots))
	for _, s := range p.Slots {
		lines = append(lines, slotLine(m, s))
	}
	return lines
}

func slotLine(m *iface.Method, s iface.Slot) string {
	p := m.Plan()
	switch {
	case s.Param < 0:
		b := p.InBundle
		if s.Kind == iface.SlotBufOut {
			b = p.OutBundle
		}
		members := make([]string, len(b.Members))
		for i, idx := range b.Members {
			members[i] = fmt.Sprintf("%s@%d %s", m.Params[idx].Name, p.Params[idx].Offset, m.Params[idx].TypeString())
		}
		return fmt.Sprintf("[%d] %s bundle %dB: %s", s.Index, s.Kind, b.Size, strings.Join(members, ", "))
	case s.Kind.IsBuffer():
		size := fmt.Sprintf("%dB", s.Size)
		if s.Size == iface.Variable {
			size = fmt.Sprintf("n*%dB", s.Elem)
		}
		return fmt.Sprintf("[%d] %s %s %s", s.Index, s.Kind, size, m.Params[s.Param])
	default:
		pl := p.Params[s.Param]
		line := fmt.Sprintf("[%d] %s %s", s.Index, s.Kind, m.Params[s.Param])
		if s.Field != "" {
			return line + " ." + s.Field
		}
		if pl.Count > 1 {
			line += fmt.Sprintf(" #%d", s.Index-pl.Slot)
		}
		return line
	}
}
