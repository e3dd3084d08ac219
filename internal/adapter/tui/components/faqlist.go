package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
)

// FAQTitle heads the quick-reply list.
const FAQTitle = "자주 묻는 질문"

// FAQSelectMsg is sent when the user picks a catalog entry.
type FAQSelectMsg struct {
	Index int
}

// FAQListModel renders the quick-reply catalog and turns ↑/↓/Enter or
// digit keys into FAQSelectMsg. Entries are inert while disabled.
type FAQListModel struct {
	Entries  []string
	Selected int
	Enabled  bool
	Focused  bool
	width    int
}

// NewFAQList creates a list over the given questions.
func NewFAQList(entries []string) FAQListModel {
	return FAQListModel{Entries: entries, Enabled: true}
}

// SetWidth updates the rendering width.
func (m *FAQListModel) SetWidth(w int) {
	m.width = w
}

// Update handles navigation and selection keys when focused.
func (m FAQListModel) Update(msg tea.Msg) (FAQListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.Focused || len(m.Entries) == 0 {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		m.Selected = (m.Selected - 1 + len(m.Entries)) % len(m.Entries)
		return m, nil
	case "down", "j":
		m.Selected = (m.Selected + 1) % len(m.Entries)
		return m, nil
	case "enter":
		return m, m.pick(m.Selected)
	}

	if r := keyMsg.Runes; keyMsg.Type == tea.KeyRunes && len(r) == 1 && r[0] >= '1' && r[0] <= '9' {
		idx := int(r[0] - '1')
		if idx < len(m.Entries) {
			m.Selected = idx
			return m, m.pick(idx)
		}
	}
	return m, nil
}

func (m FAQListModel) pick(idx int) tea.Cmd {
	if !m.Enabled {
		return nil
	}
	return func() tea.Msg { return FAQSelectMsg{Index: idx} }
}

// Height returns the number of lines View produces.
func (m FAQListModel) Height() int {
	return len(m.Entries) + 2 // header + blank line
}

// View renders the numbered list.
func (m FAQListModel) View() string {
	var sb strings.Builder
	sb.WriteString(theme.FAQHeader.Render(FAQTitle))
	sb.WriteString("\n\n")

	textW := m.width - 4
	for i, q := range m.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		line := fmt.Sprintf("%d. %s", i+1, truncate(q, textW))
		switch {
		case !m.Enabled:
			line = theme.FAQDisabled.Render("  " + line)
		case m.Focused && i == m.Selected:
			line = theme.FAQSelected.Render(theme.SymbolArrowR + " " + line)
		default:
			line = theme.FAQItem.Render("  " + line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// PopupView renders the list inside a bordered box for narrow terminals.
func (m FAQListModel) PopupView() string {
	style := theme.UnfocusedBorder
	if m.Focused {
		style = theme.FocusBorder
	}
	return style.Padding(0, 1).Render(m.View())
}

func truncate(s string, w int) string {
	if w <= 0 || lipgloss.Width(s) <= w {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > w-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + theme.SymbolEllipsis
}
