package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "보내기"
}

// StatusBarModel renders a bottom status bar with keybinding hints and
// connection info.
type StatusBarModel struct {
	Hints    []KeyHint
	Endpoint string // backend base URL
	Extra    string // transient status text (e.g. busy indicator)
	width    int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	hints := make([]string, 0, len(m.Hints))
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var right string
	if m.Extra != "" {
		right = theme.TextInfo.Render(m.Extra)
	}
	if m.Endpoint != "" {
		if right != "" {
			right += "  "
		}
		right += theme.TextMuted.Render(m.Endpoint)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
