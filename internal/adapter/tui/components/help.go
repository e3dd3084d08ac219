package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
)

// helpFrame is the space taken by the border, padding, header and footer.
const (
	helpFrameW = 4
	helpFrameH = 4
)

// HelpModel is a bordered overlay with scrollable reference text. It covers
// the whole screen while visible and swallows every key except its own.
type HelpModel struct {
	Title   string
	Visible bool
	body    viewport.Model
	width   int
	height  int
}

// NewHelp creates a hidden overlay.
func NewHelp(title string) HelpModel {
	return HelpModel{Title: title, body: viewport.New(0, 0)}
}

// Show makes the overlay visible with content scrolled to the top.
func (h *HelpModel) Show(content string) {
	h.Visible = true
	h.fit()
	h.body.SetContent(content)
	h.body.GotoTop()
}

// Hide closes the overlay.
func (h *HelpModel) Hide() { h.Visible = false }

// Resize records the screen size.
func (h *HelpModel) Resize(width, height int) {
	h.width, h.height = width, height
	h.fit()
}

func (h *HelpModel) fit() {
	w, ht := h.outer()
	h.body.Width = max(w-helpFrameW, 1)
	h.body.Height = max(ht-helpFrameH, 1)
}

// outer is the border box size; 80x24 before the first resize.
func (h HelpModel) outer() (int, int) {
	if h.width == 0 || h.height == 0 {
		return 80, 24
	}
	return h.width, h.height
}

// Update closes on Esc, q or ?, jumps with g/G and hands paging to the viewport.
func (h HelpModel) Update(msg tea.Msg) (HelpModel, tea.Cmd) {
	if !h.Visible {
		return h, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "?":
			h.Hide()
			return h, nil
		case "g", "home":
			h.body.GotoTop()
			return h, nil
		case "G", "end":
			h.body.GotoBottom()
			return h, nil
		}
	}
	var cmd tea.Cmd
	h.body, cmd = h.body.Update(msg)
	return h, cmd
}

// View renders the overlay, or nothing when hidden.
func (h HelpModel) View() string {
	if !h.Visible {
		return ""
	}
	w, ht := h.outer()
	header := theme.Bold.Render(h.Title) +
		theme.TextMuted.Render(fmt.Sprintf("  %3.0f%%", h.body.ScrollPercent()*100))
	footer := theme.Dim.Render("Esc/q: 닫기  j/k: 스크롤  g/G: 처음/끝")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorAccent).
		Padding(0, 1).
		Width(w - 2).
		Height(ht - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, h.body.View(), footer))
}
