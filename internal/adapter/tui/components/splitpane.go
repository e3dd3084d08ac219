package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
)

// Pane identifies which pane is focused.
type Pane int

const (
	PaneLeft Pane = iota
	PaneRight
)

// SplitPaneModel manages the transcript and FAQ side-by-side layout.
// The right pane is docked only when the terminal is wide enough.
type SplitPaneModel struct {
	Focused Pane
	Ratio   float64
	width   int
	height  int
}

// NewSplitPane creates a split pane. ratio is the fraction of width for the left pane (0.0–1.0).
func NewSplitPane(ratio float64) SplitPaneModel {
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.68
	}
	return SplitPaneModel{Focused: PaneLeft, Ratio: ratio}
}

// SetSize updates the available dimensions. Shrinking below the docking
// width moves focus back to the left pane.
func (m *SplitPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if !m.Docked() {
		m.Focused = PaneLeft
	}
}

// Docked reports whether the right pane is shown beside the left one.
func (m SplitPaneModel) Docked() bool {
	return m.width >= theme.MinSidePanelWidth
}

// SwitchFocus moves focus to the other pane.
func (m *SplitPaneModel) SwitchFocus() {
	if !m.Docked() {
		return
	}
	if m.Focused == PaneLeft {
		m.Focused = PaneRight
	} else {
		m.Focused = PaneLeft
	}
}

// LeftWidth returns the width allocated to the left pane.
func (m SplitPaneModel) LeftWidth() int {
	if !m.Docked() {
		return m.width
	}
	return int(float64(m.width-1) * m.Ratio) // 1-char divider
}

// RightWidth returns the width allocated to the right pane.
func (m SplitPaneModel) RightWidth() int {
	if !m.Docked() {
		return 0
	}
	return m.width - 1 - m.LeftWidth()
}

// Height returns the content height.
func (m SplitPaneModel) Height() int {
	return m.height
}

// Render joins left and right content with a focus-aware divider.
func (m SplitPaneModel) Render(left, right string) string {
	if !m.Docked() {
		return left
	}

	divColor := theme.ColorBorder
	if m.Focused == PaneRight {
		divColor = theme.ColorBorderActive
	}
	divider := lipgloss.NewStyle().Foreground(divColor).Render("│")

	col := make([]string, m.height)
	for i := range col {
		col[i] = divider
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Join(col, "\n"), right)
}
