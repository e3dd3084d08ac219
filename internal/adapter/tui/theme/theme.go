// Package theme provides the visual design system for the hibot TUI.
// All styles use adaptive colors that work on both light and dark terminals.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive Color Palette ---

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#00796b", Dark: "#4db6ac"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	ColorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBorderActive = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}

	ColorBgAlt     = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim     = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
	ColorTitleBg   = lipgloss.AdaptiveColor{Light: "#00796b", Dark: "#004d40"}
	ColorTitleFg   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#e0f2f1"}
	ColorSelectBg  = lipgloss.AdaptiveColor{Light: "#e0f2f1", Dark: "#263238"}
	ColorDisabled  = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#5f5f5f"}
	ColorUserBlock = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#90caf9"}
)

// --- Symbols (glyphs are reset by InitSymbols) ---

var (
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolInfo     = "●"
	SymbolArrowR   = "→"
	SymbolBullet   = "•"
	SymbolEllipsis = "…"
	SymbolUser     = "나"
	SymbolBot      = "하이봇"
)

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	TextError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Layout styles ---

var (
	TitleBar = lipgloss.NewStyle().
			Foreground(ColorTitleFg).
			Background(ColorTitleBg).
			Bold(true).
			Padding(0, 1)

	FocusBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderActive)

	UnfocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder)
)

// --- Message role styles ---

var (
	UserLabel = lipgloss.NewStyle().
			Foreground(ColorUserBlock).
			Bold(true)

	BotLabel = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	PendingText = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

// --- FAQ list ---

var (
	FAQHeader = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FAQItem = lipgloss.NewStyle()

	FAQSelected = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Background(ColorSelectBg).
			Bold(true)

	FAQDisabled = lipgloss.NewStyle().
			Foreground(ColorDisabled)
)

// --- Status bar ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// --- Input area ---

var (
	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	InputPlaceholder = lipgloss.NewStyle().
				Foreground(ColorFgDim)
)

// MaxContentWidth is the recommended max width for readable text content.
const MaxContentWidth = 100

// MinSidePanelWidth is the minimum terminal width that docks the FAQ list
// beside the transcript. Narrower terminals show it as a popup instead.
const MinSidePanelWidth = 90

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
