package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
	"hibot/internal/domain"
)

// DefaultPendingLabel is shown beside the spinner while a reply is pending.
const DefaultPendingLabel = "응답을 불러오는 중이에요..."

// entry pairs a transcript message with its cached markdown render.
type entry struct {
	msg      domain.Message
	rendered string // cached glamour output; empty means not yet rendered
}

// MessageListModel renders the transcript snapshot as a list of bubbles.
// The list is replaced wholesale on every snapshot; renders are cached per
// position and reused while the message at that position is unchanged.
type MessageListModel struct {
	PendingLabel string
	entries      []entry
	spinnerFrame string
	width        int
	mdRenderer   *glamour.TermRenderer
}

// NewMessageList creates an empty message list.
func NewMessageList() MessageListModel {
	return MessageListModel{PendingLabel: DefaultPendingLabel}
}

// SetWidth updates the rendering width and clears cached renders.
func (m *MessageListModel) SetWidth(w int) {
	if w == m.width {
		return
	}
	m.width = w
	m.mdRenderer = nil
	for i := range m.entries {
		m.entries[i].rendered = ""
	}
}

// SetMessages replaces the displayed transcript.
func (m *MessageListModel) SetMessages(msgs []domain.Message) {
	next := make([]entry, len(msgs))
	for i, msg := range msgs {
		next[i].msg = msg
		if i < len(m.entries) && m.entries[i].msg == msg {
			next[i].rendered = m.entries[i].rendered
		}
	}
	m.entries = next
}

// SetSpinnerFrame sets the glyph drawn in front of pending placeholders.
func (m *MessageListModel) SetSpinnerFrame(frame string) {
	m.spinnerFrame = frame
}

// Len returns the number of displayed messages.
func (m MessageListModel) Len() int { return len(m.entries) }

// HasPending reports whether any placeholder is on screen.
func (m MessageListModel) HasPending() bool {
	n := len(m.entries)
	return n > 0 && m.entries[n-1].msg.IsPendingBot()
}

// Texts returns the raw message texts in order.
func (m MessageListModel) Texts() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.msg.Text
	}
	return out
}

// View renders all messages as a single string.
func (m *MessageListModel) View() string {
	if len(m.entries) == 0 {
		return theme.TextMuted.Render("  무엇이든 물어보세요. Ctrl+F로 추천 질문을 고를 수도 있어요.")
	}

	width := ContentWidth(m.width)

	var sb strings.Builder
	for i := range m.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderEntry(&m.entries[i], width))
	}
	return sb.String()
}

func (m *MessageListModel) renderEntry(e *entry, width int) string {
	switch {
	case e.msg.Sender == domain.RoleUser:
		label := theme.UserLabel.Render(theme.SymbolUser)
		body := wrapText(e.msg.Text, width-lipgloss.Width(label)-2)
		return label + "  " + body

	case e.msg.IsPendingBot():
		label := theme.BotLabel.Render(theme.SymbolBot)
		frame := m.spinnerFrame
		if frame != "" {
			frame += " "
		}
		return label + "  " + frame + theme.PendingText.Render(m.PendingLabel)

	default:
		label := theme.BotLabel.Render(theme.SymbolBot)
		if e.rendered == "" {
			e.rendered = m.renderMarkdown(e.msg.Text, width)
		}
		body := strings.TrimSpace(e.rendered)
		if body == "" {
			return label
		}
		return label + "\n" + body
	}
}

func (m *MessageListModel) renderMarkdown(content string, width int) string {
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "  " + content
		}
		m.mdRenderer = r
	}
	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return "  " + content
	}
	return rendered
}

// wrapText wraps text to the given width with a 2-space indent on continuation lines.
// Uses rune-based indexing to safely handle multibyte UTF-8.
func wrapText(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	var lines []string
	for len(runes) > width {
		idx := -1
		for i := width - 1; i > 0; i-- {
			if runes[i] == ' ' {
				idx = i
				break
			}
		}
		if idx <= 0 {
			idx = width
		}
		lines = append(lines, string(runes[:idx]))
		runes = runes[idx:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return strings.Join(lines, "\n  ")
}

// ContentWidth calculates the content width respecting MaxContentWidth.
func ContentWidth(termWidth int) int {
	return theme.Clamp(termWidth-4, 20, theme.MaxContentWidth)
}

// Divider renders a horizontal line at the given width.
func Divider(width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.ColorBorder).
		Render(strings.Repeat("─", width))
}
