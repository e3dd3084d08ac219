package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"hibot/internal/adapter/tui/theme"
)

// DefaultPlaceholder is shown in the empty input field.
const DefaultPlaceholder = "질문을 입력하세요..."

// maxHistory bounds the recall list.
const maxHistory = 50

// InputSubmitMsg is sent when the user presses Enter on non-blank input.
// Value is the raw text; the field is not cleared until the exchange accepts it.
type InputSubmitMsg struct {
	Value string
}

// InputAreaModel is the single-line question field. It offers slash-command
// completion and recalls earlier questions with Up and Down.
type InputAreaModel struct {
	Field    textinput.Model
	Commands CommandMenu
	Enabled  bool
	Focused  bool

	history []string // oldest first
	recall  int      // index into history; len(history) means the live draft
	draft   string   // text typed before recall started
}

// NewInputArea creates a focused, enabled input with the given placeholder.
func NewInputArea(placeholder string) InputAreaModel {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	f := textinput.New()
	f.Placeholder = placeholder
	f.Prompt = "> "
	f.PromptStyle = theme.InputPrompt
	f.PlaceholderStyle = theme.InputPlaceholder
	// Blink ticks are never routed here.
	f.Cursor.SetMode(cursor.CursorStatic)
	f.Focus()

	return InputAreaModel{Field: f, Enabled: true, Focused: true}
}

// SetWidth fits the field to w columns.
func (m *InputAreaModel) SetWidth(w int) {
	m.Field.Width = max(w-len(m.Field.Prompt)-1, 1)
}

// SetEnabled enables or disables input (e.g. while an exchange is in flight).
func (m *InputAreaModel) SetEnabled(enabled bool) {
	m.Enabled = enabled
	m.syncFocus()
}

// SetFocused moves keyboard focus to or away from the field.
func (m *InputAreaModel) SetFocused(focused bool) {
	m.Focused = focused
	m.syncFocus()
}

func (m *InputAreaModel) syncFocus() {
	if m.Enabled && m.Focused {
		m.Field.Focus()
		return
	}
	m.Field.Blur()
	m.Commands.Close()
}

// Reset clears the field without recording it.
func (m *InputAreaModel) Reset() {
	m.Field.Reset()
	m.Commands.Close()
	m.recall = len(m.history)
	m.draft = ""
}

// Commit records the current text in the recall history and clears the field.
// It runs once an exchange has accepted the text.
func (m *InputAreaModel) Commit() {
	if v := m.Field.Value(); strings.TrimSpace(v) != "" {
		if n := len(m.history); n == 0 || m.history[n-1] != v {
			m.history = append(m.history, v)
		}
		if over := len(m.history) - maxHistory; over > 0 {
			m.history = append([]string(nil), m.history[over:]...)
		}
	}
	m.Reset()
}

// History returns the recorded questions, oldest first.
func (m InputAreaModel) History() []string {
	return append([]string(nil), m.history...)
}

// Value returns the current input text.
func (m InputAreaModel) Value() string {
	return m.Field.Value()
}

// CanSend reports whether Enter would submit right now.
func (m InputAreaModel) CanSend() bool {
	return m.Enabled && strings.TrimSpace(m.Field.Value()) != ""
}

// ParseSlashCommand extracts command and args from slash command input.
func ParseSlashCommand(input string) (cmd string, args []string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", nil, false
	}
	parts := strings.Fields(input)
	return strings.ToLower(parts[0]), parts[1:], true
}

// Update handles key events. Enter submits the raw value when it is not
// blank. While the completion popup is visible Tab and the arrows move the
// selection; otherwise Up and Down walk the history.
func (m InputAreaModel) Update(msg tea.Msg) (InputAreaModel, tea.Cmd) {
	if !m.Enabled || !m.Focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.Commands.Open() {
		switch key.Type {
		case tea.KeyTab, tea.KeyDown:
			m.Commands.Move(+1)
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.Commands.Move(-1)
			return m, nil
		case tea.KeyEnter:
			if accepted := m.Commands.Accept(); accepted != "" {
				m.Field.SetValue(accepted)
				m.Field.CursorEnd()
			}
			return m, nil
		case tea.KeyEsc:
			m.Commands.Close()
			return m, nil
		}
	}

	switch key.Type {
	case tea.KeyEnter:
		if !m.CanSend() {
			return m, nil
		}
		value := m.Field.Value()
		m.Commands.Close()
		return m, func() tea.Msg { return InputSubmitMsg{Value: value} }
	case tea.KeyUp:
		m.step(-1)
		return m, nil
	case tea.KeyDown:
		m.step(+1)
		return m, nil
	}

	var cmd tea.Cmd
	m.Field, cmd = m.Field.Update(msg)
	m.recall = len(m.history)

	if v := m.Field.Value(); strings.HasPrefix(v, "/") && !strings.Contains(v, " ") {
		m.Commands.Filter(v)
	} else {
		m.Commands.Close()
	}
	return m, cmd
}

// step moves through the history; stepping past the newest entry restores
// the draft.
func (m *InputAreaModel) step(delta int) {
	if m.recall > len(m.history) {
		m.recall = len(m.history)
	}
	next := m.recall + delta
	if next < 0 || next > len(m.history) {
		return
	}
	if m.recall == len(m.history) {
		m.draft = m.Field.Value()
	}
	m.recall = next
	if next == len(m.history) {
		m.Field.SetValue(m.draft)
	} else {
		m.Field.SetValue(m.history[next])
	}
	m.Field.CursorEnd()
}

// View renders the input area with the command menu, when open, above it.
func (m InputAreaModel) View() string {
	field := m.Field.View()
	if !m.Enabled {
		field = theme.Dim.Render(field)
	}
	if popup := m.Commands.View(); popup != "" {
		return popup + "\n" + field
	}
	return field
}
