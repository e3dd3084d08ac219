package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"hibot/internal/adapter/tui/theme"
	"hibot/internal/domain"
)

// NewMessagesMarker replaces the bottom line while the user is scrolled up
// and the transcript has grown.
const NewMessagesMarker = "새 메시지가 있어요 (End)"

// TranscriptView scrolls the rendered transcript. It follows the tail until
// the user scrolls up and resumes once they are back at the bottom or press
// End.
type TranscriptView struct {
	Messages MessageListModel
	vp       viewport.Model
	sized    bool
	follow   bool
	unseen   bool
}

// NewTranscriptView creates a view that follows the tail. It renders nothing
// useful until the first Resize.
func NewTranscriptView() TranscriptView {
	return TranscriptView{Messages: NewMessageList(), follow: true}
}

// Resize sets the visible area and re-renders at the new width.
func (v *TranscriptView) Resize(width, height int) {
	v.Messages.SetWidth(width)
	if !v.sized {
		v.vp = viewport.New(width, height)
		v.vp.MouseWheelEnabled = true
		v.vp.MouseWheelDelta = 3
		v.sized = true
	} else {
		v.vp.Width, v.vp.Height = width, height
	}
	v.redraw()
}

// Show renders snap. Growth while scrolled up raises the new-messages marker.
func (v *TranscriptView) Show(snap domain.Snapshot) {
	before := v.Messages.Len()
	v.Messages.SetMessages(snap.Messages)
	if !v.follow && v.Messages.Len() > before {
		v.unseen = true
	}
	v.redraw()
}

// Animate redraws pending placeholders with the spinner frame.
func (v *TranscriptView) Animate(frame string) {
	v.Messages.SetSpinnerFrame(frame)
	if v.Messages.HasPending() {
		v.redraw()
	}
}

// Following reports whether the view sticks to the newest message.
func (v TranscriptView) Following() bool { return v.follow }

// Unseen reports whether messages arrived while the user was scrolled up.
func (v TranscriptView) Unseen() bool { return v.unseen }

// Update scrolls on keys and mouse wheel. End jumps back to the tail.
func (v TranscriptView) Update(msg tea.Msg) (TranscriptView, tea.Cmd) {
	if !v.sized {
		return v, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnd {
		v.vp.GotoBottom()
		v.track()
		return v, nil
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	v.track()
	return v, cmd
}

func (v *TranscriptView) track() {
	v.follow = v.vp.AtBottom()
	if v.follow {
		v.unseen = false
	}
}

// View renders the visible part of the transcript.
func (v TranscriptView) View() string {
	if !v.sized {
		return "  Initializing..."
	}
	out := v.vp.View()
	if !v.unseen {
		return out
	}
	lines := strings.Split(out, "\n")
	lines[len(lines)-1] = theme.TextAccent.Render("  " + theme.SymbolArrowR + " " + NewMessagesMarker)
	return strings.Join(lines, "\n")
}

func (v *TranscriptView) redraw() {
	if !v.sized {
		return
	}
	v.vp.SetContent(v.Messages.View())
	if v.follow {
		v.vp.GotoBottom()
	}
}
