package chat

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/components"
	"hibot/internal/adapter/tui/theme"
	"hibot/internal/domain"
	"hibot/internal/usecase/conversation"
)

// DefaultTitle is shown in the title bar.
const DefaultTitle = "하이봇"

const helpText = `명령어:
  /help      도움말 보기 (/도움말)
  /faq       자주 묻는 질문 열기 (/질문)
  /quit      종료 (/exit, /종료)

키:
  Enter      질문 보내기
  Tab        입력창 / 자주 묻는 질문 전환
  Ctrl+F     자주 묻는 질문 열기/닫기
  ↑/↓        이전 질문 불러오기 (입력창)
  ↑/↓ Enter  질문 고르기 (목록)
  1-9        번호로 바로 고르기
  PgUp/PgDn  대화 스크롤
  End        새 메시지로 이동
  Ctrl+C     종료

응답을 기다리는 동안에는 입력과 질문 선택이 잠깁니다.`

var slashCommands = []components.Command{
	{Name: "/help", Aliases: []string{"/도움말"}, Summary: "도움말 보기"},
	{Name: "/faq", Aliases: []string{"/질문"}, Summary: "자주 묻는 질문 열기"},
	{Name: "/quit", Aliases: []string{"/exit", "/종료"}, Summary: "종료"},
}

// ChatModelDeps are dependencies injected into the chat model.
type ChatModelDeps struct {
	Conversation Conversation
	Logger       *slog.Logger
	Title        string
	Placeholder  string
	PendingLabel string
	Endpoint     string
}

// ChatModel is the root Bubble Tea model for the chat widget. It never
// mutates the transcript itself; it renders snapshots and starts exchanges.
type ChatModel struct {
	deps ChatModelDeps

	transcript components.TranscriptView
	input      components.InputAreaModel
	faq        components.FAQListModel
	statusBar  components.StatusBarModel
	split      components.SplitPaneModel
	spinner    spinner.Model
	help       components.HelpModel

	snapshot domain.Snapshot
	busy     bool // snapshot.Busy or inflight
	inflight bool // an exchange was dispatched and its ExchangeDoneMsg has not arrived
	popup    bool   // FAQ popup open on narrow terminals
	notice   string // transient status text shown while idle
	width    int
	height   int
	quitting bool
}

// NewChatModel creates the root chat model.
func NewChatModel(deps ChatModelDeps) ChatModel {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Title == "" {
		deps.Title = DefaultTitle
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	transcript := components.NewTranscriptView()
	if deps.PendingLabel != "" {
		transcript.Messages.PendingLabel = deps.PendingLabel
	}

	input := components.NewInputArea(deps.Placeholder)
	input.Commands = components.NewCommandMenu(slashCommands...)

	sb := components.NewStatusBar()
	sb.Endpoint = deps.Endpoint
	sb.Hints = defaultHints()

	m := ChatModel{
		deps:       deps,
		transcript: transcript,
		input:      input,
		faq:        components.NewFAQList(deps.Conversation.Catalog().Entries()),
		statusBar:  sb,
		split:      components.NewSplitPane(0.68),
		spinner:    s,
		help:       components.NewHelp("도움말"),
	}
	m.applySnapshot(deps.Conversation.Snapshot())
	return m
}

// Init starts the spinner.
func (m ChatModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.help.Resize(m.width, m.height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case components.FAQSelectMsg:
		return m.handleSelect(msg.Index)

	case TranscriptMsg:
		m.applySnapshot(msg.Snapshot)
		return m, nil

	case ClearInputMsg:
		m.input.Commit()
		return m, nil

	case ExchangeDoneMsg:
		return m.handleDone(msg)

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.transcript.Animate(m.spinner.View())
		return m, cmd
	}

	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	return m, cmd
}

// View renders the entire chat UI.
func (m ChatModel) View() string {
	if m.quitting {
		return "안녕히 가세요!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}
	if m.help.Visible {
		return m.help.View()
	}

	title := theme.TitleBar.Width(m.width).Render(m.deps.Title)

	main := m.transcript.View()
	if m.split.Docked() {
		panel := lipgloss.NewStyle().
			Width(m.split.RightWidth()).
			Height(m.split.Height()).
			Padding(0, 1).
			Render(m.faq.View())
		main = m.split.Render(main, panel)
	}

	parts := []string{title, main}
	if m.popupOpen() {
		parts = append(parts, m.faq.PopupView())
	}
	parts = append(parts, components.Divider(m.width), m.input.View(), m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Snapshot returns the last transcript snapshot the model rendered.
func (m ChatModel) Snapshot() domain.Snapshot {
	return m.snapshot
}

// Busy reports whether the model considers an exchange in flight.
func (m ChatModel) Busy() bool {
	return m.busy
}

// FAQFocused reports whether key input goes to the FAQ list.
func (m ChatModel) FAQFocused() bool {
	return m.faq.Focused
}

// InputValue returns the current contents of the input field.
func (m ChatModel) InputValue() string {
	return m.input.Value()
}

func (m *ChatModel) applySnapshot(snap domain.Snapshot) {
	m.snapshot = snap
	m.transcript.Show(snap)
	m.syncBusy()
}

// syncBusy locks input and the FAQ list while the store is busy or an
// exchange is dispatched but not yet settled. The store only turns busy once
// the command goroutine runs, so a snapshot alone would let a second tap
// through.
func (m *ChatModel) syncBusy() {
	m.busy = m.snapshot.Busy || m.inflight
	m.input.SetEnabled(!m.busy)
	m.faq.Enabled = !m.busy
	m.refreshStatus()
}

func (m *ChatModel) refreshStatus() {
	switch {
	case m.busy:
		m.statusBar.Extra = "응답 대기 중"
	default:
		m.statusBar.Extra = m.notice
	}
	if m.faq.Focused {
		m.statusBar.Hints = faqHints()
	} else {
		m.statusBar.Hints = defaultHints()
	}
}

func (m ChatModel) popupOpen() bool {
	return m.popup && !m.split.Docked()
}

// layout recalculates sizes for all sub-models.
func (m *ChatModel) layout() {
	const titleH, dividerH, inputH, statusH = 1, 1, 1, 1

	m.statusBar.SetWidth(m.width)
	m.input.SetWidth(m.width)

	popupH := 0
	if m.width < theme.MinSidePanelWidth && m.popup {
		popupH = m.faq.Height() + 2 // border
	}
	contentH := m.height - titleH - dividerH - inputH - statusH - popupH
	if contentH < 3 {
		contentH = 3
	}

	m.split.SetSize(m.width, contentH)
	m.transcript.Resize(m.split.LeftWidth(), contentH)
	if m.split.Docked() {
		m.faq.SetWidth(m.split.RightWidth() - 2)
	} else {
		m.faq.SetWidth(m.width - 4)
		if !m.popup {
			m.setFAQFocus(false)
		}
	}
}

// isSGRMouseSequence detects SGR mouse escape sequences that may leak
// through as key input (e.g. "<65;38;21M").
func isSGRMouseSequence(s string) bool {
	if len(s) < 5 || s[0] != '<' {
		return false
	}
	last := s[len(s)-1]
	if last != 'M' && last != 'm' {
		return false
	}
	for _, r := range s[1 : len(s)-1] {
		if r != ';' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// isMouseEscapeLeak detects mouse escape sequences that leaked through
// as key input instead of tea.MouseMsg. Covers SGR, X11 basic, and
// URXVT formats.
func isMouseEscapeLeak(s string) bool {
	if isSGRMouseSequence(s) {
		return true
	}
	if len(s) >= 2 && s[0] == '[' && (s[1] == 'M' || s[1] == 'm') {
		return true
	}
	if len(s) >= 5 && s[0] == '[' && s[len(s)-1] == 'M' {
		for _, r := range s[1 : len(s)-1] {
			if r != ';' && (r < '0' || r > '9') {
				return false
			}
		}
		return true
	}
	return false
}

// handleKey processes keyboard input.
func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isMouseEscapeLeak(msg.String()) {
		return m, nil
	}

	if m.help.Visible && msg.Type != tea.KeyCtrlC {
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlF:
		m.toggleFAQ()
		return m, nil

	case tea.KeyTab:
		if m.input.Commands.Open() && !m.faq.Focused {
			break
		}
		if m.split.Docked() || m.popupOpen() {
			m.setFAQFocus(!m.faq.Focused)
		}
		return m, nil

	case tea.KeyEsc:
		if m.popupOpen() {
			m.popup = false
			m.setFAQFocus(false)
			m.layout()
			return m, nil
		}
		if m.faq.Focused {
			m.setFAQFocus(false)
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case tea.KeyEnd:
		if m.transcript.Unseen() {
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	}

	if m.faq.Focused {
		var cmd tea.Cmd
		m.faq, cmd = m.faq.Update(msg)
		return m, cmd
	}

	m.notice = ""
	m.refreshStatus()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// toggleFAQ focuses the docked list or opens/closes the popup.
func (m *ChatModel) toggleFAQ() {
	if m.split.Docked() {
		m.setFAQFocus(!m.faq.Focused)
		return
	}
	m.popup = !m.popup
	m.setFAQFocus(m.popup)
	m.layout()
}

func (m *ChatModel) setFAQFocus(focused bool) {
	m.faq.Focused = focused
	if m.split.Docked() {
		if focused {
			m.split.Focused = components.PaneRight
		} else {
			m.split.Focused = components.PaneLeft
		}
	}
	m.input.SetFocused(!focused)
	m.refreshStatus()
}

// handleSubmit routes slash commands locally and sends everything else.
func (m ChatModel) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		m.input.Reset()
		return m.handleSlashCommand(cmd, args)
	}
	if m.busy {
		return m, nil
	}
	m.dispatch()
	return m, submitCmd(m.deps.Conversation, value)
}

// handleSelect sends a quick reply and returns focus to the input.
func (m ChatModel) handleSelect(index int) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.popupOpen() {
		m.popup = false
		m.layout()
	}
	m.setFAQFocus(false)
	m.dispatch()
	return m, selectCmd(m.deps.Conversation, index)
}

// dispatch marks an exchange as started before its command runs.
func (m *ChatModel) dispatch() {
	m.inflight = true
	m.notice = ""
	m.syncBusy()
}

// handleDone settles the UI after an exchange. The bus has already delivered
// every snapshot of the exchange; reading the store again keeps the view
// correct when no bus is wired.
func (m ChatModel) handleDone(msg ExchangeDoneMsg) (tea.Model, tea.Cmd) {
	m.inflight = false
	switch {
	case msg.Err != nil:
		m.deps.Logger.Error("exchange error", "error", msg.Err, "exchange_id", msg.Result.ExchangeID)
	case msg.Result.Outcome == conversation.OutcomeRejected:
		m.deps.Logger.Debug("exchange rejected", "reason", string(msg.Result.Reason))
	}

	m.applySnapshot(m.deps.Conversation.Snapshot())
	return m, nil
}

// handleSlashCommand processes a slash command.
func (m ChatModel) handleSlashCommand(word string, _ []string) (tea.Model, tea.Cmd) {
	cmd, _ := m.input.Commands.Resolve(word)
	switch cmd {
	case "/help":
		m.help.Resize(m.width, m.height)
		m.help.Show(helpText)
		return m, nil

	case "/faq":
		m.toggleFAQ()
		return m, nil

	case "/quit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.notice = fmt.Sprintf("알 수 없는 명령어예요: %s (/help)", word)
		m.refreshStatus()
		return m, nil
	}
}

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "보내기"},
		{Key: "Tab", Desc: "포커스"},
		{Key: "Ctrl+F", Desc: "FAQ"},
		{Key: "/help", Desc: "도움말"},
		{Key: "Ctrl+C", Desc: "종료"},
	}
}

func faqHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "이동"},
		{Key: "Enter", Desc: "선택"},
		{Key: "1-9", Desc: "바로 선택"},
		{Key: "Tab", Desc: "입력창"},
	}
}
