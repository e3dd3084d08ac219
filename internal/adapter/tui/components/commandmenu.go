package components

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hibot/internal/adapter/tui/theme"
)

// Command is a slash command the input field can complete.
type Command struct {
	Name    string   // canonical spelling, e.g. "/help"
	Aliases []string // other accepted spellings, e.g. "/도움말"
	Summary string
}

// spellings returns the name followed by the aliases.
func (c Command) spellings() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// CommandMenu is the completion list shown above the input while a slash
// command is being typed.
type CommandMenu struct {
	commands []Command
	matches  []Command
	cursor   int
	open     bool
}

// NewCommandMenu creates a closed menu over commands.
func NewCommandMenu(commands ...Command) CommandMenu {
	return CommandMenu{commands: commands}
}

// Resolve maps a typed command word, canonical or alias, to its canonical
// name. Matching ignores case.
func (c CommandMenu) Resolve(word string) (string, bool) {
	word = strings.ToLower(word)
	for _, cmd := range c.commands {
		if slices.Contains(cmd.spellings(), word) {
			return cmd.Name, true
		}
	}
	return "", false
}

// Filter opens the menu on the commands matching query. A command matches
// when any spelling starts with query, or when its summary contains the text
// typed after the slash, so "/질문" finds "/faq".
func (c *CommandMenu) Filter(query string) {
	query = strings.ToLower(query)
	term := strings.TrimPrefix(query, "/")
	c.matches = nil
	for _, cmd := range c.commands {
		prefix := slices.ContainsFunc(cmd.spellings(), func(s string) bool { return strings.HasPrefix(s, query) })
		if prefix || (term != "" && strings.Contains(cmd.Summary, term)) {
			c.matches = append(c.matches, cmd)
		}
	}
	c.open = query != "" && len(c.matches) > 0
	if c.cursor >= len(c.matches) {
		c.cursor = 0
	}
}

// Close hides the menu and forgets the matches.
func (c *CommandMenu) Close() {
	c.open = false
	c.matches = nil
	c.cursor = 0
}

// Open reports whether the menu is showing.
func (c CommandMenu) Open() bool { return c.open }

// Matches returns the commands currently listed.
func (c CommandMenu) Matches() []Command { return c.matches }

// Move shifts the highlight by delta, wrapping at both ends.
func (c *CommandMenu) Move(delta int) {
	if n := len(c.matches); n > 0 {
		c.cursor = ((c.cursor+delta)%n + n) % n
	}
}

// Accept closes the menu and returns the highlighted command's canonical
// name, or "" when nothing matches.
func (c *CommandMenu) Accept() string {
	if len(c.matches) == 0 {
		return ""
	}
	name := c.matches[c.cursor].Name
	c.Close()
	return name
}

// View renders the open menu, or "" when closed.
func (c CommandMenu) View() string {
	if !c.open {
		return ""
	}

	nameWidth := 0
	for _, cmd := range c.matches {
		nameWidth = max(nameWidth, lipgloss.Width(cmd.Name))
	}

	lines := make([]string, 0, len(c.matches))
	for i, cmd := range c.matches {
		marker := "  "
		if i == c.cursor {
			marker = theme.TextInfo.Render(theme.SymbolArrowR + " ")
		}
		line := marker + cmd.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(cmd.Name)+1) + theme.TextMuted.Render(cmd.Summary)
		if len(cmd.Aliases) > 0 {
			line += " " + theme.Dim.Render(strings.Join(cmd.Aliases, " "))
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorderActive).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
