package domain

// Role identifies who authored a transcript message.
type Role string

// Role constants for message senders.
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single transcript entry.
// A Bot message with Pending=true is a placeholder awaiting a reply; its Text is empty.
type Message struct {
	Sender  Role   `json:"sender"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"`
}

// UserMessage builds a settled message authored by the user.
func UserMessage(text string) Message {
	return Message{Sender: RoleUser, Text: text}
}

// BotMessage builds a settled bot reply.
func BotMessage(text string) Message {
	return Message{Sender: RoleBot, Text: text}
}

// PendingBotMessage builds the "thinking" placeholder.
func PendingBotMessage() Message {
	return Message{Sender: RoleBot, Pending: true}
}

// IsPendingBot reports whether m is an unresolved bot placeholder.
func (m Message) IsPendingBot() bool {
	return m.Sender == RoleBot && m.Pending
}

// Snapshot is an immutable view of the transcript handed to renderers.
// Callers must not modify Messages.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Busy     bool      `json:"busy"`
}

// Len returns the number of messages in the snapshot.
func (s Snapshot) Len() int { return len(s.Messages) }

// Last returns the trailing message, if any.
func (s Snapshot) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Consistent reports whether Busy agrees with the tail: busy exactly when the
// last message is a pending bot placeholder.
func (s Snapshot) Consistent() bool {
	last, ok := s.Last()
	tailPending := ok && last.IsPendingBot()
	return s.Busy == tailPending
}
