package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the role with its first letter capitalized, as used in
// transcripts ("User", "Assistant").
func (r Role) Label() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Message is one utterance in a conversation. Messages are never edited
// after they are appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with the current UTC time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// Conversation is one intake session for an owner. While IsCompleted is
// false it is the owner's active conversation.
type Conversation struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Messages    []Message `json:"messages"`
	IsCompleted bool      `json:"is_completed"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Revision increments on every successful update. Stores use it to
	// reject writes computed from a stale read.
	Revision int `json:"-"`
}

// Clone returns a copy whose message slice can be appended to without
// affecting the receiver.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

// Append adds a message to the log.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// UserMessages returns the user-authored messages in order.
func (c *Conversation) UserMessages() []Message {
	return UserMessages(c.Messages)
}

// UserMessages filters msgs down to user-authored messages, preserving order.
func UserMessages(msgs []Message) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// Validate checks the stored shape of a conversation. Errors wrap
// ErrMalformedTranscript.
func (c *Conversation) Validate() error {
	if c.OwnerID == "" {
		return fmt.Errorf("%w: missing owner", ErrMalformedTranscript)
	}
	for i, m := range c.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrMalformedTranscript, i, m.Role)
		}
	}
	if c.IsCompleted && strings.TrimSpace(c.Summary) == "" {
		return fmt.Errorf("%w: completed without summary", ErrMalformedTranscript)
	}
	if !c.IsCompleted && c.Summary != "" {
		return fmt.Errorf("%w: summary on an active conversation", ErrMalformedTranscript)
	}
	return nil
}
