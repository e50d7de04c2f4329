package chat

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole  = errors.New("invalid message role")
	ErrSystemAppend = errors.New("system message may only seed a transcript")
)

// Transcript is the append-only message log of one conversation. It is
// seeded with exactly one system message and owned by a single turn loop, so
// it carries no locking.
type Transcript struct {
	id       string
	messages []Message
}

func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{
		id:       uuid.NewString(),
		messages: make([]Message, 0, 16),
	}
	t.messages = append(t.messages, Message{Role: RoleSystem, Content: systemPrompt})
	return t
}

// ID identifies the conversation in logs.
func (t *Transcript) ID() string {
	return t.id
}

// Append adds a user or assistant message to the end of the transcript.
func (t *Transcript) Append(role Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == RoleSystem {
		return ErrSystemAppend
	}
	t.messages = append(t.messages, Message{Role: role, Content: content})
	return nil
}

// AddUser appends a user message, which is how both prompts and
// observations reach the model.
func (t *Transcript) AddUser(content string) {
	t.messages = append(t.messages, Message{Role: RoleUser, Content: content})
}

func (t *Transcript) AddAssistant(content string) {
	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: content})
}

// Messages returns a copy of the history in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message.
func (t *Transcript) Last() Message {
	return t.messages[len(t.messages)-1]
}

// System returns the seeded system message.
func (t *Transcript) System() Message {
	return t.messages[0]
}
