// Package chat provides the domain model for conversations, messages and the
// per-conversation onboarding state.
package chat

import (
	"strings"
	"time"
)

// DefaultTitle is the title every new conversation starts with.
const DefaultTitle = "New Chat"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single turn in a conversation. Messages are immutable once
// appended; ordering is append order and timestamps are advisory.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Sender         Sender    `json:"sender"`
	Content        string    `json:"content"`
	Reasoning      string    `json:"reasoning,omitempty"` // present only on reasoning-enabled assistant turns
	System         bool      `json:"system,omitempty"`    // produced by the orchestrator itself (e.g. summary banners)
	CreatedAt      time.Time `json:"created_at"`
}

// Mode is the onboarding flavor selected at conversation creation time.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeCreate   Mode = "create"
	ModeResearch Mode = "research"
	ModeBuild    Mode = "build"
)

// ValidModes lists the selectable onboarding modes.
var ValidModes = []Mode{ModeCreate, ModeResearch, ModeBuild}

// Onboarding is the per-conversation tutorial state. The zero value
// (ModeNone represented as "", step 0) means normal chat.
type Onboarding struct {
	Mode Mode `json:"mode"`
	Step int  `json:"step"`
}

// Done reports whether the conversation has left the tutorial flow.
func (o Onboarding) Done() bool {
	return o.Mode == "" || o.Mode == ModeNone
}

// Conversation is an ordered, append-only sequence of messages.
type Conversation struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ProjectID  string     `json:"project_id,omitempty"`
	Messages   []Message  `json:"messages"`
	Onboarding Onboarding `json:"onboarding"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasDefaultTitle reports whether the conversation is still untitled.
// "Chat N" placeholders from imported sessions count as default.
func (c *Conversation) HasDefaultTitle() bool {
	return c.Title == DefaultTitle || strings.HasPrefix(c.Title, "Chat ")
}

// UserTurns returns the number of user-sent (non system-tagged) messages.
func (c *Conversation) UserTurns() int {
	n := 0
	for i := range c.Messages {
		if c.Messages[i].Sender == SenderUser && !c.Messages[i].System {
			n++
		}
	}
	return n
}

// SendRequest is the request body for sending a user text turn.
type SendRequest struct {
	Content   string `json:"content"`
	Reasoning bool   `json:"reasoning,omitempty"` // capture a reasoning trace for the reply
}

// ChipRequest is the request body for picking a choice chip.
type ChipRequest struct {
	Chip string `json:"chip"`
}

// SelectModeRequest is the request body for starting an onboarding conversation.
type SelectModeRequest struct {
	Mode Mode `json:"mode"`
}

// RenameRequest is the request body for renaming a conversation.
type RenameRequest struct {
	Title string `json:"title"`
}
