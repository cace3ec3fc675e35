// Package store defines the port for session state: conversations, projects
// and reminders. The only implementation keeps everything in process memory;
// reloading the service is allowed to lose state.
package store

import (
	"context"

	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/domain/project"
	"github.com/smartpotato/smartpotato/internal/domain/reminder"
)

// Store owns all mutable session state. Implementations must keep the
// project/conversation membership invariant: a conversation's ProjectID is set
// iff the project's ChatIDs contains the conversation id exactly once.
type Store interface {
	// Conversations.
	CreateConversation(ctx context.Context, c *chat.Conversation) (*chat.Conversation, error)
	GetConversation(ctx context.Context, id string) (*chat.Conversation, error)
	ListConversations(ctx context.Context) ([]chat.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	RenameConversation(ctx context.Context, id, title string) error
	AppendMessage(ctx context.Context, id string, m chat.Message) (*chat.Message, error)
	SetOnboarding(ctx context.Context, id string, o chat.Onboarding) error

	// BumpEpoch advances and returns the conversation's turn epoch. The
	// epoch is captured on entry of a send and checked before the matching
	// assistant turn is appended, so late replies from superseded sends are
	// discarded.
	BumpEpoch(ctx context.Context, id string) (uint64, error)

	// AppendAssistantIfCurrent appends m only when epoch is still the
	// conversation's current epoch. Returns false (and no error) when the
	// reply is stale or the conversation is gone.
	AppendAssistantIfCurrent(ctx context.Context, id string, epoch uint64, m chat.Message) (*chat.Message, bool, error)

	// Projects. SetConversationProject with projectID == "" detaches.
	CreateProject(ctx context.Context, p *project.Project) (*project.Project, error)
	GetProject(ctx context.Context, id string) (*project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
	UpdateProject(ctx context.Context, p *project.Project) error
	DeleteProject(ctx context.Context, id string) error
	SetConversationProject(ctx context.Context, conversationID, projectID string) error

	// Reminders.
	CreateReminder(ctx context.Context, r *reminder.Reminder) (*reminder.Reminder, error)
	GetReminder(ctx context.Context, id string) (*reminder.Reminder, error)
	ListReminders(ctx context.Context) ([]reminder.Reminder, error)
	UpdateReminder(ctx context.Context, r *reminder.Reminder) error
	DeleteReminder(ctx context.Context, id string) error

	// Subscribe registers fn to run after every conversation-set mutation
	// (create, delete, rename, project attach/detach). Used to keep the
	// grouped view fresh.
	Subscribe(fn func())
}
