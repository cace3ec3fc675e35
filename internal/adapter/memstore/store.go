// Package memstore implements the store port in process memory. All session
// state lives here; restarting the service starts from a clean slate.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartpotato/smartpotato/internal/domain"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/domain/project"
	"github.com/smartpotato/smartpotato/internal/domain/reminder"
	"github.com/smartpotato/smartpotato/internal/port/broadcast"
	"github.com/smartpotato/smartpotato/internal/port/store"
)

// Event types pushed to connected clients on mutations.
const (
	EventConversationCreated = "conversation.created"
	EventConversationUpdated = "conversation.updated"
	EventConversationDeleted = "conversation.deleted"
	EventMessageAppended     = "message.appended"
	EventProjectCreated      = "project.created"
	EventProjectUpdated      = "project.updated"
	EventProjectDeleted      = "project.deleted"
	EventReminderCreated     = "reminder.created"
	EventReminderUpdated     = "reminder.updated"
	EventReminderDeleted     = "reminder.deleted"
)

var _ store.Store = (*Store)(nil)

// Store keeps conversations, projects and reminders behind one mutex.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*chat.Conversation
	projects      map[string]*project.Project
	reminders     map[string]*reminder.Reminder
	epochs        map[string]uint64
	subscribers   []func()

	broadcaster broadcast.Broadcaster
	now         func() time.Time
}

// New creates an empty store. A nil broadcaster discards events.
func New(b broadcast.Broadcaster) *Store {
	if b == nil {
		b = broadcast.Nop{}
	}
	return &Store{
		conversations: make(map[string]*chat.Conversation),
		projects:      make(map[string]*project.Project),
		reminders:     make(map[string]*reminder.Reminder),
		epochs:        make(map[string]uint64),
		broadcaster:   b,
		now:           time.Now,
	}
}

// Subscribe registers fn to run after every conversation-set mutation.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// emit broadcasts the event and, when the conversation set changed, runs the
// subscribers. Called without the lock held.
func (s *Store) emit(ctx context.Context, event string, payload any, conversationSet bool) {
	s.broadcaster.BroadcastEvent(ctx, event, payload)
	if !conversationSet {
		return
	}
	s.mu.RLock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// CreateConversation stores c, filling in id, title and timestamps.
func (s *Store) CreateConversation(ctx context.Context, c *chat.Conversation) (*chat.Conversation, error) {
	s.mu.Lock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Title == "" {
		c.Title = chat.DefaultTitle
	}
	ts := s.now()
	c.CreatedAt = ts
	c.UpdatedAt = ts

	stored := cloneConversation(c)
	s.conversations[c.ID] = stored
	s.epochs[c.ID] = 0
	s.mu.Unlock()

	out := cloneConversation(stored)
	s.emit(ctx, EventConversationCreated, out, true)
	return out, nil
}

// GetConversation returns a copy of the conversation.
func (s *Store) GetConversation(_ context.Context, id string) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return cloneConversation(c), nil
}

// ListConversations returns copies of all conversations, newest first.
func (s *Store) ListConversations(_ context.Context) ([]chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, *cloneConversation(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteConversation removes the conversation, detaches it from its project
// and drops its reminders.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	if c.ProjectID != "" {
		if p, ok := s.projects[c.ProjectID]; ok {
			p.ChatIDs = removeString(p.ChatIDs, id)
			p.UpdatedAt = s.now()
		}
	}
	for rid, r := range s.reminders {
		if r.ConversationID == id {
			delete(s.reminders, rid)
		}
	}
	delete(s.conversations, id)
	delete(s.epochs, id)
	s.mu.Unlock()

	s.emit(ctx, EventConversationDeleted, map[string]string{"id": id}, true)
	return nil
}

// RenameConversation sets the conversation title.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title must not be empty: %w", domain.ErrValidation)
	}

	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	c.Title = title
	c.UpdatedAt = s.now()
	out := cloneConversation(c)
	s.mu.Unlock()

	s.emit(ctx, EventConversationUpdated, out, true)
	return nil
}

// AppendMessage appends m to the conversation, filling in id and timestamp.
func (s *Store) AppendMessage(ctx context.Context, id string, m chat.Message) (*chat.Message, error) {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	stored := s.fillMessage(id, m)
	c.Messages = append(c.Messages, stored)
	c.UpdatedAt = stored.CreatedAt
	s.mu.Unlock()

	s.emit(ctx, EventMessageAppended, stored, false)
	return &stored, nil
}

// SetOnboarding replaces the conversation's onboarding state.
func (s *Store) SetOnboarding(ctx context.Context, id string, o chat.Onboarding) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	c.Onboarding = o
	c.UpdatedAt = s.now()
	out := cloneConversation(c)
	s.mu.Unlock()

	s.emit(ctx, EventConversationUpdated, out, false)
	return nil
}

// BumpEpoch advances and returns the conversation's turn epoch.
func (s *Store) BumpEpoch(_ context.Context, id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return 0, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	s.epochs[id]++
	return s.epochs[id], nil
}

// AppendAssistantIfCurrent appends m only when epoch is still current.
// A stale epoch or missing conversation reports false without an error.
func (s *Store) AppendAssistantIfCurrent(ctx context.Context, id string, epoch uint64, m chat.Message) (*chat.Message, bool, error) {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok || s.epochs[id] != epoch {
		s.mu.Unlock()
		return nil, false, nil
	}
	stored := s.fillMessage(id, m)
	c.Messages = append(c.Messages, stored)
	c.UpdatedAt = stored.CreatedAt
	s.mu.Unlock()

	s.emit(ctx, EventMessageAppended, stored, false)
	return &stored, true, nil
}

// CreateProject stores p, filling in id and timestamps.
func (s *Store) CreateProject(ctx context.Context, p *project.Project) (*project.Project, error) {
	s.mu.Lock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	ts := s.now()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	p.LastInteractionAt = ts

	stored := cloneProject(p)
	s.projects[p.ID] = stored
	s.mu.Unlock()

	out := cloneProject(stored)
	s.emit(ctx, EventProjectCreated, out, false)
	return out, nil
}

// GetProject returns a copy of the project.
func (s *Store) GetProject(_ context.Context, id string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return cloneProject(p), nil
}

// ListProjects returns copies of all projects, most recently touched first.
func (s *Store) ListProjects(_ context.Context) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastInteractionAt.Equal(out[j].LastInteractionAt) {
			return out[i].LastInteractionAt.After(out[j].LastInteractionAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateProject replaces the project's mutable fields. Chat membership is
// owned by SetConversationProject and preserved here.
func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	s.mu.Lock()
	cur, ok := s.projects[p.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
	}
	updated := cloneProject(p)
	updated.ChatIDs = append([]string(nil), cur.ChatIDs...)
	updated.CreatedAt = cur.CreatedAt
	updated.UpdatedAt = s.now()
	updated.LastInteractionAt = updated.UpdatedAt
	s.projects[p.ID] = updated
	out := cloneProject(updated)
	s.mu.Unlock()

	s.emit(ctx, EventProjectUpdated, out, false)
	return nil
}

// DeleteProject removes the project and detaches its conversations.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	p, ok := s.projects[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	for _, chatID := range p.ChatIDs {
		if c, ok := s.conversations[chatID]; ok {
			c.ProjectID = ""
		}
	}
	delete(s.projects, id)
	s.mu.Unlock()

	s.emit(ctx, EventProjectDeleted, map[string]string{"id": id}, true)
	return nil
}

// SetConversationProject attaches the conversation to the project, moving it
// out of any previous project first. An empty projectID detaches.
func (s *Store) SetConversationProject(ctx context.Context, conversationID, projectID string) error {
	s.mu.Lock()
	c, ok := s.conversations[conversationID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	ts := s.now()
	if c.ProjectID != "" && c.ProjectID != projectID {
		if prev, ok := s.projects[c.ProjectID]; ok {
			prev.ChatIDs = removeString(prev.ChatIDs, conversationID)
			prev.UpdatedAt = ts
		}
	}

	if projectID == "" {
		c.ProjectID = ""
		c.UpdatedAt = ts
		out := cloneConversation(c)
		s.mu.Unlock()
		s.emit(ctx, EventConversationUpdated, out, true)
		return nil
	}

	p, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	if !containsString(p.ChatIDs, conversationID) {
		// Newest attachment goes to the front.
		p.ChatIDs = append([]string{conversationID}, p.ChatIDs...)
	}
	p.UpdatedAt = ts
	p.LastInteractionAt = ts
	c.ProjectID = projectID
	c.UpdatedAt = ts

	outConv := cloneConversation(c)
	outProj := cloneProject(p)
	s.mu.Unlock()

	s.emit(ctx, EventConversationUpdated, outConv, true)
	s.emit(ctx, EventProjectUpdated, outProj, false)
	return nil
}

// CreateReminder stores r, filling in id, status and timestamps.
func (s *Store) CreateReminder(ctx context.Context, r *reminder.Reminder) (*reminder.Reminder, error) {
	s.mu.Lock()
	if _, ok := s.conversations[r.ConversationID]; !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("conversation %s: %w", r.ConversationID, domain.ErrNotFound)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = reminder.StatusPending
	}
	ts := s.now()
	r.CreatedAt = ts
	r.UpdatedAt = ts

	stored := *r
	s.reminders[r.ID] = &stored
	out := stored
	s.mu.Unlock()

	s.emit(ctx, EventReminderCreated, out, false)
	return &out, nil
}

// GetReminder returns a copy of the reminder.
func (s *Store) GetReminder(_ context.Context, id string) (*reminder.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	out := *r
	return &out, nil
}

// ListReminders returns copies of all reminders ordered by due time.
func (s *Store) ListReminders(_ context.Context) ([]reminder.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]reminder.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].DueAt.Before(out[j].DueAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateReminder replaces the reminder.
func (s *Store) UpdateReminder(ctx context.Context, r *reminder.Reminder) error {
	s.mu.Lock()
	cur, ok := s.reminders[r.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("reminder %s: %w", r.ID, domain.ErrNotFound)
	}
	updated := *r
	updated.CreatedAt = cur.CreatedAt
	updated.UpdatedAt = s.now()
	s.reminders[r.ID] = &updated
	out := updated
	s.mu.Unlock()

	s.emit(ctx, EventReminderUpdated, out, false)
	return nil
}

// DeleteReminder removes the reminder.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.reminders[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	delete(s.reminders, id)
	s.mu.Unlock()

	s.emit(ctx, EventReminderDeleted, map[string]string{"id": id}, false)
	return nil
}

// fillMessage assigns id, conversation id and timestamp. Caller holds the lock.
func (s *Store) fillMessage(conversationID string, m chat.Message) chat.Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.ConversationID = conversationID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	return m
}

func cloneConversation(c *chat.Conversation) *chat.Conversation {
	out := *c
	out.Messages = append([]chat.Message(nil), c.Messages...)
	return &out
}

func cloneProject(p *project.Project) *project.Project {
	out := *p
	out.ChatIDs = append([]string(nil), p.ChatIDs...)
	out.Memories = append([]project.Memory(nil), p.Memories...)
	return &out
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
