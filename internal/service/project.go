// Package service implements business logic on top of ports.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartpotato/smartpotato/internal/domain"
	"github.com/smartpotato/smartpotato/internal/domain/project"
	"github.com/smartpotato/smartpotato/internal/port/store"
)

// ProjectService handles project binder business logic: project CRUD, memory
// notes and chat membership.
type ProjectService struct {
	store store.Store
	now   func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(st store.Store) *ProjectService {
	return &ProjectService{store: st, now: time.Now}
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]project.Project, error) {
	return s.store.ListProjects(ctx)
}

// Get returns a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Create creates a new project after validating the request.
func (s *ProjectService) Create(ctx context.Context, req *project.CreateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &project.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Context:     req.Context,
		ContextKind: req.ContextKind,
	}
	return s.store.CreateProject(ctx, p)
}

// Update replaces the project's metadata, leaving memories and membership alone.
func (s *ProjectService) Update(ctx context.Context, id string, req *project.CreateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.Context = req.Context
	p.ContextKind = req.ContextKind
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, id)
}

// Delete removes the project. Member conversations are detached, not deleted.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProject(ctx, id)
}

// AddChat attaches the conversation to the project.
func (s *ProjectService) AddChat(ctx context.Context, projectID, conversationID string) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	return s.store.SetConversationProject(ctx, conversationID, projectID)
}

// RemoveChat detaches the conversation from the project.
func (s *ProjectService) RemoveChat(ctx context.Context, projectID, conversationID string) error {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !p.HasChat(conversationID) {
		return fmt.Errorf("conversation %s not in project %s: %w", conversationID, projectID, domain.ErrNotFound)
	}
	return s.store.SetConversationProject(ctx, conversationID, "")
}

// AddMemory appends a memory note to the project.
func (s *ProjectService) AddMemory(ctx context.Context, projectID string, req *project.MemoryRequest) (*project.Memory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = project.SourceUser
	}
	ts := s.now()
	m := project.Memory{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		Source:    source,
		ChatID:    req.ChatID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	p.Memories = append(p.Memories, m)
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMemory edits an existing memory note.
func (s *ProjectService) UpdateMemory(ctx context.Context, projectID, memoryID string, req *project.MemoryRequest) (*project.Memory, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for i := range p.Memories {
		if p.Memories[i].ID != memoryID {
			continue
		}
		p.Memories[i].Title = strings.TrimSpace(req.Title)
		p.Memories[i].Content = req.Content
		p.Memories[i].UpdatedAt = s.now()
		if err := s.store.UpdateProject(ctx, p); err != nil {
			return nil, err
		}
		m := p.Memories[i]
		return &m, nil
	}
	return nil, fmt.Errorf("memory %s: %w", memoryID, domain.ErrNotFound)
}

// DeleteMemory removes a memory note from the project.
func (s *ProjectService) DeleteMemory(ctx context.Context, projectID, memoryID string) error {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	for i := range p.Memories {
		if p.Memories[i].ID == memoryID {
			p.Memories = append(p.Memories[:i], p.Memories[i+1:]...)
			return s.store.UpdateProject(ctx, p)
		}
	}
	return fmt.Errorf("memory %s: %w", memoryID, domain.ErrNotFound)
}

// MemoryBlock renders the project's memories as a single block for injection
// into outgoing history. Returns "" when the project has no memories.
func MemoryBlock(p *project.Project) string {
	if len(p.Memories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("IMPORTANT: The following are the project's saved memory notes. ONLY reference these actual memories; do not fabricate memories that are not listed here.\n\n")
	for i, m := range p.Memories {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "**%s**\n%s\n", m.Title, m.Content)
	}
	return b.String()
}

// ConversationContext resolves the memory block and project context for a
// conversation. Both are empty when the conversation has no project.
func (s *ProjectService) ConversationContext(ctx context.Context, projectID string) (memoryBlock, projectContext string) {
	if projectID == "" {
		return "", ""
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return "", ""
	}
	return MemoryBlock(p), p.Context
}
