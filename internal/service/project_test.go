package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smartpotato/smartpotato/internal/adapter/memstore"
	"github.com/smartpotato/smartpotato/internal/domain"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/domain/project"
)

func newTestProjects() (*ProjectService, *memstore.Store) {
	st := memstore.New(nil)
	return NewProjectService(st), st
}

func TestProjectCreateValidates(t *testing.T) {
	s, _ := newTestProjects()
	if _, err := s.Create(context.Background(), &project.CreateRequest{Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestProjectUpdateKeepsMemories(t *testing.T) {
	s, _ := newTestProjects()
	ctx := context.Background()

	p, _ := s.Create(ctx, &project.CreateRequest{Name: "Backend"})
	s.AddMemory(ctx, p.ID, &project.MemoryRequest{Title: "Note", Content: "remember this"})

	updated, err := s.Update(ctx, p.ID, &project.CreateRequest{Name: "Backend v2", Context: "ctx"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Backend v2" || updated.Context != "ctx" {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.Memories) != 1 {
		t.Errorf("memories = %d, want preserved", len(updated.Memories))
	}
}

func TestAddRemoveChatRoundTrip(t *testing.T) {
	s, st := newTestProjects()
	ctx := context.Background()

	p, _ := s.Create(ctx, &project.CreateRequest{Name: "Backend"})
	conv, _ := st.CreateConversation(ctx, &chat.Conversation{})

	if err := s.AddChat(ctx, p.ID, conv.ID); err != nil {
		t.Fatalf("AddChat: %v", err)
	}
	gotP, _ := s.Get(ctx, p.ID)
	gotC, _ := st.GetConversation(ctx, conv.ID)
	if !gotP.HasChat(conv.ID) || gotC.ProjectID != p.ID {
		t.Fatalf("attach: project=%v conv=%q", gotP.ChatIDs, gotC.ProjectID)
	}

	if err := s.RemoveChat(ctx, p.ID, conv.ID); err != nil {
		t.Fatalf("RemoveChat: %v", err)
	}
	gotP, _ = s.Get(ctx, p.ID)
	gotC, _ = st.GetConversation(ctx, conv.ID)
	if gotP.HasChat(conv.ID) || gotC.ProjectID != "" {
		t.Fatalf("detach: project=%v conv=%q", gotP.ChatIDs, gotC.ProjectID)
	}

	if err := s.RemoveChat(ctx, p.ID, conv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestMemoryLifecycle(t *testing.T) {
	s, _ := newTestProjects()
	ctx := context.Background()

	p, _ := s.Create(ctx, &project.CreateRequest{Name: "Backend"})

	m, err := s.AddMemory(ctx, p.ID, &project.MemoryRequest{Title: "Auth", Content: "JWT with 15m expiry"})
	if err != nil {
		t.Fatalf("AddMemory: %v", err)
	}
	if m.Source != project.SourceUser {
		t.Errorf("source = %q, want default user", m.Source)
	}

	if _, err := s.UpdateMemory(ctx, p.ID, m.ID, &project.MemoryRequest{Title: "Auth", Content: "JWT with 30m expiry"}); err != nil {
		t.Fatalf("UpdateMemory: %v", err)
	}
	got, _ := s.Get(ctx, p.ID)
	if got.Memories[0].Content != "JWT with 30m expiry" {
		t.Errorf("content = %q", got.Memories[0].Content)
	}

	if err := s.DeleteMemory(ctx, p.ID, m.ID); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	got, _ = s.Get(ctx, p.ID)
	if len(got.Memories) != 0 {
		t.Errorf("memories = %d after delete", len(got.Memories))
	}

	if err := s.DeleteMemory(ctx, p.ID, m.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryBlockFormat(t *testing.T) {
	p := &project.Project{
		Memories: []project.Memory{
			{Title: "API endpoint", Content: "Base URL is https://api.example.com"},
			{Title: "Auth", Content: "JWT tokens"},
		},
	}

	block := MemoryBlock(p)
	if !strings.Contains(block, "**API endpoint**\nBase URL is https://api.example.com") {
		t.Errorf("block = %q", block)
	}
	if !strings.Contains(block, "\n---\n") {
		t.Error("memories not joined by horizontal rule")
	}
	if !strings.Contains(block, "do not fabricate") {
		t.Error("missing fabrication guard")
	}

	if MemoryBlock(&project.Project{}) != "" {
		t.Error("empty project should produce no block")
	}
}

func TestConversationContextWithoutProject(t *testing.T) {
	s, _ := newTestProjects()
	block, pc := s.ConversationContext(context.Background(), "")
	if block != "" || pc != "" {
		t.Fatalf("block=%q pc=%q, want empty", block, pc)
	}
}
