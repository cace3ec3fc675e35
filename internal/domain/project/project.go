// Package project provides the domain model for projects and their memories.
package project

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smartpotato/smartpotato/internal/domain"
)

// MemorySource says who authored a project memory.
type MemorySource string

const (
	SourceUser        MemorySource = "user"
	SourceAutoSummary MemorySource = "autoSummary"
)

// ContextKind categorizes the free-form project context block.
type ContextKind string

const (
	KindDevelopment ContextKind = "development"
	KindBusiness    ContextKind = "business"
	KindResearch    ContextKind = "research"
	KindCreative    ContextKind = "creative"
	KindPersonal    ContextKind = "personal"
	KindCustom      ContextKind = "custom"
)

// ValidContextKinds lists all accepted context kinds.
var ValidContextKinds = []ContextKind{
	KindDevelopment, KindBusiness, KindResearch, KindCreative, KindPersonal, KindCustom,
}

// Memory is a note attached to a project. Users may edit or delete memories;
// the orchestrator injects them into outgoing history as a single system turn.
type Memory struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Source    MemorySource `json:"source"`
	ChatID    string       `json:"chat_id,omitempty"` // set when derived from a specific chat
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Project groups conversations and carries persistent notes.
// ChatIDs is most-recent first and is bidirectional with
// Conversation.ProjectID.
type Project struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	ChatIDs           []string    `json:"chat_ids"`
	Memories          []Memory    `json:"memories"`
	Context           string      `json:"context,omitempty"`
	ContextKind       ContextKind `json:"context_kind,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	LastInteractionAt time.Time   `json:"last_interaction_at"`
}

// HasChat reports whether the conversation id is a member of this project.
func (p *Project) HasChat(chatID string) bool {
	return slices.Contains(p.ChatIDs, chatID)
}

// CreateRequest is the request body for creating a project.
type CreateRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Context     string      `json:"context,omitempty"`
	ContextKind ContextKind `json:"context_kind,omitempty"`
}

// Validate checks the create request fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if r.ContextKind != "" && !slices.Contains(ValidContextKinds, r.ContextKind) {
		return fmt.Errorf("%w: invalid context_kind %q", domain.ErrValidation, r.ContextKind)
	}
	return nil
}

// MemoryRequest is the request body for creating or updating a memory.
type MemoryRequest struct {
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Source  MemorySource `json:"source,omitempty"`
	ChatID  string       `json:"chat_id,omitempty"`
}

// Validate checks the memory request fields.
func (r *MemoryRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if r.Source != "" && r.Source != SourceUser && r.Source != SourceAutoSummary {
		return fmt.Errorf("%w: invalid source %q", domain.ErrValidation, r.Source)
	}
	return nil
}
