// Package reminder provides the domain model for conversation reminders.
// Reminders never fire side-effects in-process; surfacing due reminders is the
// caller's job.
package reminder

import (
	"fmt"
	"time"

	"github.com/smartpotato/smartpotato/internal/domain"
)

// Status is the lifecycle state of a reminder.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Reminder is scheduled against a conversation, optionally carrying a
// generated summary of the conversation at creation time.
type Reminder struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	DueAt          time.Time `json:"due_at"`
	Note           string    `json:"note,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateRequest is the request body for scheduling a reminder.
type CreateRequest struct {
	ConversationID string    `json:"conversation_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	DueAt          time.Time `json:"due_at"`
	Note           string    `json:"note,omitempty"`
	WantSummary    bool      `json:"want_summary,omitempty"`
}

// Validate checks the request against the given wall-clock instant.
// DueAt must be strictly in the future.
func (r *CreateRequest) Validate(now time.Time) error {
	if r.ConversationID == "" {
		return fmt.Errorf("%w: conversation_id is required", domain.ErrValidation)
	}
	if !r.DueAt.After(now) {
		return fmt.Errorf("%w: due_at must be in the future", domain.ErrValidation)
	}
	return nil
}

// UpdateRequest is the request body for mutating an existing reminder.
// Zero-valued fields are left unchanged.
type UpdateRequest struct {
	DueAt  time.Time `json:"due_at,omitzero"`
	Note   string    `json:"note,omitempty"`
	Status Status    `json:"status,omitempty"`
}

// Validate checks the update request fields.
func (r *UpdateRequest) Validate() error {
	switch r.Status {
	case "", StatusPending, StatusCompleted, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: invalid status %q", domain.ErrValidation, r.Status)
	}
}
