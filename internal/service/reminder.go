package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/smartpotato/smartpotato/internal/adapter/otelx"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/domain/reminder"
	"github.com/smartpotato/smartpotato/internal/port/broadcast"
	"github.com/smartpotato/smartpotato/internal/port/store"
)

// ReminderService handles reminder scheduling. Reminders never fire
// side-effects on their own; FireDue is called by the view layer.
type ReminderService struct {
	store       store.Store
	orch        *Orchestrator
	broadcaster broadcast.Broadcaster
	metrics     *otelx.Metrics
	now         func() time.Time
}

// NewReminderService creates a ReminderService. A nil broadcaster discards events.
func NewReminderService(st store.Store, orch *Orchestrator, b broadcast.Broadcaster) *ReminderService {
	if b == nil {
		b = broadcast.Nop{}
	}
	return &ReminderService{
		store:       st,
		orch:        orch,
		broadcaster: b,
		now:         time.Now,
	}
}

// SetMetrics attaches metric instruments.
func (s *ReminderService) SetMetrics(m *otelx.Metrics) {
	s.metrics = m
}

// Create schedules a reminder. With WantSummary set, a conversation summary
// is generated and injected into the chat before the reminder is stored with it.
func (s *ReminderService) Create(ctx context.Context, req *reminder.CreateRequest) (*reminder.Reminder, error) {
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	conv, err := s.store.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	projectID := req.ProjectID
	if projectID == "" {
		projectID = conv.ProjectID
	}

	r := &reminder.Reminder{
		ConversationID: req.ConversationID,
		ProjectID:      projectID,
		DueAt:          req.DueAt,
		Note:           req.Note,
		Status:         reminder.StatusPending,
	}

	if req.WantSummary {
		summary, err := s.orch.InjectSummary(ctx, req.ConversationID)
		if err != nil {
			slog.Warn("reminder summary injection failed", "conversation_id", req.ConversationID, "error", err)
		} else {
			r.Summary = summary
		}
	}

	return s.store.CreateReminder(ctx, r)
}

// List returns all reminders ordered by due time.
func (s *ReminderService) List(ctx context.Context) ([]reminder.Reminder, error) {
	return s.store.ListReminders(ctx)
}

// Get returns a reminder by ID.
func (s *ReminderService) Get(ctx context.Context, id string) (*reminder.Reminder, error) {
	return s.store.GetReminder(ctx, id)
}

// Update applies partial updates to a reminder.
func (s *ReminderService) Update(ctx context.Context, id string, req *reminder.UpdateRequest) (*reminder.Reminder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.DueAt.IsZero() {
		r.DueAt = req.DueAt
	}
	if req.Note != "" {
		r.Note = req.Note
	}
	if req.Status != "" {
		r.Status = req.Status
	}
	if err := s.store.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return s.store.GetReminder(ctx, id)
}

// Delete removes a reminder.
func (s *ReminderService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteReminder(ctx, id)
}

// Due returns pending reminders whose due time has passed.
func (s *ReminderService) Due(ctx context.Context) ([]reminder.Reminder, error) {
	all, err := s.store.ListReminders(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var due []reminder.Reminder
	for _, r := range all {
		if r.Status == reminder.StatusPending && !r.DueAt.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

// FireDue completes all due pending reminders and broadcasts a fired event
// for each. Returns the reminders that fired.
func (s *ReminderService) FireDue(ctx context.Context) ([]reminder.Reminder, error) {
	due, err := s.Due(ctx)
	if err != nil {
		return nil, err
	}

	fired := make([]reminder.Reminder, 0, len(due))
	for _, r := range due {
		fireCtx, span := otelx.StartReminderSpan(ctx, r.ID, r.ConversationID)
		r.Status = reminder.StatusCompleted
		if err := s.store.UpdateReminder(fireCtx, &r); err != nil {
			slog.Warn("reminder completion failed", "reminder_id", r.ID, "error", err)
			span.End()
			continue
		}
		s.broadcaster.BroadcastEvent(fireCtx, ws.EventReminderFired, ws.ReminderFiredEvent{
			ReminderID:     r.ID,
			ConversationID: r.ConversationID,
			Note:           r.Note,
		})
		if s.metrics != nil {
			s.metrics.RemindersFired.Add(fireCtx, 1)
		}
		fired = append(fired, r)
		span.End()
	}
	return fired, nil
}
