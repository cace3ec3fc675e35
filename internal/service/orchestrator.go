package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/smartpotato/smartpotato/internal/adapter/otelx"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/domain"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/port/broadcast"
	"github.com/smartpotato/smartpotato/internal/port/llm"
	"github.com/smartpotato/smartpotato/internal/port/store"
)

// Summary injection literals. The placeholder is user-visible while the
// summary call is in flight; the banner prefixes the final system turn.
const (
	SummaryPlaceholder = "Generating summary…"
	SummaryBanner      = "📝 Conversation summary: "
)

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	UserMessage      *chat.Message `json:"user_message"`
	AssistantMessage *chat.Message `json:"assistant_message,omitempty"`
	Chips            []string      `json:"chips,omitempty"`
	Stale            bool          `json:"stale,omitempty"` // reply discarded; a newer send superseded this one
}

// Orchestrator drives the conversation flow: it decides scripted vs LLM
// turns, injects project context, guards against stale replies and schedules
// title jobs.
type Orchestrator struct {
	store       store.Store
	ai          llm.Service
	broadcaster broadcast.Broadcaster
	projects    *ProjectService
	metrics     *otelx.Metrics

	titleDebounce time.Duration
	titleGroup    singleflight.Group
	jobs          sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator. A nil broadcaster discards events.
func NewOrchestrator(st store.Store, ai llm.Service, b broadcast.Broadcaster, projects *ProjectService, titleDebounce time.Duration) *Orchestrator {
	if b == nil {
		b = broadcast.Nop{}
	}
	return &Orchestrator{
		store:         st,
		ai:            ai,
		broadcaster:   b,
		projects:      projects,
		titleDebounce: titleDebounce,
	}
}

// SetMetrics attaches metric instruments.
func (o *Orchestrator) SetMetrics(m *otelx.Metrics) {
	o.metrics = m
}

// Flush waits for all in-flight background jobs. Intended for shutdown and tests.
func (o *Orchestrator) Flush() {
	o.jobs.Wait()
}

// NewConversation creates a plain conversation with no onboarding flow.
func (o *Orchestrator) NewConversation(ctx context.Context) (*chat.Conversation, error) {
	return o.store.CreateConversation(ctx, &chat.Conversation{})
}

// SelectMode creates a conversation and runs the mode's opening action.
// The returned chips, if any, are the choices to offer for the next turn.
func (o *Orchestrator) SelectMode(ctx context.Context, mode chat.Mode) (*chat.Conversation, []string, error) {
	valid := false
	for _, m := range chat.ValidModes {
		if m == mode {
			valid = true
			break
		}
	}
	if !valid {
		return nil, nil, fmt.Errorf("%w: invalid mode %q", domain.ErrValidation, mode)
	}

	conv, err := o.store.CreateConversation(ctx, &chat.Conversation{})
	if err != nil {
		return nil, nil, err
	}

	action := chat.Enter(mode)
	var opening string
	switch action.Kind {
	case chat.ActionScripted:
		opening = action.Script
	case chat.ActionOnboard:
		opening = o.onboardCall(ctx, action.Mode, action.Step, "", false, nil).Answer
	}

	if opening != "" {
		if _, err := o.store.AppendMessage(ctx, conv.ID, chat.Message{
			Sender:  chat.SenderAssistant,
			Content: opening,
		}); err != nil {
			return nil, nil, err
		}
	}
	if err := o.store.SetOnboarding(ctx, conv.ID, action.Next); err != nil {
		return nil, nil, err
	}

	conv, err = o.store.GetConversation(ctx, conv.ID)
	if err != nil {
		return nil, nil, err
	}
	return conv, action.Chips, nil
}

// SendUserText appends the user turn, produces the matching assistant turn
// and advances the onboarding state.
func (o *Orchestrator) SendUserText(ctx context.Context, conversationID string, req chat.SendRequest) (*TurnResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", domain.ErrValidation)
	}
	return o.turn(ctx, conversationID, req.Content, chat.EventText, req.Reasoning)
}

// PickChoiceChip records the chip text as the user turn and dispatches
// through the chip branch of the onboarding machine.
func (o *Orchestrator) PickChoiceChip(ctx context.Context, conversationID, chip string) (*TurnResult, error) {
	if strings.TrimSpace(chip) == "" {
		return nil, fmt.Errorf("%w: chip must not be empty", domain.ErrValidation)
	}
	return o.turn(ctx, conversationID, chip, chat.EventChip, false)
}

// turn is the shared send path for text and chip events.
func (o *Orchestrator) turn(ctx context.Context, conversationID, content string, ev chat.Event, wantReasoning bool) (*TurnResult, error) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	firstUserTurn := conv.UserTurns() == 0

	userMsg, err := o.store.AppendMessage(ctx, conversationID, chat.Message{
		Sender:  chat.SenderUser,
		Content: content,
	})
	if err != nil {
		return nil, err
	}
	if o.metrics != nil {
		o.metrics.MessagesSent.Add(ctx, 1)
	}

	epoch, err := o.store.BumpEpoch(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	action := chat.Advance(conv.Onboarding, ev)
	memoryBlock, projectContext := o.projects.ConversationContext(ctx, conv.ProjectID)
	history := outgoingHistory(conv.Messages, memoryBlock)
	history = append(history, llm.Turn{Role: llm.RoleUser, Content: content})

	var reply llm.Reply
	switch action.Kind {
	case chat.ActionScripted:
		reply = llm.Reply{Answer: action.Script}
	case chat.ActionOnboard:
		reply = o.onboardCall(ctx, action.Mode, action.Step, content, wantReasoning, history)
	default:
		if wantReasoning {
			reply = o.ai.ChatWithReasoning(ctx, history, true, projectContext)
		} else {
			reply = llm.Reply{Answer: o.ai.Chat(ctx, history, projectContext)}
		}
	}

	assistantMsg, ok, err := o.store.AppendAssistantIfCurrent(ctx, conversationID, epoch, chat.Message{
		Sender:    chat.SenderAssistant,
		Content:   reply.Answer,
		Reasoning: reply.Reasoning,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Debug("stale assistant reply discarded", "conversation_id", conversationID, "epoch", epoch)
		return &TurnResult{UserMessage: userMsg, Stale: true}, nil
	}

	if action.Next != conv.Onboarding {
		if err := o.store.SetOnboarding(ctx, conversationID, action.Next); err != nil {
			return nil, err
		}
	}

	if firstUserTurn && conv.HasDefaultTitle() {
		o.scheduleTitleJob(conversationID)
	}

	return &TurnResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Chips:            action.Chips,
	}, nil
}

// onboardCall dispatches to the mode's onboarding entry point.
func (o *Orchestrator) onboardCall(ctx context.Context, mode chat.Mode, step int, answer string, wantReasoning bool, history []llm.Turn) llm.Reply {
	if wantReasoning {
		switch mode {
		case chat.ModeCreate:
			return o.ai.OnboardCreateWithReasoning(ctx, answer, step, history)
		case chat.ModeResearch:
			return o.ai.OnboardResearchWithReasoning(ctx, answer, step, history)
		default:
			return o.ai.OnboardBuildWithReasoning(ctx, answer, step, history)
		}
	}
	switch mode {
	case chat.ModeCreate:
		return llm.Reply{Answer: o.ai.OnboardCreate(ctx, answer, step, history)}
	case chat.ModeResearch:
		return llm.Reply{Answer: o.ai.OnboardResearch(ctx, answer, step, history)}
	default:
		return llm.Reply{Answer: o.ai.OnboardBuild(ctx, answer, step, history)}
	}
}

// RegenerateTitle forces a title call over current history and renames.
func (o *Orchestrator) RegenerateTitle(ctx context.Context, conversationID string) (string, error) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return "", err
	}

	title := o.ai.TitleFor(ctx, outgoingHistory(conv.Messages, ""))
	if title == "" || title == conv.Title {
		return conv.Title, nil
	}
	if err := o.store.RenameConversation(ctx, conversationID, title); err != nil {
		return "", err
	}
	if o.metrics != nil {
		o.metrics.TitlesGenerated.Add(ctx, 1)
	}

	o.broadcaster.BroadcastEvent(ctx, ws.EventTitleUpdated, ws.TitleUpdatedEvent{
		ConversationID: conversationID,
		Title:          title,
	})
	return title, nil
}

// InjectSummary appends a placeholder turn, generates a summary of the
// conversation and appends it as a system-tagged assistant turn. Returns the
// cleaned summary text.
func (o *Orchestrator) InjectSummary(ctx context.Context, conversationID string) (string, error) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		return "", err
	}

	if _, err := o.store.AppendMessage(ctx, conversationID, chat.Message{
		Sender:  chat.SenderUser,
		Content: SummaryPlaceholder,
		System:  true,
	}); err != nil {
		return "", err
	}

	_, projectContext := o.projects.ConversationContext(ctx, conv.ProjectID)
	summary := o.ai.Summarize(ctx, outgoingHistory(conv.Messages, ""), projectContext)

	if _, err := o.store.AppendMessage(ctx, conversationID, chat.Message{
		Sender:  chat.SenderAssistant,
		Content: SummaryBanner + summary,
		System:  true,
	}); err != nil {
		return "", err
	}
	return summary, nil
}

// scheduleTitleJob runs the auto-title job after the debounce. Jobs are
// deduplicated per conversation; a job whose conversation vanished is dropped.
func (o *Orchestrator) scheduleTitleJob(conversationID string) {
	o.jobs.Add(1)
	go func() {
		defer o.jobs.Done()
		time.Sleep(o.titleDebounce)
		_, _, _ = o.titleGroup.Do(conversationID, func() (any, error) {
			o.runTitleJob(context.Background(), conversationID)
			return nil, nil
		})
	}()
}

func (o *Orchestrator) runTitleJob(ctx context.Context, conversationID string) {
	conv, err := o.store.GetConversation(ctx, conversationID)
	if err != nil {
		slog.Debug("title job dropped", "conversation_id", conversationID, "error", err)
		return
	}
	// A manual rename in the meantime wins.
	if !conv.HasDefaultTitle() {
		return
	}

	title := o.ai.TitleFor(ctx, outgoingHistory(conv.Messages, ""))
	if title == "" || title == conv.Title {
		return
	}
	if err := o.store.RenameConversation(ctx, conversationID, title); err != nil {
		slog.Debug("title job rename dropped", "conversation_id", conversationID, "error", err)
		return
	}
	if o.metrics != nil {
		o.metrics.TitlesGenerated.Add(ctx, 1)
	}

	o.broadcaster.BroadcastEvent(ctx, ws.EventTitleUpdated, ws.TitleUpdatedEvent{
		ConversationID: conversationID,
		Title:          title,
	})
}

// outgoingHistory maps stored messages to LLM turns. System-tagged turns
// (placeholders, summary banners) stay out of outgoing history; a non-empty
// memoryBlock is prepended as a system turn.
func outgoingHistory(messages []chat.Message, memoryBlock string) []llm.Turn {
	history := make([]llm.Turn, 0, len(messages)+1)
	if memoryBlock != "" {
		history = append(history, llm.Turn{Role: llm.RoleSystem, Content: memoryBlock})
	}
	for i := range messages {
		if messages[i].System {
			continue
		}
		role := llm.RoleUser
		if messages[i].Sender == chat.SenderAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Turn{Role: role, Content: messages[i].Content})
	}
	return history
}
