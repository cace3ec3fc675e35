package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/smartpotato/smartpotato/internal/adapter/otelx"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/domain/grouping"
	"github.com/smartpotato/smartpotato/internal/port/broadcast"
	"github.com/smartpotato/smartpotato/internal/port/cache"
	"github.com/smartpotato/smartpotato/internal/port/llm"
	"github.com/smartpotato/smartpotato/internal/port/store"
)

// freshWindow excludes conversations the user is probably still naming.
const freshWindow = 5 * time.Minute

// GroupResult is a grouped conversation view plus how it was produced.
type GroupResult struct {
	Groups   grouping.View `json:"groups"`
	Fallback bool          `json:"fallback"` // keyword grouper used instead of the model
}

// TidyService produces the grouped conversation view.
type TidyService struct {
	store       store.Store
	ai          llm.Service
	cache       cache.Cache
	broadcaster broadcast.Broadcaster
	metrics     *otelx.Metrics
	ttl         time.Duration
	now         func() time.Time

	mu     sync.Mutex
	active bool
	jobs   sync.WaitGroup
}

// NewTidyService creates a TidyService and subscribes to conversation-set
// changes so an active grouped view stays fresh.
func NewTidyService(st store.Store, ai llm.Service, c cache.Cache, b broadcast.Broadcaster, ttl time.Duration) *TidyService {
	if b == nil {
		b = broadcast.Nop{}
	}
	s := &TidyService{
		store:       st,
		ai:          ai,
		cache:       c,
		broadcaster: b,
		ttl:         ttl,
		now:         time.Now,
	}
	st.Subscribe(s.onConversationsChanged)
	return s
}

// SetMetrics attaches metric instruments.
func (s *TidyService) SetMetrics(m *otelx.Metrics) {
	s.metrics = m
}

// SetActive marks whether the grouped view is currently displayed.
func (s *TidyService) SetActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

// Flush waits for in-flight recompute jobs. Intended for shutdown and tests.
func (s *TidyService) Flush() {
	s.jobs.Wait()
}

// Group produces the grouped view. When includeAll is false, conversations
// younger than five minutes or still carrying a default title are excluded so
// the grouping stays stable while the user types a first message.
func (s *TidyService) Group(ctx context.Context, includeAll bool) (*GroupResult, error) {
	conversations, err := s.store.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	candidates := s.candidates(conversations, includeAll)
	if len(candidates) <= 1 {
		return &GroupResult{Groups: grouping.View{}}, nil
	}

	ctx, span := otelx.StartTidySpan(ctx, len(candidates))
	defer span.End()

	ids := make([]string, len(candidates))
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
		titles[i] = c.Title
	}

	key := groupCacheKey(ids, titles, includeAll)
	if s.cache != nil {
		if data, ok, _ := s.cache.Get(ctx, key); ok {
			var cached GroupResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	result := s.classify(ctx, titles, ids)

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, data, s.ttl)
		}
	}
	return result, nil
}

// classify runs the model grouping and falls back to the keyword grouper on
// any transport, parse or validation failure.
func (s *TidyService) classify(ctx context.Context, titles, ids []string) *GroupResult {
	if s.metrics != nil {
		s.metrics.TidyRuns.Add(ctx, 1)
	}

	raw, err := s.ai.GroupTitles(ctx, titles)
	if err != nil {
		slog.Warn("tidy model call failed, using keyword fallback", "error", err)
		return s.fallback(ctx, titles, ids)
	}

	groups, err := grouping.Parse(raw, len(titles))
	if err != nil {
		slog.Warn("tidy reply unusable, using keyword fallback", "error", err)
		return s.fallback(ctx, titles, ids)
	}
	return &GroupResult{Groups: grouping.Resolve(groups, ids)}
}

func (s *TidyService) fallback(ctx context.Context, titles, ids []string) *GroupResult {
	if s.metrics != nil {
		s.metrics.TidyFallbacks.Add(ctx, 1)
	}
	return &GroupResult{Groups: grouping.Resolve(grouping.Fallback(titles), ids), Fallback: true}
}

// candidates filters the conversation list for grouping.
func (s *TidyService) candidates(conversations []chat.Conversation, includeAll bool) []chat.Conversation {
	if includeAll {
		return conversations
	}
	cutoff := s.now().Add(-freshWindow)
	var out []chat.Conversation
	for _, c := range conversations {
		if c.CreatedAt.After(cutoff) || c.HasDefaultTitle() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// onConversationsChanged recomputes an active grouped view with the full
// conversation set so newly finished chats join their group.
func (s *TidyService) onConversationsChanged() {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if !active {
		return
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		ctx := context.Background()
		result, err := s.Group(ctx, true)
		if err != nil {
			slog.Warn("tidy recompute failed", "error", err)
			return
		}
		s.broadcaster.BroadcastEvent(ctx, ws.EventGroupingUpdated, ws.GroupingUpdatedEvent{
			Groups: result.Groups,
		})
	}()
}

// groupCacheKey fingerprints the candidate set so renames and membership
// changes miss the cache.
func groupCacheKey(ids, titles []string, includeAll bool) string {
	h := fnv.New64a()
	for i := range ids {
		h.Write([]byte(ids[i]))
		h.Write([]byte{0})
		h.Write([]byte(titles[i]))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("tidy:%v:%x", includeAll, h.Sum64())
}
