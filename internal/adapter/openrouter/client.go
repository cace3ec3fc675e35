// Package openrouter provides the completion client behind the llm.Service
// port. It owns prompt shaping, the sampling contract and reply cleanup; a
// deterministic Mock in the same package covers keyless operation.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/smartpotato/smartpotato/internal/adapter/otelx"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/port/llm"
	"github.com/smartpotato/smartpotato/internal/resilience"
)

// Sentinels returned to the user instead of transport errors.
const (
	ChatErrorSentinel = "Sorry, there was an error connecting to the AI service. Please try again."
	SummarySentinel   = "Summary could not be generated."
)

// X-Title header values identifying the call purpose to OpenRouter.
const (
	appTitle      = "Smart Potato AI Assistant"
	thinkingTitle = appTitle + " - Thinking"
	summaryTitle  = appTitle + " - Summary"
)

// Sampling contract per call shape.
const (
	chatTemperature = 0.1
	chatTopP        = 0.7
	chatMaxTokens   = 800
	summaryMax      = 200
	titleMax        = 20
	tidyMax         = 400
)

var (
	_ llm.Service = (*Client)(nil)
	_ llm.Service = (*Mock)(nil)
)

// Client talks to an OpenRouter-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	referer    string
	model      string
	httpClient *http.Client
	breaker    *resilience.Breaker
	metrics    *otelx.Metrics
}

// NewClient creates an OpenRouter client for the given endpoint and model.
func NewClient(baseURL, apiKey, referer, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		referer: referer,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing completion calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetMetrics attaches metric instruments to completion calls.
func (c *Client) SetMetrics(m *otelx.Metrics) {
	c.metrics = m
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat answers the history with the persona preamble.
func (c *Client) Chat(ctx context.Context, history []llm.Turn, projectContext string) string {
	reply, err := c.complete(ctx, appTitle, c.outgoing(chatSystem(projectContext), history), chatMaxTokens)
	if err != nil {
		slog.Error("openrouter chat failed", "error", err)
		return ChatErrorSentinel
	}
	return reply
}

// ChatWithReasoning captures a structured rationale with a separate call
// before producing the answer. The reasoning call failing only drops the
// trace; the answer call always runs.
func (c *Client) ChatWithReasoning(ctx context.Context, history []llm.Turn, capture bool, projectContext string) llm.Reply {
	var reasoning string
	if capture {
		r, err := c.complete(ctx, thinkingTitle, c.outgoing(reasoningPreamble, history), chatMaxTokens)
		if err != nil {
			slog.Warn("openrouter reasoning call failed", "error", err)
		} else {
			reasoning = strings.TrimSpace(r)
		}
	}
	return llm.Reply{
		Answer:    c.Chat(ctx, history, projectContext),
		Reasoning: reasoning,
	}
}

// Summarize produces a cleaned 2-3 sentence summary of the history.
func (c *Client) Summarize(ctx context.Context, history []llm.Turn, projectContext string) string {
	system := summaryPreamble
	if projectContext != "" {
		system += "\n\n" + projectContextHeader + "\n" + projectContext
	}
	raw, err := c.complete(ctx, summaryTitle, c.outgoing(system, history), summaryMax)
	if err != nil {
		slog.Error("openrouter summarize failed", "error", err)
		return SummarySentinel
	}
	if cleaned := cleanSummary(raw); cleaned != "" {
		return cleaned
	}
	return SummarySentinel
}

// TitleFor derives a short topic title from the first user turns.
func (c *Client) TitleFor(ctx context.Context, history []llm.Turn) string {
	userTurns := firstUserTurns(history, 3)
	if len(userTurns) == 0 {
		return chat.DefaultTitle
	}

	msgs := []wireMessage{
		{Role: string(llm.RoleSystem), Content: titlePreamble},
		{Role: string(llm.RoleUser), Content: strings.Join(userTurns, "\n")},
	}
	raw, err := c.complete(ctx, appTitle, msgs, titleMax)
	if err != nil {
		slog.Warn("openrouter title call failed", "error", err)
		return fallbackTitle(userTurns[0])
	}
	if title := cleanTitle(raw); title != "" {
		return title
	}
	return fallbackTitle(userTurns[0])
}

// OnboardCreate runs a create-tutorial turn.
func (c *Client) OnboardCreate(ctx context.Context, answer string, step int, history []llm.Turn) string {
	return c.onboard(ctx, chat.ModeCreate, answer, step, history)
}

// OnboardResearch runs a research-tutorial turn.
func (c *Client) OnboardResearch(ctx context.Context, answer string, step int, history []llm.Turn) string {
	return c.onboard(ctx, chat.ModeResearch, answer, step, history)
}

// OnboardBuild runs a build-tutorial turn.
func (c *Client) OnboardBuild(ctx context.Context, answer string, step int, history []llm.Turn) string {
	return c.onboard(ctx, chat.ModeBuild, answer, step, history)
}

// OnboardCreateWithReasoning is OnboardCreate with a reasoning trace.
func (c *Client) OnboardCreateWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return c.onboardWithReasoning(ctx, chat.ModeCreate, answer, step, history)
}

// OnboardResearchWithReasoning is OnboardResearch with a reasoning trace.
func (c *Client) OnboardResearchWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return c.onboardWithReasoning(ctx, chat.ModeResearch, answer, step, history)
}

// OnboardBuildWithReasoning is OnboardBuild with a reasoning trace.
func (c *Client) OnboardBuildWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return c.onboardWithReasoning(ctx, chat.ModeBuild, answer, step, history)
}

func (c *Client) onboard(ctx context.Context, mode chat.Mode, answer string, step int, history []llm.Turn) string {
	script, ok := onboardScript(mode, step, answer)
	if !ok {
		return onboardingCompleteText
	}
	reply, err := c.complete(ctx, appTitle, c.outgoing(script, history), chatMaxTokens)
	if err != nil {
		slog.Error("openrouter onboarding call failed", "mode", mode, "step", step, "error", err)
		return ChatErrorSentinel
	}
	return reply
}

func (c *Client) onboardWithReasoning(ctx context.Context, mode chat.Mode, answer string, step int, history []llm.Turn) llm.Reply {
	var reasoning string
	if _, ok := onboardScript(mode, step, answer); ok {
		r, err := c.complete(ctx, thinkingTitle, c.outgoing(onboardingReasoningPreamble, history), chatMaxTokens)
		if err != nil {
			slog.Warn("openrouter onboarding reasoning call failed", "mode", mode, "step", step, "error", err)
		} else {
			reasoning = strings.TrimSpace(r)
		}
	}
	return llm.Reply{
		Answer:    c.onboard(ctx, mode, answer, step, history),
		Reasoning: reasoning,
	}
}

// GroupTitles asks the model to cluster the titles, returning the raw reply.
func (c *Client) GroupTitles(ctx context.Context, titles []string) (string, error) {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}
	msgs := []wireMessage{
		{Role: string(llm.RoleSystem), Content: tidyPreamble},
		{Role: string(llm.RoleUser), Content: list.String()},
	}
	raw, err := c.complete(ctx, appTitle, msgs, tidyMax)
	if err != nil {
		return "", fmt.Errorf("group titles: %w", err)
	}
	return raw, nil
}

// chatSystem builds the persona preamble, appending project context when present.
func chatSystem(projectContext string) string {
	if projectContext == "" {
		return personaPreamble
	}
	return personaPreamble + "\n\n" + projectContextHeader + "\n" + projectContext
}

// outgoing builds the wire message list: system preamble first, then the
// history with any turn carrying one of our own preamble markers dropped.
func (c *Client) outgoing(system string, history []llm.Turn) []wireMessage {
	msgs := make([]wireMessage, 0, len(history)+1)
	if system != "" {
		msgs = append(msgs, wireMessage{Role: string(llm.RoleSystem), Content: system})
	}
	for _, t := range history {
		if containsPreamble(t.Content) {
			continue
		}
		msgs = append(msgs, wireMessage{Role: string(t.Role), Content: t.Content})
	}
	return msgs
}

// firstUserTurns returns up to n user turn contents, skipping preamble leaks.
func firstUserTurns(history []llm.Turn, n int) []string {
	var turns []string
	for _, t := range history {
		if t.Role != llm.RoleUser || containsPreamble(t.Content) {
			continue
		}
		turns = append(turns, t.Content)
		if len(turns) == n {
			break
		}
	}
	return turns
}

// complete performs one chat-completions call and returns the first choice.
func (c *Client) complete(ctx context.Context, purpose string, msgs []wireMessage, maxTokens int) (string, error) {
	ctx, span := otelx.StartCompletionSpan(ctx, purpose, c.model)
	defer span.End()

	start := time.Now()
	if c.metrics != nil {
		c.metrics.CompletionCalls.Add(ctx, 1)
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: chatTemperature,
		MaxTokens:   maxTokens,
		TopP:        chatTopP,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion: %w", err)
	}

	var content string
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("HTTP-Referer", c.referer)
		req.Header.Set("X-Title", purpose)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("openrouter API error %d: %s", resp.StatusCode, string(data))
		}

		var parsed completionResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("unmarshal completion: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("completion returned no choices")
		}

		content = parsed.Choices[0].Message.Content
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}

	if c.metrics != nil {
		c.metrics.CompletionTime.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			c.metrics.CompletionErrors.Add(ctx, 1)
		}
	}
	if err != nil {
		return "", err
	}
	return content, nil
}
