package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/port/llm"
)

// Mock is a deterministic llm.Service used when no API key is configured.
// It sleeps briefly to simulate latency and returns pattern-matched canned
// strings so orchestrator behavior can be exercised without the network.
type Mock struct {
	latency time.Duration
}

// NewMock creates a mock service with the given simulated latency.
func NewMock(latency time.Duration) *Mock {
	return &Mock{latency: latency}
}

const mockGreeting = "Hello! I'm Smart Potato, your AI assistant."

const mockReasoning = `1. The user is asking a direct question that needs a focused, practical answer.
2. The key facts are already present in the conversation history.
3. Possible approaches: answer directly, or ask a clarifying question first.
4. A direct answer costs little and a follow-up question can refine it afterwards.
5. Plan: answer in two short paragraphs and end with a next-step question.`

var mockBuildResponses = map[int]string{
	0: "Great! Before we start, do you want to learn how to write good prompts to build projects? Learning the ways of prompting is not only about specificity but also being organised.\n\nYou can choose to go through a tutorial with me or ignore this message and type in anything to continue.",
	1: "Nice! So what kind of project are you trying to build?",
	2: "Perfect! Based on your answer, here are some tips for effective prompting when building %s projects:\n\n1. **Be specific about requirements** - Instead of \"build an app\", say \"build a React app with user authentication and a dashboard\"\n\n2. **Define the tech stack** - Specify which technologies, frameworks, and libraries you want to use\n\n3. **Break down the features** - List the specific features and functionality you need\n\n4. **Provide context** - Explain who will use it and what problem it solves\n\nWould you like to see an example of a well-structured prompt for your project type?",
}

// pause simulates upstream latency without ignoring cancellation.
func (m *Mock) pause(ctx context.Context) {
	if m.latency <= 0 {
		return
	}
	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
	}
}

// Chat returns a canned acknowledgement of the last user turn.
func (m *Mock) Chat(ctx context.Context, history []llm.Turn, _ string) string {
	m.pause(ctx)
	if len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == llm.RoleUser {
			return fmt.Sprintf("Thanks for your message: %q. This is a mock response from Smart Potato AI assistant powered by DeepSeek R1. In the full version, this would connect to the actual AI model!", last.Content)
		}
	}
	return mockGreeting
}

// ChatWithReasoning returns the canned answer with a fixed 5-point rationale.
func (m *Mock) ChatWithReasoning(ctx context.Context, history []llm.Turn, capture bool, projectContext string) llm.Reply {
	reply := llm.Reply{Answer: m.Chat(ctx, history, projectContext)}
	if capture {
		reply.Reasoning = mockReasoning
	}
	return reply
}

// Summarize returns a fixed summary shaped like the real post-processed output.
func (m *Mock) Summarize(ctx context.Context, history []llm.Turn, _ string) string {
	m.pause(ctx)
	turns := 0
	for _, t := range history {
		if t.Role == llm.RoleUser {
			turns++
		}
	}
	if turns == 0 {
		return SummarySentinel
	}
	return fmt.Sprintf("The user and the assistant exchanged %d turns about the topic at hand. They worked toward a concrete next step and left one question open.", turns)
}

// TitleFor runs the deterministic keyword heuristics over the first user turn.
func (m *Mock) TitleFor(ctx context.Context, history []llm.Turn) string {
	m.pause(ctx)
	turns := firstUserTurns(history, 1)
	if len(turns) == 0 {
		return chat.DefaultTitle
	}
	return fallbackTitle(turns[0])
}

// OnboardCreate returns a canned create-tutorial turn.
func (m *Mock) OnboardCreate(ctx context.Context, answer string, step int, _ []llm.Turn) string {
	m.pause(ctx)
	if step != 1 {
		return onboardingCompleteText
	}
	if strings.Contains(strings.ToLower(answer), "teach") {
		return "Wonderful! Here are three starter tips:\n1. Name the outcome you want, not the tool.\n2. Give one concrete example of the style you like.\n3. Say what to leave out.\n\nWhat would you like to create first?"
	}
	return "No problem, let's dive right in. What would you like to create first?"
}

// OnboardResearch returns a canned research-tutorial turn.
func (m *Mock) OnboardResearch(ctx context.Context, answer string, step int, _ []llm.Turn) string {
	m.pause(ctx)
	if step != 1 {
		return onboardingCompleteText
	}
	return fmt.Sprintf("Good choice: %s. Frame your questions around one claim at a time, name your sources, and state what would change your mind.\n\nWhat topic do you want to start with?", answer)
}

// OnboardBuild returns the canned build-tutorial turn for the step.
func (m *Mock) OnboardBuild(ctx context.Context, answer string, step int, _ []llm.Turn) string {
	m.pause(ctx)
	tmpl, ok := mockBuildResponses[step]
	if !ok {
		return "Thank you for your interest!"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, strings.ToLower(answer))
	}
	return tmpl
}

// OnboardCreateWithReasoning is OnboardCreate with the fixed rationale attached.
func (m *Mock) OnboardCreateWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return llm.Reply{Answer: m.OnboardCreate(ctx, answer, step, history), Reasoning: mockReasoning}
}

// OnboardResearchWithReasoning is OnboardResearch with the fixed rationale attached.
func (m *Mock) OnboardResearchWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return llm.Reply{Answer: m.OnboardResearch(ctx, answer, step, history), Reasoning: mockReasoning}
}

// OnboardBuildWithReasoning is OnboardBuild with the fixed rationale attached.
func (m *Mock) OnboardBuildWithReasoning(ctx context.Context, answer string, step int, history []llm.Turn) llm.Reply {
	return llm.Reply{Answer: m.OnboardBuild(ctx, answer, step, history), Reasoning: mockReasoning}
}

// GroupTitles returns a valid single-group JSON mapping over all indices.
func (m *Mock) GroupTitles(ctx context.Context, titles []string) (string, error) {
	m.pause(ctx)
	indices := make([]int, len(titles))
	for i := range titles {
		indices[i] = i
	}
	raw, err := json.Marshal(map[string][]int{"Others": indices})
	if err != nil {
		return "", fmt.Errorf("marshal mock grouping: %w", err)
	}
	return string(raw), nil
}
