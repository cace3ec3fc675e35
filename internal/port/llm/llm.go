// Package llm defines the port for the language-model service the
// orchestrator talks to. Two adapters satisfy it: the OpenRouter client and a
// deterministic mock used when no API key is configured.
package llm

import "context"

// Role of a turn in outgoing history, in OpenAI chat-completions terms.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the ordered history handed to the service.
type Turn struct {
	Role    Role
	Content string
}

// Reply is an assistant answer with an optional reasoning trace. Reasoning is
// only ever present alongside a non-empty answer.
type Reply struct {
	Answer    string
	Reasoning string
}

// Service shapes prompts, calls the completion backend and post-processes
// replies. Chat-shaped operations never return an error: transport failures
// surface as a stable user-visible sentinel string and are logged.
type Service interface {
	// Chat answers the history with the Smart Potato persona preamble.
	// projectContext, when non-empty, is appended under a PROJECT CONTEXT
	// header.
	Chat(ctx context.Context, history []Turn, projectContext string) string

	// ChatWithReasoning optionally captures a structured rationale with a
	// separate wire call before producing the answer. Reasoning failures are
	// swallowed; the answer call always runs.
	ChatWithReasoning(ctx context.Context, history []Turn, capture bool, projectContext string) Reply

	// Summarize produces a cleaned 2-3 sentence third-person summary, or the
	// fixed sentinel when nothing usable comes back.
	Summarize(ctx context.Context, history []Turn, projectContext string) string

	// TitleFor derives a short (2-4 word, <=50 char) topic title from the
	// first user turns, falling back to deterministic keyword heuristics.
	TitleFor(ctx context.Context, history []Turn) string

	// Onboarding entry points, one per tutorial mode. step selects the
	// scripted preamble; answer is the user's latest input for steps that
	// take one.
	OnboardCreate(ctx context.Context, answer string, step int, history []Turn) string
	OnboardResearch(ctx context.Context, answer string, step int, history []Turn) string
	OnboardBuild(ctx context.Context, answer string, step int, history []Turn) string

	// Reasoning-capturing siblings of the onboarding entry points.
	OnboardCreateWithReasoning(ctx context.Context, answer string, step int, history []Turn) Reply
	OnboardResearchWithReasoning(ctx context.Context, answer string, step int, history []Turn) Reply
	OnboardBuildWithReasoning(ctx context.Context, answer string, step int, history []Turn) Reply

	// GroupTitles asks the model to cluster the index-annotated titles into
	// 3-8 named groups plus Others, returning the raw reply for the caller
	// to parse. This is the only operation that surfaces transport errors.
	GroupTitles(ctx context.Context, titles []string) (string, error)
}
