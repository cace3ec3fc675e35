package openrouter

import (
	"regexp"
	"strings"
)

// maxTitleLen is the longest title accepted from the model before the
// deterministic fallback takes over.
const maxTitleLen = 50

var (
	titleNumbering = regexp.MustCompile(`^\d+[.)]\s*`)
	titlePrefix    = regexp.MustCompile(`(?i)^title:\s*`)
	boldHeader     = regexp.MustCompile(`\*\*[^*]*\*\*:?\s*`)
	runsOfSpace    = regexp.MustCompile(`\s+`)
	sentenceChunks = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// metaOpeners start sentences the summary preamble forbids; the model
// produces them anyway often enough to scrub here.
var metaOpeners = []string{"looking at", "based on", "analyzing"}

// cleanTitle normalizes a model-produced title. Returns "" when nothing
// usable remains, which signals the caller to fall back.
func cleanTitle(raw string) string {
	title, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	title = strings.Trim(title, `"'`)
	title = titleNumbering.ReplaceAllString(title, "")
	title = titlePrefix.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if len(title) > maxTitleLen {
		return ""
	}
	return title
}

// fallbackTitle derives a deterministic title from the first user turn.
func fallbackTitle(firstUserTurn string) string {
	content := strings.ToLower(firstUserTurn)

	switch {
	case containsAny(content, "build", "create", "make"):
		switch {
		case containsAny(content, "app", "application"):
			return "Build App Project"
		case containsAny(content, "website", "web"):
			return "Build Website"
		default:
			return "Build Project"
		}
	case containsAny(content, "help", "how"):
		if containsAny(content, "debug", "fix", "error") {
			return "Debug Help"
		}
		return "Help Request"
	case containsAny(content, "learn", "explain", "teach"):
		return "Learning Session"
	case strings.Contains(content, "weather"):
		return "Weather Check"
	case containsAny(content, "code", "programming"):
		return "Code Discussion"
	}

	// First three meaningful words; short filler words are skipped.
	var words []string
	for _, w := range strings.Fields(firstUserTurn) {
		if len(w) > 2 {
			words = append(words, w)
		}
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return "General Chat"
	}
	return strings.Join(words, " ")
}

// cleanSummary normalizes a model-produced summary. Returns "" when nothing
// usable remains.
func cleanSummary(raw string) string {
	s := boldHeader.ReplaceAllString(raw, "")

	var kept []string
	for _, chunk := range sentenceChunks.FindAllString(s, -1) {
		sentence := strings.TrimSpace(chunk)
		if sentence == "" || startsWithMeta(sentence) {
			continue
		}
		kept = append(kept, sentence)
	}

	out := strings.TrimSpace(runsOfSpace.ReplaceAllString(strings.Join(kept, " "), " "))
	if out == "" {
		return ""
	}
	if !strings.ContainsAny(out[len(out)-1:], ".!?") {
		out += "."
	}
	return out
}

func startsWithMeta(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, opener := range metaOpeners {
		if strings.HasPrefix(lower, opener) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
