package openrouter

import "testing"

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Trip Planning", "Trip Planning"},
		{"surrounding quotes", `"Weather Check"`, "Weather Check"},
		{"single quotes", "'Weather Check'", "Weather Check"},
		{"dot numbering", "2. Debug Help", "Debug Help"},
		{"paren numbering", "1) Debug Help", "Debug Help"},
		{"title prefix", "Title: Learning Session", "Learning Session"},
		{"case insensitive prefix", "TITLE: Learning Session", "Learning Session"},
		{"first line only", "Code Review\n\nI picked this because...", "Code Review"},
		{"too long", "This title is way too long to be accepted as a conversation title", ""},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanTitle(tt.raw); got != tt.want {
				t.Errorf("cleanTitle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		turn string
		want string
	}{
		{"help me build a react app", "Build App Project"},
		{"create a website for my shop", "Build Website"},
		{"make something cool", "Build Project"},
		{"how do I fix this error", "Debug Help"},
		{"how does DNS work", "Help Request"},
		{"explain recursion to me", "Learning Session"},
		{"what's the weather in Oslo", "Weather Check"},
		{"review my programming style", "Code Discussion"},
		{"quantum entanglement basics today", "quantum entanglement basics"},
		{"a an I", "General Chat"},
	}

	for _, tt := range tests {
		t.Run(tt.turn, func(t *testing.T) {
			if got := fallbackTitle(tt.turn); got != tt.want {
				t.Errorf("fallbackTitle(%q) = %q, want %q", tt.turn, got, tt.want)
			}
		})
	}
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"passthrough",
			"The user asked about caching. The assistant suggested TTLs.",
			"The user asked about caching. The assistant suggested TTLs.",
		},
		{
			"strips bold header",
			"**Summary:** The user asked about caching.",
			"The user asked about caching.",
		},
		{
			"drops meta sentences",
			"Looking at the conversation, lots happened. Based on the history, even more. The user chose Redis.",
			"The user chose Redis.",
		},
		{
			"collapses whitespace",
			"The  user   asked.\n\nThe assistant  answered.",
			"The user asked. The assistant answered.",
		},
		{
			"adds terminal punctuation",
			"The user chose Redis",
			"The user chose Redis.",
		},
		{"all meta", "Analyzing this chat, things occurred.", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanSummary(tt.raw); got != tt.want {
				t.Errorf("cleanSummary(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestContainsPreamble(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"You are Smart Potato, a helpful AI assistant", true},
		{"PROJECT CONTEXT:\nstuff", true},
		{"STRICT CONSTRAINTS:\n- rules", true},
		{"an ordinary user message", false},
	}
	for _, tt := range tests {
		if got := containsPreamble(tt.content); got != tt.want {
			t.Errorf("containsPreamble(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}
