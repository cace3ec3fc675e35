// Package grouping provides parsing and fallback logic for AI-assisted
// conversation grouping ("Tidy").
package grouping

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// OthersLabel is the catch-all bucket every grouping must offer.
const OthersLabel = "Others"

// View maps a group label to the ordered conversation ids it contains.
type View map[string][]string

// jsonSpan extracts the first {...} object from a model reply that may be
// wrapped in prose or code fences.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// Parse extracts and validates a group-name -> indices mapping from a raw
// model reply. n is the number of candidate conversations; every index must
// be within [0, n).
func Parse(raw string, n int) (map[string][]int, error) {
	span := jsonSpan.FindString(raw)
	if span == "" {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var groups map[string][]int
	if err := json.Unmarshal([]byte(span), &groups); err != nil {
		return nil, fmt.Errorf("parse grouping: %w", err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("empty grouping")
	}

	for label, indices := range groups {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("blank group label")
		}
		for _, idx := range indices {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("index %d out of range [0,%d)", idx, n)
			}
		}
	}
	return groups, nil
}

// Keyword buckets for the deterministic fallback grouper.
var fallbackBuckets = []struct {
	label    string
	keywords []string
}{
	{"Development", []string{"build", "create", "make", "app", "code", "api", "deploy", "implement"}},
	{"Learning", []string{"learn", "explain", "teach", "tutorial", "understand", "what is"}},
	{"Problem Solving", []string{"debug", "fix", "error", "issue", "problem", "bug", "troubleshoot"}},
	{"Design", []string{"design", "ui", "ux", "layout", "style", "mockup"}},
}

// Fallback buckets titles by keyword into four fixed groups plus Others.
// Empty buckets are omitted. The first matching bucket wins.
func Fallback(titles []string) map[string][]int {
	groups := make(map[string][]int)

	for i, title := range titles {
		lower := strings.ToLower(title)
		label := OthersLabel
		for _, b := range fallbackBuckets {
			if containsAny(lower, b.keywords) {
				label = b.label
				break
			}
		}
		groups[label] = append(groups[label], i)
	}
	return groups
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Resolve converts an index grouping into a View over the given ids,
// preserving the per-group index order.
func Resolve(groups map[string][]int, ids []string) View {
	view := make(View, len(groups))
	for label, indices := range groups {
		for _, idx := range indices {
			if idx < 0 || idx >= len(ids) {
				continue
			}
			view[label] = append(view[label], ids[idx])
		}
	}
	return view
}
