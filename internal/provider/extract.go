package provider

import (
	"regexp"
	"strings"
)

var (
	followUpRe = regexp.MustCompile(`(?s)\[FOLLOW_UP\](.*?)\[/FOLLOW_UP\]`)
	symbolRe   = regexp.MustCompile(`(?s)\[SYMBOL\](.*?)\[/SYMBOL\]`)
)

// ExtractSuggestedFollowUps pulls the [FOLLOW_UP] payloads out of a raw
// completion, in source order, capped at three.
func ExtractSuggestedFollowUps(content string) []string {
	matches := followUpRe.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// ExtractIdentifiedSymbols pulls the [SYMBOL] payloads out of a raw
// completion, lower-cased and deduplicated, first occurrence order.
func ExtractIdentifiedSymbols(content string) []string {
	matches := symbolRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		sym := strings.ToLower(strings.TrimSpace(m[1]))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// CleanContent strips the marker tags for display: [FOLLOW_UP] spans are
// removed entirely, [SYMBOL] tags are unwrapped around their payload.
func CleanContent(content string) string {
	content = followUpRe.ReplaceAllString(content, "")
	content = symbolRe.ReplaceAllString(content, "$1")
	return strings.TrimSpace(content)
}
