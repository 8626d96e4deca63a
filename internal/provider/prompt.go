package provider

import (
	"fmt"
	"strings"

	"dreamlens/internal/journal"
	"dreamlens/internal/lens"
)

// FormatUserMessage renders the entry as the user turn of an initial
// interpretation: optional title header, the dream body, then tags grouped
// by category in first-appearance order. Empty sections are omitted.
func FormatUserMessage(req *Request) string {
	var b strings.Builder
	if req.EntryTitle != "" {
		fmt.Fprintf(&b, "## Title: %s\n\n", req.EntryTitle)
	}
	fmt.Fprintf(&b, "## Dream\n\n%s", req.EntryBody)

	if len(req.Tags) > 0 {
		order := make([]journal.TagCategory, 0, len(req.Tags))
		grouped := make(map[journal.TagCategory][]string)
		for _, t := range req.Tags {
			if _, ok := grouped[t.Category]; !ok {
				order = append(order, t.Category)
			}
			grouped[t.Category] = append(grouped[t.Category], t.Value)
		}
		b.WriteString("\n\n## Tags\n")
		for _, cat := range order {
			fmt.Fprintf(&b, "- %s: %s\n", cat, strings.Join(grouped[cat], ", "))
		}
	}
	return b.String()
}

// chatMessage is the provider-neutral prompt turn handed to adapters.
type chatMessage struct {
	Role    string
	Content string
}

// buildPrompt assembles the system prompt, the prior turns, and the newest
// user message for a request. Initial turns carry the formatted entry; on
// follow-ups the last history message becomes the newest user turn and the
// rest of the history sits in the middle.
func buildPrompt(req *Request) (systemPrompt string, history []chatMessage, userMessage string, err error) {
	isFollowUp := req.IsFollowUp()
	systemPrompt, err = lens.BuildSystemPrompt(req.Lens, req.PersonalSymbols, isFollowUp)
	if err != nil {
		return "", nil, "", err
	}

	if isFollowUp {
		hist := req.ConversationHistory
		userMessage = hist[len(hist)-1].Content
		for _, m := range hist[:len(hist)-1] {
			history = append(history, chatMessage{Role: string(m.Role), Content: m.Content})
		}
	} else {
		userMessage = FormatUserMessage(req)
	}
	return systemPrompt, history, userMessage, nil
}

// buildResponse settles a fully accumulated completion: markers extracted,
// content cleaned, tokens estimated where the provider reported none, cost
// priced off the static rate table.
func buildResponse(model, systemPrompt, userMessage, fullContent string, inputTokens, outputTokens int) *Response {
	if inputTokens == 0 {
		inputTokens = journal.EstimateTokens(systemPrompt + userMessage)
	}
	if outputTokens == 0 {
		outputTokens = journal.EstimateTokens(fullContent)
	}
	return &Response{
		Content:            CleanContent(fullContent),
		TokenCount:         TokenCount{Input: inputTokens, Output: outputTokens},
		CostUSD:            journal.CalculateCost(model, inputTokens, outputTokens),
		SuggestedFollowUps: ExtractSuggestedFollowUps(fullContent),
		IdentifiedSymbols:  ExtractIdentifiedSymbols(fullContent),
	}
}
