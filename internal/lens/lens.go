// Package lens holds the interpretive framework templates and assembles
// the system prompt sent to a model for a given interpretation request.
package lens

import (
	"fmt"
	"strings"

	"dreamlens/internal/journal"
)

// Info describes one interpretive lens for listing and display.
type Info struct {
	ID          journal.LensID `json:"id"`
	Name        string         `json:"name"`
	ShortName   string         `json:"shortName"`
	Description string         `json:"description"`
}

var infos = []Info{
	{ID: journal.LensJung, Name: "Carl Jung - Analytical Psychology", ShortName: "Jungian", Description: "Archetypes, collective unconscious, shadow work, individuation"},
	{ID: journal.LensFreud, Name: "Sigmund Freud - Psychoanalysis", ShortName: "Freudian", Description: "Wish fulfillment, latent content, psychosexual symbolism"},
	{ID: journal.LensGestalt, Name: "Gestalt Therapy", ShortName: "Gestalt", Description: "Every element as self-projection, present-moment awareness"},
	{ID: journal.LensIslamic, Name: "Islamic Tradition (Ibn Sirin)", ShortName: "Islamic", Description: "Prophetic symbolism, spiritual guidance, Quranic references"},
	{ID: journal.LensIndigenous, Name: "Indigenous/Shamanic", ShortName: "Shamanic", Description: "Spirit communication, ancestral messages, nature symbolism"},
	{ID: journal.LensCognitive, Name: "Cognitive Neuroscience", ShortName: "Neuroscience", Description: "Memory consolidation, emotional processing, threat simulation"},
	{ID: journal.LensExistential, Name: "Existential/Phenomenological", ShortName: "Existential", Description: "Meaning-making, authentic self, lived experience"},
}

var templates = map[journal.LensID]string{
	journal.LensJung:        jungTemplate,
	journal.LensFreud:       freudTemplate,
	journal.LensGestalt:     gestaltTemplate,
	journal.LensIslamic:     islamicTemplate,
	journal.LensIndigenous:  indigenousTemplate,
	journal.LensCognitive:   cognitiveTemplate,
	journal.LensExistential: existentialTemplate,
}

// Lenses returns the available lenses in display order.
func Lenses() []Info {
	out := make([]Info, len(infos))
	copy(out, infos)
	return out
}

// Lookup returns the Info for an ID, or false if the lens is unknown.
func Lookup(id journal.LensID) (Info, bool) {
	for _, in := range infos {
		if in.ID == id {
			return in, true
		}
	}
	return Info{}, false
}

// BuildSystemPrompt assembles the full system prompt for a lens. Personal
// symbol meanings, when present, are appended as a dictionary the model is
// told to prioritize. Follow-up turns get conversational instructions in
// place of the structured response format.
func BuildSystemPrompt(id journal.LensID, personalSymbols []journal.SymbolMeaning, isFollowUp bool) (string, error) {
	tmpl, ok := templates[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", journal.ErrUnknownLens, id)
	}

	var b strings.Builder
	b.WriteString(tmpl)

	if len(personalSymbols) > 0 {
		b.WriteString("\n\n## Personal Symbol Dictionary\n")
		b.WriteString("The dreamer has defined these personal meanings for symbols. Prioritize these over general interpretations:\n\n")
		for _, s := range personalSymbols {
			fmt.Fprintf(&b, "- **%s**: %s\n", s.Name, s.Meaning)
		}
	}

	if isFollowUp {
		b.WriteString(followUpInstructions)
	} else {
		fmt.Fprintf(&b, initialFormatInstructions, id)
	}

	return b.String(), nil
}

const followUpInstructions = `

## Follow-Up Conversation Mode
You are continuing a conversation about a dream interpretation. The user is asking a follow-up question.

Guidelines:
- Respond conversationally and directly to the question
- Be concise (1-3 paragraphs typically)
- Reference your previous interpretation naturally
- Provide deeper insights or clarification as needed
- Do NOT use section headers, bullet points, or structured formatting
- Do NOT include [SYMBOL] or [FOLLOW_UP] tags
- Do NOT restate the dream content or repeat the full interpretation`

const initialFormatInstructions = `

## Response Format Requirements

1. Structure your interpretation with clear sections
2. When identifying key symbols, wrap each in [SYMBOL]symbol name[/SYMBOL] tags
3. Be specific and reference actual dream content
4. Maintain the authentic voice of the %s framework
5. Keep response between 400-800 words unless follow-up conversation

## CRITICAL: Follow-Up Questions Format
At the very end of your response, you MUST include exactly 2-3 follow-up questions using this EXACT tag format:

[FOLLOW_UP]What personal meaning does the airport hold for you?[/FOLLOW_UP]
[FOLLOW_UP]How did the fear of being late make you feel upon waking?[/FOLLOW_UP]

Do NOT create a "Suggested Follow-Up Questions" section with numbered lists. Only use the [FOLLOW_UP] tags as shown above.`
