// Package journal defines the core entities of the dreamlens data model:
// journal entries, their tags, lens analyses, follow-up conversations and the
// personal symbol glossary. All identifiers are client-generated UUIDs.
package journal

import "time"

// LensID names an interpretive framework applied to an entry.
type LensID string

const (
	LensJung        LensID = "jung"
	LensFreud       LensID = "freud"
	LensGestalt     LensID = "gestalt"
	LensIslamic     LensID = "islamic"
	LensIndigenous  LensID = "indigenous"
	LensCognitive   LensID = "cognitive"
	LensExistential LensID = "existential"
)

// ProviderID names a model provider.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGoogle    ProviderID = "google"
)

// TagCategory classifies a tag on an entry.
type TagCategory string

const (
	TagEmotion TagCategory = "emotion"
	TagTheme   TagCategory = "theme"
	TagPerson  TagCategory = "person"
	TagPlace   TagCategory = "place"
	TagObject  TagCategory = "object"
	TagAction  TagCategory = "action"
	TagCustom  TagCategory = "custom"
)

// Tag is a categorized label on an entry. Uniqueness is (Category, Value).
type Tag struct {
	Category TagCategory `json:"category"`
	Value    string      `json:"value"`
}

// Entry is a single journaled item.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Tags       []Tag     `json:"tags"`
}

// Analysis is the persisted output of applying one lens and one model to one
// entry. Immutable once created; superseded only by newer analyses.
type Analysis struct {
	ID         string     `json:"id"`
	EntryID    string     `json:"entryId"`
	Lens       LensID     `json:"lens"`
	Provider   ProviderID `json:"provider"`
	Model      string     `json:"model"`
	Content    string     `json:"content"`
	TokenCount int        `json:"tokenCount,omitempty"`
	CostUSD    float64    `json:"costUsd,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a follow-up conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the append-only follow-up thread anchored to one analysis.
// The analysis content itself is never stored in Messages; the orchestrator
// prefixes it when reconstructing the thread.
type Conversation struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysisId"`
	Messages   []Message `json:"messages"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Valence is the emotional charge of a glossary symbol.
type Valence string

const (
	ValencePositive   Valence = "positive"
	ValenceNegative   Valence = "negative"
	ValenceNeutral    Valence = "neutral"
	ValenceAmbivalent Valence = "ambivalent"
)

// Symbol is a user-curated glossary entry mapping a recurring motif to a
// personal meaning. Independent lifecycle; not cascade-tied to entries.
type Symbol struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Meaning          string    `json:"meaning"`
	Context          string    `json:"context,omitempty"`
	Valence          Valence   `json:"valence,omitempty"`
	RelatedSymbolIDs []string  `json:"relatedSymbolIds"`
	Frequency        int       `json:"frequency"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SymbolMeaning is the name/meaning pair handed to prompt construction.
type SymbolMeaning struct {
	Name    string `json:"name"`
	Meaning string `json:"meaning"`
}
