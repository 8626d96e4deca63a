package journal

// Model describes a text-generation model and its pricing.
type Model struct {
	ID                 string
	Name               string
	Provider           ProviderID
	InputCostPer1kUSD  float64
	OutputCostPer1kUSD float64
	MaxTokens          int
	SupportsStreaming  bool
}

// Models is the static per-model rate table. Unknown model IDs cost zero.
var Models = []Model{
	// OpenAI
	{ID: "gpt-5", Name: "GPT-5", Provider: ProviderOpenAI, InputCostPer1kUSD: 0.01, OutputCostPer1kUSD: 0.03, MaxTokens: 256000, SupportsStreaming: true},
	{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, InputCostPer1kUSD: 0.005, OutputCostPer1kUSD: 0.015, MaxTokens: 128000, SupportsStreaming: true},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Provider: ProviderOpenAI, InputCostPer1kUSD: 0.00015, OutputCostPer1kUSD: 0.0006, MaxTokens: 128000, SupportsStreaming: true},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Provider: ProviderOpenAI, InputCostPer1kUSD: 0.01, OutputCostPer1kUSD: 0.03, MaxTokens: 128000, SupportsStreaming: true},
	// Anthropic
	{ID: "claude-3-5-sonnet-20241022", Name: "Claude 3.5 Sonnet", Provider: ProviderAnthropic, InputCostPer1kUSD: 0.003, OutputCostPer1kUSD: 0.015, MaxTokens: 200000, SupportsStreaming: true},
	{ID: "claude-3-opus-20240229", Name: "Claude 3 Opus", Provider: ProviderAnthropic, InputCostPer1kUSD: 0.015, OutputCostPer1kUSD: 0.075, MaxTokens: 200000, SupportsStreaming: true},
	{ID: "claude-3-haiku-20240307", Name: "Claude 3 Haiku", Provider: ProviderAnthropic, InputCostPer1kUSD: 0.00025, OutputCostPer1kUSD: 0.00125, MaxTokens: 200000, SupportsStreaming: true},
	// Google
	{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: ProviderGoogle, InputCostPer1kUSD: 0.00125, OutputCostPer1kUSD: 0.005, MaxTokens: 2000000, SupportsStreaming: true},
	{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Provider: ProviderGoogle, InputCostPer1kUSD: 0.000075, OutputCostPer1kUSD: 0.0003, MaxTokens: 1000000, SupportsStreaming: true},
}

// SubscriberModel is forced for subscription-proxied calls.
const SubscriberModel = "gpt-4o-mini"

// FindModel returns the rate table row for a model ID, or nil.
func FindModel(id string) *Model {
	for i := range Models {
		if Models[i].ID == id {
			return &Models[i]
		}
	}
	return nil
}

// ModelsForProvider lists the rate table rows for one provider.
func ModelsForProvider(p ProviderID) []Model {
	var out []Model
	for _, m := range Models {
		if m.Provider == p {
			out = append(out, m)
		}
	}
	return out
}
