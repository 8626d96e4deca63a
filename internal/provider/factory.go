package provider

import (
	"fmt"

	"dreamlens/internal/journal"
)

// NewClient returns the direct adapter for a provider.
func NewClient(p journal.ProviderID, apiKey string) (Client, error) {
	switch p {
	case journal.ProviderOpenAI:
		return NewOpenAIClient(apiKey), nil
	case journal.ProviderAnthropic:
		return NewAnthropicClient(apiKey), nil
	case journal.ProviderGoogle:
		return NewGeminiClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %q", p)
	}
}
