package journal

import "fmt"

// EstimateTokens approximates the token count of text at roughly four
// characters per token, rounded up. Good enough for cost display; replace
// with a real tokenizer if precise accounting is ever needed.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// CalculateCost prices a call from the static rate table. Unknown model IDs
// cost zero.
func CalculateCost(modelID string, inputTokens, outputTokens int) float64 {
	m := FindModel(modelID)
	if m == nil {
		return 0
	}
	input := float64(inputTokens) / 1000 * m.InputCostPer1kUSD
	output := float64(outputTokens) / 1000 * m.OutputCostPer1kUSD
	return input + output
}

// EstimateCost prices a prospective call assuming a typical output length.
func EstimateCost(modelID string, inputTokens int) float64 {
	const typicalOutputTokens = 500
	return CalculateCost(modelID, inputTokens, typicalOutputTokens)
}

// FormatTokenCount renders a token count for display ("842", "1.3k").
func FormatTokenCount(count int) string {
	if count < 1000 {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%.1fk", float64(count)/1000)
}

// FormatCost renders a USD cost for display, switching to cents below $0.01.
func FormatCost(costUSD float64) string {
	if costUSD < 0.01 {
		return fmt.Sprintf("$%.2f¢", costUSD*100)
	}
	return fmt.Sprintf("$%.4f", costUSD)
}
