package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(string(make([]byte, 100))))
}

func TestCalculateCost(t *testing.T) {
	// 1000 input at $0.00015/1k plus 500 output at $0.0006/1k.
	cost := CalculateCost("gpt-4o-mini", 1000, 500)
	assert.InDelta(t, 0.00045, cost, 1e-9)

	assert.Equal(t, 0.0, CalculateCost("some-unknown-model", 1000, 500))
	assert.Equal(t, 0.0, CalculateCost("", 1000, 500))
}

func TestEstimateCost(t *testing.T) {
	// Assumes 500 output tokens.
	assert.InDelta(t, CalculateCost("gpt-4o-mini", 1000, 500), EstimateCost("gpt-4o-mini", 1000), 1e-12)
}

func TestFindModel(t *testing.T) {
	m := FindModel("claude-3-5-sonnet-20241022")
	if assert.NotNil(t, m) {
		assert.Equal(t, ProviderAnthropic, m.Provider)
	}
	assert.Nil(t, FindModel("nope"))
}

func TestModelsForProvider(t *testing.T) {
	google := ModelsForProvider(ProviderGoogle)
	assert.Len(t, google, 2)
	for _, m := range google {
		assert.Equal(t, ProviderGoogle, m.Provider)
	}
}

func TestFormatTokenCount(t *testing.T) {
	assert.Equal(t, "842", FormatTokenCount(842))
	assert.Equal(t, "1.3k", FormatTokenCount(1300))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.45¢", FormatCost(0.0045))
	assert.Equal(t, "$0.0450", FormatCost(0.045))
}
