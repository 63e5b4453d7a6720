package advisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func motorbikeInput() AdviceInput {
	return AdviceInput{
		Category:        "buy",
		Message:         "I want to buy a motorbike",
		MonthlyIncome:   80000,
		MonthlyExpenses: map[string]float64{"rent": 25000, "food": 10000},
		CurrentSavings:  60000,
	}
}

// TestComputeFigures checks the deterministic totals and the savings buffer.
func TestComputeFigures(t *testing.T) {
	figures := ComputeFigures(motorbikeInput())

	assert.Equal(t, "35000.00", figures.TotalExpenses.StringFixed(2))
	assert.Equal(t, "38250.00", figures.RealisticSavings.StringFixed(2))
	assert.Equal(t, 100, figures.WordLimit)
}

// TestComputeFiguresOverspending checks that a deficit stays negative.
func TestComputeFiguresOverspending(t *testing.T) {
	input := motorbikeInput()
	input.MonthlyIncome = 30000
	input.Mode = ModeInDepth

	figures := ComputeFigures(input)
	assert.Equal(t, "-4250.00", figures.RealisticSavings.StringFixed(2))
	assert.Equal(t, 300, figures.WordLimit)
}

// TestSumExpensesIsExact checks that decimal fractions do not drift.
func TestSumExpensesIsExact(t *testing.T) {
	total := SumExpenses(map[string]float64{"a": 0.1, "b": 0.2})
	assert.Equal(t, "0.3", total.String())
	assert.True(t, SumExpenses(nil).IsZero())
}

// TestComposeAdvicePrompt checks the user context appended to the template.
func TestComposeAdvicePrompt(t *testing.T) {
	prompt, figures, err := ComposeAdvicePrompt("TEMPLATE", motorbikeInput(), TierPremium)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "TEMPLATE\n\nUser Profile:"))
	assert.Contains(t, prompt, "- Category: buy")
	assert.Contains(t, prompt, "- Monthly Income: NPR 80000.00")
	assert.Contains(t, prompt, "- Monthly Expenses: NPR 35000.00")
	assert.Contains(t, prompt, "- Current Savings: NPR 60000.00")
	assert.Contains(t, prompt, "- Location: kathmandu")
	assert.Contains(t, prompt, "NPR 38250.00")
	assert.Contains(t, prompt, "User Message: I want to buy a motorbike")
	assert.Contains(t, prompt, "- Mode: simple (100 words maximum)")
	assert.Contains(t, prompt, "- Premium User: true")
	assert.Contains(t, prompt, "valid JSON format only")
	assert.NotContains(t, prompt, "Additional Profile")

	// Breakdown keys are sorted.
	assert.Less(t, strings.Index(prompt, `"food"`), strings.Index(prompt, `"rent"`))
	assert.Equal(t, "38250.00", figures.RealisticSavings.StringFixed(2))
}

// TestComposeAdvicePromptOptionalParts checks in-depth mode, extra profile and the free tier flag.
func TestComposeAdvicePromptOptionalParts(t *testing.T) {
	input := motorbikeInput()
	input.Mode = ModeInDepth
	input.Location = "pokhara"
	input.ExtraProfile = map[string]any{"dependents": 2}

	prompt, _, err := ComposeAdvicePrompt("TEMPLATE", input, TierFree)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Mode: indepth (300 words maximum)")
	assert.Contains(t, prompt, "- Location: pokhara")
	assert.Contains(t, prompt, `Additional Profile: {"dependents":2}`)
	assert.Contains(t, prompt, "- Premium User: false")
}

// TestComposeFeedbackPrompt checks the month and total in the feedback prompt.
func TestComposeFeedbackPrompt(t *testing.T) {
	prompt, total, err := ComposeFeedbackPrompt("REVIEW", FeedbackInput{
		UserID:   "u1",
		Month:    "2025-01",
		Expenses: map[string]float64{"food": 12000.5, "transport": 3000},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "REVIEW\n\n"))
	assert.Contains(t, prompt, "Monthly expenses for 2025-01:")
	assert.Contains(t, prompt, `"transport": 3000`)
	assert.Contains(t, prompt, "Total: NPR 15000.50")
	assert.Equal(t, "15000.5", total.String())
}

// TestParseMode checks the accepted mode spellings.
func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":         ModeSimple,
		"simple":   ModeSimple,
		"Concise":  ModeSimple,
		"indepth":  ModeInDepth,
		"detailed": ModeInDepth,
	}
	for value, want := range tests {
		got, ok := ParseMode(value)
		assert.True(t, ok, value)
		assert.Equal(t, want, got, value)
	}

	_, ok := ParseMode("verbose")
	assert.False(t, ok)
}
