package advisor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	wordLimitSimple  = 100
	wordLimitInDepth = 300
)

// savingsBuffer keeps 85% of the monthly surplus; the rest absorbs irregular costs.
var savingsBuffer = decimal.RequireFromString("0.85")

// Figures are the deterministic numbers derived from an advice request.
type Figures struct {
	TotalExpenses    decimal.Decimal
	RealisticSavings decimal.Decimal
	WordLimit        int
}

// ComputeFigures derives total expenses, realistic monthly savings and the word limit.
func ComputeFigures(input AdviceInput) Figures {
	total := SumExpenses(input.MonthlyExpenses)
	surplus := decimal.NewFromFloat(input.MonthlyIncome).Sub(total)

	wordLimit := wordLimitSimple
	if input.Mode == ModeInDepth {
		wordLimit = wordLimitInDepth
	}

	return Figures{
		TotalExpenses:    total,
		RealisticSavings: surplus.Mul(savingsBuffer),
		WordLimit:        wordLimit,
	}
}

// SumExpenses adds the expense values exactly.
func SumExpenses(expenses map[string]float64) decimal.Decimal {
	total := decimal.Zero
	for _, key := range sortedKeys(expenses) {
		total = total.Add(decimal.NewFromFloat(expenses[key]))
	}
	return total
}

// ComposeAdvicePrompt appends the user's profile and the computed figures to the category template.
func ComposeAdvicePrompt(template string, input AdviceInput, tier Tier) (string, Figures, error) {
	input = input.withDefaults()
	figures := ComputeFigures(input)

	breakdown, err := json.MarshalIndent(input.MonthlyExpenses, "  ", "  ")
	if err != nil {
		return "", Figures{}, fmt.Errorf("encode expenses: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(template))
	b.WriteString("\n\nUser Profile:\n")
	fmt.Fprintf(&b, "- Category: %s\n", input.Category)
	fmt.Fprintf(&b, "- Monthly Income: NPR %s\n", money(decimal.NewFromFloat(input.MonthlyIncome)))
	fmt.Fprintf(&b, "- Monthly Expenses: NPR %s\n", money(figures.TotalExpenses))
	fmt.Fprintf(&b, "  Breakdown: %s\n", breakdown)
	fmt.Fprintf(&b, "- Current Savings: NPR %s\n", money(decimal.NewFromFloat(input.CurrentSavings)))
	fmt.Fprintf(&b, "- Location: %s\n", input.Location)
	fmt.Fprintf(&b, "- Realistic Monthly Savings (after 15%% buffer): NPR %s\n", money(figures.RealisticSavings))
	fmt.Fprintf(&b, "\nUser Message: %s\n", input.Message)

	if len(input.ExtraProfile) > 0 {
		extra, err := json.Marshal(input.ExtraProfile)
		if err != nil {
			return "", Figures{}, fmt.Errorf("encode extra profile: %w", err)
		}
		fmt.Fprintf(&b, "\nAdditional Profile: %s\n", extra)
	}

	b.WriteString("\nResponse Requirements:\n")
	fmt.Fprintf(&b, "- Mode: %s (%d words maximum)\n", input.Mode, figures.WordLimit)
	fmt.Fprintf(&b, "- Premium User: %t\n", tier.Premium())
	b.WriteString("\nProvide complete financial advice in valid JSON format only. No markdown, no extra text.\n")
	b.WriteString("All text must be in English only.\n")

	return b.String(), figures, nil
}

// ComposeFeedbackPrompt appends the month's expenses and their total to the feedback template.
func ComposeFeedbackPrompt(template string, input FeedbackInput) (string, decimal.Decimal, error) {
	total := SumExpenses(input.Expenses)

	expenses, err := json.MarshalIndent(input.Expenses, "", "  ")
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("encode expenses: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(template))
	fmt.Fprintf(&b, "\n\nMonthly expenses for %s:\n%s\n", input.Month, expenses)
	fmt.Fprintf(&b, "Total: NPR %s\n", money(total))

	return b.String(), total, nil
}

func money(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
