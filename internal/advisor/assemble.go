package advisor

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	freeListLimit = 3

	chartTypeBar = "bar"

	TipsUpgradeTeaser       = "🔒 Upgrade to premium to see more tips and solutions!"
	SimulationUpgradeTeaser = "🔒 Upgrade to premium to see 12-month investment simulation!"
	LockedSolution          = "🔒 Upgrade to premium to see solutions!"
	InsightsUpgradeTeaser   = "🔒 Upgrade to premium to see all rights and wrongs with detailed solutions!"
)

var captionPrinter = message.NewPrinter(language.English)

// AssembleAdvice merges the normalized model output with the deterministic response fields.
func AssembleAdvice(payload AdvicePayload, input AdviceInput, tier Tier) AdviceResponse {
	input = input.withDefaults()

	response := AdviceResponse{
		ResponseNP:                 payload.ResponseNP,
		ResponseEN:                 payload.ResponseEN,
		MonthsNeeded:               payload.MonthsNeeded,
		TargetAmountNPR:            payload.TargetAmountNPR,
		RealisticMonthlySavingsNPR: payload.RealisticMonthlySavingsNPR,
		ProgressPercent:            payload.ProgressPercent,
		Tips:                       append([]string{}, payload.Tips...),
		Alternatives:               append([]Alternative{}, payload.Alternatives...),
		IsPremium:                  tier.Premium(),
	}

	if input.Mode == ModeSimple {
		response.Visualization = progressChart(payload, input.CurrentSavings)
	}

	if !tier.Premium() && len(response.Tips) > freeListLimit {
		response.Tips = append(response.Tips[:freeListLimit], TipsUpgradeTeaser)
	}

	if Category(input.Category) == CategoryInvest {
		switch {
		case tier.Premium() && len(payload.Simulation) > 0:
			response.Simulation = payload.Simulation
		case !tier.Premium():
			response.Tips = append(response.Tips, SimulationUpgradeTeaser)
		}
	}

	return response
}

func progressChart(payload AdvicePayload, currentSavings float64) *Visualization {
	return &Visualization{
		ChartType:   chartTypeBar,
		Description: ProgressCaption(payload.ProgressPercent, payload.TargetAmountNPR),
		Data: VisualizationData{
			Progress:       payload.ProgressPercent,
			Target:         payload.TargetAmountNPR,
			Current:        currentSavings,
			MonthlySavings: payload.RealisticMonthlySavingsNPR,
		},
	}
}

// ProgressCaption renders the one-line chart caption, e.g. "Progress: 40% towards goal of NPR 150,000".
func ProgressCaption(progress, target int64) string {
	return captionPrinter.Sprintf("Progress: %d%% towards goal of NPR %d", progress, target)
}

// AssembleFeedback builds the feedback response, applying the free-tier limits when tier is not premium.
func AssembleFeedback(payload FeedbackPayload, input FeedbackInput, totalExpenses float64, tier Tier) FeedbackResponse {
	response := FeedbackResponse{
		Month:         input.Month,
		TotalExpenses: totalExpenses,
		Rights:        append([]RightWrongItem{}, payload.Rights...),
		Wrongs:        append([]RightWrongItem{}, payload.Wrongs...),
		Suggestions:   append([]string{}, payload.Suggestions...),
		IsPremium:     tier.Premium(),
	}

	if tier.Premium() {
		return response
	}

	response.Rights = lockItems(truncate(response.Rights, freeListLimit))
	response.Wrongs = lockItems(truncate(response.Wrongs, freeListLimit))
	response.Suggestions = truncate(response.Suggestions, freeListLimit)

	if len(payload.Rights) > freeListLimit {
		response.Wrongs = append(response.Wrongs, RightWrongItem{
			Title:       "More insights available",
			Amount:      0,
			Description: InsightsUpgradeTeaser,
		})
	}

	return response
}

func lockItems(items []RightWrongItem) []RightWrongItem {
	for i := range items {
		locked := LockedSolution
		items[i].Solution = &locked
	}
	return items
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
