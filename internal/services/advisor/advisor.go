// Package advisor turns a category profile into readable, rule-based advice.
package advisor

import (
	"fmt"
	"strings"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/scoring"
	"fico-simulator/internal/utils"
)

// Projection offsets applied to the baseline score.
const (
	ExpectedGain = 35
	BestCaseGain = 60

	OutcomeTimeframe = "3–12 months"
)

// Generate builds advice from a category profile. The result depends only on
// its input.
func Generate(c models.CategoryProfile) models.Advice {
	baseline := c.BaselineScore
	utilization := utils.FormatNumber(c.AmountsOwed.OverallUtilization)

	return models.Advice{
		CurrentState: models.CurrentState{
			Summary: fmt.Sprintf("Baseline estimated score: %d. Key: Utilization %s%%, Payment history %s.",
				baseline, utilization, c.PaymentHistory.Status),
			BaselineScore: baseline,
		},
		ImpactBreakdown: models.ImpactBreakdown{
			PaymentHistory: fmt.Sprintf("Status: %s. Late payments: %d.",
				c.PaymentHistory.Status, c.PaymentHistory.LatePaymentsTotal),
			AmountsOwed: fmt.Sprintf("Utilization: %s%%. Status: %s.",
				utilization, c.AmountsOwed.Status),
			LengthOfHistory: fmt.Sprintf("Oldest: %sy, Avg: %sy. Status: %s.",
				utils.FormatNumber(c.LengthOfHistory.OldestAccountAgeYears),
				utils.FormatNumber(c.LengthOfHistory.AverageAccountAgeYears),
				c.LengthOfHistory.Status),
			NewCredit: fmt.Sprintf("Recent inquiries (12mo): %d. Status: %s.",
				c.NewCredit.RecentInquiries12mo, c.NewCredit.Status),
			CreditMix: fmt.Sprintf("Types: %s. Status: %s.",
				strings.Join(c.CreditMix.AccountTypes, ", "), c.CreditMix.Status),
		},
		ActionPlan: actions(),
		ProjectedOutcomes: models.ProjectedOutcomes{
			ExpectedScore: capScore(baseline + ExpectedGain),
			BestCaseScore: capScore(baseline + BestCaseGain),
			Timeframe:     OutcomeTimeframe,
		},
	}
}

func actions() []models.AdviceAction {
	return []models.AdviceAction{
		{
			Action:             "Reduce revolving utilization to 30% overall",
			EstimatedPointGain: "+20–40",
			Timeframe:          "1–3 months",
			Confidence:         models.ConfidenceHigh,
			Rationale:          "Lower utilization improves Amounts Owed (30% weight).",
		},
		{
			Action:             "Avoid new hard inquiries",
			EstimatedPointGain: "+5–10",
			Timeframe:          "6–12 months",
			Confidence:         models.ConfidenceMedium,
			Rationale:          "Reduces New Credit pressure (10% weight).",
		},
	}
}

// Projections only cap at the top of the range.
func capScore(score int) int {
	if score > scoring.MaxScore {
		return scoring.MaxScore
	}
	return score
}
