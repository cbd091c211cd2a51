package advisor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/advisor"
	"fico-simulator/internal/services/scoring"
)

func workedExampleCategories() models.CategoryProfile {
	return scoring.NewEngine().ComputeCategoryProfile(&models.CreditProfile{
		Accounts: []models.Account{
			{Type: models.AccountTypeRevolving, Balance: 3000, Limit: 10000},
		},
		InquiriesTotal:          1,
		AverageAccountAgeMonths: 60,
		CreditMix:               models.CreditMix{RevolvingCount: 1},
	})
}

func TestGenerate_Text(t *testing.T) {
	advice := advisor.Generate(workedExampleCategories())

	assert.Equal(t, 726, advice.CurrentState.BaselineScore)
	assert.Equal(t, "Baseline estimated score: 726. Key: Utilization 30%, Payment history Excellent.", advice.CurrentState.Summary)
	assert.Equal(t, "Status: Excellent. Late payments: 0.", advice.ImpactBreakdown.PaymentHistory)
	assert.Equal(t, "Utilization: 30%. Status: Good.", advice.ImpactBreakdown.AmountsOwed)
	assert.Equal(t, "Oldest: 5y, Avg: 5y. Status: Fair.", advice.ImpactBreakdown.LengthOfHistory)
	assert.Equal(t, "Recent inquiries (12mo): 1. Status: Good.", advice.ImpactBreakdown.NewCredit)
	assert.Equal(t, "Types: credit_card. Status: Fair.", advice.ImpactBreakdown.CreditMix)
}

func TestGenerate_ActionPlan(t *testing.T) {
	advice := advisor.Generate(workedExampleCategories())

	require.Len(t, advice.ActionPlan, 2)
	assert.Equal(t, "Reduce revolving utilization to 30% overall", advice.ActionPlan[0].Action)
	assert.Equal(t, "+20–40", advice.ActionPlan[0].EstimatedPointGain)
	assert.Equal(t, models.ConfidenceHigh, advice.ActionPlan[0].Confidence)
	assert.Equal(t, "Avoid new hard inquiries", advice.ActionPlan[1].Action)
	assert.Equal(t, "6–12 months", advice.ActionPlan[1].Timeframe)
	assert.Equal(t, models.ConfidenceMedium, advice.ActionPlan[1].Confidence)
}

func TestGenerate_ProjectedOutcomes(t *testing.T) {
	tests := []struct {
		baseline, expected, best int
	}{
		{726, 761, 786},
		{800, 835, 850},
		{830, 850, 850},
		{300, 335, 360},
	}

	for _, tt := range tests {
		c := workedExampleCategories()
		c.BaselineScore = tt.baseline

		out := advisor.Generate(c).ProjectedOutcomes

		assert.Equal(t, tt.expected, out.ExpectedScore, "baseline %d", tt.baseline)
		assert.Equal(t, tt.best, out.BestCaseScore, "baseline %d", tt.baseline)
		assert.Equal(t, "3–12 months", out.Timeframe)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	c := workedExampleCategories()
	assert.Equal(t, advisor.Generate(c), advisor.Generate(c))
}

func TestGenerate_FractionalValues(t *testing.T) {
	c := workedExampleCategories()
	c.AmountsOwed.OverallUtilization = 33.33
	c.LengthOfHistory.AverageAccountAgeYears = 7.25
	c.LengthOfHistory.OldestAccountAgeYears = 7.25
	c.CreditMix.AccountTypes = []string{"credit_card", "installment", "mortgage"}

	advice := advisor.Generate(c)

	assert.Contains(t, advice.CurrentState.Summary, "Utilization 33.33%")
	assert.Equal(t, "Oldest: 7.25y, Avg: 7.25y. Status: Fair.", advice.ImpactBreakdown.LengthOfHistory)
	assert.Equal(t, "Types: credit_card, installment, mortgage. Status: Fair.", advice.ImpactBreakdown.CreditMix)
}

func TestGenerate_EmptyProfile(t *testing.T) {
	c := scoring.NewEngine().ComputeCategoryProfile(&models.CreditProfile{})

	advice := advisor.Generate(c)

	assert.Equal(t, 300, advice.CurrentState.BaselineScore)
	assert.Equal(t, "Types: . Status: Poor.", advice.ImpactBreakdown.CreditMix)
	assert.Equal(t, 335, advice.ProjectedOutcomes.ExpectedScore)
}
