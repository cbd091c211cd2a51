package analyzer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/analyzer"
)

const workedExample = `{
	"credit_data": {
		"accounts": [{"type": "credit_card", "balance": 3000, "limit": 10000}],
		"late_payments": 0,
		"inquiries": 1,
		"average_account_age_months": 60,
		"credit_mix": {"revolving": 1, "installment": 0, "mortgage": 0}
	},
	"personalized_goals": [{
		"goal_id": "g-1",
		"title": "Increase Score by 13 Points",
		"category": "amounts owed",
		"timeframe_months": 6,
		"action_plan": [
			{"step": "Pay down card", "impact": 10},
			{"step": "Keep utilization low", "impact": 5},
			{"step": "Open a new card", "impact": -2}
		]
	}],
	"email": " user@example.com "
}`

func decode(t *testing.T, body string) *models.AnalysisRequest {
	t.Helper()
	var req models.AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestAnalyze(t *testing.T) {
	a, err := analyzer.New().Analyze(models.AnalysisSourceAPI, decode(t, workedExample))
	require.NoError(t, err)

	assert.Equal(t, 726, a.BaselineScore)
	assert.Equal(t, 726, a.Categories.BaselineScore)
	assert.Equal(t, 761, a.Advice.ProjectedOutcomes.ExpectedScore)
	assert.Equal(t, "user@example.com", a.Email)
	assert.Equal(t, models.AnalysisSourceAPI, a.Source)
	require.Len(t, a.Goals, 1)
	assert.Equal(t, models.GoalCategoryAmountsOwed, a.Goals[0].Category)
	assert.Equal(t, 13, a.Goals[0].TotalImpact())
}

func TestAnalyze_MissingCreditData(t *testing.T) {
	_, err := analyzer.New().Analyze(models.AnalysisSourceAPI, decode(t, `{"personalized_goals": []}`))
	assert.ErrorIs(t, err, models.ErrMissingCreditData)

	_, err = analyzer.New().Analyze(models.AnalysisSourceAPI, nil)
	assert.ErrorIs(t, err, models.ErrMissingCreditData)
}

func TestScore_EmptyProfile(t *testing.T) {
	result := analyzer.New().Score(nil)

	assert.Equal(t, 300, result.Score)
	assert.NotNil(t, result.Profile)
	assert.Equal(t, 335, result.Advice.ProjectedOutcomes.ExpectedScore)
}

func TestInvalidGoals(t *testing.T) {
	goals := []models.Goal{
		{
			ID:              "ok",
			Title:           "Increase Score by 5 Points",
			Category:        models.GoalCategoryNewCredit,
			TimeframeMonths: 3,
			ActionPlan:      []models.ActionStep{{Description: "Wait", Impact: 5}},
		},
		{
			Title:           "Increase Score by 9 Points",
			Category:        models.GoalCategoryNewCredit,
			TimeframeMonths: 3,
			ActionPlan:      []models.ActionStep{{Description: "Wait", Impact: 5}},
		},
	}

	invalid := analyzer.InvalidGoals(goals)

	require.Len(t, invalid, 1)
	assert.ErrorIs(t, invalid["#1"], models.ErrEmptyGoalID)
	assert.ErrorIs(t, invalid["#1"], models.ErrGoalTitleMismatch)
}
