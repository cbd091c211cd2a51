package simulator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fico-simulator/internal/models"
	"fico-simulator/internal/services/scoring"
	"fico-simulator/internal/services/simulator"
)

func testGoal(impacts ...int) models.Goal {
	plan := make([]models.ActionStep, 0, len(impacts))
	total := 0
	for i, impact := range impacts {
		plan = append(plan, models.ActionStep{
			Description: "Step " + string(rune('A'+i)),
			Impact:      impact,
		})
		total += impact
	}
	return models.Goal{
		ID:              "goal-1",
		Title:           models.BuildGoalTitle(total),
		Category:        models.GoalCategoryAmountsOwed,
		TimeframeMonths: 6,
		ActionPlan:      plan,
	}
}

func testProfile() *models.CreditProfile {
	return &models.CreditProfile{
		Accounts: []models.Account{
			{Type: models.AccountTypeRevolving, Balance: 3000, Limit: 10000},
		},
		InquiriesTotal:          1,
		AverageAccountAgeMonths: 60,
		CreditMix:               models.CreditMix{RevolvingCount: 1},
	}
}

type fixedScorer int

func (f fixedScorer) ComputeScore(*models.CreditProfile) int { return int(f) }

func TestSession_AdvanceAndRevertHistory(t *testing.T) {
	const start = 700
	s := simulator.NewSession(testGoal(10, 5, -2), testProfile(), start)

	s.Advance()
	s.Advance()
	s.Advance()

	assert.Equal(t, []int{start, start + 10, start + 15, start + 13}, s.ScoreHistory())
	assert.Equal(t, 3, s.CurrentStep())
	assert.True(t, s.Completed())

	s.Revert()

	assert.Equal(t, []int{start, start + 10, start + 15}, s.ScoreHistory())
	assert.Equal(t, 2, s.CurrentStep())
	assert.False(t, s.Completed())
}

func TestSession_MisuseIsNoOp(t *testing.T) {
	s := simulator.NewSession(testGoal(10, 5), testProfile(), 650)

	before := s.View()
	s.Revert()
	assert.Equal(t, before, s.View())

	s.Advance()
	s.Advance()
	terminal := s.View()
	s.Advance()
	assert.Equal(t, terminal, s.View())
}

func TestSession_EmptyPlan(t *testing.T) {
	goal := testGoal()
	goal.TimeframeMonths = 0
	s := simulator.NewSession(goal, testProfile(), 600)

	assert.True(t, s.Completed())
	s.Advance()
	s.Revert()
	assert.Equal(t, []int{600}, s.ScoreHistory())
	assert.Empty(t, s.Calendar())
	assert.Empty(t, s.Badges())
}

func TestSession_Badges(t *testing.T) {
	s := simulator.NewSession(testGoal(3, 12, 4), testProfile(), 680)

	s.Advance()
	assert.Empty(t, s.Badges())

	s.Advance()
	assert.Equal(t, []simulator.Badge{simulator.BadgeGreatProgress}, s.Badges())

	s.Advance()
	assert.Equal(t, []simulator.Badge{simulator.BadgeGreatProgress, simulator.BadgeGoalCompleted}, s.Badges())

	s.Revert()
	assert.False(t, s.HasBadge(simulator.BadgeGoalCompleted))
	assert.True(t, s.HasBadge(simulator.BadgeGreatProgress), "step with impact 12 is still completed")

	s.Revert()
	assert.Empty(t, s.Badges())
}

func TestSession_GreatProgressThresholdIsExclusive(t *testing.T) {
	s := simulator.NewSession(testGoal(8, 9), testProfile(), 680)

	s.Advance()
	assert.False(t, s.HasBadge(simulator.BadgeGreatProgress))

	s.Advance()
	assert.True(t, s.HasBadge(simulator.BadgeGreatProgress))
}

func TestSession_Calendar(t *testing.T) {
	s := simulator.NewSession(testGoal(10, 5, -2), testProfile(), 700)

	cal := s.Calendar()
	require.Len(t, cal, 6)
	assert.Equal(t, "Month 1", cal[0].Label)
	assert.Equal(t, "Month 6", cal[5].Label)
	assert.False(t, cal[0].Completed)

	s.Advance()
	cal = s.Calendar()
	assert.Equal(t, "Step A", cal[0].Description)
	assert.Equal(t, 710, cal[0].Score)
	assert.True(t, cal[0].Completed)

	s.Revert()
	assert.Equal(t, simulator.CalendarEntry{Label: "Month 1"}, s.Calendar()[0])
}

func TestSession_CalendarGrowsToPlanLength(t *testing.T) {
	goal := testGoal(1, 1, 1, 1)
	goal.TimeframeMonths = 2

	s := simulator.NewSession(goal, testProfile(), 700)

	assert.Len(t, s.Calendar(), 4)
}

func TestSession_CalendarIsCapped(t *testing.T) {
	goal := testGoal(5)
	goal.TimeframeMonths = 5_000_000

	s := simulator.NewSession(goal, testProfile(), 700)

	assert.Len(t, s.Calendar(), models.MaxTimeframeMonths)
	assert.Len(t, s.View().Calendar, models.MaxTimeframeMonths)
}

func TestSession_InitialAdjustmentsClampReportTotals(t *testing.T) {
	engine := scoring.NewEngine()
	profile := testProfile()
	profile.LatePaymentsTotal = 30
	profile.InquiriesTotal = 25

	s := simulator.NewSession(testGoal(5), profile, engine.ComputeScore(profile))
	v := s.View()

	assert.Equal(t, models.MaxLatePayments, v.InitialAdjustments.LatePayments)
	assert.Equal(t, models.MaxInquiries, v.InitialAdjustments.Inquiries)

	clamped := profile.Clone()
	clamped.LatePaymentsTotal = models.MaxLatePayments
	clamped.InquiriesTotal = models.MaxInquiries
	assert.Equal(t, engine.ComputeScore(clamped), v.ProjectedScore)
}

func TestSession_ProjectedScore(t *testing.T) {
	s := simulator.NewSession(testGoal(10, 5, -2), testProfile(), 726)

	// Initial adjustments mirror the report, so the projection starts at the
	// baseline.
	assert.Equal(t, models.ManualAdjustments{UtilizationPercent: 30, Inquiries: 1}, s.Adjustments())
	assert.Equal(t, 726, s.ProjectedScore())

	s.Advance()
	s.Advance()
	assert.Equal(t, 741, s.ProjectedScore())

	// Adjustments and completed steps add independently.
	require.NoError(t, s.SetAdjustment(models.AdjustmentUtilization, 5))
	require.NoError(t, s.SetAdjustment(models.AdjustmentInquiries, 0))
	adjusted := scoring.NewEngine().ComputeScore(&models.CreditProfile{
		Accounts:                []models.Account{{Type: models.AccountTypeRevolving, Balance: 500, Limit: 10000}},
		AverageAccountAgeMonths: 60,
		CreditMix:               models.CreditMix{RevolvingCount: 1},
	})
	assert.Equal(t, adjusted+15, s.ProjectedScore())
	assert.Equal(t, adjusted+15, s.ProjectedScore(), "projection is recomputed, not accumulated")
}

func TestSession_ProjectedScoreIsClamped(t *testing.T) {
	s := simulator.NewSession(testGoal(40, 40), testProfile(), 800, simulator.WithScorer(fixedScorer(820)))
	s.Advance()
	s.Advance()
	assert.Equal(t, 850, s.ProjectedScore())

	low := simulator.NewSession(testGoal(-50), testProfile(), 320, simulator.WithScorer(fixedScorer(310)))
	low.Advance()
	assert.Equal(t, 300, low.ProjectedScore())
	assert.Equal(t, []int{320, 270}, low.ScoreHistory())
}

func TestSession_SetAdjustments(t *testing.T) {
	s := simulator.NewSession(testGoal(5), testProfile(), 700)

	require.NoError(t, s.SetAdjustment(models.AdjustmentUtilization, "150"))
	assert.Equal(t, 100, s.Adjustments().UtilizationPercent)

	require.NoError(t, s.SetAdjustment(models.AdjustmentInquiries, "abc"))
	assert.Equal(t, 0, s.Adjustments().Inquiries)

	require.NoError(t, s.SetAdjustments(map[string]interface{}{
		"late_payments": 4.7,
		"inquiries":     "3",
	}))
	assert.Equal(t, models.ManualAdjustments{UtilizationPercent: 100, Inquiries: 3, LatePayments: 4}, s.Adjustments())

	err := s.SetAdjustments(map[string]interface{}{"inquiries": 9, "balance": 1})
	assert.ErrorIs(t, err, models.ErrUnknownAdjustmentField)
	assert.Equal(t, 3, s.Adjustments().Inquiries, "rejected patch leaves adjustments untouched")

	s.ResetAdjustments()
	assert.Equal(t, s.InitialAdjustments(), s.Adjustments())
	assert.Equal(t, models.ManualAdjustments{UtilizationPercent: 30, Inquiries: 1}, s.Adjustments())
}

func TestSession_Snapshots(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := simulator.NewSession(testGoal(10), testProfile(), 726, simulator.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	for _, pct := range []int{30, 20, 10} {
		require.NoError(t, s.SetAdjustment(models.AdjustmentUtilization, pct))
		s.SaveSnapshot()
	}

	snaps := s.Snapshots()
	require.Len(t, snaps, 3)
	assert.Equal(t, 30, snaps[0].Adjustments.UtilizationPercent)
	assert.Equal(t, 20, snaps[1].Adjustments.UtilizationPercent)
	assert.Equal(t, 10, snaps[2].Adjustments.UtilizationPercent)
	assert.True(t, snaps[0].Timestamp.Before(snaps[2].Timestamp))
	assert.NotEqual(t, snaps[0].ID, snaps[1].ID)
	assert.Equal(t, 726, snaps[0].Score)
	assert.GreaterOrEqual(t, snaps[2].Score, snaps[0].Score)

	// Later changes never rewrite earlier entries.
	require.NoError(t, s.SetAdjustment(models.AdjustmentUtilization, 90))
	assert.Equal(t, snaps, s.Snapshots())
}

func TestSession_OwnsItsInputs(t *testing.T) {
	goal := testGoal(10, 5)
	profile := testProfile()

	s := simulator.NewSession(goal, profile, 700)

	goal.ActionPlan[0].Impact = 100
	profile.Accounts[0].Balance = 10000
	s.Advance()

	assert.Equal(t, []int{700, 710}, s.ScoreHistory())
	assert.Equal(t, 30, s.Adjustments().UtilizationPercent)

	got := s.Goal()
	got.ActionPlan[1].Impact = -99
	assert.Equal(t, 5, s.Goal().ActionPlan[1].Impact)
}

func TestSession_View(t *testing.T) {
	goal := testGoal(10, 5)
	goal.Title = "Increase Score by 40 Points"
	s := simulator.NewSession(goal, testProfile(), 726)
	s.Advance()

	view := s.View()

	assert.False(t, view.TitleConsistent)
	assert.Equal(t, 1, view.CurrentStep)
	assert.Equal(t, 2, view.TotalSteps)
	assert.False(t, view.Completed)
	assert.Equal(t, 736, view.ProjectedScore)
	assert.Equal(t, []int{726, 736}, view.ScoreHistory)
	assert.NotNil(t, view.Snapshots)
}
