// Package scoring estimates a FICO score from a credit profile.
//
// The estimate rates each of the five FICO categories as Excellent, Good,
// Fair or Poor, weights the ratings by the official category weights and maps
// the result linearly onto the 300-850 range:
//
//	score = round(Σ(weight% × statusWeight) / 100 × 550 + 300)
//
// Status weights are Excellent 1.0, Good 0.75, Fair 0.5 and Poor 0.25.
package scoring

import (
	"math"

	"fico-simulator/internal/models"
)

// Score range.
const (
	MinScore = 300
	MaxScore = 850

	scoreSpan = MaxScore - MinScore
)

// Engine computes scores and category breakdowns. It holds no state; the
// zero value is ready to use.
type Engine struct{}

// NewEngine returns a new engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// ComputeScore returns the estimated score for the profile, in [300, 850].
// A profile without accounts scores exactly 300.
func (e *Engine) ComputeScore(profile *models.CreditProfile) int {
	return e.ComputeCategoryProfile(profile).BaselineScore
}

// ComputeCategoryProfile rates each category and computes the baseline score.
// The input is never modified.
func (e *Engine) ComputeCategoryProfile(profile *models.CreditProfile) models.CategoryProfile {
	p := profile.Clone()
	p.Normalize()

	categories := models.CategoryProfile{
		PaymentHistory:  paymentHistory(p),
		AmountsOwed:     amountsOwed(p),
		LengthOfHistory: lengthOfHistory(p),
		NewCredit:       newCredit(p),
		CreditMix:       creditMix(p),
	}

	if len(p.Accounts) == 0 {
		categories.BaselineScore = MinScore
		return categories
	}

	categories.BaselineScore = ScoreFromWeightedSum(categories.WeightedSum())
	return categories
}

// ScoreFromWeightedSum maps a weighted sum in [0, 100] onto the score range.
func ScoreFromWeightedSum(weighted float64) int {
	return ClampScore(int(math.Round(weighted/100*scoreSpan + MinScore)))
}

// ClampScore bounds a score to [300, 850].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// UtilizationPercent returns Σbalance / Σlimit over all accounts as a
// percentage rounded to two decimals, or 0 when no account has a limit.
func UtilizationPercent(profile *models.CreditProfile) float64 {
	balance, limit := profile.Totals()
	if limit <= 0 {
		return 0
	}
	return roundTo(balance/limit*100, 2)
}

func paymentHistory(p *models.CreditProfile) models.PaymentHistoryProfile {
	late := p.LatePaymentsTotal

	var status models.CategoryStatus
	switch {
	case late == 0:
		status = models.StatusExcellent
	case late <= 2:
		status = models.StatusGood
	case late <= 5:
		status = models.StatusFair
	default:
		status = models.StatusPoor
	}

	// Without per-account history any late payment counts as one delinquency.
	delinquencies := 0
	if late > 0 {
		delinquencies = 1
	}

	return models.PaymentHistoryProfile{
		ScoreContribution: models.WeightPaymentHistory,
		Status:            status,
		LatePaymentsTotal: late,
		Delinquencies:     delinquencies,
	}
}

func amountsOwed(p *models.CreditProfile) models.AmountsOwedProfile {
	utilization := UtilizationPercent(p)

	var status models.CategoryStatus
	switch {
	case utilization <= 10:
		status = models.StatusExcellent
	case utilization <= 30:
		status = models.StatusGood
	case utilization <= 50:
		status = models.StatusFair
	default:
		status = models.StatusPoor
	}

	return models.AmountsOwedProfile{
		ScoreContribution:    models.WeightAmountsOwed,
		Status:               status,
		OverallUtilization:   utilization,
		AccountsWithBalances: p.AccountsWithBalances(),
	}
}

func lengthOfHistory(p *models.CreditProfile) models.LengthOfHistoryProfile {
	years := p.AverageAccountAgeMonths / 12

	var status models.CategoryStatus
	switch {
	case years > 10:
		status = models.StatusExcellent
	case years > 5:
		status = models.StatusGood
	case years > 2:
		status = models.StatusFair
	default:
		status = models.StatusPoor
	}

	return models.LengthOfHistoryProfile{
		ScoreContribution: models.WeightLengthOfHistory,
		Status:            status,
		// Per-account open dates are not extracted; the average stands in.
		OldestAccountAgeYears:  roundTo(years, 2),
		AverageAccountAgeYears: roundTo(years, 2),
	}
}

func newCredit(p *models.CreditProfile) models.NewCreditProfile {
	inquiries := p.InquiriesTotal

	var status models.CategoryStatus
	switch {
	case inquiries == 0:
		status = models.StatusExcellent
	case inquiries <= 2:
		status = models.StatusGood
	case inquiries <= 4:
		status = models.StatusFair
	default:
		status = models.StatusPoor
	}

	return models.NewCreditProfile{
		ScoreContribution:   models.WeightNewCredit,
		Status:              status,
		RecentInquiries12mo: inquiries,
		NewAccounts12mo:     0,
	}
}

func creditMix(p *models.CreditProfile) models.CreditMixProfile {
	mix := p.CreditMix
	diversity := mix.Diversity()

	var status models.CategoryStatus
	switch {
	case diversity >= 3:
		status = models.StatusExcellent
	case diversity == 2:
		status = models.StatusGood
	case diversity == 1:
		status = models.StatusFair
	default:
		status = models.StatusPoor
	}

	types := make([]string, 0, 3)
	if mix.RevolvingCount > 0 {
		types = append(types, "credit_card")
	}
	if mix.InstallmentCount > 0 {
		types = append(types, "installment")
	}
	if mix.MortgageCount > 0 {
		types = append(types, "mortgage")
	}

	return models.CreditMixProfile{
		ScoreContribution: models.WeightCreditMix,
		Status:            status,
		AccountTypes:      types,
		DiversityScore:    diversity,
	}
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
