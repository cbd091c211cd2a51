// Package adjuster applies manual what-if parameters to a credit profile.
package adjuster

import (
	"math"

	"fico-simulator/internal/models"
)

// Apply returns a new profile with the adjustments applied. The input is not
// modified.
//
// Inquiries and late payments are replaced outright. Revolving balances are
// rescaled so their total equals the revolving limit times the requested
// utilization, keeping each account's share of the original balance (or an
// even split when the original balance was zero). Non-revolving accounts are
// left alone, and balances are untouched when there is no revolving limit.
func Apply(profile *models.CreditProfile, adj models.ManualAdjustments) *models.CreditProfile {
	adjusted := profile.Clone()
	adjusted.Normalize()
	adj = adj.Clamped()

	adjusted.InquiriesTotal = adj.Inquiries
	adjusted.LatePaymentsTotal = adj.LatePayments

	balance, limit, count := adjusted.RevolvingTotals()
	if limit <= 0 || count == 0 {
		return adjusted
	}

	target := limit * float64(adj.UtilizationPercent) / 100
	for i := range adjusted.Accounts {
		a := &adjusted.Accounts[i]
		if !a.IsRevolving() {
			continue
		}
		if balance > 0 {
			a.Balance = target * (a.Balance / balance)
		} else {
			a.Balance = target / float64(count)
		}
	}

	return adjusted
}

// Initial derives the starting adjustments for a simulation session from the
// current state of the report: revolving utilization rounded to a whole
// percent, plus the current inquiry and late payment totals.
func Initial(profile *models.CreditProfile) models.ManualAdjustments {
	p := profile.Clone()
	p.Normalize()

	return models.NewManualAdjustments(RevolvingUtilization(p), p.InquiriesTotal, p.LatePaymentsTotal)
}

// RevolvingUtilization returns revolving balance over revolving limit as a
// whole percent. A balance with no limit counts as fully utilized.
func RevolvingUtilization(profile *models.CreditProfile) int {
	balance, limit, _ := profile.RevolvingTotals()
	switch {
	case limit > 0:
		return int(math.Round(balance / limit * 100))
	case balance > 0:
		return models.MaxUtilizationPercent
	default:
		return 0
	}
}
