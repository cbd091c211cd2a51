// Package models defines the data structures for the FICO score simulator.
package models

import (
	"math"
	"strings"
)

// AccountPayload is an account as produced by the document-analysis service.
type AccountPayload struct {
	Type           string `json:"type"`
	Balance        Number `json:"balance"`
	Limit          Number `json:"limit"`
	Status         string `json:"status"`
	PaymentHistory string `json:"payment_history"`
}

// CollectionPayload is a collection item as produced by the document-analysis service.
type CollectionPayload struct {
	Type   string `json:"type"`
	Amount Number `json:"amount"`
	Status string `json:"status"`
}

// CreditMixPayload carries the account category counts.
type CreditMixPayload struct {
	Revolving   Number `json:"revolving"`
	Installment Number `json:"installment"`
	Mortgage    Number `json:"mortgage"`
}

// CreditReportPayload is the credit_data object extracted from a report.
// Every field is optional.
type CreditReportPayload struct {
	Accounts                []AccountPayload    `json:"accounts"`
	Collections             []CollectionPayload `json:"collections"`
	LatePayments            Number              `json:"late_payments"`
	Inquiries               Number              `json:"inquiries"`
	AverageAccountAgeMonths Number              `json:"average_account_age_months"`
	CreditMix               *CreditMixPayload   `json:"credit_mix"`
}

// ToProfile converts the payload into a normalized CreditProfile.
func (p *CreditReportPayload) ToProfile() *CreditProfile {
	if p == nil {
		return &CreditProfile{Accounts: []Account{}, Collections: []Collection{}}
	}

	profile := &CreditProfile{
		Accounts:    make([]Account, 0, len(p.Accounts)),
		Collections: make([]Collection, 0, len(p.Collections)),
	}

	for _, a := range p.Accounts {
		profile.Accounts = append(profile.Accounts, Account{
			Type:                  ParseAccountType(a.Type),
			Balance:               a.Balance.NonNegative(),
			Limit:                 a.Limit.NonNegative(),
			Status:                strings.TrimSpace(a.Status),
			PaymentHistorySummary: strings.TrimSpace(a.PaymentHistory),
		})
	}

	for _, c := range p.Collections {
		profile.Collections = append(profile.Collections, Collection{
			Type:   strings.TrimSpace(c.Type),
			Amount: c.Amount.NonNegative(),
			Status: strings.TrimSpace(c.Status),
		})
	}

	profile.LatePaymentsTotal = p.LatePayments.Int()
	profile.InquiriesTotal = p.Inquiries.Int()
	profile.AverageAccountAgeMonths = p.AverageAccountAgeMonths.NonNegative()

	if p.CreditMix != nil {
		profile.CreditMix = CreditMix{
			RevolvingCount:   p.CreditMix.Revolving.Int(),
			InstallmentCount: p.CreditMix.Installment.Int(),
			MortgageCount:    p.CreditMix.Mortgage.Int(),
		}
	}

	profile.Normalize()
	return profile
}

// ActionStepPayload is one action plan step on the wire.
type ActionStepPayload struct {
	Step   string `json:"step"`
	Impact Number `json:"impact"`
}

// GoalPayload is a personalized goal as produced by the document-analysis service.
type GoalPayload struct {
	GoalID          string              `json:"goal_id"`
	Title           string              `json:"title"`
	Category        string              `json:"category"`
	TimeframeMonths Number              `json:"timeframe_months"`
	ActionPlan      []ActionStepPayload `json:"action_plan"`
}

// ToGoal converts the payload into a Goal. Impacts keep their sign.
func (g *GoalPayload) ToGoal() Goal {
	goal := Goal{
		ID:              strings.TrimSpace(g.GoalID),
		Title:           strings.TrimSpace(g.Title),
		Category:        NormalizeGoalCategory(g.Category),
		TimeframeMonths: g.TimeframeMonths.Int(),
		ActionPlan:      make([]ActionStep, 0, len(g.ActionPlan)),
	}

	for _, s := range g.ActionPlan {
		goal.ActionPlan = append(goal.ActionPlan, ActionStep{
			Description: strings.TrimSpace(s.Step),
			Impact:      int(math.Round(s.Impact.Float64())),
		})
	}

	return goal
}

// AnalyzeResponse is the full document-analysis result.
type AnalyzeResponse struct {
	CreditData        *CreditReportPayload `json:"credit_data"`
	PersonalizedGoals []GoalPayload        `json:"personalized_goals"`
}

// Profile returns the normalized credit profile. A missing credit_data
// object yields an empty profile.
func (r *AnalyzeResponse) Profile() *CreditProfile {
	return r.CreditData.ToProfile()
}

// Goals converts every personalized goal.
func (r *AnalyzeResponse) Goals() []Goal {
	goals := make([]Goal, 0, len(r.PersonalizedGoals))
	for i := range r.PersonalizedGoals {
		goals = append(goals, r.PersonalizedGoals[i].ToGoal())
	}
	return goals
}
