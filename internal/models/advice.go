// Package models defines the data structures for the FICO score simulator.
package models

// Confidence is the qualitative confidence attached to an advice action.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// AdviceAction is one recommended action with a canned point range.
type AdviceAction struct {
	Action             string     `json:"action"`
	EstimatedPointGain string     `json:"estimated_point_gain"`
	Timeframe          string     `json:"timeframe"`
	Confidence         Confidence `json:"confidence,omitempty"`
	Rationale          string     `json:"rationale,omitempty"`
}

// CurrentState summarizes the baseline.
type CurrentState struct {
	Summary       string `json:"summary"`
	BaselineScore int    `json:"baseline_score"`
}

// ImpactBreakdown holds one human-readable line per FICO category.
type ImpactBreakdown struct {
	PaymentHistory  string `json:"payment_history"`
	AmountsOwed     string `json:"amounts_owed"`
	LengthOfHistory string `json:"length_of_history"`
	NewCredit       string `json:"new_credit"`
	CreditMix       string `json:"credit_mix"`
}

// ProjectedOutcomes are the expected and best-case scores after following
// the action plan.
type ProjectedOutcomes struct {
	ExpectedScore int    `json:"expected_score"`
	BestCaseScore int    `json:"best_case_score"`
	Timeframe     string `json:"timeframe"`
}

// Advice is the rule-based advice derived from a category profile.
type Advice struct {
	CurrentState      CurrentState      `json:"current_state"`
	ImpactBreakdown   ImpactBreakdown   `json:"fico_impact_breakdown"`
	ActionPlan        []AdviceAction    `json:"personalized_action_plan"`
	ProjectedOutcomes ProjectedOutcomes `json:"projected_outcomes"`
}
