// Package models defines the data structures for the FICO score simulator.
package models

// CategoryStatus is the qualitative rating of a FICO category.
type CategoryStatus string

const (
	StatusExcellent CategoryStatus = "Excellent"
	StatusGood      CategoryStatus = "Good"
	StatusFair      CategoryStatus = "Fair"
	StatusPoor      CategoryStatus = "Poor"
)

// Weight maps a status to its multiplier in the weighted score.
func (s CategoryStatus) Weight() float64 {
	switch s {
	case StatusExcellent:
		return 1.0
	case StatusGood:
		return 0.75
	case StatusFair:
		return 0.5
	case StatusPoor:
		return 0.25
	default:
		return 0.5
	}
}

// Official FICO category weights, in percent. They sum to 100.
const (
	WeightPaymentHistory  = 35
	WeightAmountsOwed     = 30
	WeightLengthOfHistory = 15
	WeightNewCredit       = 10
	WeightCreditMix       = 10
)

// PaymentHistoryProfile describes the payment history category.
type PaymentHistoryProfile struct {
	ScoreContribution int            `json:"score_contribution"`
	Status            CategoryStatus `json:"status"`
	LatePaymentsTotal int            `json:"late_payments_total"`
	Delinquencies     int            `json:"delinquencies"`
}

// AmountsOwedProfile describes the amounts owed category.
type AmountsOwedProfile struct {
	ScoreContribution    int            `json:"score_contribution"`
	Status               CategoryStatus `json:"status"`
	OverallUtilization   float64        `json:"overall_utilization"`
	AccountsWithBalances int            `json:"accounts_with_balances"`
}

// LengthOfHistoryProfile describes the length of credit history category.
type LengthOfHistoryProfile struct {
	ScoreContribution      int            `json:"score_contribution"`
	Status                 CategoryStatus `json:"status"`
	OldestAccountAgeYears  float64        `json:"oldest_account_age_years"`
	AverageAccountAgeYears float64        `json:"average_account_age_years"`
}

// NewCreditProfile describes the new credit category.
type NewCreditProfile struct {
	ScoreContribution   int            `json:"score_contribution"`
	Status              CategoryStatus `json:"status"`
	RecentInquiries12mo int            `json:"recent_inquiries_12mo"`
	NewAccounts12mo     int            `json:"new_accounts_12mo"`
}

// CreditMixProfile describes the credit mix category.
type CreditMixProfile struct {
	ScoreContribution int            `json:"score_contribution"`
	Status            CategoryStatus `json:"status"`
	AccountTypes      []string       `json:"account_types"`
	DiversityScore    int            `json:"diversity_score"`
}

// CategoryProfile is the per-category breakdown of a credit profile.
type CategoryProfile struct {
	PaymentHistory  PaymentHistoryProfile  `json:"payment_history"`
	AmountsOwed     AmountsOwedProfile     `json:"amounts_owed"`
	LengthOfHistory LengthOfHistoryProfile `json:"length_of_history"`
	NewCredit       NewCreditProfile       `json:"new_credit"`
	CreditMix       CreditMixProfile       `json:"credit_mix"`
	BaselineScore   int                    `json:"baseline_score"`
}

// WeightedSum returns Σ(category weight × status weight), in [25, 100].
func (c CategoryProfile) WeightedSum() float64 {
	return float64(c.PaymentHistory.ScoreContribution)*c.PaymentHistory.Status.Weight() +
		float64(c.AmountsOwed.ScoreContribution)*c.AmountsOwed.Status.Weight() +
		float64(c.LengthOfHistory.ScoreContribution)*c.LengthOfHistory.Status.Weight() +
		float64(c.NewCredit.ScoreContribution)*c.NewCredit.Status.Weight() +
		float64(c.CreditMix.ScoreContribution)*c.CreditMix.Status.Weight()
}
