// Package models defines the data structures for the FICO score simulator.
package models

import (
	"math"
	"strings"
)

// AccountType represents the category of a credit account.
type AccountType string

const (
	AccountTypeRevolving   AccountType = "revolving"
	AccountTypeInstallment AccountType = "installment"
	AccountTypeMortgage    AccountType = "mortgage"
	AccountTypeOther       AccountType = "other"
)

// ParseAccountType converts free-form account type text to an AccountType.
func ParseAccountType(s string) AccountType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]AccountType{
		"revolving":      AccountTypeRevolving,
		"credit_card":    AccountTypeRevolving,
		"creditcard":     AccountTypeRevolving,
		"card":           AccountTypeRevolving,
		"line_of_credit": AccountTypeRevolving,
		"heloc":          AccountTypeRevolving,
		"installment":    AccountTypeInstallment,
		"auto":           AccountTypeInstallment,
		"auto_loan":      AccountTypeInstallment,
		"student_loan":   AccountTypeInstallment,
		"personal_loan":  AccountTypeInstallment,
		"loan":           AccountTypeInstallment,
		"mortgage":       AccountTypeMortgage,
		"home_loan":      AccountTypeMortgage,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}
	return AccountTypeOther
}

// Account is a single tradeline on a credit report.
type Account struct {
	Type                  AccountType `json:"type"`
	Balance               float64     `json:"balance"`
	Limit                 float64     `json:"limit"`
	Status                string      `json:"status,omitempty"`
	PaymentHistorySummary string      `json:"payment_history,omitempty"`
}

// IsRevolving reports whether the account is a revolving line. The type is
// compared case-insensitively so hand-built accounts behave like parsed ones.
func (a Account) IsRevolving() bool {
	return ParseAccountType(string(a.Type)) == AccountTypeRevolving
}

// Collection is a collection item on a credit report.
type Collection struct {
	Type   string  `json:"type,omitempty"`
	Amount float64 `json:"amount"`
	Status string  `json:"status,omitempty"`
}

// CreditMix counts the account categories held.
type CreditMix struct {
	RevolvingCount   int `json:"revolving"`
	InstallmentCount int `json:"installment"`
	MortgageCount    int `json:"mortgage"`
}

// Diversity returns how many of the three mix categories are present.
func (m CreditMix) Diversity() int {
	diversity := 0
	if m.RevolvingCount > 0 {
		diversity++
	}
	if m.InstallmentCount > 0 {
		diversity++
	}
	if m.MortgageCount > 0 {
		diversity++
	}
	return diversity
}

// CreditProfile is the normalized representation of a credit report.
type CreditProfile struct {
	Accounts                []Account    `json:"accounts"`
	Collections             []Collection `json:"collections"`
	LatePaymentsTotal       int          `json:"late_payments"`
	InquiriesTotal          int          `json:"inquiries"`
	AverageAccountAgeMonths float64      `json:"average_account_age_months"`
	CreditMix               CreditMix    `json:"credit_mix"`
}

// Normalize coerces every numeric field to a finite non-negative value and
// replaces nil slices with empty ones. It mutates the receiver.
func (p *CreditProfile) Normalize() {
	if p.Accounts == nil {
		p.Accounts = []Account{}
	}
	if p.Collections == nil {
		p.Collections = []Collection{}
	}

	for i := range p.Accounts {
		p.Accounts[i].Balance = nonNegative(p.Accounts[i].Balance)
		p.Accounts[i].Limit = nonNegative(p.Accounts[i].Limit)
		p.Accounts[i].Type = ParseAccountType(string(p.Accounts[i].Type))
	}
	for i := range p.Collections {
		p.Collections[i].Amount = nonNegative(p.Collections[i].Amount)
	}

	p.LatePaymentsTotal = nonNegativeInt(p.LatePaymentsTotal)
	p.InquiriesTotal = nonNegativeInt(p.InquiriesTotal)
	p.AverageAccountAgeMonths = nonNegative(p.AverageAccountAgeMonths)
	p.CreditMix.RevolvingCount = nonNegativeInt(p.CreditMix.RevolvingCount)
	p.CreditMix.InstallmentCount = nonNegativeInt(p.CreditMix.InstallmentCount)
	p.CreditMix.MortgageCount = nonNegativeInt(p.CreditMix.MortgageCount)
}

// Clone returns a deep, independent copy of the profile.
func (p *CreditProfile) Clone() *CreditProfile {
	if p == nil {
		return &CreditProfile{Accounts: []Account{}, Collections: []Collection{}}
	}

	clone := *p
	clone.Accounts = make([]Account, len(p.Accounts))
	copy(clone.Accounts, p.Accounts)
	clone.Collections = make([]Collection, len(p.Collections))
	copy(clone.Collections, p.Collections)
	return &clone
}

// Totals returns the summed balance and limit across all accounts.
func (p *CreditProfile) Totals() (balance, limit float64) {
	for _, a := range p.Accounts {
		balance += nonNegative(a.Balance)
		limit += nonNegative(a.Limit)
	}
	return balance, limit
}

// RevolvingTotals returns the summed balance and limit across revolving
// accounts, plus the number of revolving accounts.
func (p *CreditProfile) RevolvingTotals() (balance, limit float64, count int) {
	for _, a := range p.Accounts {
		if !a.IsRevolving() {
			continue
		}
		balance += nonNegative(a.Balance)
		limit += nonNegative(a.Limit)
		count++
	}
	return balance, limit, count
}

// AccountsWithBalances counts accounts carrying a positive balance.
func (p *CreditProfile) AccountsWithBalances() int {
	n := 0
	for _, a := range p.Accounts {
		if nonNegative(a.Balance) > 0 {
			n++
		}
	}
	return n
}

func nonNegative(v float64) float64 {
	return math.Max(0, SanitizeFloat(v))
}

func nonNegativeInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
