// Package models defines the data structures for the FICO score simulator.
package models

import (
	"regexp"
	"strconv"
	"strings"
)

// GoalCategory is the FICO category a goal targets.
type GoalCategory string

const (
	GoalCategoryPaymentHistory  GoalCategory = "Payment History"
	GoalCategoryAmountsOwed     GoalCategory = "Amounts Owed"
	GoalCategoryLengthOfHistory GoalCategory = "Length of Credit History"
	GoalCategoryCreditMix       GoalCategory = "Credit Mix"
	GoalCategoryNewCredit       GoalCategory = "New Credit"
)

// ValidGoalCategories returns all valid goal category values.
func ValidGoalCategories() []GoalCategory {
	return []GoalCategory{
		GoalCategoryPaymentHistory,
		GoalCategoryAmountsOwed,
		GoalCategoryLengthOfHistory,
		GoalCategoryCreditMix,
		GoalCategoryNewCredit,
	}
}

// IsValid checks if the goal category is one of the known values.
func (c GoalCategory) IsValid() bool {
	for _, valid := range ValidGoalCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// NormalizeGoalCategory maps loosely formatted category names to the
// canonical values. Unknown input is returned trimmed, as-is.
func NormalizeGoalCategory(s string) GoalCategory {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.ReplaceAll(normalized, "-", " ")

	categoryMap := map[string]GoalCategory{
		"payment history":          GoalCategoryPaymentHistory,
		"payments":                 GoalCategoryPaymentHistory,
		"amounts owed":             GoalCategoryAmountsOwed,
		"utilization":              GoalCategoryAmountsOwed,
		"credit utilization":       GoalCategoryAmountsOwed,
		"length of credit history": GoalCategoryLengthOfHistory,
		"length of history":        GoalCategoryLengthOfHistory,
		"credit age":               GoalCategoryLengthOfHistory,
		"credit mix":               GoalCategoryCreditMix,
		"mix":                      GoalCategoryCreditMix,
		"new credit":               GoalCategoryNewCredit,
		"inquiries":                GoalCategoryNewCredit,
	}

	if mapped, ok := categoryMap[normalized]; ok {
		return mapped
	}
	return GoalCategory(strings.TrimSpace(s))
}

// ActionStep is one ordered step of a goal's action plan.
type ActionStep struct {
	Description string `json:"step"`
	Impact      int    `json:"impact"`
}

// MaxTimeframeMonths bounds a goal's timeframe and the calendar built from it.
const MaxTimeframeMonths = 360

// Goal is a personalized score-improvement goal with an ordered action plan.
type Goal struct {
	ID              string       `json:"goal_id"`
	Title           string       `json:"title"`
	Category        GoalCategory `json:"category"`
	TimeframeMonths int          `json:"timeframe_months"`
	ActionPlan      []ActionStep `json:"action_plan"`
}

// TotalImpact sums the impact of every step in the action plan.
func (g *Goal) TotalImpact() int {
	total := 0
	for _, step := range g.ActionPlan {
		total += step.Impact
	}
	return total
}

// Clone returns a deep copy of the goal.
func (g *Goal) Clone() Goal {
	clone := *g
	clone.ActionPlan = make([]ActionStep, len(g.ActionPlan))
	copy(clone.ActionPlan, g.ActionPlan)
	return clone
}

var titlePointsPattern = regexp.MustCompile(`(?i)increase\s+score\s+by\s+([+-]?\d+)\s+points?`)

// TitlePoints extracts N from a title of the form "Increase Score by N Points".
func (g *Goal) TitlePoints() (int, bool) {
	m := titlePointsPattern.FindStringSubmatch(g.Title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// TitleConsistent reports whether the title's point total equals the sum of
// the action plan impacts.
func (g *Goal) TitleConsistent() bool {
	n, ok := g.TitlePoints()
	return ok && n == g.TotalImpact()
}

// BuildGoalTitle formats the canonical title for a point total.
func BuildGoalTitle(points int) string {
	return "Increase Score by " + strconv.Itoa(points) + " Points"
}
