// Package models defines the data structures for the FICO score simulator.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrUnknownAdjustmentField = errors.New("unknown adjustment field")
	ErrEmptyGoalID            = errors.New("goal_id cannot be empty")
	ErrInvalidGoalCategory    = errors.New("invalid goal category")
	ErrInvalidTimeframe       = errors.New("timeframe_months must be positive")
	ErrTimeframeTooLong       = fmt.Errorf("timeframe_months cannot exceed %d", MaxTimeframeMonths)
	ErrEmptyActionPlan        = errors.New("action_plan cannot be empty")
	ErrGoalTitleMismatch      = errors.New("goal title does not match action plan impact total")
	ErrMissingCreditData      = errors.New("credit_data is required")
	ErrAnalysisNotFound       = errors.New("analysis not found")
	ErrSessionNotFound        = errors.New("simulation session not found")
)

// ValidateGoal checks a goal's structure and the title contract. It returns
// every problem found, joined, so callers can report them together.
func ValidateGoal(g *Goal) error {
	var errs []error

	if strings.TrimSpace(g.ID) == "" {
		errs = append(errs, ErrEmptyGoalID)
	}

	if !g.Category.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidGoalCategory, g.Category))
	}

	if g.TimeframeMonths <= 0 {
		errs = append(errs, ErrInvalidTimeframe)
	} else if g.TimeframeMonths > MaxTimeframeMonths {
		errs = append(errs, ErrTimeframeTooLong)
	}

	if len(g.ActionPlan) == 0 {
		errs = append(errs, ErrEmptyActionPlan)
	}

	if !g.TitleConsistent() {
		errs = append(errs, fmt.Errorf("%w: title %q, impacts sum to %d", ErrGoalTitleMismatch, g.Title, g.TotalImpact()))
	}

	return errors.Join(errs...)
}
