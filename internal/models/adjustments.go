// Package models defines the data structures for the FICO score simulator.
package models

import (
	"strings"
)

// AdjustmentField names one of the what-if parameters.
type AdjustmentField string

const (
	AdjustmentUtilization  AdjustmentField = "utilization"
	AdjustmentInquiries    AdjustmentField = "inquiries"
	AdjustmentLatePayments AdjustmentField = "latePayments"
)

// Bounds for each what-if parameter.
const (
	MinUtilizationPercent = 0
	MaxUtilizationPercent = 100
	MinInquiries          = 0
	MaxInquiries          = 20
	MinLatePayments       = 0
	MaxLatePayments       = 20
)

// ParseAdjustmentField accepts the camelCase names plus snake_case and
// hyphenated aliases.
func ParseAdjustmentField(s string) (AdjustmentField, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", "")
	normalized = strings.ReplaceAll(normalized, "-", "")

	switch normalized {
	case "utilization", "utilizationpercent":
		return AdjustmentUtilization, nil
	case "inquiries":
		return AdjustmentInquiries, nil
	case "latepayments":
		return AdjustmentLatePayments, nil
	default:
		return "", ErrUnknownAdjustmentField
	}
}

// Bounds returns the inclusive range for the field.
func (f AdjustmentField) Bounds() (min, max int) {
	switch f {
	case AdjustmentUtilization:
		return MinUtilizationPercent, MaxUtilizationPercent
	case AdjustmentInquiries:
		return MinInquiries, MaxInquiries
	case AdjustmentLatePayments:
		return MinLatePayments, MaxLatePayments
	default:
		return 0, 0
	}
}

// ManualAdjustments holds the user-controlled what-if overrides.
type ManualAdjustments struct {
	UtilizationPercent int `json:"utilization"`
	Inquiries          int `json:"inquiries"`
	LatePayments       int `json:"latePayments"`
}

// NewManualAdjustments builds a clamped set of adjustments.
func NewManualAdjustments(utilization, inquiries, latePayments int) ManualAdjustments {
	return ManualAdjustments{
		UtilizationPercent: clampInt(utilization, MinUtilizationPercent, MaxUtilizationPercent),
		Inquiries:          clampInt(inquiries, MinInquiries, MaxInquiries),
		LatePayments:       clampInt(latePayments, MinLatePayments, MaxLatePayments),
	}
}

// Set coerces raw (a number or user-entered string) to an int, clamps it to
// the field's range and stores it. Unparsable input is treated as 0.
func (a *ManualAdjustments) Set(field AdjustmentField, raw interface{}) error {
	min, max := field.Bounds()
	value := clampInt(CoerceInt(raw), min, max)

	switch field {
	case AdjustmentUtilization:
		a.UtilizationPercent = value
	case AdjustmentInquiries:
		a.Inquiries = value
	case AdjustmentLatePayments:
		a.LatePayments = value
	default:
		return ErrUnknownAdjustmentField
	}
	return nil
}

// Get returns the current value of a field.
func (a ManualAdjustments) Get(field AdjustmentField) (int, error) {
	switch field {
	case AdjustmentUtilization:
		return a.UtilizationPercent, nil
	case AdjustmentInquiries:
		return a.Inquiries, nil
	case AdjustmentLatePayments:
		return a.LatePayments, nil
	default:
		return 0, ErrUnknownAdjustmentField
	}
}

// Clamped returns a copy with every field inside its range.
func (a ManualAdjustments) Clamped() ManualAdjustments {
	return NewManualAdjustments(a.UtilizationPercent, a.Inquiries, a.LatePayments)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
