// Package models defines the data structures for the FICO score simulator.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that decodes leniently from extraction payloads.
// JSON numbers, numeric strings ("1,250.00", "$300") and null are accepted;
// anything else decodes to 0 instead of failing the whole document.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = s
	}

	*n = Number(ParseLenientFloat(raw))
	return nil
}

// Float64 returns the value with NaN and infinities mapped to 0.
func (n Number) Float64() float64 {
	return SanitizeFloat(float64(n))
}

// NonNegative returns the value clamped at 0.
func (n Number) NonNegative() float64 {
	return math.Max(0, n.Float64())
}

// Int returns the truncated, non-negative integer value, saturating at
// math.MaxInt32.
func (n Number) Int() int {
	return truncate(n.NonNegative())
}

// SanitizeFloat maps NaN and infinities to 0.
func SanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseLenientFloat parses a numeric string, stripping currency symbols,
// thousands separators and percent signs. Unparsable input yields 0.
func ParseLenientFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return SanitizeFloat(f)
}

// CoerceInt converts user-entered input into an int the way a form field
// would: numbers are truncated, strings are parsed from their leading integer
// prefix ("12abc" -> 12), and everything unparsable becomes 0.
func CoerceInt(raw interface{}) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	case Number:
		return truncate(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return truncate(f)
	case string:
		return parseIntPrefix(v)
	default:
		return 0
	}
}

func truncate(f float64) int {
	f = SanitizeFloat(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// parseIntPrefix reads an optional sign followed by decimal digits.
func parseIntPrefix(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	i, err := strconv.Atoi(s[:end])
	if err != nil {
		// Out of int range; saturate by sign.
		if s[0] == '-' {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	return i
}
