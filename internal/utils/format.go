package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a float with the fewest digits needed, so 30 prints
// as "30" and 30.25 as "30.25". NaN and infinities print as "0".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatUSD renders an amount as dollars with thousands separators and two
// decimals, e.g. "$12,345.60".
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	fixed := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}
