package common

import (
	"strconv"
)

// FormatWeight renders a molecular weight in g/mol for display, or "-" when unknown.
func FormatWeight(weight *float64) string {
	if weight == nil {
		return "-"
	}
	return strconv.FormatFloat(*weight, 'f', 4, 64)
}
