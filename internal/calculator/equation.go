package calculator

import (
	"fmt"
	"strings"
)

// FormatEquation renders a fit as "Ln(y) = a(x/max)² +b(x/max) +c", skipping
// zero terms. Non-leading positive terms carry an explicit plus sign.
func FormatEquation(coefficients [3]float64, intercept float64, maxX int) string {
	var terms []string
	add := func(value float64, suffix string) {
		if value == 0 {
			return
		}
		sign := ""
		if len(terms) > 0 && value > 0 {
			sign = "+"
		}
		terms = append(terms, fmt.Sprintf("%s%.4f%s", sign, value, suffix))
	}

	add(coefficients[2], fmt.Sprintf("(x/%d)²", maxX))
	add(coefficients[1], fmt.Sprintf("(x/%d)", maxX))
	add(intercept, "")

	return "Ln(y) = " + strings.Join(terms, " ")
}
