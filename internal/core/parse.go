package core

// parse.go holds the typed-cell parsers used by the field validator.
// Cells travel through the pipeline as raw text; this is the only place
// where typed interpretation happens.

import (
	"regexp"
	"time"
)

// integerRegex matches whole numbers with an optional sign.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// decimalRegex matches integers, decimals and scientific notation.
var decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are the accepted calendar formats: ISO 8601 full dates
// plus the partial forms ABCD allows for imprecise collection dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
}

// isInteger reports whether s parses as a whole number.
func isInteger(s string) bool {
	return integerRegex.MatchString(s)
}

// isDecimal reports whether s parses as a number, fractional part allowed.
func isDecimal(s string) bool {
	return decimalRegex.MatchString(s)
}

// isDate reports whether s parses under one of the accepted layouts.
func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if len(s) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
