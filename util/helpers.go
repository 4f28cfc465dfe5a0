// Package util provides small helpers shared across the API modules.
package util

import (
	"strings"
	"time"
)

// DateLayout is the wire format for all dates in spreadsheets, query
// strings and JSON bodies.
const DateLayout = "2006-01-02"

// ParseDate parses a date in the portal wire format.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// NormalizeDate re-renders a date in the canonical wire format, empty when
// the input is empty or malformed. Used by lenient filter parsing.
func NormalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatDate renders an optional date in the portal wire format, empty
// when unset.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
