package util

import (
	"fmt"
	"strings"
	"time"
)

// NormalizePeriod strips the separator from a "YYYY-MM" label so periods
// compare correctly as six-digit strings ("2020-01" -> "202001").
func NormalizePeriod(p string) string {
	return strings.ReplaceAll(p, "-", "")
}

// ParsePeriod parses a "YYYY-MM" label into the first day of that month, UTC.
func ParsePeriod(p string) (time.Time, error) {
	t, err := time.Parse("2006-01", p)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse period %q: %w", p, err)
	}
	return t, nil
}

// FormatPeriod renders t as a "YYYY-MM" label.
func FormatPeriod(t time.Time) string {
	return t.Format("2006-01")
}

// PeriodsBetween returns every monthly label from from to to inclusive.
func PeriodsBetween(from, to string) ([]string, error) {
	start, err := ParsePeriod(from)
	if err != nil {
		return nil, err
	}
	end, err := ParsePeriod(to)
	if err != nil {
		return nil, err
	}

	var out []string
	for t := start; !t.After(end); t = t.AddDate(0, 1, 0) {
		out = append(out, FormatPeriod(t))
	}
	return out, nil
}
