package marketdata

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"RateScope/pkg/util"
)

// RateChange is one policy-rate decision: the date it took effect and
// the new rate level.
type RateChange struct {
	Date time.Time
	Rate float64
}

// ParseRateChanges reads the central bank's published rate history: a
// pipe-delimited text file with a header line, one "YYYYMMDD|rate" row
// per decision, comma decimal separators and an optional UTF-8
// byte-order mark.
func ParseRateChanges(data []byte) ([]RateChange, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("rate history too short: %d lines", len(lines))
	}

	var out []RateChange
	for i, line := range lines[1:] { // first line is the header
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			return nil, fmt.Errorf("rate history line %d: %q is not date|rate", i+2, line)
		}

		date, err := time.Parse("20060102", strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("rate history line %d: %w", i+2, err)
		}
		rate, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(parts[1]), ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("rate history line %d: %w", i+2, err)
		}
		out = append(out, RateChange{Date: date, Rate: rate})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("rate history contains no decisions")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// MonthlyRate turns the decision history into a month-end series over
// the given period index: each month carries the last rate decided on
// or before its final day. Months before the first decision stay nil.
func MonthlyRate(changes []RateChange, periods []string) ([]*float64, error) {
	out := make([]*float64, len(periods))
	for i, p := range periods {
		start, err := util.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		monthEnd := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

		for j := len(changes) - 1; j >= 0; j-- {
			if !changes[j].Date.After(monthEnd) {
				v := changes[j].Rate
				out[i] = &v
				break
			}
		}
	}
	return out, nil
}
