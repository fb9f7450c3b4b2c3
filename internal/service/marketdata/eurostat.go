package marketdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"RateScope/internal/rule"
	"RateScope/pkg/util"
)

// jsonStat is the slice of the dissemination API's JSON-stat payload
// the explorer needs: the time dimension's position index and the
// sparse value map keyed by stringified position.
type jsonStat struct {
	Dimension struct {
		Time struct {
			Category struct {
				Index map[string]int `json:"index"`
			} `json:"category"`
		} `json:"time"`
	} `json:"dimension"`
	Value map[string]*float64 `json:"value"`
}

// parseJSONStat flattens a one-dimensional JSON-stat response into
// period-keyed values. Positions absent from the value map are gaps
// and stay out of the result.
func parseJSONStat(data []byte) (map[string]float64, error) {
	var doc jsonStat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode statistics payload: %w", err)
	}
	if len(doc.Dimension.Time.Category.Index) == 0 {
		return nil, fmt.Errorf("statistics payload has no time dimension")
	}

	out := make(map[string]float64, len(doc.Value))
	for period, pos := range doc.Dimension.Time.Category.Index {
		if v := doc.Value[strconv.Itoa(pos)]; v != nil {
			out[period] = *v
		}
	}
	return out, nil
}

// MonthlyYoY converts a monthly price index into year-over-year
// percentage change over the period index, rounded to 4 decimals. A
// month missing either its own index value or the value twelve months
// back stays nil.
func MonthlyYoY(index map[string]float64, periods []string) ([]*float64, error) {
	out := make([]*float64, len(periods))
	for i, p := range periods {
		t, err := util.ParsePeriod(p)
		if err != nil {
			return nil, err
		}
		cur, okCur := index[p]
		prev, okPrev := index[util.FormatPeriod(t.AddDate(-1, 0, 0))]
		if !okCur || !okPrev || prev == 0 {
			continue
		}
		v := rule.Round4((cur/prev - 1) * 100)
		out[i] = &v
	}
	return out, nil
}

// QuarterlyYoY converts a quarterly volume index ("YYYY-Qn" keys) into
// year-over-year percentage change, places each quarter's value on its
// closing month and forward-fills it until the next quarter reports.
// Months before the first computable quarter stay nil.
func QuarterlyYoY(index map[string]float64, periods []string) []*float64 {
	yoyByMonth := make(map[string]float64)
	for key, cur := range index {
		year, q, ok := parseQuarter(key)
		if !ok {
			continue
		}
		prev, okPrev := index[fmt.Sprintf("%d-Q%d", year-1, q)]
		if !okPrev || prev == 0 {
			continue
		}
		closing := fmt.Sprintf("%04d-%02d", year, q*3)
		yoyByMonth[closing] = rule.Round4((cur/prev - 1) * 100)
	}

	out := make([]*float64, len(periods))
	var carry *float64
	for i, p := range periods {
		if v, ok := yoyByMonth[p]; ok {
			vv := v
			carry = &vv
		}
		if carry != nil {
			vv := *carry
			out[i] = &vv
		}
	}
	return out
}

func parseQuarter(key string) (year, quarter int, ok bool) {
	parts := strings.Split(key, "-Q")
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, errY := strconv.Atoi(parts[0])
	quarter, errQ := strconv.Atoi(parts[1])
	if errY != nil || errQ != nil || quarter < 1 || quarter > 4 {
		return 0, 0, false
	}
	return year, quarter, true
}
