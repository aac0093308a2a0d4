package model

import (
	"fmt"
	"strings"
	"time"
)

// Period is the history window requested from the price provider.
type Period string

const (
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period5Years  Period = "5y"
	Period10Years Period = "10y"
)

// Periods lists the supported windows, shortest first.
var Periods = []Period{Period3Months, Period6Months, Period1Year, Period5Years, Period10Years}

var periodLabels = map[Period]string{
	Period3Months: "3 months",
	Period6Months: "6 months",
	Period1Year:   "1 year",
	Period5Years:  "5 years",
	Period10Years: "10 years",
}

// Label returns the human readable form, e.g. "6 months".
func (p Period) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePeriod accepts a period code ("1y") or label ("1 year").
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Periods {
		if s == string(p) || s == p.Label() {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q (want one of 3mo, 6mo, 1y, 5y, 10y)", s)
}

// PricePoint is one closing price.
type PricePoint struct {
	Time  time.Time
	Close float64
}

// PriceSeries holds the closing prices of one symbol over one period, oldest first.
// An empty series means the provider failed or had no data.
type PriceSeries struct {
	Symbol TickerSymbol
	Period Period
	Points []PricePoint
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// GrowthSeries is a PriceSeries rebased so the first value is exactly 100.
type GrowthSeries struct {
	Symbol TickerSymbol
	Points []PricePoint
}

// Last returns the final growth value, or 0 for an empty series.
func (g GrowthSeries) Last() float64 {
	if len(g.Points) == 0 {
		return 0
	}
	return g.Points[len(g.Points)-1].Close
}

// SeriesRange summarises a growth series for display.
type SeriesRange struct {
	High        float64
	Low         float64
	TotalReturn float64 // percent over the whole period
}
