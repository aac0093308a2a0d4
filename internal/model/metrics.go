package model

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// MetricName is one of the fundamental metrics compared between two stocks.
type MetricName string

const (
	MarketCap MetricName = "MARKET_CAP"
	EPS       MetricName = "EPS"
	PERatio   MetricName = "PE_RATIO"
	ROE       MetricName = "ROE"
	ROA       MetricName = "ROA"
	NetMargin MetricName = "NET_MARGIN"
)

// MetricOrder is the fixed key order shared by every MetricSet of a comparison.
var MetricOrder = []MetricName{MarketCap, EPS, PERatio, ROE, ROA, NetMargin}

var metricTitles = map[MetricName]string{
	MarketCap: "Market Cap",
	EPS:       "EPS",
	PERatio:   "P/E Ratio",
	ROE:       "ROE",
	ROA:       "ROA",
	NetMargin: "Net Profit Margin",
}

// Title returns the display name of the metric.
func (m MetricName) Title() string {
	if t, ok := metricTitles[m]; ok {
		return t
	}
	return string(m)
}

// LowerIsBetter reports whether a smaller value wins for this metric.
func (m MetricName) LowerIsBetter() bool { return m == PERatio }

// Interpretation is the static hint shown next to the metric.
func (m MetricName) Interpretation() string {
	switch m {
	case PERatio:
		return "Lower is better"
	case MarketCap:
		return "Higher is better (company size)"
	default:
		return "Higher is better"
	}
}

// NotAvailable is the display form of an unavailable metric.
const NotAvailable = "N/A"

// MetricValue is either a present number or unavailable.
type MetricValue struct {
	value float64
	ok    bool
}

// Present wraps a known value.
func Present(v float64) MetricValue { return MetricValue{value: v, ok: true} }

// Unavailable returns the missing marker.
func Unavailable() MetricValue { return MetricValue{} }

// Value returns the number and whether it is present.
func (v MetricValue) Value() (float64, bool) { return v.value, v.ok }

// Available reports whether the value is present.
func (v MetricValue) Available() bool { return v.ok }

// Or returns the value, or def when unavailable.
func (v MetricValue) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.value
}

// Display formats the value for the given metric.
func (v MetricValue) Display(m MetricName) string {
	if !v.ok {
		return NotAvailable
	}
	if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
		return NotAvailable
	}
	switch m {
	case MarketCap:
		return humanize.SIWithDigits(v.value, 2, "")
	case ROE, ROA, NetMargin:
		return fmt.Sprintf("%.2f%%", v.value*100)
	default:
		return fmt.Sprintf("%.2f", v.value)
	}
}

// MetricSet holds one stock's metrics for one analysis run.
type MetricSet map[MetricName]MetricValue

// Get returns the metric, Unavailable when the key is absent.
func (s MetricSet) Get(m MetricName) MetricValue {
	if s == nil {
		return Unavailable()
	}
	return s[m]
}

// Available counts the present metrics of MetricOrder.
func (s MetricSet) Available() int {
	n := 0
	for _, m := range MetricOrder {
		if s.Get(m).Available() {
			n++
		}
	}
	return n
}
