package model

import "time"

// StockView is everything the report shows about one stock.
type StockView struct {
	Stock   Stock
	Series  PriceSeries
	Growth  *GrowthSeries // nil when the series could not be normalized
	Range   *SeriesRange
	Metrics MetricSet
}

// Report is the output of one analysis run.
type Report struct {
	RunID       string
	Period      Period
	GeneratedAt time.Time
	A, B        StockView
	Comparison  Comparison
	Scores      ScoreReport
	Narrative   string
}
