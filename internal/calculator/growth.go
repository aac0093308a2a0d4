package calculator

import (
	"math"

	"StockDuel/internal/model"
)

// Base is the value of the investment at the start of a growth series.
const Base = 100.0

// Normalize rebases a price series to "100 units invested at the start".
// It reports false when the series is empty or its first close cannot be
// divided by (zero, negative or not finite).
func Normalize(s model.PriceSeries) (model.GrowthSeries, bool) {
	if len(s.Points) == 0 {
		return model.GrowthSeries{}, false
	}
	first := s.Points[0].Close
	if first <= 0 || math.IsNaN(first) || math.IsInf(first, 0) {
		return model.GrowthSeries{}, false
	}

	points := make([]model.PricePoint, len(s.Points))
	points[0] = model.PricePoint{Time: s.Points[0].Time, Close: Base}
	for i := 1; i < len(s.Points); i++ {
		points[i] = model.PricePoint{
			Time:  s.Points[i].Time,
			Close: Base * s.Points[i].Close / first,
		}
	}
	return model.GrowthSeries{Symbol: s.Symbol, Points: points}, true
}

// Sample picks at most n evenly spaced points, always keeping the first and last.
func Sample(g model.GrowthSeries, n int) []model.PricePoint {
	if n <= 0 || len(g.Points) <= n {
		return g.Points
	}
	if n == 1 {
		return g.Points[len(g.Points)-1:]
	}
	out := make([]model.PricePoint, 0, n)
	step := float64(len(g.Points)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, g.Points[int(math.Round(float64(i)*step))])
	}
	return out
}
