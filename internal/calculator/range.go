package calculator

import (
	"errors"
	"math"

	"StockDuel/internal/model"
)

// CalculateRange scans a growth series and returns its high, low and total return.
func CalculateRange(g model.GrowthSeries) (model.SeriesRange, error) {
	if len(g.Points) == 0 {
		return model.SeriesRange{}, errors.New("no points provided")
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	for _, p := range g.Points {
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}
	return model.SeriesRange{
		High:        high,
		Low:         low,
		TotalReturn: g.Last() - Base,
	}, nil
}

// Position returns where v sits within [low, high] (0.0~1.0).
func Position(v, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (v - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
