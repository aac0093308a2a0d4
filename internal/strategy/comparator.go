package strategy

import (
	"math"

	"github.com/rs/zerolog/log"

	"StockDuel/internal/model"
)

// Comparator judges two metric sets row by row.
type Comparator struct {
	Ties TiePolicy
}

// NewComparator creates a Comparator.
func NewComparator(ties TiePolicy) *Comparator {
	return &Comparator{Ties: ties}
}

// Compare builds one row per metric in model.MetricOrder and elects the overall
// winner by majority of rows won. A row where either side is unavailable or
// not finite has no winner.
func (c *Comparator) Compare(a model.Stock, ma model.MetricSet, b model.Stock, mb model.MetricSet) model.Comparison {
	cmp := model.Comparison{A: a, B: b, Rows: make([]model.ComparisonRow, 0, len(model.MetricOrder))}

	for _, m := range model.MetricOrder {
		va, vb := ma.Get(m), mb.Get(m)
		row := model.ComparisonRow{
			Metric:         m,
			Interpretation: m.Interpretation(),
			ValueA:         va.Display(m),
			ValueB:         vb.Display(m),
			Winner:         model.WinnerNone,
		}
		x, okA := va.Value()
		y, okB := vb.Value()
		if okA && okB && finite(x) && finite(y) {
			row.Winner = c.Ties.decide(x, y, m.LowerIsBetter())
		}
		switch row.Winner {
		case model.WinnerA:
			cmp.WinsA++
		case model.WinnerB:
			cmp.WinsB++
		}
		cmp.Rows = append(cmp.Rows, row)
	}

	cmp.Overall = c.Ties.decide(float64(cmp.WinsA), float64(cmp.WinsB), false)
	log.Debug().
		Str("a", string(a.Symbol)).Str("b", string(b.Symbol)).
		Int("wins_a", cmp.WinsA).Int("wins_b", cmp.WinsB).
		Str("overall", cmp.OverallName()).
		Msg("metrics compared")
	return cmp
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
