package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDuel/internal/model"
)

var (
	apple     = model.Stock{Symbol: "AAPL", Name: "Apple"}
	microsoft = model.Stock{Symbol: "MSFT", Name: "Microsoft"}
)

func appleMetrics() model.MetricSet {
	return model.MetricSet{
		model.MarketCap: model.Present(2e12),
		model.EPS:       model.Present(6.5),
		model.PERatio:   model.Present(28),
		model.ROE:       model.Present(1.5),
	}
}

func microsoftMetrics() model.MetricSet {
	return model.MetricSet{
		model.MarketCap: model.Present(1.8e12),
		model.EPS:       model.Present(9.2),
		model.PERatio:   model.Present(32),
		model.ROE:       model.Present(1.2),
	}
}

func rowFor(t *testing.T, c model.Comparison, m model.MetricName) model.ComparisonRow {
	t.Helper()
	for _, r := range c.Rows {
		if r.Metric == m {
			return r
		}
	}
	t.Fatalf("no row for %s", m)
	return model.ComparisonRow{}
}

func TestCompare_RowOrderAndValues(t *testing.T) {
	c := NewComparator(TieSecond).Compare(apple, appleMetrics(), microsoft, microsoftMetrics())

	require.Len(t, c.Rows, len(model.MetricOrder))
	for i, m := range model.MetricOrder {
		assert.Equal(t, m, c.Rows[i].Metric)
	}
	assert.Equal(t, "28.00", rowFor(t, c, model.PERatio).ValueA)
	assert.Equal(t, model.NotAvailable, rowFor(t, c, model.ROA).ValueB)
	assert.Equal(t, "Lower is better", rowFor(t, c, model.PERatio).Interpretation)
}

func TestCompare_Winners(t *testing.T) {
	c := NewComparator(TieSecond).Compare(apple, appleMetrics(), microsoft, microsoftMetrics())

	assert.Equal(t, model.WinnerA, rowFor(t, c, model.MarketCap).Winner)
	assert.Equal(t, model.WinnerB, rowFor(t, c, model.EPS).Winner)
	assert.Equal(t, model.WinnerA, rowFor(t, c, model.PERatio).Winner, "lower P/E wins")
	assert.Equal(t, model.WinnerA, rowFor(t, c, model.ROE).Winner)
	assert.Equal(t, model.WinnerNone, rowFor(t, c, model.ROA).Winner, "both unavailable")
	assert.Equal(t, model.WinnerNone, rowFor(t, c, model.NetMargin).Winner)

	assert.Equal(t, 3, c.WinsA)
	assert.Equal(t, 1, c.WinsB)
	assert.Equal(t, model.WinnerA, c.Overall)
	assert.Equal(t, "Apple", c.OverallName())
}

func TestCompare_OneSideUnavailable(t *testing.T) {
	ma := model.MetricSet{model.ROE: model.Present(0.3), model.PERatio: model.Unavailable()}
	mb := model.MetricSet{model.PERatio: model.Present(10)}

	c := NewComparator(TieSecond).Compare(apple, ma, microsoft, mb)
	for _, r := range c.Rows {
		assert.Equal(t, model.WinnerNone, r.Winner, r.Metric)
	}
}

func TestCompare_NonFiniteHasNoWinner(t *testing.T) {
	ma := model.MetricSet{model.EPS: model.Present(math.NaN()), model.ROE: model.Present(math.Inf(1))}
	mb := model.MetricSet{model.EPS: model.Present(5), model.ROE: model.Present(0.2)}

	c := NewComparator(TieSecond).Compare(apple, ma, microsoft, mb)
	for _, m := range []model.MetricName{model.EPS, model.ROE} {
		row := rowFor(t, c, m)
		assert.Equal(t, model.NotAvailable, row.ValueA, m)
		assert.Equal(t, model.WinnerNone, row.Winner, m)
	}
	assert.Equal(t, 0, c.WinsB)
}

func TestCompare_DirectionProperties(t *testing.T) {
	cmp := NewComparator(TieSecond)
	pairs := [][2]float64{{1, 2}, {-5, 3}, {0.001, 0.002}, {10, 1000}}
	for _, p := range pairs {
		lo, hi := p[0], p[1]
		for _, m := range model.MetricOrder {
			var ma, mb model.MetricSet
			if m.LowerIsBetter() {
				ma, mb = model.MetricSet{m: model.Present(lo)}, model.MetricSet{m: model.Present(hi)}
			} else {
				ma, mb = model.MetricSet{m: model.Present(hi)}, model.MetricSet{m: model.Present(lo)}
			}
			c := cmp.Compare(apple, ma, microsoft, mb)
			assert.Equal(t, model.WinnerA, rowFor(t, c, m).Winner, "%s %v", m, p)
		}
	}
}

func TestCompare_TiePolicy(t *testing.T) {
	ma := model.MetricSet{model.EPS: model.Present(5)}
	mb := model.MetricSet{model.EPS: model.Present(5)}

	second := NewComparator(TieSecond).Compare(apple, ma, microsoft, mb)
	assert.Equal(t, model.WinnerB, rowFor(t, second, model.EPS).Winner)
	assert.Equal(t, model.WinnerB, second.Overall)

	none := NewComparator(TieNone).Compare(apple, ma, microsoft, mb)
	assert.Equal(t, model.WinnerNone, rowFor(t, none, model.EPS).Winner)
	assert.Equal(t, model.WinnerNone, none.Overall)
	assert.Equal(t, "", none.OverallName())

	// equal win counts with no equal rows
	ma = model.MetricSet{model.EPS: model.Present(6), model.ROE: model.Present(0.1)}
	mb = model.MetricSet{model.EPS: model.Present(5), model.ROE: model.Present(0.2)}
	split := NewComparator(TieSecond).Compare(apple, ma, microsoft, mb)
	assert.Equal(t, 1, split.WinsA)
	assert.Equal(t, 1, split.WinsB)
	assert.Equal(t, model.WinnerB, split.Overall)
}

func TestScore_AppleVsMicrosoft(t *testing.T) {
	r := NewScorer(TieSecond, 0).Score("Apple", appleMetrics(), "Microsoft", microsoftMetrics())

	// A wins market cap, P/E and ROE; B wins EPS.
	assert.InDelta(t, 3.0, r.A.Score, 1e-9)
	assert.InDelta(t, 1.0, r.B.Score, 1e-9)
	assert.Equal(t, model.WinnerA, r.Winner)
	assert.True(t, r.A.Winner)
	assert.False(t, r.B.Winner)
	assert.Equal(t, "Apple", r.WinnerName())
	assert.InDelta(t, 2.0, r.A.Difference, 1e-9)
	assert.Equal(t, r.A.Difference, r.B.Difference)
	assert.Equal(t, model.SignificantAdvantage, r.Advantage)
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(TieSecond, 0)
	r1 := s.Score("Apple", appleMetrics(), "Microsoft", microsoftMetrics())
	r2 := s.Score("Apple", appleMetrics(), "Microsoft", microsoftMetrics())
	assert.Equal(t, r1, r2)
}

func TestScore_Degenerate(t *testing.T) {
	r := NewScorer(TieSecond, 0).Score("Apple", appleMetrics(), "Clone", appleMetrics())

	assert.Equal(t, 0.0, r.A.Score)
	assert.Equal(t, 0.0, r.B.Score)
	assert.Equal(t, 0.0, r.A.Difference)
	assert.Equal(t, model.NoStrongAdvantage, r.Advantage)
	assert.Equal(t, model.WinnerB, r.Winner, "ties resolve to the second stock")

	none := NewScorer(TieNone, 0).Score("Apple", appleMetrics(), "Clone", appleMetrics())
	assert.Equal(t, model.WinnerNone, none.Winner)
	assert.False(t, none.A.Winner)
	assert.False(t, none.B.Winner)
}

func TestScore_ScaledRange(t *testing.T) {
	r := NewScorer(TieSecond, 0).Score("Apple", appleMetrics(), "Empty", model.MetricSet{})
	assert.GreaterOrEqual(t, r.A.Score, 0.0)
	assert.LessOrEqual(t, r.A.Score, 4.0)
	assert.Equal(t, 0.0, r.B.Score)
}

func TestScore_NonPositivePE(t *testing.T) {
	f, err := ExtractFeatures(model.MetricSet{model.PERatio: model.Present(-12)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.PEInverse)

	f, err = ExtractFeatures(model.MetricSet{model.PERatio: model.Present(20), model.MarketCap: model.Present(3e9)})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, f.PEInverse, 1e-12)
	assert.InDelta(t, 3.0, f.MarketCapBillions, 1e-12)
}

func TestScore_ExtractionFailureScoresZero(t *testing.T) {
	bad := model.MetricSet{model.EPS: model.Present(math.Inf(1))}
	r := NewScorer(TieSecond, 0).Score("Bad", bad, "Microsoft", microsoftMetrics())

	assert.Equal(t, 0.0, r.A.Score)
	assert.Greater(t, r.B.Score, 0.0)
	assert.Equal(t, model.WinnerB, r.Winner)
}

func TestScore_Threshold(t *testing.T) {
	ma := model.MetricSet{model.EPS: model.Present(2)}
	mb := model.MetricSet{model.EPS: model.Present(1)}

	r := NewScorer(TieSecond, 0).Score("A", ma, "B", mb)
	assert.InDelta(t, 1.0, r.A.Difference, 1e-9)
	assert.Equal(t, model.SignificantAdvantage, r.Advantage)

	r = NewScorer(TieSecond, 1.5).Score("A", ma, "B", mb)
	assert.Equal(t, model.NoStrongAdvantage, r.Advantage)
}

func TestParseTiePolicy(t *testing.T) {
	p, err := ParseTiePolicy("")
	require.NoError(t, err)
	assert.Equal(t, TieSecond, p)

	p, err = ParseTiePolicy("none")
	require.NoError(t, err)
	assert.Equal(t, TieNone, p)

	_, err = ParseTiePolicy("first")
	assert.Error(t, err)
}
