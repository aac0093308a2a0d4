package model

// Winner marks which side of a pair won a comparison.
type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerNone Winner = ""
)

// Stock is one side of a comparison.
type Stock struct {
	Symbol TickerSymbol
	Name   string
}

// Label returns the display name, falling back to the symbol.
func (s Stock) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Symbol)
}

// ComparisonRow is one metric judged side by side.
type ComparisonRow struct {
	Metric         MetricName
	Interpretation string
	ValueA         string
	ValueB         string
	Winner         Winner
}

// Comparison is the ordered per-metric judgement and its majority winner.
type Comparison struct {
	A, B    Stock
	Rows    []ComparisonRow
	WinsA   int
	WinsB   int
	Overall Winner
}

// OverallName returns the label of the overall winner, empty when none.
func (c Comparison) OverallName() string {
	return pick(c.Overall, c.A, c.B)
}

// Advantage qualifies the gap between two composite scores.
type Advantage string

const (
	SignificantAdvantage Advantage = "significant advantage"
	NoStrongAdvantage    Advantage = "no strong advantage"
)

// ScoreResult is one stock's composite score within a pair.
type ScoreResult struct {
	Name       string
	Score      float64
	Winner     bool
	Difference float64
}

// ScoreReport holds both sides of a scoring run. Scores are only
// comparable inside one report since scaling bounds are pair-relative.
type ScoreReport struct {
	A, B      ScoreResult
	Winner    Winner
	Advantage Advantage
}

// WinnerName returns the name of the better investment, empty when none.
func (r ScoreReport) WinnerName() string {
	switch r.Winner {
	case WinnerA:
		return r.A.Name
	case WinnerB:
		return r.B.Name
	}
	return ""
}

func pick(w Winner, a, b Stock) string {
	switch w {
	case WinnerA:
		return a.Label()
	case WinnerB:
		return b.Label()
	}
	return ""
}
