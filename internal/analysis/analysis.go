package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockDuel/internal/collector"
	"StockDuel/internal/model"
	"StockDuel/internal/strategy"
)

var (
	ErrSameTicker  = errors.New("please select two different stocks")
	ErrEmptyTicker = errors.New("please enter both stock symbols")
	ErrBadPeriod   = errors.New("unknown period, use one of 3mo, 6mo, 1y, 5y, 10y")
)

// InputError rejects a request before anything is fetched.
type InputError struct {
	Err error
	A   model.TickerSymbol
	B   model.TickerSymbol
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// Advisor produces the narrative part of a report.
type Advisor interface {
	Advise(ctx context.Context, nameA string, metricsA model.MetricSet, nameB string, metricsB model.MetricSet) string
}

// Request selects the pair and period of one run. Empty names are resolved
// through the collector.
type Request struct {
	A, B         model.TickerSymbol
	NameA, NameB string
	Period       model.Period
	SkipAdvice   bool
}

// Analyzer runs the fetch, compare, score and advise chain for a pair.
type Analyzer struct {
	Collector  *collector.Collector
	Comparator *strategy.Comparator
	Scorer     *strategy.Scorer
	Advisor    Advisor // nil disables the narrative
	Parallel   bool
}

// NewAnalyzer creates an Analyzer. advisor may be nil.
func NewAnalyzer(c *collector.Collector, cmp *strategy.Comparator, scorer *strategy.Scorer, advisor Advisor) *Analyzer {
	return &Analyzer{Collector: c, Comparator: cmp, Scorer: scorer, Advisor: advisor, Parallel: true}
}

// Validate normalizes the request symbols and period and rejects empty or
// identical symbols and unknown periods.
func (r *Request) Validate() error {
	r.A = normalize(r.A)
	r.B = normalize(r.B)
	if r.A == "" || r.B == "" {
		return &InputError{Err: ErrEmptyTicker, A: r.A, B: r.B}
	}
	if r.A == r.B {
		return &InputError{Err: ErrSameTicker, A: r.A, B: r.B}
	}
	if r.Period == "" {
		r.Period = model.Period1Year
		return nil
	}
	p, err := model.ParsePeriod(string(r.Period))
	if err != nil {
		return &InputError{Err: fmt.Errorf("%w: %q", ErrBadPeriod, r.Period), A: r.A, B: r.B}
	}
	r.Period = p
	return nil
}

func normalize(s model.TickerSymbol) model.TickerSymbol {
	return model.TickerSymbol(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Run executes one analysis. Provider failures degrade into empty data; the
// only errors returned are *InputError and context cancellation.
func (a *Analyzer) Run(ctx context.Context, req Request) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:       uuid.NewString(),
		Period:      req.Period,
		GeneratedAt: time.Now(),
	}
	logger := log.With().Str("run_id", report.RunID).
		Str("a", string(req.A)).Str("b", string(req.B)).Str("period", string(req.Period)).Logger()
	logger.Info().Msg("analysis started")

	var (
		seriesA, seriesB   model.PriceSeries
		metricsA, metricsB model.MetricSet
		nameA, nameB       = req.NameA, req.NameB
	)
	fetch := []func(context.Context){
		func(ctx context.Context) { seriesA = a.Collector.CollectSeries(ctx, req.A, req.Period) },
		func(ctx context.Context) { seriesB = a.Collector.CollectSeries(ctx, req.B, req.Period) },
		func(ctx context.Context) { metricsA = a.Collector.CollectMetrics(ctx, req.A) },
		func(ctx context.Context) { metricsB = a.Collector.CollectMetrics(ctx, req.B) },
	}
	if nameA == "" {
		fetch = append(fetch, func(ctx context.Context) { nameA = a.Collector.ResolveName(ctx, req.A) })
	}
	if nameB == "" {
		fetch = append(fetch, func(ctx context.Context) { nameB = a.Collector.ResolveName(ctx, req.B) })
	}

	if a.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, f := range fetch {
			g.Go(func() error {
				f(gctx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, f := range fetch {
			f(ctx)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis %s: %w", report.RunID, err)
	}

	stockA := model.Stock{Symbol: req.A, Name: nameA}
	stockB := model.Stock{Symbol: req.B, Name: nameB}
	report.A = collector.View(stockA, seriesA, metricsA)
	report.B = collector.View(stockB, seriesB, metricsB)

	report.Comparison = a.Comparator.Compare(stockA, metricsA, stockB, metricsB)
	report.Scores = a.Scorer.Score(stockA.Label(), metricsA, stockB.Label(), metricsB)

	if a.Advisor != nil && !req.SkipAdvice {
		report.Narrative = a.Advisor.Advise(ctx, stockA.Label(), metricsA, stockB.Label(), metricsB)
	}

	logger.Info().
		Str("overall", report.Comparison.OverallName()).
		Str("best_investment", report.Scores.WinnerName()).
		Float64("score_a", report.Scores.A.Score).
		Float64("score_b", report.Scores.B.Score).
		Msg("analysis complete")
	return report, nil
}
