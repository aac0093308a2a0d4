package collector

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"StockDuel/internal/calculator"
	"StockDuel/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Symbols without configured data get generated bars and a full metric set.
type MockProvider struct {
	Price      float64
	Series     map[model.TickerSymbol]model.PriceSeries
	Metrics    map[model.TickerSymbol]model.MetricSet
	Names      map[model.TickerSymbol]string
	Listings   map[string][]Listing
	Indexes    map[model.TickerSymbol][]model.TickerSymbol
	SeriesErr  error
	MetricsErr error
	ScreenErr  error
	IndexErr   error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchSeries(_ context.Context, symbol model.TickerSymbol, period model.Period) (model.PriceSeries, error) {
	if m.SeriesErr != nil {
		return model.PriceSeries{Symbol: symbol, Period: period}, m.SeriesErr
	}
	if s, ok := m.Series[symbol]; ok {
		return s, nil
	}
	return model.PriceSeries{Symbol: symbol, Period: period, Points: generateMockBars(m.price(), periodDays(period))}, nil
}

func (m *MockProvider) FetchMetrics(_ context.Context, symbol model.TickerSymbol) (model.MetricSet, error) {
	if m.MetricsErr != nil {
		return nil, m.MetricsErr
	}
	if ms, ok := m.Metrics[symbol]; ok {
		return ms, nil
	}
	p := m.price()
	return model.MetricSet{
		model.MarketCap: model.Present(p * 1e10),
		model.EPS:       model.Present(p / 25),
		model.PERatio:   model.Present(25),
		model.ROE:       model.Present(0.2),
		model.ROA:       model.Present(0.1),
		model.NetMargin: model.Present(0.15),
	}, nil
}

func (m *MockProvider) LookupName(_ context.Context, symbol model.TickerSymbol) (string, error) {
	return m.Names[symbol], nil
}

func (m *MockProvider) Screen(_ context.Context, key string, count int) ([]Listing, error) {
	if m.ScreenErr != nil {
		return nil, m.ScreenErr
	}
	l := m.Listings[key]
	if count > 0 && len(l) > count {
		l = l[:count]
	}
	return l, nil
}

func (m *MockProvider) Constituents(_ context.Context, index model.TickerSymbol) ([]model.TickerSymbol, error) {
	if m.IndexErr != nil {
		return nil, m.IndexErr
	}
	return m.Indexes[index], nil
}

func (m *MockProvider) price() float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 100
}

func periodDays(p model.Period) int {
	switch p {
	case model.Period3Months:
		return 63
	case model.Period6Months:
		return 126
	case model.Period5Years:
		return 260 // weekly bars
	case model.Period10Years:
		return 520
	}
	return 252
}

func generateMockBars(basePrice float64, count int) []model.PricePoint {
	bars := make([]model.PricePoint, count)
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		drift := 1 + float64(i-count/2)*0.001
		wave := 1 + 0.02*math.Sin(float64(i)/5)
		bars[i] = model.PricePoint{
			Time:  now.AddDate(0, 0, -(count - i)),
			Close: basePrice * drift * wave,
		}
	}
	return bars
}

// Collector fetches data for one stock and degrades every provider failure
// into an empty value instead of an error.
type Collector struct {
	Provider MetricsProvider
	Namer    Namer
}

// NewCollector creates a new Collector. namer may be nil.
func NewCollector(provider MetricsProvider, namer Namer) *Collector {
	return &Collector{Provider: provider, Namer: namer}
}

// CollectSeries fetches the price history; on failure the series is empty.
func (c *Collector) CollectSeries(ctx context.Context, symbol model.TickerSymbol, period model.Period) model.PriceSeries {
	s, err := c.Provider.FetchSeries(ctx, symbol, period)
	if err != nil {
		log.Warn().Err(err).Str("symbol", string(symbol)).Str("period", string(period)).
			Str("provider", c.Provider.Name()).Msg("price history unavailable, using empty series")
		return model.PriceSeries{Symbol: symbol, Period: period}
	}
	return s
}

// CollectMetrics fetches fundamentals; on failure every metric is unavailable.
func (c *Collector) CollectMetrics(ctx context.Context, symbol model.TickerSymbol) model.MetricSet {
	ms, err := c.Provider.FetchMetrics(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", string(symbol)).
			Str("provider", c.Provider.Name()).Msg("metrics unavailable, using N/A")
		return model.MetricSet{}
	}
	if ms == nil {
		return model.MetricSet{}
	}
	return ms
}

// ResolveName returns a display name for symbol, the symbol itself when unknown.
func (c *Collector) ResolveName(ctx context.Context, symbol model.TickerSymbol) string {
	if c.Namer == nil {
		return string(symbol)
	}
	name, err := c.Namer.LookupName(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", string(symbol)).Msg("name lookup failed")
		return string(symbol)
	}
	if name == "" {
		return string(symbol)
	}
	return name
}

// View assembles a StockView from already collected data.
func View(stock model.Stock, series model.PriceSeries, metrics model.MetricSet) model.StockView {
	v := model.StockView{Stock: stock, Series: series, Metrics: metrics}
	g, ok := calculator.Normalize(series)
	if !ok {
		log.Warn().Str("symbol", string(stock.Symbol)).Int("points", series.Len()).
			Msg("growth series unavailable")
		return v
	}
	v.Growth = &g
	if r, err := calculator.CalculateRange(g); err == nil {
		v.Range = &r
	}
	return v
}
