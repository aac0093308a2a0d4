package collector

import (
	"context"

	"StockDuel/internal/model"
)

// MetricsProvider fetches price history and fundamentals for a symbol.
type MetricsProvider interface {
	FetchSeries(ctx context.Context, symbol model.TickerSymbol, period model.Period) (model.PriceSeries, error)
	FetchMetrics(ctx context.Context, symbol model.TickerSymbol) (model.MetricSet, error)
	Name() string
}

// Listing is one screener result. Either field may be empty.
type Listing struct {
	Name   string
	Symbol model.TickerSymbol
}

// Screener returns the most active instruments for a provider screener key.
type Screener interface {
	Screen(ctx context.Context, key string, count int) ([]Listing, error)
}

// ConstituentSource lists the members of a market index.
type ConstituentSource interface {
	Constituents(ctx context.Context, index model.TickerSymbol) ([]model.TickerSymbol, error)
}

// Namer resolves a symbol to a display name. An empty name with a nil
// error means the provider knows nothing about the symbol.
type Namer interface {
	LookupName(ctx context.Context, symbol model.TickerSymbol) (string, error)
}
