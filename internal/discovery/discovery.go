package discovery

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"StockDuel/internal/collector"
	"StockDuel/internal/model"
)

// DefaultScreenerCount is the maximum number of screener results requested.
const DefaultScreenerCount = 200

// Country holds the provider keys used to discover one country's tickers.
// Either field may be empty.
type Country struct {
	Screener string             `yaml:"screener"`
	Index    model.TickerSymbol `yaml:"index"`
}

// Discoverer builds a CompanyDirectory for a country from an active-stocks
// screener, falling back to the constituents of a major index.
type Discoverer struct {
	Screener     collector.Screener
	Constituents collector.ConstituentSource
	Namer        collector.Namer
	Countries    map[string]Country
	Count        int
}

// New creates a Discoverer. Any collaborator may be nil, which disables
// the tier that depends on it.
func New(screener collector.Screener, constituents collector.ConstituentSource, namer collector.Namer, countries map[string]Country) *Discoverer {
	return &Discoverer{
		Screener:     screener,
		Constituents: constituents,
		Namer:        namer,
		Countries:    countries,
		Count:        DefaultScreenerCount,
	}
}

// Discover returns name -> symbol for country. It never fails; when nothing
// can be found the sentinel directory {"No Stocks Found": "N/A"} is returned.
func (d *Discoverer) Discover(ctx context.Context, country string) model.CompanyDirectory {
	code := strings.ToUpper(strings.TrimSpace(country))
	cfg, ok := d.Countries[code]
	if !ok {
		log.Warn().Str("country", code).Msg("country not configured")
		return model.EmptyDirectory()
	}

	dir := d.fromScreener(ctx, code, cfg.Screener)
	if len(dir) == 0 {
		dir = d.fromIndex(ctx, code, cfg.Index)
	}
	if len(dir) == 0 {
		log.Warn().Str("country", code).Msg("no stocks found")
		return model.EmptyDirectory()
	}
	log.Info().Str("country", code).Int("stocks", len(dir)).Msg("discovery complete")
	return dir
}

func (d *Discoverer) fromScreener(ctx context.Context, country, key string) model.CompanyDirectory {
	if key == "" || d.Screener == nil {
		return nil
	}
	count := d.Count
	if count <= 0 {
		count = DefaultScreenerCount
	}
	listings, err := d.Screener.Screen(ctx, key, count)
	if err != nil {
		log.Warn().Err(err).Str("country", country).Str("screener", key).Msg("screener failed")
		return nil
	}
	if len(listings) > count {
		listings = listings[:count]
	}

	dir := make(model.CompanyDirectory, len(listings))
	for _, l := range listings {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			name = model.UnknownName
		}
		sym := l.Symbol
		if sym == "" {
			sym = model.NoSymbol
		}
		dir[name] = sym
	}
	return dir
}

func (d *Discoverer) fromIndex(ctx context.Context, country string, index model.TickerSymbol) model.CompanyDirectory {
	if index == "" || d.Constituents == nil {
		return nil
	}
	symbols, err := d.Constituents.Constituents(ctx, index)
	if err != nil {
		log.Warn().Err(err).Str("country", country).Str("index", string(index)).Msg("index constituents failed")
		return nil
	}

	dir := make(model.CompanyDirectory, len(symbols))
	for _, sym := range symbols {
		dir[d.name(ctx, sym)] = sym
	}
	return dir
}

// name resolves a display name, the raw symbol when the lookup fails or is empty.
func (d *Discoverer) name(ctx context.Context, sym model.TickerSymbol) string {
	if d.Namer == nil {
		return string(sym)
	}
	name, err := d.Namer.LookupName(ctx, sym)
	if err != nil {
		log.Debug().Err(err).Str("symbol", string(sym)).Msg("name lookup failed")
		return string(sym)
	}
	if name = strings.TrimSpace(name); name == "" {
		return string(sym)
	}
	return name
}
