package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"StockDuel/internal/collector"
	"StockDuel/internal/model"
)

var countries = map[string]Country{
	"US": {Screener: "most_actives", Index: "^GSPC"},
	"IN": {Screener: "most_actives_in", Index: "^NSEI"},
	"JP": {Index: "^N225"},
}

func newDiscoverer(m *collector.MockProvider) *Discoverer {
	return New(m, m, m, countries)
}

func TestDiscover_Screener(t *testing.T) {
	m := &collector.MockProvider{Listings: map[string][]collector.Listing{
		"most_actives": {
			{Name: "Apple Inc.", Symbol: "AAPL"},
			{Name: "", Symbol: "XYZ"},
			{Name: "Mystery Corp", Symbol: ""},
		},
	}}

	dir := newDiscoverer(m).Discover(context.Background(), "us")
	assert.Equal(t, model.CompanyDirectory{
		"Apple Inc.":   "AAPL",
		"Unknown":      "XYZ",
		"Mystery Corp": "N/A",
	}, dir)
}

func TestDiscover_ScreenerCount(t *testing.T) {
	var listings []collector.Listing
	for i := 0; i < 5; i++ {
		listings = append(listings, collector.Listing{Name: string(rune('A' + i)), Symbol: model.TickerSymbol(rune('A' + i))})
	}
	m := &collector.MockProvider{Listings: map[string][]collector.Listing{"most_actives": listings}}

	d := newDiscoverer(m)
	d.Count = 3
	assert.Len(t, d.Discover(context.Background(), "US"), 3)
}

func TestDiscover_FallbackToIndex(t *testing.T) {
	m := &collector.MockProvider{
		ScreenErr: errors.New("screener down"),
		Indexes: map[model.TickerSymbol][]model.TickerSymbol{
			"^NSEI": {"RELIANCE.NS", "TCS.NS"},
		},
		Names: map[model.TickerSymbol]string{"RELIANCE.NS": "Reliance Industries"},
	}

	dir := newDiscoverer(m).Discover(context.Background(), "IN")
	assert.False(t, dir.IsEmpty())
	assert.Equal(t, model.CompanyDirectory{
		"Reliance Industries": "RELIANCE.NS",
		"TCS.NS":              "TCS.NS",
	}, dir)
}

func TestDiscover_EmptyScreenerFallsBack(t *testing.T) {
	m := &collector.MockProvider{
		Indexes: map[model.TickerSymbol][]model.TickerSymbol{"^GSPC": {"MMM"}},
	}
	dir := newDiscoverer(m).Discover(context.Background(), "US")
	assert.Equal(t, model.CompanyDirectory{"MMM": "MMM"}, dir)
}

func TestDiscover_NoScreenerKey(t *testing.T) {
	m := &collector.MockProvider{
		Listings: map[string][]collector.Listing{"": {{Name: "Never", Symbol: "NVR"}}},
		Indexes:  map[model.TickerSymbol][]model.TickerSymbol{"^N225": {"7203.T"}},
	}
	dir := newDiscoverer(m).Discover(context.Background(), "JP")
	assert.Equal(t, model.CompanyDirectory{"7203.T": "7203.T"}, dir)
}

func TestDiscover_TotalFailure(t *testing.T) {
	m := &collector.MockProvider{
		ScreenErr: errors.New("screener down"),
		IndexErr:  errors.New("index down"),
	}
	dir := newDiscoverer(m).Discover(context.Background(), "US")
	assert.Equal(t, model.CompanyDirectory{"No Stocks Found": "N/A"}, dir)
	assert.True(t, dir.IsEmpty())
}

func TestDiscover_UnknownCountry(t *testing.T) {
	dir := newDiscoverer(&collector.MockProvider{}).Discover(context.Background(), "ZZ")
	assert.Equal(t, model.EmptyDirectory(), dir)
}

func TestDiscover_NilCollaborators(t *testing.T) {
	dir := New(nil, nil, nil, countries).Discover(context.Background(), "US")
	assert.True(t, dir.IsEmpty())
}
