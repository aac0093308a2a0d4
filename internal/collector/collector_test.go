package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDuel/internal/model"
)

const chartJSON = `{"chart":{"result":[{"timestamp":[1700086400,1700000000,1700172800],
"indicators":{"quote":[{"close":[101.5,100.0,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
"summaryDetail":{"marketCap":{"raw":2.0E12,"fmt":"2T"},"trailingPE":{"raw":28.0}},
"defaultKeyStatistics":{"trailingEps":{"raw":6.5}},
"financialData":{"returnOnEquity":{"raw":1.5},"returnOnAssets":{},"profitMargins":{"raw":0.25}}}],"error":null}}`

const screenerJSON = `{"finance":{"result":[{"quotes":[
{"symbol":"NVDA","longName":"NVIDIA Corporation","shortName":"NVIDIA"},
{"symbol":"F","shortName":"Ford Motor"}]}],"error":null}}`

const searchJSON = `{"quotes":[{"symbol":"AAPL.BA","shortname":"Apple BA"},{"symbol":"AAPL","longname":"Apple Inc.","shortname":"Apple"}]}`

func newTestYahoo(t *testing.T) (*YahooProvider, *int) {
	t.Helper()
	crumbCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		crumbCalls++
		w.Write([]byte("abc123"))
	})
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))
		w.Write([]byte(chartJSON))
	})
	mux.HandleFunc("/v8/finance/chart/NOPE", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/AAPL", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(summaryJSON))
	})
	mux.HandleFunc("/v1/finance/screener/predefined/saved", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "most_actives", r.URL.Query().Get("scrIds"))
		assert.Equal(t, "200", r.URL.Query().Get("count"))
		w.Write([]byte(screenerJSON))
	})
	mux.HandleFunc("/v1/finance/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	y := NewYahooProvider("", 0, 0)
	y.BaseURL = srv.URL
	y.CookieURL = srv.URL + "/cookie"
	return y, &crumbCalls
}

func TestYahoo_FetchSeries(t *testing.T) {
	y, _ := newTestYahoo(t)

	s, err := y.FetchSeries(context.Background(), "AAPL", model.Period6Months)
	require.NoError(t, err)
	require.Len(t, s.Points, 2, "null close skipped")
	assert.Equal(t, 100.0, s.Points[0].Close, "sorted oldest first")
	assert.Equal(t, 101.5, s.Points[1].Close)
	assert.Equal(t, model.Period6Months, s.Period)

	_, err = y.FetchSeries(context.Background(), "NOPE", model.Period6Months)
	assert.Error(t, err)
}

func TestYahoo_FetchMetrics(t *testing.T) {
	y, crumbCalls := newTestYahoo(t)

	ms, err := y.FetchMetrics(context.Background(), "AAPL")
	require.NoError(t, err)

	v, ok := ms.Get(model.MarketCap).Value()
	assert.True(t, ok)
	assert.Equal(t, 2e12, v)
	assert.Equal(t, 28.0, ms.Get(model.PERatio).Or(0))
	assert.Equal(t, 6.5, ms.Get(model.EPS).Or(0))
	assert.Equal(t, 1.5, ms.Get(model.ROE).Or(0))
	assert.False(t, ms.Get(model.ROA).Available(), "empty object is unavailable")
	assert.Equal(t, 0.25, ms.Get(model.NetMargin).Or(0))

	_, err = y.FetchMetrics(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 1, *crumbCalls, "crumb is cached")
}

func TestYahoo_Screen(t *testing.T) {
	y, _ := newTestYahoo(t)

	l, err := y.Screen(context.Background(), "most_actives", 200)
	require.NoError(t, err)
	assert.Equal(t, []Listing{
		{Name: "NVIDIA Corporation", Symbol: "NVDA"},
		{Name: "Ford Motor", Symbol: "F"},
	}, l)
}

func TestYahoo_LookupName(t *testing.T) {
	y, _ := newTestYahoo(t)

	name, err := y.LookupName(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", name)

	name, err = y.LookupName(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "", name, "no exact match")
}

const constituentsHTML = `<html><body>
<table class="wikitable" id="constituents">
<tr><th>Symbol</th><th>Security</th></tr>
<tr><td><a href="#">MMM</a></td><td>3M</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td></tr>
<tr><td>MMM</td><td>3M again</td></tr>
<tr><td></td><td>blank</td></tr>
</table></body></html>`

func TestParseConstituents(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(constituentsHTML))
	require.NoError(t, err)

	syms, err := parseConstituents(doc, IndexPage{SymbolHeader: "symbol", DotToDash: true})
	require.NoError(t, err)
	assert.Equal(t, []model.TickerSymbol{"MMM", "BRK-B"}, syms)

	syms, err = parseConstituents(doc, IndexPage{SymbolHeader: "Symbol", Suffix: ".NS"})
	require.NoError(t, err)
	assert.Equal(t, []model.TickerSymbol{"MMM.NS", "BRK.B.NS"}, syms)

	_, err = parseConstituents(doc, IndexPage{SymbolHeader: "Ticker"})
	assert.Error(t, err)

	_, err = parseConstituents(doc, IndexPage{Table: "table#missing", SymbolHeader: "Symbol"})
	assert.Error(t, err)
}

func TestWikipediaIndex_Constituents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	w := NewWikipediaIndex(map[model.TickerSymbol]IndexPage{
		"^GSPC": {URL: srv.URL, SymbolHeader: "Symbol", DotToDash: true},
	}, "")

	syms, err := w.Constituents(context.Background(), "^GSPC")
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	_, err = w.Constituents(context.Background(), "^N225")
	assert.Error(t, err)
}

func TestCollector_Degrades(t *testing.T) {
	mock := &MockProvider{SeriesErr: errors.New("boom"), MetricsErr: errors.New("boom")}
	c := NewCollector(mock, nil)

	s := c.CollectSeries(context.Background(), "AAPL", model.Period1Year)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, model.TickerSymbol("AAPL"), s.Symbol)

	ms := c.CollectMetrics(context.Background(), "AAPL")
	assert.NotNil(t, ms)
	assert.Equal(t, 0, ms.Available())

	assert.Equal(t, "AAPL", c.ResolveName(context.Background(), "AAPL"))
}

func TestCollector_View(t *testing.T) {
	mock := &MockProvider{Price: 50, Names: map[model.TickerSymbol]string{"AAPL": "Apple Inc."}}
	c := NewCollector(mock, mock)
	ctx := context.Background()

	s := c.CollectSeries(ctx, "AAPL", model.Period3Months)
	assert.Equal(t, 63, s.Len())

	stock := model.Stock{Symbol: "AAPL", Name: c.ResolveName(ctx, "AAPL")}
	v := View(stock, s, c.CollectMetrics(ctx, "AAPL"))
	require.NotNil(t, v.Growth)
	require.NotNil(t, v.Range)
	assert.Equal(t, 100.0, v.Growth.Points[0].Close)
	assert.Equal(t, "Apple Inc.", v.Stock.Label())
	assert.Equal(t, len(model.MetricOrder), v.Metrics.Available())

	empty := View(stock, model.PriceSeries{Symbol: "AAPL"}, model.MetricSet{})
	assert.Nil(t, empty.Growth)
	assert.Nil(t, empty.Range)
}
