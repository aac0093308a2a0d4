package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"StockDuel/internal/model"
)

const (
	yahooBaseURL   = "https://query2.finance.yahoo.com"
	yahooCookieURL = "https://fc.yahoo.com"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var errUnauthorized = errors.New("yahoo: unauthorized")

// YahooProvider implements MetricsProvider, Screener and Namer on the public
// Yahoo Finance endpoints.
type YahooProvider struct {
	BaseURL   string
	CookieURL string
	UserAgent string
	Client    *http.Client
	Limiter   *rate.Limiter

	mu    sync.Mutex
	crumb string
}

// NewYahooProvider creates a provider with optional proxy support. Requests
// are throttled to rps per second; rps <= 0 disables throttling.
func NewYahooProvider(proxyURL string, timeout time.Duration, rps float64) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jar, _ := cookiejar.New(nil)
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &YahooProvider{
		BaseURL:   yahooBaseURL,
		CookieURL: yahooCookieURL,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		Limiter: rate.NewLimiter(limit, 1),
	}
}

func (y *YahooProvider) Name() string { return "yahoo" }

// get performs a throttled GET and returns the body of a 200 response.
func (y *YahooProvider) get(ctx context.Context, endpoint string) ([]byte, error) {
	if y.Limiter != nil {
		if err := y.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.UserAgent)

	resp, err := y.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo: status %d, body: %.200s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (y *YahooProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	body, err := y.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// sessionCrumb returns the crumb required by quoteSummary and the screener,
// fetching the session cookie and crumb on first use.
func (y *YahooProvider) sessionCrumb(ctx context.Context) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.crumb != "" {
		return y.crumb, nil
	}

	// The cookie endpoint answers 404 but sets the session cookie.
	if req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.CookieURL, nil); err == nil {
		req.Header.Set("User-Agent", y.UserAgent)
		if resp, err := y.Client.Do(req); err == nil {
			resp.Body.Close()
		} else {
			log.Debug().Err(err).Msg("yahoo cookie request failed")
		}
	}

	body, err := y.get(ctx, y.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", fmt.Errorf("yahoo crumb: unexpected body %.40q", crumb)
	}
	y.crumb = crumb
	return crumb, nil
}

// getWithCrumb calls an endpoint that needs the session crumb. A 401 drops the
// cached crumb so the next call starts a fresh session.
func (y *YahooProvider) getWithCrumb(ctx context.Context, endpoint string, q url.Values, out any) error {
	crumb, err := y.sessionCrumb(ctx)
	if err != nil {
		return err
	}
	q.Set("crumb", crumb)
	err = y.getJSON(ctx, endpoint+"?"+q.Encode(), out)
	if errors.Is(err, errUnauthorized) {
		y.mu.Lock()
		y.crumb = ""
		y.mu.Unlock()
	}
	return err
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) Error() string {
	return fmt.Sprintf("yahoo api error %s: %s", e.Code, e.Description)
}

// chartInterval keeps long windows at weekly resolution.
func chartInterval(p model.Period) string {
	switch p {
	case model.Period5Years, model.Period10Years:
		return "1wk"
	}
	return "1d"
}

// FetchSeries returns the closing prices of symbol over period, oldest first.
func (y *YahooProvider) FetchSeries(ctx context.Context, symbol model.TickerSymbol, period model.Period) (model.PriceSeries, error) {
	series := model.PriceSeries{Symbol: symbol, Period: period}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.BaseURL, url.PathEscape(string(symbol)), chartInterval(period), period)

	var chart yahooChart
	if err := y.getJSON(ctx, u, &chart); err != nil {
		return series, err
	}
	if chart.Chart.Error != nil {
		return series, chart.Chart.Error
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return series, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return series, fmt.Errorf("yahoo: no close prices for %s", symbol)
	}
	closes := result.Indicators.Quote[0].Close

	series.Points = make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays etc.)
		}
		series.Points = append(series.Points, model.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	sort.Slice(series.Points, func(i, j int) bool { return series.Points[i].Time.Before(series.Points[j].Time) })
	return series, nil
}

// yahooNumber is Yahoo's {"raw": 1.2, "fmt": "1.20"} wrapper; {} means unknown.
type yahooNumber struct {
	Raw *float64 `json:"raw"`
}

func (n *yahooNumber) metric() model.MetricValue {
	if n == nil || n.Raw == nil {
		return model.Unavailable()
	}
	return model.Present(*n.Raw)
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				MarketCap  *yahooNumber `json:"marketCap"`
				TrailingPE *yahooNumber `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				TrailingEps *yahooNumber `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ReturnOnEquity *yahooNumber `json:"returnOnEquity"`
				ReturnOnAssets *yahooNumber `json:"returnOnAssets"`
				ProfitMargins  *yahooNumber `json:"profitMargins"`
			} `json:"financialData"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchMetrics returns the fundamentals of symbol. Fields Yahoo does not
// report are left unavailable.
func (y *YahooProvider) FetchMetrics(ctx context.Context, symbol model.TickerSymbol) (model.MetricSet, error) {
	q := url.Values{}
	q.Set("modules", "summaryDetail,defaultKeyStatistics,financialData")
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", y.BaseURL, url.PathEscape(string(symbol)))

	var summary yahooSummary
	if err := y.getWithCrumb(ctx, endpoint, q, &summary); err != nil {
		return nil, err
	}
	if summary.QuoteSummary.Error != nil {
		return nil, summary.QuoteSummary.Error
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no summary for %s", symbol)
	}
	r := summary.QuoteSummary.Result[0]
	return model.MetricSet{
		model.MarketCap: r.SummaryDetail.MarketCap.metric(),
		model.EPS:       r.DefaultKeyStatistics.TrailingEps.metric(),
		model.PERatio:   r.SummaryDetail.TrailingPE.metric(),
		model.ROE:       r.FinancialData.ReturnOnEquity.metric(),
		model.ROA:       r.FinancialData.ReturnOnAssets.metric(),
		model.NetMargin: r.FinancialData.ProfitMargins.metric(),
	}, nil
}

type yahooScreener struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol    string `json:"symbol"`
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"quotes"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"finance"`
}

// Screen runs a predefined Yahoo screener such as "most_actives".
func (y *YahooProvider) Screen(ctx context.Context, key string, count int) ([]Listing, error) {
	q := url.Values{}
	q.Set("scrIds", key)
	q.Set("count", strconv.Itoa(count))
	q.Set("formatted", "false")
	q.Set("lang", "en-US")

	var res yahooScreener
	if err := y.getWithCrumb(ctx, y.BaseURL+"/v1/finance/screener/predefined/saved", q, &res); err != nil {
		return nil, err
	}
	if res.Finance.Error != nil {
		return nil, res.Finance.Error
	}
	if len(res.Finance.Result) == 0 {
		return nil, nil
	}
	quotes := res.Finance.Result[0].Quotes
	out := make([]Listing, 0, len(quotes))
	for _, qt := range quotes {
		name := qt.LongName
		if name == "" {
			name = qt.ShortName
		}
		out = append(out, Listing{Name: name, Symbol: model.TickerSymbol(qt.Symbol)})
	}
	return out, nil
}

type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longname"`
		ShortName string `json:"shortname"`
	} `json:"quotes"`
}

// LookupName resolves a symbol through the search endpoint. Only an exact
// symbol match counts.
func (y *YahooProvider) LookupName(ctx context.Context, symbol model.TickerSymbol) (string, error) {
	q := url.Values{}
	q.Set("q", string(symbol))
	q.Set("quotesCount", "5")
	q.Set("newsCount", "0")

	var res yahooSearch
	if err := y.getJSON(ctx, y.BaseURL+"/v1/finance/search?"+q.Encode(), &res); err != nil {
		return "", err
	}
	for _, qt := range res.Quotes {
		if !strings.EqualFold(qt.Symbol, string(symbol)) {
			continue
		}
		if qt.LongName != "" {
			return qt.LongName, nil
		}
		return qt.ShortName, nil
	}
	return "", nil
}
