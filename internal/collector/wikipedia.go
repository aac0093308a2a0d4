package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StockDuel/internal/model"
)

// IndexPage tells WikipediaIndex where the constituents of an index are listed.
type IndexPage struct {
	URL          string `yaml:"url"`
	Table        string `yaml:"table"`         // CSS selector of the constituents table
	SymbolHeader string `yaml:"symbol_header"` // header text of the ticker column
	Suffix       string `yaml:"suffix"`        // exchange suffix appended for Yahoo, e.g. ".NS"
	DotToDash    bool   `yaml:"dot_to_dash"`   // BRK.B -> BRK-B
}

// WikipediaIndex implements ConstituentSource by scraping constituents tables.
type WikipediaIndex struct {
	Pages     map[model.TickerSymbol]IndexPage
	UserAgent string
	Client    *http.Client
}

// NewWikipediaIndex creates a scraper with optional proxy support.
func NewWikipediaIndex(pages map[model.TickerSymbol]IndexPage, proxyURL string) *WikipediaIndex {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &WikipediaIndex{
		Pages:     pages,
		UserAgent: userAgent,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Constituents returns the index members in table order, without duplicates.
func (w *WikipediaIndex) Constituents(ctx context.Context, index model.TickerSymbol) ([]model.TickerSymbol, error) {
	page, ok := w.Pages[index]
	if !ok {
		return nil, fmt.Errorf("no constituents page configured for %s", index)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", w.UserAgent)
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}
	return parseConstituents(doc, page)
}

func parseConstituents(doc *goquery.Document, page IndexPage) ([]model.TickerSymbol, error) {
	sel := page.Table
	if sel == "" {
		sel = "table#constituents"
	}
	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table matching %q", sel)
	}

	col := -1
	table.Find("tr").First().Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(th.Text()), page.SymbolHeader) {
			col = i
			return false
		}
		return true
	})
	if col < 0 {
		return nil, fmt.Errorf("no column %q in %q", page.SymbolHeader, sel)
	}

	seen := make(map[model.TickerSymbol]bool)
	var out []model.TickerSymbol
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() <= col {
			return // header or short row
		}
		raw := strings.TrimSpace(cells.Eq(col).Text())
		if raw == "" {
			return
		}
		if page.DotToDash {
			raw = strings.ReplaceAll(raw, ".", "-")
		}
		sym := model.TickerSymbol(strings.ToUpper(raw) + page.Suffix)
		if seen[sym] {
			return
		}
		seen[sym] = true
		out = append(out, sym)
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("table %q has no constituents", sel)
	}
	return out, nil
}
