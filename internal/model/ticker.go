package model

import "sort"

// TickerSymbol identifies a tradable instrument, e.g. "AAPL" or "RELIANCE.NS".
type TickerSymbol string

// Sentinel values of a CompanyDirectory that discovery failed to fill.
const (
	NoStocksFound = "No Stocks Found"
	NoSymbol      = TickerSymbol("N/A")
	UnknownName   = "Unknown"
)

// CompanyDirectory maps a display name to its ticker for one country selection.
type CompanyDirectory map[string]TickerSymbol

// EmptyDirectory returns the sentinel directory exposed when discovery finds nothing.
func EmptyDirectory() CompanyDirectory {
	return CompanyDirectory{NoStocksFound: NoSymbol}
}

// IsEmpty reports whether d is the sentinel directory.
func (d CompanyDirectory) IsEmpty() bool {
	if len(d) != 1 {
		return len(d) == 0
	}
	sym, ok := d[NoStocksFound]
	return ok && sym == NoSymbol
}

// Names returns the display names sorted alphabetically.
func (d CompanyDirectory) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
