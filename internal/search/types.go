// Package search aggregates product offers from Taiwanese price-comparison
// sites and marketplaces, filters out accessories and lookalikes, and reports
// price statistics for one product query.
package search

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Item is one offer found on a marketplace.
type Item struct {
	Name      string
	Price     int
	Link      string
	Platform  string
	Relevance float64
}

// SourceStats records how many relevant offers a source contributed and the
// search URL used, so replies can link back to it.
type SourceStats struct {
	URL   string
	Count int
}

// Aggregate is the merged result of one comprehensive search. Results holds
// the cheapest offers first, capped at maxResults.
type Aggregate struct {
	ProductName  string
	Cheapest     *Item
	MinPrice     int
	MaxPrice     int
	AvgPrice     float64
	TotalResults int
	Results      []Item
	Sources      map[string]SourceStats
	Summary      string
	FilterNote   string
}

// Source is one marketplace backend. Search returns the offers it found plus
// the search URL it hit; offers come back unfiltered and unsorted.
type Source interface {
	Name() string
	Search(ctx context.Context, product string) ([]Item, string, error)
}

// Prefs carries the per-user filtering preferences applied to raw offers.
type Prefs struct {
	AllowAccessories bool
	MinRelevance     float64
}

// Offer prices outside this range are scraping artifacts, not prices.
const (
	minSanePrice = 1
	maxSanePrice = 50_000_000
)

var nonPriceRunes = regexp.MustCompile(`[^0-9,]`)

// CleanPrice extracts an integer price from marketplace text like "NT$23,900".
// ok is false when no digits remain or the value is outside the sane range.
func CleanPrice(text string) (int, bool) {
	s := strings.ReplaceAll(nonPriceRunes.ReplaceAllString(text, ""), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < minSanePrice || v > maxSanePrice {
		return 0, false
	}
	return v, true
}

// FormatNTD renders a price the way replies show it: NT$ with thousands
// separators.
func FormatNTD(v int) string {
	return "NT$" + humanize.Comma(int64(v))
}
