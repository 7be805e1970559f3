package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/shopwatch/internal/relevance"
)

const (
	defaultSourceTimeout = 15 * time.Second
	maxResults           = 20
)

// Aggregator fans one product query out to all configured sources, filters
// each source's offers for relevance, and merges them into one Aggregate.
// A failing source degrades the result instead of failing the search.
type Aggregator struct {
	sources []Source
	filter  *relevance.Filter
	timeout time.Duration
	logger  *slog.Logger
}

// NewAggregator creates an aggregator over the given sources. filter must not
// be nil; sources are queried concurrently with a per-source timeout.
func NewAggregator(filter *relevance.Filter, logger *slog.Logger, sources ...Source) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		sources: sources,
		filter:  filter,
		timeout: defaultSourceTimeout,
		logger:  logger,
	}
}

// SearchAll runs the comprehensive search. It always returns a populated
// Aggregate; when every source fails or nothing relevant is found, the
// Aggregate carries a summary saying so.
func (a *Aggregator) SearchAll(ctx context.Context, product string, prefs Prefs) *Aggregate {
	type outcome struct {
		items []Item
		url   string
	}
	outcomes := make([]outcome, len(a.sources))

	g := new(errgroup.Group)
	for i, src := range a.sources {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			items, searchURL, err := src.Search(sctx, product)
			if err != nil {
				// One dead source must not sink the whole search.
				a.logger.Warn("source search failed", "source", src.Name(), "error", err)
				outcomes[i] = outcome{url: searchURL}
				return nil
			}
			outcomes[i] = outcome{items: a.filterItems(items, product, prefs), url: searchURL}
			return nil
		})
	}
	g.Wait()

	all := make([]Item, 0, maxResults)
	sources := make(map[string]SourceStats, len(a.sources))
	for i, src := range a.sources {
		out := outcomes[i]
		if len(out.items) == 0 {
			a.logger.Info("source returned no relevant offers", "source", src.Name(), "product", product)
			continue
		}
		sources[src.Name()] = SourceStats{URL: out.url, Count: len(out.items)}
		all = append(all, out.items...)
	}

	if len(all) == 0 {
		return emptyAggregate(product)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Price < all[j].Price })

	sum := 0
	for _, it := range all {
		sum += it.Price
	}
	cheapest := all[0]

	results := all
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return &Aggregate{
		ProductName:  product,
		Cheapest:     &cheapest,
		MinPrice:     all[0].Price,
		MaxPrice:     all[len(all)-1].Price,
		AvgPrice:     float64(sum) / float64(len(all)),
		TotalResults: len(all),
		Results:      results,
		Sources:      sources,
		Summary:      fmt.Sprintf("過濾後找到 %d 個相關商品，最低價 %s", len(all), FormatNTD(cheapest.Price)),
		FilterNote:   "已自動過濾配件和不相關商品",
	}
}

// filterItems drops accessories and low-relevance offers and annotates the
// survivors with their relevance score, most relevant first.
func (a *Aggregator) filterItems(items []Item, product string, prefs Prefs) []Item {
	minScore := prefs.MinRelevance
	if minScore <= 0 {
		minScore = a.filter.Config().MinScore
	}

	kept := make([]Item, 0, len(items))
	for _, it := range items {
		if !a.filter.IsRelevant(it.Name, product, minScore, prefs.AllowAccessories) {
			continue
		}
		it.Relevance = a.filter.Score(it.Name, product)
		kept = append(kept, it)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Relevance > kept[j].Relevance })
	return kept
}

func emptyAggregate(product string) *Aggregate {
	return &Aggregate{
		ProductName: product,
		Results:     []Item{},
		Sources:     map[string]SourceStats{},
		Summary:     fmt.Sprintf("未找到 %s 的相關主商品", product),
		FilterNote:  "建議檢查商品名稱拼寫或嘗試更通用的關鍵字",
	}
}
