package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kalambet/shopwatch/internal/relevance"
)

type stubSource struct {
	name  string
	items []Item
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(_ context.Context, product string) ([]Item, string, error) {
	return s.items, "https://example.test/s/" + product, s.err
}

func newTestAggregator(sources ...Source) *Aggregator {
	return NewAggregator(relevance.New(relevance.DefaultConfig()), nil, sources...)
}

func TestSearchAll_MergesAndSorts(t *testing.T) {
	a := newTestAggregator(
		&stubSource{name: "A", items: []Item{
			{Name: "Apple iPhone 15 128G", Price: 25900, Platform: "A"},
		}},
		&stubSource{name: "B", items: []Item{
			{Name: "iPhone 15 256G 藍色", Price: 23900, Platform: "B"},
		}},
	)

	agg := a.SearchAll(context.Background(), "iphone 15", Prefs{})

	if agg.TotalResults != 2 {
		t.Fatalf("TotalResults = %d, want 2", agg.TotalResults)
	}
	if agg.Cheapest == nil || agg.Cheapest.Price != 23900 {
		t.Fatalf("Cheapest = %+v, want price 23900", agg.Cheapest)
	}
	if agg.MinPrice != 23900 || agg.MaxPrice != 25900 {
		t.Errorf("Min/Max = %d/%d, want 23900/25900", agg.MinPrice, agg.MaxPrice)
	}
	if agg.AvgPrice != 24900 {
		t.Errorf("AvgPrice = %v, want 24900", agg.AvgPrice)
	}
	if agg.Results[0].Price > agg.Results[1].Price {
		t.Error("results not sorted by price ascending")
	}
	if len(agg.Sources) != 2 {
		t.Errorf("Sources = %v, want both sources counted", agg.Sources)
	}
}

func TestSearchAll_FiltersAccessoriesAndLookalikes(t *testing.T) {
	a := newTestAggregator(&stubSource{name: "A", items: []Item{
		{Name: "Apple iPhone 15 128G", Price: 25900},
		{Name: "iPhone 15 透明保護殼", Price: 299},
		{Name: "Samsung Galaxy S24", Price: 22900},
	}})

	agg := a.SearchAll(context.Background(), "iphone 15", Prefs{})

	if agg.TotalResults != 1 {
		t.Fatalf("TotalResults = %d, want 1 (accessory and lookalike dropped)", agg.TotalResults)
	}
	if agg.Results[0].Name != "Apple iPhone 15 128G" {
		t.Errorf("surviving item = %q", agg.Results[0].Name)
	}
	if agg.Results[0].Relevance <= 0 {
		t.Error("surviving item must carry its relevance score")
	}
}

func TestSearchAll_AllowAccessoriesPreference(t *testing.T) {
	a := newTestAggregator(&stubSource{name: "A", items: []Item{
		{Name: "iPhone 15 透明保護殼", Price: 299},
	}})

	agg := a.SearchAll(context.Background(), "iphone 15", Prefs{AllowAccessories: true})

	if agg.TotalResults != 1 {
		t.Fatalf("TotalResults = %d, want 1 when accessories are allowed", agg.TotalResults)
	}
}

func TestSearchAll_SourceFailureIsIsolated(t *testing.T) {
	a := newTestAggregator(
		&stubSource{name: "down", err: errors.New("connection refused")},
		&stubSource{name: "up", items: []Item{
			{Name: "Apple iPhone 15 128G", Price: 25900},
		}},
	)

	agg := a.SearchAll(context.Background(), "iphone 15", Prefs{})

	if agg.TotalResults != 1 {
		t.Fatalf("TotalResults = %d, want 1 from the healthy source", agg.TotalResults)
	}
	if _, ok := agg.Sources["down"]; ok {
		t.Error("failed source must not appear in source stats")
	}
}

func TestSearchAll_EmptyResult(t *testing.T) {
	a := newTestAggregator(&stubSource{name: "A", err: errors.New("boom")})

	agg := a.SearchAll(context.Background(), "iphone 15", Prefs{})

	if agg.Cheapest != nil {
		t.Error("empty result must have nil Cheapest")
	}
	if !strings.Contains(agg.Summary, "未找到") {
		t.Errorf("Summary = %q, want not-found wording", agg.Summary)
	}
	if agg.Results == nil || agg.Sources == nil {
		t.Error("empty result must still carry initialized collections")
	}
}
