package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFindPrice_Search(t *testing.T) {
	page := `<html><body>
		<div class="item">
			<div class="name">Apple iPhone 15 128G</div>
			<span class="price">NT$25,900</span>
			<a href="/product/123">offer</a>
		</div>
		<div class="item">
			<div class="name">缺少價格的商品</div>
		</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/g/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	src := NewFindPriceWithBaseURL(srv.URL)
	items, searchURL, err := src.Search(context.Background(), "iphone 15")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(searchURL, "/g/") {
		t.Errorf("search URL = %q, want /g/ path", searchURL)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (offer without price dropped)", len(items))
	}
	it := items[0]
	if it.Name != "Apple iPhone 15 128G" {
		t.Errorf("Name = %q", it.Name)
	}
	if it.Price != 25900 {
		t.Errorf("Price = %d, want 25900", it.Price)
	}
	if it.Platform != "FindPrice" {
		t.Errorf("Platform = %q", it.Platform)
	}
	if !strings.HasSuffix(it.Link, "/product/123") {
		t.Errorf("Link = %q, want resolved offer link", it.Link)
	}
}

func TestFindPrice_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewFindPriceWithBaseURL(srv.URL)
	_, searchURL, err := src.Search(context.Background(), "iphone 15")
	if err == nil {
		t.Fatal("expected error on HTTP 503")
	}
	if searchURL == "" {
		t.Error("search URL must be returned even on failure")
	}
}

func TestBigGo_Search(t *testing.T) {
	page := `<html><body>
		<div class="product">
			<div class="title">PS5 Slim 光碟版主機</div>
			<div class="price">13,880</div>
			<a href="/p/abc">offer</a>
		</div>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	src := NewBigGoWithBaseURL(srv.URL)
	items, _, err := src.Search(context.Background(), "ps5")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Price != 13880 {
		t.Errorf("Price = %d, want 13880", items[0].Price)
	}
	if items[0].Platform != "BigGo" {
		t.Errorf("Platform = %q", items[0].Platform)
	}
}

func TestPChome_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "iphone 15" {
			t.Errorf("q = %q, want %q", got, "iphone 15")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalRows":2,"prods":[
			{"Id":"DYAJ9D-A900B","name":"Apple iPhone 15 128G","price":25900},
			{"Id":"X","name":"","price":100}
		]}`))
	}))
	defer srv.Close()

	src := NewPChomeWithBaseURL(srv.URL)
	items, _, err := src.Search(context.Background(), "iphone 15")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (nameless product dropped)", len(items))
	}
	if items[0].Link != "https://24h.pchome.com.tw/prod/DYAJ9D-A900B" {
		t.Errorf("Link = %q", items[0].Link)
	}
}
