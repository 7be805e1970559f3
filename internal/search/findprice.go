package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anaskhan96/soup"
)

const (
	findPriceBaseURL  = "https://www.findprice.com.tw"
	findPriceMaxItems = 30
	maxOfferNameRunes = 100
)

// FindPrice scrapes the FindPrice comparison site.
type FindPrice struct {
	baseURL string
	client  *http.Client
}

// NewFindPrice creates a FindPrice source with the production base URL.
func NewFindPrice() *FindPrice {
	return NewFindPriceWithBaseURL(findPriceBaseURL)
}

// NewFindPriceWithBaseURL creates a source pointing at a custom base URL (for testing).
func NewFindPriceWithBaseURL(baseURL string) *FindPrice {
	return &FindPrice{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *FindPrice) Name() string { return "FindPrice" }

// Search scrapes the result grid for the product. The search URL is returned
// even on failure so callers can link the user to it.
func (f *FindPrice) Search(ctx context.Context, product string) ([]Item, string, error) {
	searchURL := f.baseURL + "/g/" + url.PathEscape(product)

	html, err := fetchHTML(ctx, f.client, searchURL)
	if err != nil {
		return nil, searchURL, fmt.Errorf("findprice: %w", err)
	}

	doc := soup.HTMLParse(html)
	items := make([]Item, 0, findPriceMaxItems)
	for _, node := range doc.FindAll("div", "class", "item") {
		if len(items) >= findPriceMaxItems {
			break
		}

		name := elementText(node, "div", "class", "name")
		if name == "" {
			name = elementText(node, "h3", "", "")
		}
		if name == "" {
			if a := node.Find("a"); a.Error == nil {
				name = a.Attrs()["title"]
			}
		}

		price, ok := CleanPrice(elementText(node, "span", "class", "price"))
		if !ok {
			price, ok = CleanPrice(elementText(node, "div", "class", "price"))
		}
		if !ok || name == "" {
			continue
		}

		link := searchURL
		if a := node.Find("a"); a.Error == nil {
			if href := resolveURL(f.baseURL, a.Attrs()["href"]); href != "" {
				link = href
			}
		}

		items = append(items, Item{
			Name:     truncateName(name, maxOfferNameRunes),
			Price:    price,
			Link:     link,
			Platform: f.Name(),
		})
	}

	return items, searchURL, nil
}

// elementText returns the trimmed text of the first matching descendant, or
// "" when the selector finds nothing. Empty attr matches on tag alone.
func elementText(node soup.Root, tag, attr, val string) string {
	var el soup.Root
	if attr == "" {
		el = node.Find(tag)
	} else {
		el = node.Find(tag, attr, val)
	}
	if el.Error != nil {
		return ""
	}
	return strings.TrimSpace(el.FullText())
}
