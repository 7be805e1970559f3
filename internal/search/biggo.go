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
	bigGoBaseURL  = "https://biggo.com.tw"
	bigGoMaxItems = 20
)

// BigGo scrapes the BigGo comparison site.
type BigGo struct {
	baseURL string
	client  *http.Client
}

// NewBigGo creates a BigGo source with the production base URL.
func NewBigGo() *BigGo {
	return NewBigGoWithBaseURL(bigGoBaseURL)
}

// NewBigGoWithBaseURL creates a source pointing at a custom base URL (for testing).
func NewBigGoWithBaseURL(baseURL string) *BigGo {
	return &BigGo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *BigGo) Name() string { return "BigGo" }

// Search scrapes the product cards on a BigGo result page. Relative offer
// links are resolved against the site root.
func (b *BigGo) Search(ctx context.Context, product string) ([]Item, string, error) {
	searchURL := b.baseURL + "/s/" + url.PathEscape(product) + "/"

	html, err := fetchHTML(ctx, b.client, searchURL)
	if err != nil {
		return nil, searchURL, fmt.Errorf("biggo: %w", err)
	}

	doc := soup.HTMLParse(html)
	items := make([]Item, 0, bigGoMaxItems)
	for _, node := range doc.FindAll("div", "class", "product") {
		if len(items) >= bigGoMaxItems {
			break
		}

		name := elementText(node, "div", "class", "title")
		if name == "" {
			name = elementText(node, "h3", "", "")
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
			if href := resolveURL(b.baseURL, a.Attrs()["href"]); href != "" {
				link = href
			}
		}

		items = append(items, Item{
			Name:     truncateName(name, maxOfferNameRunes),
			Price:    price,
			Link:     link,
			Platform: b.Name(),
		})
	}

	return items, searchURL, nil
}
