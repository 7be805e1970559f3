package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	pchomeBaseURL  = "https://ecshweb.pchome.com.tw"
	pchomeProdURL  = "https://24h.pchome.com.tw/prod/"
	pchomeMaxItems = 10
)

// PChome queries the PChome 24h search API. Unlike the comparison sites this
// is a JSON endpoint, so no HTML scraping is involved.
type PChome struct {
	baseURL string
	client  *http.Client
}

// NewPChome creates a PChome source with the production API endpoint.
func NewPChome() *PChome {
	return NewPChomeWithBaseURL(pchomeBaseURL)
}

// NewPChomeWithBaseURL creates a source pointing at a custom base URL (for testing).
func NewPChomeWithBaseURL(baseURL string) *PChome {
	return &PChome{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *PChome) Name() string { return "PChome" }

type pchomeResult struct {
	TotalRows int `json:"totalRows"`
	Prods     []struct {
		ID    string `json:"Id"`
		Name  string `json:"name"`
		Price int    `json:"price"`
	} `json:"prods"`
}

// Search queries the search API sorted by sales volume.
func (p *PChome) Search(ctx context.Context, product string) ([]Item, string, error) {
	searchURL := p.baseURL + "/search/v3.3/all/results?q=" + url.QueryEscape(product) + "&page=1&sort=sale/dc"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, searchURL, fmt.Errorf("pchome: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, searchURL, fmt.Errorf("pchome: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, searchURL, fmt.Errorf("pchome: unexpected status %d", resp.StatusCode)
	}

	var result pchomeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, searchURL, fmt.Errorf("pchome: decoding response: %w", err)
	}

	items := make([]Item, 0, pchomeMaxItems)
	for _, prod := range result.Prods {
		if len(items) >= pchomeMaxItems {
			break
		}
		if prod.Name == "" || prod.Price < minSanePrice || prod.Price > maxSanePrice {
			continue
		}
		items = append(items, Item{
			Name:     truncateName(prod.Name, maxOfferNameRunes),
			Price:    prod.Price,
			Link:     pchomeProdURL + prod.ID,
			Platform: p.Name(),
		})
	}

	return items, searchURL, nil
}
