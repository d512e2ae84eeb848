package funpay

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// showcaseDoc is the snapshot document exported by a category showcase.
// Prices arrive as JSON numbers or strings depending on the endpoint
// revision, so they are decoded leniently.
type showcaseDoc struct {
	Offers []showcaseOffer `json:"offers"`
}

type showcaseOffer struct {
	Seller   string      `json:"seller"`
	Price    jsonDecimal `json:"price"`
	Currency string      `json:"currency"`
	Stock    string      `json:"stock"`
	Method   string      `json:"method"`
	Type     string      `json:"type"`
	Game     string      `json:"game"`
	URL      string      `json:"url"`
	Promoted bool        `json:"promoted"`
}

type jsonDecimal float64

func (d *jsonDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decimal %q: %w", s, err)
	}
	*d = jsonDecimal(v)
	return nil
}

// FetchListings returns the current showcase snapshot for categoryRef,
// which is either a direct showcase URL or a source-relative path.
//
// Offers are returned sorted by ascending price as a convenience; callers
// still derive the minimum themselves.
func (c *Client) FetchListings(ctx context.Context, categoryRef string) ([]Offer, error) {
	url := c.AbsoluteURL(categoryRef)

	var doc showcaseDoc
	if err := c.getJSON(ctx, url, &doc); err != nil {
		return nil, fmt.Errorf("fetch listings %s: %w", url, err)
	}

	offers := make([]Offer, 0, len(doc.Offers))
	for _, o := range doc.Offers {
		if strings.TrimSpace(o.Seller) == "" {
			continue
		}
		offers = append(offers, Offer{
			SellerName: o.Seller,
			Price:      float64(o.Price),
			Currency:   o.Currency,
			Stock:      strings.TrimSpace(o.Stock),
			Method:     o.Method,
			Type:       o.Type,
			Game:       o.Game,
			URL:        c.AbsoluteURL(o.URL),
			Promoted:   o.Promoted,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
	return offers, nil
}
