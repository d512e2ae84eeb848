package watch

import (
	"strings"

	"lotwatch/internal/funpay"
)

// Filter returns the offers worth considering this cycle: anything cheaper
// than priceFloor is dropped, and when methodFilter is non-empty only offers
// whose method or type contains it (case-insensitive) survive.
//
// An empty result is a normal outcome ("wait and retry"), never an error.
// Filtering an already-filtered set with the same parameters is a no-op.
func Filter(offers []funpay.Offer, priceFloor float64, methodFilter string) []funpay.Offer {
	mf := strings.ToLower(strings.TrimSpace(methodFilter))

	out := make([]funpay.Offer, 0, len(offers))
	for _, o := range offers {
		if o.Price < priceFloor {
			continue
		}
		if mf != "" &&
			!strings.Contains(strings.ToLower(o.Method), mf) &&
			!strings.Contains(strings.ToLower(o.Type), mf) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// SelectCheapest returns the cheapest offer by price. Ties resolve to the
// first-encountered offer (stable min). ok is false for an empty input.
func SelectCheapest(offers []funpay.Offer) (best funpay.Offer, ok bool) {
	for i, o := range offers {
		if i == 0 || o.Price < best.Price {
			best = o
			ok = true
		}
	}
	return best, ok
}
