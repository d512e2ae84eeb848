package watch

import (
	"fmt"

	"lotwatch/internal/funpay"
)

// OfferKey derives the identity of an offer for change detection:
// seller, price and canonical URL. The price is rendered with fixed six
// fractional digits so the same offer can never produce two different keys
// across polls because of float formatting.
func OfferKey(o funpay.Offer) string {
	return fmt.Sprintf("%s|%.6f|%s", o.SellerName, o.Price, o.URL)
}

// PriceState is the price loop's cross-cycle memory: the identity key of the
// last dispatched cheapest offer. It is owned exclusively by the loop
// goroutine and never shared.
type PriceState struct {
	lastBestKey string
	hasKey      bool
}

// IsNovel reports whether key differs from the last dispatched one.
// The first cycle is always novel.
func (s *PriceState) IsNovel(key string) bool {
	return !s.hasKey || key != s.lastBestKey
}

func (s *PriceState) Update(key string) {
	s.lastBestKey = key
	s.hasKey = true
}

// ThreadDiff is the thread loop's cross-cycle memory: the last seen message
// text per thread URL. Only threads the source currently flags unread are
// considered; read threads are ignored even if their text changed.
type ThreadDiff struct {
	seen map[string]string
}

func NewThreadDiff() *ThreadDiff {
	return &ThreadDiff{seen: make(map[string]string)}
}

// Observe records the current unread snapshot and returns the threads with
// new activity: unread threads whose (url, last message) pair changed since
// the previous call, or that have no recorded pair yet.
func (d *ThreadDiff) Observe(threads []funpay.Thread) []funpay.Thread {
	var fresh []funpay.Thread
	for _, t := range threads {
		if !t.Unread {
			continue
		}
		old, known := d.seen[t.URL]
		if !known || old != t.LastMessage {
			fresh = append(fresh, t)
		}
		d.seen[t.URL] = t.LastMessage
	}
	return fresh
}

// Reset forgets all recorded pairs so the next Observe re-reports every
// unread thread. Called after the operator returns from a thread view: the
// freshly read thread must not be mis-flagged, and genuinely new activity
// elsewhere must be re-detected.
func (d *ThreadDiff) Reset() {
	d.seen = make(map[string]string)
}
