package watch

import (
	"testing"

	"lotwatch/internal/funpay"
)

func offer(seller string, price float64, method string) funpay.Offer {
	return funpay.Offer{SellerName: seller, Price: price, Method: method, URL: "https://example.com/" + seller}
}

func TestFilterDropsBelowFloor(t *testing.T) {
	offers := []funpay.Offer{
		offer("a", 0.10, ""),
		offer("b", 0.30, ""),
		offer("c", 1.50, ""),
	}
	got := Filter(offers, 0.30, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(got))
	}
	if got[0].SellerName != "b" || got[1].SellerName != "c" {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestFilterMethodSubstringCaseInsensitive(t *testing.T) {
	offers := []funpay.Offer{
		offer("a", 1, "Gift Card"),
		offer("b", 1, "direct top-up"),
		{SellerName: "c", Price: 1, Type: "GIFT bundle"},
	}
	got := Filter(offers, 0, "gift")
	if len(got) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(got))
	}
	for _, o := range got {
		if o.SellerName == "b" {
			t.Fatalf("offer b should not match %q", "gift")
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	offers := []funpay.Offer{
		offer("a", 0.10, "gift"),
		offer("b", 0.50, "gift"),
		offer("c", 0.90, "wallet"),
	}
	once := Filter(offers, 0.30, "gift")
	twice := Filter(once, 0.30, "gift")
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the set: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("offer %d changed on second pass", i)
		}
	}
}

func TestFilterEmptyResultIsNotError(t *testing.T) {
	got := Filter([]funpay.Offer{offer("a", 0.01, "")}, 1.00, "")
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestSelectCheapestStableTie(t *testing.T) {
	offers := []funpay.Offer{
		offer("first", 0.50, ""),
		offer("second", 0.50, ""),
		offer("third", 0.60, ""),
	}
	best, ok := SelectCheapest(offers)
	if !ok {
		t.Fatal("expected ok")
	}
	if best.SellerName != "first" {
		t.Fatalf("tie should resolve to first offer, got %q", best.SellerName)
	}
}

func TestSelectCheapestEmpty(t *testing.T) {
	if _, ok := SelectCheapest(nil); ok {
		t.Fatal("expected ok=false for empty input")
	}
}
