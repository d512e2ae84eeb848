package funpay

// Offer is one seller's priced listing in a category showcase at a point in
// time. Offers are immutable snapshot rows: built fresh every poll cycle,
// compared, then discarded. Identity for change detection is derived from
// (seller, price, url) — the source exposes no stable offer id.
type Offer struct {
	SellerName string
	Price      float64
	Currency   string
	Stock      string
	Method     string
	Type       string
	Game       string
	URL        string
	Promoted   bool
}

// Thread is a snapshot row of one private message thread. Identity for
// change detection is (URL, LastMessage).
type Thread struct {
	Name        string
	LastMessage string
	LastUpdate  string
	URL         string
	Unread      bool
}

// Message is one message inside a thread.
type Message struct {
	Author string
	Time   string
	Day    string
	Text   string
}

// ThreadMeta carries the opaque session tokens required to post into a
// thread. lotwatch preserves and forwards these unchanged; it never
// interprets them.
type ThreadMeta struct {
	NodeID        int64
	NodeName      string
	UserID        int64
	OtherID       int64
	CSRFToken     string
	LastMessageID int64
	ThreadURL     string
}

// Category points at one monitorable showcase.
type Category struct {
	Name string
	URL  string
}
