package notify

import (
	"context"
	"fmt"
)

// Kind tags what a notification is about.
type Kind string

const (
	KindCheapestOffer  Kind = "cheapest_offer"
	KindThreadActivity Kind = "thread_activity"
)

// Event is one notification to fan out. It is ephemeral: constructed per
// dispatch and owned by the dispatcher for the duration of the fanout call.
type Event struct {
	Kind  Kind
	Title string
	Body  string

	// URL is an optional deep link (the offer or thread page).
	URL string
}

// Status classifies one channel's delivery outcome.
type Status int

const (
	Delivered Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is one channel's outcome for one event. For multi-recipient
// channels, Attempts/Failures carry the per-recipient tally; the channel
// counts as Delivered when at least one recipient was attempted.
type Result struct {
	Channel  string
	Status   Status
	Reason   string // set for Skipped
	Err      error  // set for Failed
	Attempts int
	Failures int
}

// Channel delivers one notification. Implementations never panic outward
// and never block beyond their own timeouts; a channel failure is reported
// in the Result, not raised.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, ev Event) Result
}
