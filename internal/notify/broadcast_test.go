package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fail  map[string]error
	calls int
}

func (f *fakeSender) SendText(_ context.Context, chatID string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[chatID]; err != nil {
		return err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

type fakeRecipients struct{ ids []string }

func (f *fakeRecipients) Refresh(_ context.Context) []string { return f.ids }

func testCfg(chatIDs ...string) BroadcastConfig {
	return BroadcastConfig{ChatIDs: chatIDs, RatePerSec: 1000, RetryMax: 1}
}

func TestBroadcastDeliversToAll(t *testing.T) {
	s := &fakeSender{}
	b := NewBroadcast(s, nil, testCfg("1", "2", "3"), nopLogger())

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Status != Delivered {
		t.Fatalf("expected Delivered, got %v", res.Status)
	}
	if res.Attempts != 3 || res.Failures != 0 {
		t.Fatalf("unexpected tally: attempts=%d failures=%d", res.Attempts, res.Failures)
	}
	if len(s.sent) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(s.sent))
	}
}

func TestBroadcastPartialFailureStillDelivers(t *testing.T) {
	s := &fakeSender{fail: map[string]error{"2": errors.New("blocked")}}
	b := NewBroadcast(s, nil, testCfg("1", "2", "3"), nopLogger())

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Status != Delivered {
		t.Fatalf("one failing recipient must not fail the broadcast, got %v", res.Status)
	}
	if res.Attempts != 3 || res.Failures != 1 {
		t.Fatalf("unexpected tally: attempts=%d failures=%d", res.Attempts, res.Failures)
	}
	if len(s.sent) != 2 {
		t.Fatalf("remaining recipients must still be attempted, got %d sends", len(s.sent))
	}
}

func TestBroadcastAllFailuresIsFailed(t *testing.T) {
	s := &fakeSender{fail: map[string]error{"1": errors.New("x"), "2": errors.New("y")}}
	b := NewBroadcast(s, nil, testCfg("1", "2"), nopLogger())

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Status != Failed {
		t.Fatalf("expected Failed when nothing got through, got %v", res.Status)
	}
	if res.Err == nil {
		t.Fatal("expected an error on the result")
	}
}

func TestBroadcastNoRecipientsSkipsWithoutSending(t *testing.T) {
	s := &fakeSender{}
	b := NewBroadcast(s, &fakeRecipients{}, testCfg(), nopLogger())

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Status != Skipped {
		t.Fatalf("expected Skipped, got %v", res.Status)
	}
	if res.Reason != "no recipients" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
	if s.calls != 0 {
		t.Fatalf("no recipients must mean no network calls, got %d", s.calls)
	}
}

func TestBroadcastRegistryFallback(t *testing.T) {
	s := &fakeSender{}
	b := NewBroadcast(s, &fakeRecipients{ids: []string{"7", "8"}}, testCfg(), nopLogger())

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Attempts != 2 {
		t.Fatalf("expected registry recipients attempted, got %d", res.Attempts)
	}
}

func TestBroadcastExplicitListOverridesRegistry(t *testing.T) {
	s := &fakeSender{}
	b := NewBroadcast(s, &fakeRecipients{ids: []string{"7"}}, testCfg("1"), nopLogger())

	b.Deliver(context.Background(), Event{Title: "hi"})
	if len(s.sent) != 1 || s.sent[0] != "1" {
		t.Fatalf("explicit chat ids must win over registry, sent=%v", s.sent)
	}
}

func TestBroadcastApplyHotReload(t *testing.T) {
	s := &fakeSender{}
	b := NewBroadcast(s, nil, testCfg("1"), nopLogger())
	b.Apply(testCfg("1", "2"))

	res := b.Deliver(context.Background(), Event{Title: "hi"})
	if res.Attempts != 2 {
		t.Fatalf("expected reloaded recipient list, attempts=%d", res.Attempts)
	}
}
