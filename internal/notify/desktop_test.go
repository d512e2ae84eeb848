package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDesktopSkipsWithoutNotifier(t *testing.T) {
	d := NewDesktop(nopLogger())
	d.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	res := d.Deliver(context.Background(), Event{Title: "t"})
	if res.Status != Skipped {
		t.Fatalf("expected Skipped on a host without a notifier, got %v", res.Status)
	}
	if res.Reason == "" {
		t.Fatal("expected a skip reason")
	}
}

func TestDesktopCommandPerPlatform(t *testing.T) {
	d := NewDesktop(nopLogger())
	d.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }

	cases := map[string]string{
		"linux":   "/usr/bin/notify-send",
		"darwin":  "/usr/bin/osascript",
		"windows": "/usr/bin/powershell",
	}
	for goos, want := range cases {
		d.goos = goos
		cmd, _, ok := d.command(Event{Title: "t", Body: "b"})
		if !ok {
			t.Fatalf("%s: expected a command", goos)
		}
		if cmd != want {
			t.Fatalf("%s: got %q, want %q", goos, cmd, want)
		}
	}

	d.goos = "plan9"
	if _, _, ok := d.command(Event{}); ok {
		t.Fatal("unknown platform must report no notifier")
	}
}

func TestDesktopWindowsQuotesUntrustedText(t *testing.T) {
	d := NewDesktop(nopLogger())
	d.lookPath = func(name string) (string, error) { return name, nil }
	d.goos = "windows"

	// Seller names and message text come straight from the marketplace.
	ev := Event{Title: `New "cheapest" offer`, Body: "seller $(Start-Process calc); exit"}
	_, args, ok := d.command(ev)
	if !ok {
		t.Fatal("expected a command")
	}
	script := args[len(args)-1]
	if !strings.Contains(script, "'seller $(Start-Process calc); exit'") {
		t.Fatalf("body must land as a single-quoted literal:\n%s", script)
	}
	if !strings.Contains(script, `'New "cheapest" offer'`) {
		t.Fatalf("title must land as a single-quoted literal:\n%s", script)
	}
	if strings.Contains(script, `"seller`) {
		t.Fatalf("untrusted text must never be double-quoted:\n%s", script)
	}
}

func TestPSQuoteDoublesSingleQuotes(t *testing.T) {
	if got := psQuote("it's $(x)"); got != "'it''s $(x)'" {
		t.Fatalf("psQuote: %q", got)
	}
}

func TestDesktopAppendsURLToBody(t *testing.T) {
	d := NewDesktop(nopLogger())
	d.lookPath = func(name string) (string, error) { return name, nil }
	d.goos = "linux"

	_, args, ok := d.command(Event{Title: "t", Body: "b", URL: "https://x"})
	if !ok {
		t.Fatal("expected a command")
	}
	last := args[len(args)-1]
	if last != "b\nhttps://x" {
		t.Fatalf("url not appended to body: %q", last)
	}
}
