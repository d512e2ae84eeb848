package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"

	logx "lotwatch/pkg/logx"
)

// Sender pushes one text message to one chat. The Telegram transport
// implements it; tests swap in fakes.
type Sender interface {
	SendText(ctx context.Context, chatID string, text string) error
}

// RecipientSource supplies the dynamic recipient set (the subscriber
// registry). Refresh may hit the network; on failure it returns whatever set
// it last knew.
type RecipientSource interface {
	Refresh(ctx context.Context) []string
}

// BroadcastConfig is the hot-reloadable part of the broadcast channel.
type BroadcastConfig struct {
	// ChatIDs is the explicit recipient list. When empty, recipients come
	// from the RecipientSource instead.
	ChatIDs []string

	// RatePerSec caps outgoing sends across all recipients. Zero or
	// negative means the Telegram-safe default of 20/s.
	RatePerSec float64

	// RetryMax is per-recipient delivery attempts. Zero means 3.
	RetryMax int
}

const (
	defaultBroadcastRate  = 20.0
	defaultBroadcastRetry = 3
)

// Broadcast delivers one event to every recipient over a Sender, one send
// per recipient, rate limited across the whole set. Per-recipient failures
// are tallied, not fatal: the broadcast counts as Delivered when at least
// one recipient was attempted.
type Broadcast struct {
	sender Sender
	source RecipientSource
	log    logx.Logger

	mu      sync.Mutex
	cfg     BroadcastConfig
	limiter *rate.Limiter
}

func NewBroadcast(sender Sender, source RecipientSource, cfg BroadcastConfig, log logx.Logger) *Broadcast {
	if log.IsZero() {
		log = logx.Nop()
	}
	b := &Broadcast{sender: sender, source: source, log: log}
	b.Apply(cfg)
	return b
}

func (b *Broadcast) Name() string { return "broadcast" }

// Apply installs a new config. In-flight deliveries finish with the limiter
// they started with; the next delivery picks up the new one.
func (b *Broadcast) Apply(cfg BroadcastConfig) {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultBroadcastRate
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = defaultBroadcastRetry
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg = cfg
	b.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

func (b *Broadcast) snapshot() (BroadcastConfig, *rate.Limiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg, b.limiter
}

func (b *Broadcast) Deliver(ctx context.Context, ev Event) Result {
	cfg, limiter := b.snapshot()

	recipients := cfg.ChatIDs
	if len(recipients) == 0 && b.source != nil {
		recipients = b.source.Refresh(ctx)
	}
	if len(recipients) == 0 {
		return Result{Channel: b.Name(), Status: Skipped, Reason: "no recipients"}
	}

	text := ev.Title
	if ev.Body != "" {
		text += "\n" + ev.Body
	}
	if ev.URL != "" {
		text += "\n" + ev.URL
	}

	res := Result{Channel: b.Name(), Status: Delivered}
	delivered := 0
	for _, chatID := range recipients {
		if err := limiter.Wait(ctx); err != nil {
			res.Err = err
			res.Failures += len(recipients) - res.Attempts
			break
		}
		res.Attempts++
		if err := b.sendOne(ctx, chatID, text, cfg.RetryMax); err != nil {
			res.Failures++
			res.Err = err
			b.log.Warn("broadcast send failed",
				logx.String("chat_id", chatID),
				logx.Err(err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		res.Status = Failed
		if res.Err == nil {
			res.Err = fmt.Errorf("all %d sends failed", res.Attempts)
		}
	}
	return res
}

func (b *Broadcast) sendOne(ctx context.Context, chatID, text string, attempts int) error {
	return retry.Do(
		func() error { return b.sender.SendText(ctx, chatID, text) },
		retry.Attempts(uint(attempts)),
		retry.Delay(200*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			b.log.Debug("retrying broadcast send",
				logx.String("chat_id", chatID),
				logx.Int("attempt", int(n)+1),
				logx.Err(err))
		}),
	)
}
