package watch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lotwatch/internal/eventbus"
	"lotwatch/internal/funpay"
	"lotwatch/internal/notify"
	logx "lotwatch/pkg/logx"
)

// ListingSource fetches the current offer snapshot for one category.
type ListingSource interface {
	FetchListings(ctx context.Context, category string) ([]funpay.Offer, error)
}

// Dispatcher fans a notification out to the configured channels.
type Dispatcher interface {
	Fanout(ctx context.Context, ev notify.Event) []notify.Result
}

// PriceConfig is the hot-reloadable part of the price loop.
type PriceConfig struct {
	Category     string
	Cadence      Cadence
	PriceFloor   float64
	MethodFilter string
}

// PriceLoop polls one category, picks the cheapest acceptable offer and
// dispatches a notification when its identity changed since the previous
// dispatch. One loop, one goroutine: the cross-cycle state is never shared.
type PriceLoop struct {
	src  ListingSource
	disp Dispatcher
	bus  eventbus.Bus
	log  logx.Logger

	mu  sync.Mutex
	cfg PriceConfig

	// state belongs to the Run goroutine exclusively.
	state PriceState

	now func() time.Time
}

func NewPriceLoop(src ListingSource, disp Dispatcher, bus eventbus.Bus, cfg PriceConfig, log logx.Logger) *PriceLoop {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.Cadence.IsZero() {
		cfg.Cadence = MustCadence("30s")
	}
	return &PriceLoop{src: src, disp: disp, bus: bus, cfg: cfg, log: log, now: time.Now}
}

// Apply installs a new config. The running loop picks it up at the start of
// its next cycle; the cross-cycle novelty state survives the reload so a
// reload alone never re-announces the same offer.
func (l *PriceLoop) Apply(cfg PriceConfig) {
	if cfg.Cadence.IsZero() {
		cfg.Cadence = MustCadence("30s")
	}
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
}

func (l *PriceLoop) config() PriceConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// Run polls until ctx is cancelled. The first cycle runs immediately;
// subsequent cycles follow the cadence. Cancellation is honoured within one
// tick even for long cadences.
func (l *PriceLoop) Run(ctx context.Context) error {
	for {
		cfg := l.config()
		l.Cycle(ctx, cfg)

		next := cfg.Cadence.Next(l.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Cycle performs one poll→filter→select→dispatch pass. A fetch or filter
// dead end skips the cycle without touching the novelty state, so the next
// successful cycle still compares against the last dispatched offer.
func (l *PriceLoop) Cycle(ctx context.Context, cfg PriceConfig) {
	offers, err := l.src.FetchListings(ctx, cfg.Category)
	if err != nil {
		l.log.Warn("listing fetch failed, skipping cycle",
			logx.String("category", cfg.Category),
			logx.Err(err))
		l.publish(eventbus.TopicPollError, err.Error())
		return
	}

	eligible := Filter(offers, cfg.PriceFloor, cfg.MethodFilter)
	best, ok := SelectCheapest(eligible)
	if !ok {
		l.log.Debug("no eligible offers this cycle",
			logx.String("category", cfg.Category),
			logx.Int("fetched", len(offers)))
		return
	}

	key := OfferKey(best)
	if !l.state.IsNovel(key) {
		l.log.Debug("cheapest offer unchanged",
			logx.String("seller", best.SellerName),
			logx.Float64("price", best.Price))
		return
	}

	ev := renderOffer(best)
	l.disp.Fanout(ctx, ev)
	l.publish(eventbus.TopicPriceNovel, ev.Body)

	// The offer was announced; whether every channel succeeded is the
	// dispatcher's concern. Recording the key here prevents a failing
	// channel from re-triggering the same offer every cycle.
	l.state.Update(key)

	l.log.Info("new cheapest offer",
		logx.String("seller", best.SellerName),
		logx.Float64("price", best.Price),
		logx.String("url", best.URL))
}

func (l *PriceLoop) publish(topic string, data any) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(eventbus.Event{Topic: topic, Data: data})
}

// renderOffer formats the notification for one offer. Stocked currency
// offers get a per-1000-units price line so different pack sizes compare
// directly.
func renderOffer(o funpay.Offer) notify.Event {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %.2f %s (%.2f %s per 1000)",
		o.SellerName, o.Price, o.Currency, o.Price*1000, o.Currency)
	if o.Method != "" {
		fmt.Fprintf(&b, "\nmethod: %s", o.Method)
	}
	if o.Stock != "" {
		fmt.Fprintf(&b, "\nstock: %s", o.Stock)
	}
	return notify.Event{
		Kind:  notify.KindCheapestOffer,
		Title: "New cheapest offer",
		Body:  b.String(),
		URL:   o.URL,
	}
}
