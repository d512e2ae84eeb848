package notify

import (
	"context"
	"fmt"

	logx "lotwatch/pkg/logx"
)

// Dispatcher fans one event out to every configured channel.
//
// Channels are independent: a Skipped or Failed result from one never
// prevents delivery attempts on the others, and no outcome propagates as an
// error to the calling watch loop. Dispatch failures are terminal for that
// one notification only.
type Dispatcher struct {
	channels []Channel
	log      logx.Logger
}

func NewDispatcher(log logx.Logger, channels ...Channel) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{channels: channels, log: log}
}

func (d *Dispatcher) Fanout(ctx context.Context, ev Event) []Result {
	results := make([]Result, 0, len(d.channels))
	for _, ch := range d.channels {
		res := d.deliverOne(ctx, ch, ev)
		results = append(results, res)

		switch res.Status {
		case Delivered:
			if res.Failures > 0 {
				d.log.Warn("notification partially delivered",
					logx.String("channel", res.Channel),
					logx.String("kind", string(ev.Kind)),
					logx.Int("attempts", res.Attempts),
					logx.Int("failures", res.Failures))
			} else {
				d.log.Info("notification delivered",
					logx.String("channel", res.Channel),
					logx.String("kind", string(ev.Kind)))
			}
		case Skipped:
			d.log.Info("notification skipped",
				logx.String("channel", res.Channel),
				logx.String("kind", string(ev.Kind)),
				logx.String("reason", res.Reason))
		case Failed:
			d.log.Warn("notification failed",
				logx.String("channel", res.Channel),
				logx.String("kind", string(ev.Kind)),
				logx.Err(res.Err))
		}
	}
	return results
}

func (d *Dispatcher) deliverOne(ctx context.Context, ch Channel, ev Event) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Channel: ch.Name(), Status: Failed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return ch.Deliver(ctx, ev)
}
