// Package app wires the pieces into runnable sessions: a headless or
// interactive price watch and the thread monitor.
package app

import (
	"context"
	"time"

	"lotwatch/internal/config"
	"lotwatch/internal/eventbus"
	"lotwatch/internal/funpay"
	"lotwatch/internal/notify"
	"lotwatch/internal/registry"
	"lotwatch/internal/runtime/supervisor"
	"lotwatch/internal/storage"
	telegram "lotwatch/internal/transport/telegram"
	"lotwatch/internal/tui"
	"lotwatch/internal/watch"
	logx "lotwatch/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger
	bus  eventbus.Bus

	store storage.Store
	fp    *funpay.Client
	tg    *telegram.Client
	reg   *registry.Registry
	bcast *notify.Broadcast
	disp  *notify.Dispatcher
}

// New builds the application from a loaded config manager. The Telegram
// token prompt (if any) must have run before this; New takes the config as
// it stands.
func New(cfgm *config.Manager) (*App, error) {
	cfg := cfgm.Get()

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a := &App{cfgm: cfgm, logs: logs, log: log, bus: eventbus.New()}

	reqTimeout, err := config.ParseDurationOrDefault("funpay.request_timeout", cfg.Funpay.RequestTimeout, 15*time.Second)
	if err != nil {
		return nil, err
	}
	a.fp = funpay.NewClient(funpay.Config{
		BaseURL:        cfg.Funpay.BaseURL,
		GoldenKey:      cfg.Funpay.GoldenKey,
		UserAgent:      cfg.Funpay.UserAgent,
		RequestTimeout: reqTimeout,
	}, log.With(logx.String("comp", "funpay")))

	if cfg.Storage != nil {
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
		if err != nil {
			return nil, err
		}
		st, err := storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log.With(logx.String("comp", "storage")))
		if err != nil {
			return nil, err
		}
		a.store = st
		if st != nil {
			log.Info("storage enabled", logx.String("driver", cfg.Storage.Driver))
		}
	}

	channels := []notify.Channel{notify.NewDesktop(log.With(logx.String("comp", "desktop")))}

	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
		if err != nil {
			return nil, err
		}
		tg, err := telegram.New(telegram.Config{
			Token:       cfg.Telegram.Token,
			PollTimeout: pollTimeout,
		}, log.With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, err
		}
		a.tg = tg
		a.reg = registry.New(a.store, tg, log.With(logx.String("comp", "registry")))
		a.reg.Load(context.Background())

		a.bcast = notify.NewBroadcast(tg, a.reg, notify.BroadcastConfig{
			ChatIDs:    cfg.Telegram.ChatIDs,
			RatePerSec: float64(cfg.Telegram.RatePerSec),
			RetryMax:   cfg.Telegram.RetryMax,
		}, log.With(logx.String("comp", "broadcast")))
		channels = append(channels, a.bcast)
	} else {
		log.Info("telegram broadcast disabled")
	}

	a.disp = notify.NewDispatcher(log.With(logx.String("comp", "notify")), channels...)
	return a, nil
}

func (a *App) Logger() logx.Logger      { return a.log }
func (a *App) Funpay() *funpay.Client   { return a.fp }
func (a *App) Bus() eventbus.Bus        { return a.bus }
func (a *App) Config() *config.Config   { return a.cfgm.Get() }
func (a *App) Manager() *config.Manager { return a.cfgm }

// RunPriceWatch runs the cheapest-offer loop until ctx is cancelled. The
// config file stays live: edits to the floor, filter, cadence, logging or
// broadcast settings apply without a restart.
func (a *App) RunPriceWatch(ctx context.Context, pc watch.PriceConfig) error {
	loop := watch.NewPriceLoop(a.fp, a.disp, a.bus, pc, a.log.With(logx.String("comp", "pricewatch")))

	sup := supervisor.New(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true),
	)

	updates := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(updates)

	events, unsub := a.bus.Subscribe(16)
	defer unsub()

	// A transient watcher failure restarts with backoff; live reload is a
	// convenience, not worth ending the watch session over.
	sup.GoRestart("config.watch", a.cfgm.Watch)
	sup.Go0("bus.log", func(c context.Context) {
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("topic", e.Topic), logx.Any("data", e.Data))
			}
		}
	})
	sup.Go0("config.apply", func(c context.Context) {
		for {
			select {
			case <-c.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				a.applyConfig(loop, pc.Category, cfg)
			}
		}
	})
	sup.Go("price.loop", loop.Run)

	return sup.Wait(context.Background())
}

// applyConfig pushes a reloaded config into the running components. The
// watched category is fixed for the session; everything else is live.
func (a *App) applyConfig(loop *watch.PriceLoop, category string, cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	cadence, err := watch.ParseCadence(cfg.Watch.Interval)
	if err != nil {
		a.log.Warn("invalid interval in reloaded config, using 30s", logx.Err(err))
		cadence = watch.MustCadence("30s")
	}
	loop.Apply(watch.PriceConfig{
		Category:     category,
		Cadence:      cadence,
		PriceFloor:   cfg.Watch.PriceFloor,
		MethodFilter: cfg.Watch.MethodFilter,
	})

	if a.bcast != nil {
		a.bcast.Apply(notify.BroadcastConfig{
			ChatIDs:    cfg.Telegram.ChatIDs,
			RatePerSec: float64(cfg.Telegram.RatePerSec),
			RetryMax:   cfg.Telegram.RetryMax,
		})
	}

	a.bus.Publish(eventbus.Event{Topic: eventbus.TopicConfigReloaded})
}

// RunThreadMonitor runs the interactive thread monitor. With alerts off it
// is a plain browser: no dispatch, no bell.
func (a *App) RunThreadMonitor(ctx context.Context, alerts bool) error {
	cfg := a.cfgm.Get()
	interval, err := config.ParseDurationOrDefault("watch.thread_interval", cfg.Watch.ThreadInterval, 5*time.Second)
	if err != nil {
		return err
	}

	var disp tui.Dispatcher
	if alerts {
		disp = a.disp
	}
	return tui.Run(ctx, a.fp, disp, interval, a.log.With(logx.String("comp", "tui")))
}

func (a *App) Close() error {
	var first error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			first = err
		}
	}
	if err := a.logs.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
