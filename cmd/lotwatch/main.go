package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"lotwatch/internal/app"
	"lotwatch/internal/config"
	"lotwatch/internal/funpay"
	"lotwatch/internal/watch"
)

func main() {
	var (
		cfgPath  string
		watchURL string
	)
	flag.StringVar(&cfgPath, "config", "./lotwatch.json", "path to config file (json or yaml)")
	flag.StringVar(&watchURL, "watch", "", "category URL to watch headless (no menu)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, watchURL); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, watchURL string) error {
	cfgm := config.NewManager(cfgPath)
	if _, err := cfgm.Load(); err != nil {
		return err
	}

	headless := watchURL != ""
	if !headless {
		if err := app.NewPrompter().EnsureToken(cfgm); err != nil {
			return err
		}
	}

	a, err := app.New(cfgm)
	if err != nil {
		return err
	}
	defer a.Close()

	if headless {
		cfg := cfgm.Get()
		cadence, err := watch.ParseCadence(cfg.Watch.Interval)
		if err != nil {
			return err
		}
		_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
		defer daemon.SdNotify(false, daemon.SdNotifyStopping)
		return a.RunPriceWatch(ctx, watch.PriceConfig{
			Category:     watchURL,
			Cadence:      cadence,
			PriceFloor:   cfg.Watch.PriceFloor,
			MethodFilter: cfg.Watch.MethodFilter,
		})
	}

	return menu(ctx, a, cfgm)
}

func menu(ctx context.Context, a *app.App, cfgm *config.Manager) error {
	in := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Println()
		fmt.Println("  1. watch cheapest offer")
		fmt.Println("  2. monitor threads (with alerts)")
		fmt.Println("  3. browse threads")
		fmt.Println("  0. quit")
		fmt.Print("> ")

		line, err := in.ReadString('\n')
		if err != nil {
			return nil
		}

		switch strings.TrimSpace(line) {
		case "1":
			pc, err := app.NewPrompter().PriceWatchSetup(funpay.DefaultCategories(), cfgm)
			if err != nil {
				return err
			}
			if err := a.RunPriceWatch(ctx, pc); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case "2":
			if err := a.RunThreadMonitor(ctx, true); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case "3":
			if err := a.RunThreadMonitor(ctx, false); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case "0", "q", "":
			return nil
		default:
			fmt.Println("pick 0-3")
		}
	}
}
