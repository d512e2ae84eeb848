package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"lotwatch/internal/config"
	"lotwatch/internal/funpay"
	"lotwatch/internal/watch"
)

// Prompter runs the interactive setup questions. Every answer has a default
// drawn from the config file, and answered values are written back so the
// next session starts from them.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter() *Prompter {
	return &Prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *Prompter) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// EnsureToken makes sure the Telegram section is decided: if broadcasting is
// enabled but no token is stored, ask for one. Answering "no" disables the
// channel. Either answer is persisted.
func (p *Prompter) EnsureToken(cfgm *config.Manager) error {
	cfg := cfgm.Get()
	if !cfg.Telegram.Enabled || strings.TrimSpace(cfg.Telegram.Token) != "" {
		return nil
	}

	answer := p.ask("Telegram bot token ('no' disables broadcasts)", "")
	if answer == "" || strings.EqualFold(answer, "no") {
		cfg.Telegram.Enabled = false
		return cfgm.Save(cfg)
	}
	cfg.Telegram.Token = answer
	return cfgm.Save(cfg)
}

// PriceWatchSetup walks the operator through category, interval, price floor
// and method filter, then persists the chosen defaults.
func (p *Prompter) PriceWatchSetup(cats *funpay.Categories, cfgm *config.Manager) (watch.PriceConfig, error) {
	cfg := cfgm.Get()

	category, err := p.pickCategory(cats)
	if err != nil {
		return watch.PriceConfig{}, err
	}

	cadence := p.pickCadence(cfg.Watch.Interval)
	floor := p.pickFloor(cfg.Watch.PriceFloor)
	filter := p.ask("method filter (substring, empty for all)", cfg.Watch.MethodFilter)

	cfg.Watch.Interval = cadence.String()
	cfg.Watch.PriceFloor = floor
	cfg.Watch.MethodFilter = filter
	if err := cfgm.Save(cfg); err != nil {
		return watch.PriceConfig{}, err
	}

	return watch.PriceConfig{
		Category:     category,
		Cadence:      cadence,
		PriceFloor:   floor,
		MethodFilter: filter,
	}, nil
}

// pickCategory searches the built-in table by name, or accepts a direct URL.
func (p *Prompter) pickCategory(cats *funpay.Categories) (string, error) {
	for {
		q := p.ask("category (name to search, or a direct /lots/ URL)", "")
		if q == "" {
			continue
		}
		if strings.HasPrefix(q, "/") || strings.HasPrefix(q, "http") {
			return q, nil
		}

		matches := cats.Find(q)
		if len(matches) == 0 {
			fmt.Fprintf(p.out, "nothing matches %q, try again\n", q)
			continue
		}
		if len(matches) == 1 {
			fmt.Fprintf(p.out, "watching %s\n", matches[0].Name)
			return matches[0].URL, nil
		}

		for i, c := range matches {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, c.Name)
		}
		sel := p.ask("which one", "1")
		idx, err := strconv.Atoi(sel)
		if err != nil || idx < 1 || idx > len(matches) {
			fmt.Fprintln(p.out, "pick a number from the list")
			continue
		}
		return matches[idx-1].URL, nil
	}
}

func (p *Prompter) pickCadence(def string) watch.Cadence {
	if def == "" {
		def = "30s"
	}
	for {
		raw := p.ask("poll interval (duration, HH:MM or cron)", def)
		c, err := watch.ParseCadence(raw)
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		if d, derr := time.ParseDuration(strings.TrimSpace(raw)); derr == nil && d < time.Second {
			fmt.Fprintln(p.out, "interval below 1s clamped to 1s")
		}
		return c
	}
}

func (p *Prompter) pickFloor(def float64) float64 {
	for {
		raw := p.ask("price floor (ignore offers below)", strconv.FormatFloat(def, 'f', -1, 64))
		f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || f < 0 {
			fmt.Fprintln(p.out, "enter a non-negative number")
			continue
		}
		return f
	}
}
