package watch

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// minInterval is the floor for fixed-interval cadences. Values below it are
// clamped up, per the operator contract.
const minInterval = time.Second

// Cadence is a poll schedule: either a fixed interval or a cron expression.
//
// Accepted forms:
//   - Go duration: "30s", "2m30s"
//   - HH:MM interval: "00:05" (5 minutes), "02:30" (2h30m)
//   - Cron (crontab.guru-style): "*/5 * * * *", "@hourly", "@every 55m"
type Cadence struct {
	every time.Duration
	sched cron.Schedule
	src   string
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)

// ParseCadence parses a schedule string. Cron is detected by embedded
// whitespace or a leading '@'; everything else is an interval.
func ParseCadence(raw string) (Cadence, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cadence{}, fmt.Errorf("schedule required")
	}

	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		sched, err := cron.ParseStandard(s)
		if err != nil {
			return Cadence{}, fmt.Errorf("invalid cron schedule %q: %w", raw, err)
		}
		return Cadence{sched: sched, src: s}, nil
	}

	if m := reHHMM.FindStringSubmatch(s); m != nil {
		var hh, mm int
		fmt.Sscanf(m[1], "%d", &hh)
		fmt.Sscanf(m[2], "%d", &mm)
		if mm > 59 {
			return Cadence{}, fmt.Errorf("invalid minutes in %q", raw)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return Cadence{}, fmt.Errorf("interval must be > 0")
		}
		return Cadence{every: d, src: s}, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return Cadence{}, fmt.Errorf(
			"invalid schedule %q (use a duration like '30s', HH:MM like '02:30', or cron like '*/5 * * * *')", raw)
	}
	if d <= 0 {
		return Cadence{}, fmt.Errorf("interval must be > 0")
	}
	if d < minInterval {
		d = minInterval
	}
	return Cadence{every: d, src: s}, nil
}

// MustCadence is for compiled-in defaults.
func MustCadence(raw string) Cadence {
	c, err := ParseCadence(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Cadence) IsZero() bool { return c.every == 0 && c.sched == nil }

// Next returns when the cycle after now should start.
func (c Cadence) Next(now time.Time) time.Time {
	if c.sched != nil {
		return c.sched.Next(now)
	}
	every := c.every
	if every < minInterval {
		every = minInterval
	}
	return now.Add(every)
}

func (c Cadence) String() string { return c.src }
