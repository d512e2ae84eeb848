package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	logx "lotwatch/pkg/logx"
)

const desktopTimeout = 5 * time.Second

// Desktop renders a short local alert through the host notifier
// (notify-send, osascript or a PowerShell toast). Hosts without one get a
// Skipped result; a desktop alert is best-effort by nature and never fails
// the watch loop.
type Desktop struct {
	log logx.Logger

	// lookPath and goos are swappable for tests.
	lookPath func(string) (string, error)
	goos     string
}

func NewDesktop(log logx.Logger) *Desktop {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Desktop{log: log, lookPath: exec.LookPath, goos: runtime.GOOS}
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Deliver(ctx context.Context, ev Event) Result {
	cmd, args, ok := d.command(ev)
	if !ok {
		return Result{Channel: d.Name(), Status: Skipped, Reason: "no desktop notifier on this host"}
	}

	cctx, cancel := context.WithTimeout(ctx, desktopTimeout)
	defer cancel()

	if err := exec.CommandContext(cctx, cmd, args...).Run(); err != nil {
		return Result{Channel: d.Name(), Status: Failed, Err: fmt.Errorf("%s: %w", cmd, err)}
	}
	return Result{Channel: d.Name(), Status: Delivered, Attempts: 1}
}

func (d *Desktop) command(ev Event) (string, []string, bool) {
	body := ev.Body
	if ev.URL != "" {
		body += "\n" + ev.URL
	}

	switch d.goos {
	case "linux":
		if path, err := d.lookPath("notify-send"); err == nil {
			return path, []string{"--app-name=lotwatch", ev.Title, body}, true
		}
	case "darwin":
		if path, err := d.lookPath("osascript"); err == nil {
			script := fmt.Sprintf("display notification %q with title %q", body, ev.Title)
			return path, []string{"-e", script}, true
		}
	case "windows":
		if path, err := d.lookPath("powershell"); err == nil {
			// Title and body are marketplace-controlled text; they must only
			// ever appear as single-quoted PowerShell literals, where $(),
			// backticks and double quotes are inert.
			script := "[void][System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms');" +
				"$n=New-Object System.Windows.Forms.NotifyIcon;" +
				"$n.Icon=[System.Drawing.SystemIcons]::Information;$n.Visible=$true;" +
				"$n.ShowBalloonTip(5000," + psQuote(ev.Title) + "," + psQuote(body) + ",'Info')"
			return path, []string{"-NoProfile", "-Command", script}, true
		}
	}
	return "", nil, false
}

// psQuote renders s as a PowerShell single-quoted string literal. Inside
// single quotes the only metacharacter is the quote itself, doubled to
// escape.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
