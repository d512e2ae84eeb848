package funpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	logx "lotwatch/pkg/logx"
)

const defaultBaseURL = "https://funpay.com"

// Error taxonomy for the watch loops: both are recovered locally (logged,
// cycle skipped) and never terminate a loop.
var (
	// ErrUnavailable wraps transport failures reaching the source.
	ErrUnavailable = errors.New("source unavailable")
	// ErrMalformed wraps responses that could not be interpreted as the
	// expected snapshot shape.
	ErrMalformed = errors.New("source response malformed")
)

type Config struct {
	BaseURL   string
	GoldenKey string
	UserAgent string

	// RequestTimeout bounds each request; 0 means 15s.
	RequestTimeout time.Duration
}

// Client talks to the marketplace's snapshot endpoints. It carries the
// operator's opaque session cookie and user agent on every request.
type Client struct {
	http      *http.Client
	baseURL   string
	goldenKey string
	userAgent string
	log       logx.Logger
}

func NewClient(cfg Config, log logx.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "Mozilla/5.0 (lotwatch)"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		goldenKey: cfg.GoldenKey,
		userAgent: ua,
		log:       log,
	}
}

// AbsoluteURL resolves source-relative hrefs against the configured base.
func (c *Client) AbsoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if href == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

// getJSON fetches url and decodes the body into out.
//
// Transient transport failures and 5xx responses are retried a few times
// with a short delay; a body that doesn't decode is unrecoverable (the
// server is answering, just not with what we expect).
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			c.decorate(req)
			req.Header.Set("Accept", "application/json")

			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			if err != nil {
				return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: %v", ErrMalformed, err))
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("request retry", logx.String("url", url), logx.Int("attempt", int(n)+2), logx.Err(err))
		}),
	)
	return err
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.goldenKey != "" {
		req.AddCookie(&http.Cookie{Name: "golden_key", Value: c.goldenKey})
	}
}
