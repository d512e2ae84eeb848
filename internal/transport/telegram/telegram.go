// Package telegram adapts the Bot API for the broadcast channel and the
// subscriber registry. Unlike a command bot it never long-polls in the
// background: updates are drained on demand when the registry refreshes.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	logx "lotwatch/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration // getUpdates long-poll window; 0 means 1s

	// Offline skips the getMe handshake. Used by tests.
	Offline bool
}

// rawAPI is the slice of telebot the client needs. Tests inject a fake.
type rawAPI interface {
	Raw(method string, payload interface{}) ([]byte, error)
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Client struct {
	cfg Config
	api rawAPI
	log logx.Logger

	// offset acknowledges consumed updates so the next Updates call only
	// sees new senders. Guarded because Refresh and sends may overlap.
	mu     sync.Mutex
	offset int64
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: cfg.Offline,
	})
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, api: b, log: log}, nil
}

const textLimit = 4000

// SendText delivers one text message to one chat, splitting anything over
// the Bot API length cap on newline boundaries.
func (c *Client) SendText(ctx context.Context, chatID string, text string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return errors.New("invalid chat id: " + chatID)
	}

	for _, chunk := range splitText(text, textLimit) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := c.api.Send(tele.ChatID(id), chunk, tele.NoPreview); err != nil {
			return err
		}
	}
	return nil
}

// Updates drains pending getUpdates and returns the chat id of every sender,
// acknowledging the batch so the next call starts after it. Duplicate
// senders within one batch are collapsed.
func (c *Client) Updates(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	payload := map[string]any{
		"offset":  c.offset,
		"timeout": int(c.cfg.PollTimeout / time.Second),
	}
	raw, err := c.api.Raw("getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result []struct {
			UpdateID int64 `json:"update_id"`
			Message  *struct {
				Chat struct {
					ID int64 `json:"id"`
				} `json:"chat"`
			} `json:"message"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, u := range resp.Result {
		if u.UpdateID >= c.offset {
			c.offset = u.UpdateID + 1
		}
		if u.Message == nil || u.Message.Chat.ID == 0 {
			continue
		}
		id := strconv.FormatInt(u.Message.Chat.ID, 10)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitText(s string, limit int) []string {
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	start := 0
	for start < len(rs) {
		end := start + limit
		if end > len(rs) {
			end = len(rs)
		}

		// Prefer a newline near the end of the window, but never produce a
		// tiny fragment for it.
		if end < len(rs) {
			for i := end - 1; i > start; i-- {
				if rs[i] == '\n' && i-start >= limit/3 {
					end = i + 1
					break
				}
			}
		}

		out = append(out, strings.TrimRight(string(rs[start:end]), "\n"))
		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}
