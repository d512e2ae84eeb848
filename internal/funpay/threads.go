package funpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type threadListDoc struct {
	Threads []threadRow `json:"threads"`
}

type threadRow struct {
	Name        string `json:"name"`
	LastMessage string `json:"last_message"`
	Time        string `json:"time"`
	URL         string `json:"url"`
	Unread      bool   `json:"unread"`
}

type threadDoc struct {
	Messages []messageRow `json:"messages"`
	Meta     threadMeta   `json:"meta"`
}

type messageRow struct {
	Author string `json:"author"`
	Time   string `json:"time"`
	Day    string `json:"day"`
	Text   string `json:"text"`
}

type threadMeta struct {
	NodeID        int64  `json:"node_id"`
	NodeName      string `json:"node_name"`
	UserID        int64  `json:"user_id"`
	OtherID       int64  `json:"other_id"`
	CSRFToken     string `json:"csrf_token"`
	LastMessageID int64  `json:"last_message_id"`
}

// FetchThreads returns a snapshot of the operator's message threads.
func (c *Client) FetchThreads(ctx context.Context) ([]Thread, error) {
	var doc threadListDoc
	if err := c.getJSON(ctx, c.AbsoluteURL("/chat/"), &doc); err != nil {
		return nil, fmt.Errorf("fetch threads: %w", err)
	}

	threads := make([]Thread, 0, len(doc.Threads))
	for _, t := range doc.Threads {
		threads = append(threads, Thread{
			Name:        t.Name,
			LastMessage: t.LastMessage,
			LastUpdate:  t.Time,
			URL:         c.AbsoluteURL(t.URL),
			Unread:      t.Unread,
		})
	}
	return threads, nil
}

// FetchMessages returns up to limit most recent messages of one thread plus
// the opaque meta needed to post into it.
func (c *Client) FetchMessages(ctx context.Context, threadURL string, limit int) ([]Message, ThreadMeta, error) {
	var doc threadDoc
	if err := c.getJSON(ctx, c.AbsoluteURL(threadURL), &doc); err != nil {
		return nil, ThreadMeta{}, fmt.Errorf("fetch messages: %w", err)
	}

	msgs := make([]Message, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		msgs = append(msgs, Message{Author: m.Author, Time: m.Time, Day: m.Day, Text: m.Text})
	}
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	meta := ThreadMeta{
		NodeID:        doc.Meta.NodeID,
		NodeName:      doc.Meta.NodeName,
		UserID:        doc.Meta.UserID,
		OtherID:       doc.Meta.OtherID,
		CSRFToken:     doc.Meta.CSRFToken,
		LastMessageID: doc.Meta.LastMessageID,
		ThreadURL:     c.AbsoluteURL(threadURL),
	}
	return msgs, meta, nil
}

// SendMessage posts content into the thread described by meta, using the
// same runner envelope the web client sends. The meta tokens are forwarded
// verbatim.
func (c *Client) SendMessage(ctx context.Context, meta ThreadMeta, content string) error {
	if meta.CSRFToken == "" || meta.UserID == 0 || meta.NodeName == "" || meta.NodeID == 0 {
		return fmt.Errorf("thread meta incomplete (missing csrf/user/node)")
	}

	requestObj := map[string]any{
		"action": "chat_message",
		"data": map[string]any{
			"node":         meta.NodeName,
			"last_message": meta.LastMessageID,
			"content":      content,
		},
	}
	objects := []map[string]any{
		{"type": "orders_counters", "id": fmt.Sprint(meta.UserID), "tag": "lw-oc", "data": false},
		{"type": "chat_node", "id": meta.NodeName, "tag": "lw-chat", "data": map[string]any{
			"node":         meta.NodeName,
			"last_message": meta.LastMessageID,
			"content":      content,
		}},
		{"type": "chat_bookmarks", "id": fmt.Sprint(meta.UserID), "tag": "lw-bm", "data": [][]int64{
			{meta.NodeID, meta.LastMessageID},
		}},
		{"type": "c-p-u", "id": fmt.Sprint(meta.OtherID), "tag": "lw-cpu", "data": false},
	}

	reqJSON, err := json.Marshal(requestObj)
	if err != nil {
		return err
	}
	objJSON, err := json.Marshal(objects)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("objects", string(objJSON))
	form.Set("request", string(reqJSON))
	form.Set("csrf_token", meta.CSRFToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.AbsoluteURL("/runner/"), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", meta.ThreadURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send message: HTTP %d", resp.StatusCode)
	}
	return nil
}
