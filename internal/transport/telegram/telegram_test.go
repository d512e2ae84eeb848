package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	logx "lotwatch/pkg/logx"
)

type fakeAPI struct {
	rawCalls []map[string]any
	rawResp  []byte
	rawErr   error

	sent    []string
	sentTo  []tele.Recipient
	sendErr error
}

func (f *fakeAPI) Raw(method string, payload interface{}) ([]byte, error) {
	if method != "getUpdates" {
		return nil, errors.New("unexpected method " + method)
	}
	b, _ := json.Marshal(payload)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	f.rawCalls = append(f.rawCalls, m)
	return f.rawResp, f.rawErr
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentTo = append(f.sentTo, to)
	f.sent = append(f.sent, what.(string))
	return &tele.Message{}, nil
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	c, err := New(Config{Token: "42:test-token", Offline: true}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.api = api
	return c
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSendTextParsesChatID(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	if err := c.SendText(context.Background(), " 123 ", "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0] != "hello" {
		t.Fatalf("unexpected sends: %v", api.sent)
	}
	if api.sentTo[0].Recipient() != "123" {
		t.Fatalf("unexpected recipient %q", api.sentTo[0].Recipient())
	}
}

func TestSendTextRejectsNonNumericChatID(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})
	if err := c.SendText(context.Background(), "@channel", "x"); err == nil {
		t.Fatal("expected error for non-numeric chat id")
	}
}

func TestSendTextSplitsLongMessages(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)

	long := strings.Repeat("line\n", 2000)
	if err := c.SendText(context.Background(), "1", long); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if len(api.sent) < 2 {
		t.Fatalf("expected split into chunks, got %d sends", len(api.sent))
	}
	for i, chunk := range api.sent {
		if len([]rune(chunk)) > textLimit {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, len([]rune(chunk)))
		}
	}
}

func TestUpdatesCollectsSendersAndAcks(t *testing.T) {
	api := &fakeAPI{rawResp: []byte(`{"ok":true,"result":[
		{"update_id":10,"message":{"chat":{"id":111}}},
		{"update_id":11,"message":{"chat":{"id":222}}},
		{"update_id":12,"message":{"chat":{"id":111}}},
		{"update_id":13}
	]}`)}
	c := newTestClient(t, api)

	ids, err := c.Updates(context.Background())
	if err != nil {
		t.Fatalf("Updates: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"111", "222"}) {
		t.Fatalf("expected deduplicated senders, got %v", ids)
	}

	// Second call must acknowledge past update id 13.
	api.rawResp = []byte(`{"ok":true,"result":[]}`)
	if _, err := c.Updates(context.Background()); err != nil {
		t.Fatalf("Updates: %v", err)
	}
	if got := api.rawCalls[1]["offset"]; got != float64(14) {
		t.Fatalf("expected offset 14, got %v", got)
	}
}

func TestUpdatesPropagatesError(t *testing.T) {
	c := newTestClient(t, &fakeAPI{rawErr: errors.New("telegram: unavailable")})
	if _, err := c.Updates(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSplitTextShortPassthrough(t *testing.T) {
	got := splitText("hello", 100)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected split: %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	s := strings.Repeat("x", 60) + "\n" + strings.Repeat("y", 60)
	got := splitText(s, 100)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if !strings.HasSuffix(got[0], "x") || !strings.HasPrefix(got[1], "y") {
		t.Fatalf("split did not land on the newline: %q | %q", got[0], got[1])
	}
}
