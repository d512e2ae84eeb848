package funpay

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestFetchThreadsSnapshot(t *testing.T) {
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"threads":[
			{"name":"buyer1","last_message":"hi","time":"12:30","url":"/chat/?node=5","unread":true},
			{"name":"buyer2","last_message":"thanks","time":"11:00","url":"/chat/?node=6","unread":false}
		]}`))
	}))

	threads, err := c.FetchThreads(context.Background())
	if err != nil {
		t.Fatalf("FetchThreads: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if !threads[0].Unread || threads[1].Unread {
		t.Fatalf("unread flags wrong: %+v", threads)
	}
	if want := srv.URL + "/chat/?node=5"; threads[0].URL != want {
		t.Fatalf("thread url not absolutized: %q", threads[0].URL)
	}
}

func TestFetchMessagesTailLimitAndMeta(t *testing.T) {
	c, srv := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages":[
			{"author":"a","time":"10:00","day":"Mon","text":"one"},
			{"author":"b","time":"10:01","day":"Mon","text":"two"},
			{"author":"a","time":"10:02","day":"Mon","text":"   "},
			{"author":"b","time":"10:03","day":"Mon","text":"three"}
		],"meta":{"node_id":5,"node_name":"users-1-2","user_id":1,"other_id":2,"csrf_token":"tok","last_message_id":99}}`))
	}))

	msgs, meta, err := c.FetchMessages(context.Background(), "/chat/?node=5", 2)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected tail of 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Fatalf("blank messages must be dropped before limiting: %+v", msgs)
	}
	if meta.CSRFToken != "tok" || meta.NodeName != "users-1-2" || meta.LastMessageID != 99 {
		t.Fatalf("meta not carried through: %+v", meta)
	}
	if want := srv.URL + "/chat/?node=5"; meta.ThreadURL != want {
		t.Fatalf("meta thread url: %q", meta.ThreadURL)
	}
}

func TestSendMessageRunnerEnvelope(t *testing.T) {
	var form map[string][]string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/runner/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		form = r.PostForm
		w.Write([]byte(`{}`))
	}))

	meta := ThreadMeta{
		NodeID: 5, NodeName: "users-1-2", UserID: 1, OtherID: 2,
		CSRFToken: "tok", LastMessageID: 99, ThreadURL: "https://host/chat/?node=5",
	}
	if err := c.SendMessage(context.Background(), meta, "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if got := form["csrf_token"]; len(got) != 1 || got[0] != "tok" {
		t.Fatalf("csrf_token: %v", got)
	}

	var req struct {
		Action string `json:"action"`
		Data   struct {
			Node        string `json:"node"`
			LastMessage int64  `json:"last_message"`
			Content     string `json:"content"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(form["request"][0]), &req); err != nil {
		t.Fatalf("request field: %v", err)
	}
	if req.Action != "chat_message" || req.Data.Node != "users-1-2" || req.Data.Content != "hello" || req.Data.LastMessage != 99 {
		t.Fatalf("unexpected request envelope: %+v", req)
	}

	var objects []map[string]any
	if err := json.Unmarshal([]byte(form["objects"][0]), &objects); err != nil {
		t.Fatalf("objects field: %v", err)
	}
	if len(objects) != 4 {
		t.Fatalf("expected 4 runner objects, got %d", len(objects))
	}
}

func TestSendMessageRejectsIncompleteMeta(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	err := c.SendMessage(context.Background(), ThreadMeta{NodeName: "n"}, "hi")
	if err == nil {
		t.Fatal("expected error for incomplete meta")
	}
}

func TestCategoriesFind(t *testing.T) {
	cats := DefaultCategories()

	if got := cats.Find(""); got != nil {
		t.Fatalf("empty query must match nothing, got %v", got)
	}
	robux := cats.Find("robux")
	if len(robux) == 0 || robux[0].URL != "/chips/99/" {
		t.Fatalf("robux lookup: %v", robux)
	}
	// Prefix matches sort ahead of substring matches.
	rust := cats.Find("rust")
	if len(rust) < 2 || rust[0].Name != "Rust items" {
		t.Fatalf("prefix ordering: %v", rust)
	}
	if got := cats.Find("ROBLOX"); len(got) == 0 {
		t.Fatalf("search must be case-insensitive")
	}
}
