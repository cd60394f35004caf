package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopkg.in/telebot.v3"
)

func TestTelebotNotifier_Send(t *testing.T) {
	var path string
	var params map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"hi"}}`))
	}))
	defer server.Close()

	b, err := telebot.NewBot(telebot.Settings{Token: "123:abc", URL: server.URL, Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	n := NewTelebotAdapter(b, 42)

	if err := n.Send(context.Background(), "slots open"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, "/sendMessage") {
		t.Fatalf("unexpected path %q", path)
	}
	if fmt.Sprint(params["chat_id"]) != "42" {
		t.Fatalf("unexpected chat_id %v", params["chat_id"])
	}
	if params["text"] != "slots open" {
		t.Fatalf("unexpected text %v", params["text"])
	}
}

func TestTelebotNotifier_SendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	b, err := telebot.NewBot(telebot.Settings{Token: "123:abc", URL: server.URL, Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := NewTelebotAdapter(b, 7).Send(context.Background(), "x"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestTelebotNotifier_CancelledContext(t *testing.T) {
	b, err := telebot.NewBot(telebot.Settings{Token: "123:abc", Offline: true})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewTelebotAdapter(b, 1).Send(ctx, "x"); err == nil {
		t.Fatal("expected context error")
	}
}
