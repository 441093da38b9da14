package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTelegram_SendsMessageWithKeyboard(t *testing.T) {
	var (
		path    string
		payload telegramPayload
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer ts.Close()

	tg := NewTelegram("123:abc", "-10042")
	tg.BaseURL = ts.URL
	if err := tg.Send(context.Background(), "⚠️ blog is DOWN", "URL: https://blog.example"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if path != "/bot123:abc/sendMessage" {
		t.Fatalf("path: %q", path)
	}
	if payload.ChatID != "-10042" {
		t.Fatalf("chat id: %q", payload.ChatID)
	}
	if payload.Text != "⚠️ blog is DOWN\nURL: https://blog.example" {
		t.Fatalf("text: %q", payload.Text)
	}
	kb := payload.ReplyMarkup.InlineKeyboard
	if len(kb) != 1 || len(kb[0]) != 2 || kb[0][0].CallbackData != "full_status" || kb[0][1].CallbackData != "ssl_info" {
		t.Fatalf("keyboard: %+v", kb)
	}
}

func TestTelegram_APIErrorSurfacesDescription(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer ts.Close()

	tg := NewTelegram("tok", "1")
	tg.BaseURL = ts.URL
	err := tg.Send(context.Background(), "t", "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("want API description in error, got %v", err)
	}
}

func TestTelegram_TransportErrorRedactsToken(t *testing.T) {
	tg := NewTelegram("secret-token", "1")
	tg.BaseURL = "http://127.0.0.1:1"
	err := tg.Send(context.Background(), "t", "x")
	if err == nil {
		t.Fatalf("want transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked: %v", err)
	}
}

func TestNewTelegram_RequiresTokenAndChat(t *testing.T) {
	if NewTelegram("", "1") != nil || NewTelegram("tok", "") != nil {
		t.Fatalf("want nil when token or chat id missing")
	}
}
