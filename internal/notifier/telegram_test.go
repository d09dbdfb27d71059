package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkaelin/limmat-events/internal/event"
)

func TestFormatTelegramMessage(t *testing.T) {
	ev := &event.Canonical{
		Title: "Herbstmarkt & Chilbi",
		Start: time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC),
		Venue: "Stadtplatz",
		City:  "Schlieren",
		URL:   "https://www.schlieren.ch/anlaesse/herbstmarkt",
	}

	msg := formatTelegramMessage(ev)
	for _, want := range []string{
		"<b>Herbstmarkt &amp; Chilbi</b>",
		"📅 12.09.2026, 14:00",
		"📍 Stadtplatz, Schlieren",
		`<a href="https://www.schlieren.ch/anlaesse/herbstmarkt">Details</a>`,
		"#Limmattal #Schlieren",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatTelegramMessageMinimal(t *testing.T) {
	ev := &event.Canonical{
		Title: "Waldumgang",
		Start: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	msg := formatTelegramMessage(ev)
	if strings.Contains(msg, "📍") {
		t.Errorf("message should omit location line without venue or city:\n%s", msg)
	}
	if strings.Contains(msg, "00:00") {
		t.Errorf("all-day event should omit clock:\n%s", msg)
	}
	if !strings.Contains(msg, "#Limmattal") {
		t.Errorf("message missing hashtag:\n%s", msg)
	}
}

func TestTelegramNotify(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	original := telegramAPIBase
	telegramAPIBase = server.URL + "/bot"
	defer func() { telegramAPIBase = original }()

	n := &TelegramNotifier{
		botToken:   "test-token",
		chatID:     "-100123",
		httpClient: server.Client(),
	}

	events := []*event.Canonical{{
		Title: "Räbeliechtliumzug",
		Start: time.Date(2026, 11, 13, 18, 30, 0, 0, time.UTC),
		City:  "Urdorf",
	}}
	if err := n.Notify(events); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if !strings.HasSuffix(gotPath, "bottest-token/sendMessage") {
		t.Errorf("request path = %q, want bot token and sendMessage", gotPath)
	}
	if gotPayload["chat_id"] != "-100123" {
		t.Errorf("chat_id = %v, want -100123", gotPayload["chat_id"])
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v, want HTML", gotPayload["parse_mode"])
	}
	text, _ := gotPayload["text"].(string)
	if !strings.Contains(text, "Räbeliechtliumzug") {
		t.Errorf("message text missing title: %q", text)
	}
}

func TestTelegramNotifyAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	original := telegramAPIBase
	telegramAPIBase = server.URL + "/bot"
	defer func() { telegramAPIBase = original }()

	n := &TelegramNotifier{
		botToken:   "test-token",
		chatID:     "42",
		httpClient: server.Client(),
	}

	err := n.Notify([]*event.Canonical{{Title: "Dorffest", Start: time.Now().AddDate(0, 1, 0)}})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Notify() error = %v, want chat not found", err)
	}
}

func TestNewTelegramNotifierMissingEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := NewTelegramNotifier(); err == nil {
		t.Error("NewTelegramNotifier() without credentials should fail")
	}
}
