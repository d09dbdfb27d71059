package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mkaelin/limmat-events/internal/event"
)

// telegramAPIBase is a variable so tests can point the client at a
// local server.
var telegramAPIBase = "https://api.telegram.org/bot"

const telegramTimeout = 10 * time.Second

// TelegramNotifier posts new-event announcements to a Telegram chat
// or channel via the Bot API.
type TelegramNotifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewTelegramNotifier creates a Telegram notifier from environment
// variables. Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
func NewTelegramNotifier() (*TelegramNotifier, error) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("missing Telegram credentials: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

// Notify sends one message per event, pacing requests to stay under
// the Bot API rate limit.
func (n *TelegramNotifier) Notify(events []*event.Canonical) error {
	for i, ev := range events {
		if err := n.sendMessage(formatTelegramMessage(ev)); err != nil {
			return fmt.Errorf("sending message for %q: %w", ev.Title, err)
		}
		log.Info().Str("title", ev.Title).Msg("posted Telegram announcement")

		if i < len(events)-1 {
			time.Sleep(1 * time.Second)
		}
	}
	return nil
}

// sendMessage posts a single HTML-formatted message to the configured chat.
func (n *TelegramNotifier) sendMessage(text string) error {
	url := fmt.Sprintf("%s%s/sendMessage", telegramAPIBase, n.botToken)

	payload := map[string]any{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

// formatTelegramMessage renders an event as an HTML Bot API message.
// Scraped fields pass through html.EscapeString since titles and venue
// names regularly contain ampersands.
func formatTelegramMessage(ev *event.Canonical) string {
	var msg strings.Builder

	msg.WriteString("📣 <b>Neu im Veranstaltungskalender</b>\n\n")
	msg.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(ev.Title)))
	msg.WriteString(fmt.Sprintf("📅 %s\n", statusDate(ev)))

	place := telegramPlace(ev)
	if place != "" {
		msg.WriteString(fmt.Sprintf("📍 %s\n", html.EscapeString(place)))
	}

	if ev.URL != "" {
		msg.WriteString(fmt.Sprintf("\n🔗 <a href=%q>Details</a>\n", ev.URL))
	}

	msg.WriteString("\n#Limmattal")
	if ev.City != "" {
		msg.WriteString(fmt.Sprintf(" #%s", strings.ReplaceAll(ev.City, " ", "")))
	}

	return msg.String()
}

// telegramPlace joins venue and city for the location line.
func telegramPlace(ev *event.Canonical) string {
	switch {
	case ev.Venue != "" && ev.City != "":
		return ev.Venue + ", " + ev.City
	case ev.Venue != "":
		return ev.Venue
	default:
		return ev.City
	}
}
