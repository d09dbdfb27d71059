package notifier

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/mkaelin/limmat-events/internal/event"
)

const statusLimit = 280

// TwitterNotifier posts new events to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier using environment variables.
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts one status per event, pausing between posts.
func (n *TwitterNotifier) Notify(events []*event.Canonical) error {
	for i, ev := range events {
		status := formatStatus(ev)

		_, _, err := n.client.Statuses.Update(status, nil)
		if err != nil {
			return fmt.Errorf("posting status for %q: %w", ev.Title, err)
		}

		if i < len(events)-1 {
			time.Sleep(2 * time.Second)
		}
	}
	return nil
}

// formatStatus renders an event announcement within the status length
// limit.
func formatStatus(ev *event.Canonical) string {
	var b strings.Builder
	b.WriteString("Neu im Veranstaltungskalender: ")
	b.WriteString(ev.Title)
	b.WriteString("\n📅 ")
	b.WriteString(statusDate(ev))
	if ev.City != "" {
		b.WriteString("\n📍 ")
		b.WriteString(ev.City)
	}
	if ev.URL != "" {
		b.WriteString("\n")
		b.WriteString(ev.URL)
	}
	b.WriteString("\n#Limmattal")

	status := b.String()
	if runes := []rune(status); len(runes) > statusLimit {
		status = string(runes[:statusLimit-3]) + "..."
	}
	return status
}

func statusDate(ev *event.Canonical) string {
	if ev.Start.Hour() == 0 && ev.Start.Minute() == 0 {
		return ev.Start.Format("02.01.2006")
	}
	return ev.Start.Format("02.01.2006, 15:04")
}
