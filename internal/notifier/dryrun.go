package notifier

import (
	"fmt"
	"unicode/utf8"

	"github.com/mkaelin/limmat-events/internal/event"
)

// DryRunNotifier prints what would be posted without actually posting.
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints the statuses that would be posted.
func (n *DryRunNotifier) Notify(events []*event.Canonical) error {
	for i, ev := range events {
		status := formatStatus(ev)
		fmt.Printf("--- Ankündigung %d/%d ---\n", i+1, len(events))
		fmt.Println(status)
		fmt.Printf("\n(%d Zeichen)\n\n", utf8.RuneCountInString(status))
	}
	return nil
}
