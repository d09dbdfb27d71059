package notifier

import (
	"github.com/mkaelin/limmat-events/internal/event"
)

// Notifier posts announcements for the given events.
type Notifier interface {
	Notify(events []*event.Canonical) error
}
