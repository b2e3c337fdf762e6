// Package notify fans high-severity fleet events out to chat channels.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/openclaw/missionctl/internal/models"
)

// throttleWindow suppresses repeat alerts with the same title. A flapping
// watchdog can emit the same ALERT line every few seconds; one page is enough.
const throttleWindow = 5 * time.Minute

// Notifier delivers a single event to one destination.
type Notifier interface {
	Notify(ctx context.Context, evt models.Event) error
}

// Dispatcher filters events down to the ones worth paging about and forwards
// them to every configured notifier.
type Dispatcher struct {
	notifiers []Notifier

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// NewDispatcher creates a Dispatcher over the given notifiers. A dispatcher
// with no notifiers is valid and drops everything.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		lastSent:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Dispatch forwards the event if it is severe enough and not throttled.
// Delivery failures are logged, not returned: an unreachable webhook must
// never stall ingestion.
func (d *Dispatcher) Dispatch(ctx context.Context, evt models.Event) {
	if evt.Severity != models.SeverityError && evt.Severity != models.SeverityCritical {
		return
	}
	if !d.admit(evt.Title) {
		return
	}
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			log.Printf("notify: deliver %q: %v", evt.Title, err)
		}
	}
}

// admit records the send time for a title and reports whether enough time has
// passed since the last alert with that title.
func (d *Dispatcher) admit(title string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.lastSent[title]; ok && now.Sub(last) < throttleWindow {
		return false
	}
	d.lastSent[title] = now
	return true
}

// severityColor maps an event severity to an attachment accent color.
func severityColor(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "#dc2626"
	case models.SeverityError:
		return "#ef4444"
	case models.SeverityWarn:
		return "#f59e0b"
	default:
		return "#6366f1"
	}
}

// eventBody renders the alert body shown under the title.
func eventBody(evt models.Event) string {
	body := ""
	if evt.Detail != nil {
		body = *evt.Detail
	}
	if evt.AgentID != nil {
		if body != "" {
			body += "\n"
		}
		body += "agent: " + *evt.AgentID
	}
	return body
}
