// Package notify delivers fire-and-forget operational events (startup,
// opportunities, executed trades, periodic summaries) to external channels.
// The trading core calls it but never depends on delivery succeeding.
package notify

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Event types emitted by the bot.
const (
	EventStartup     = "startup"
	EventOpportunity = "opportunity"
	EventTrade       = "trade"
	EventSummary     = "summary"
	EventShutdown    = "shutdown"
)

// Sender is one notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches events to all registered senders. When an allow-list
// of event types is configured, other events are dropped. Sender failures
// are logged and swallowed.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *logrus.Logger
}

// NewNotifier creates a Notifier. An empty events slice allows everything.
func NewNotifier(senders []Sender, events []string, logger *logrus.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger,
	}
}

// Notify sends an event to every sender, subject to the event filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) {
	if len(n.events) > 0 && !n.events[event] {
		return
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.WithError(err).WithFields(logrus.Fields{
				"sender": s.Name(),
				"event":  event,
			}).Error("Failed to send notification")
		}
	}
}
