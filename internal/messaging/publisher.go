package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-arena/internal/session"
)

const DefaultSubjectPrefix = "arena"

// Publisher sends raw data to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventPublisher forwards session events to the message bus, one subject
// per event kind.
type EventPublisher struct {
	pub    Publisher
	prefix string
}

func NewEventPublisher(pub Publisher, prefix string) *EventPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &EventPublisher{pub: pub, prefix: prefix}
}

// EventSubject returns the subject events of kind are published on.
func EventSubject(prefix string, kind session.EventKind) string {
	return fmt.Sprintf("%s.events.%s", prefix, kind)
}

// AllEventsSubject matches every event published under prefix.
func AllEventsSubject(prefix string) string {
	return fmt.Sprintf("%s.events.>", prefix)
}

func (p *EventPublisher) PublishEvent(ev session.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshalling event", "kind", ev.Kind, "error", err)
		return
	}

	// Events are best effort; the game carries on without the bus.
	if err := p.pub.Publish(EventSubject(p.prefix, ev.Kind), data); err != nil {
		slog.Debug("publishing event", "kind", ev.Kind, "error", err)
	}
}
