package session

import "time"

type EventKind string

const (
	EventJoined   EventKind = "joined"
	EventLeft     EventKind = "left"
	EventMoved    EventKind = "moved"
	EventHit      EventKind = "hit"
	EventDefeated EventKind = "defeated"
	EventShutdown EventKind = "shutdown"
)

// Event describes a change to the session state, published for observers
// outside the game (for example on the message bus).
type Event struct {
	Kind    EventKind `json:"kind"`
	Session string    `json:"session,omitempty"`
	Player  string    `json:"player,omitempty"`
	Target  string    `json:"target,omitempty"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Health  int       `json:"health,omitempty"`
	At      time.Time `json:"at"`
}

// EventSink receives session events. Implementations must not block and must
// not call back into the registry.
type EventSink interface {
	PublishEvent(Event)
}

type nopSink struct{}

func (nopSink) PublishEvent(Event) {}
