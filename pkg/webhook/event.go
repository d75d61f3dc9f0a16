package webhook

import (
	"encoding"
	"errors"
)

// Event is a webhook event.
type Event int

const (
	// EventTask is a task create, update, delete event.
	EventTask Event = 1

	// EventComment is a comment event.
	EventComment Event = 2

	// EventMember is a project membership change event.
	EventMember Event = 3
)

// Events return all events.
func Events() []Event {
	return []Event{
		EventTask,
		EventComment,
		EventMember,
	}
}

var eventStrings = map[Event]string{
	EventTask:    "task",
	EventComment: "comment",
	EventMember:  "member",
}

// String returns the string representation of the event.
func (e Event) String() string {
	return eventStrings[e]
}

var stringEvent = map[string]Event{
	"task":    EventTask,
	"comment": EventComment,
	"member":  EventMember,
}

// ErrInvalidEvent is returned when the event is invalid.
var ErrInvalidEvent = errors.New("invalid event")

// ParseEvent parses an event string and returns the event.
func ParseEvent(s string) (Event, error) {
	e, ok := stringEvent[s]
	if !ok {
		return -1, ErrInvalidEvent
	}

	return e, nil
}

var _ encoding.TextMarshaler = Event(0)
var _ encoding.TextUnmarshaler = (*Event)(nil)

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(text []byte) error {
	ev, err := ParseEvent(string(text))
	if err != nil {
		return err
	}

	*e = ev
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() (text []byte, err error) {
	ev := e.String()
	if ev == "" {
		return nil, ErrInvalidEvent
	}

	return []byte(ev), nil
}
