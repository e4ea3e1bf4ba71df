package ai

import (
	"github.com/google/uuid"

	"github.com/udisondev/drifter/internal/model"
)

// EventKind identifies an outbox record.
type EventKind uint8

const (
	// EventStateChanged - agent entered a new pursuit state
	EventStateChanged EventKind = iota + 1
	// EventSearchChanged - agent started or stopped searching a hiding spot
	EventSearchChanged
	// EventKilled - agent killed a target
	EventKilled
)

// String returns human-readable event kind
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state"
	case EventSearchChanged:
		return "search"
	case EventKilled:
		return "kill"
	default:
		return "unknown"
	}
}

// Event is a broadcast record produced by an agent during a tick.
// Events are read-only for consumers (audio, UI, journal).
type Event struct {
	Kind    EventKind
	AgentID uint32
	Tick    uint64

	State     model.PursuitState // EventStateChanged
	Searching bool               // EventSearchChanged
	SpotID    uint32             // EventSearchChanged
	Victim    uuid.UUID          // EventKilled
}

// outbox buffers events until the tick loop drains them.
type outbox struct {
	events []Event
}

func (o *outbox) push(e Event) {
	o.events = append(o.events, e)
}

// drain appends buffered events to dst and empties the outbox.
func (o *outbox) drain(dst []Event) []Event {
	dst = append(dst, o.events...)
	clear(o.events)
	o.events = o.events[:0]
	return dst
}
