package session

import (
	"sort"
	"sync"
	"time"

	"github.com/gravitas-games/gridstash/pkg/inventory"
)

// EventType represents the type of container event.
type EventType int

const (
	// EventStackCreated is emitted when a new stack appears on the grid.
	EventStackCreated EventType = iota
	// EventStackChanged is emitted when a stack's quantity changes in place.
	EventStackChanged
	// EventStackRemoved is emitted when a stack leaves the grid.
	EventStackRemoved
	// EventPlacementRejected is emitted when an intent could not be applied.
	EventPlacementRejected
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventStackCreated:
		return "StackCreated"
	case EventStackChanged:
		return "StackChanged"
	case EventStackRemoved:
		return "StackRemoved"
	case EventPlacementRejected:
		return "PlacementRejected"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the event type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event describes one change to a container.
type Event struct {
	Type      EventType                `json:"type"`
	SessionID string                   `json:"session_id"`
	GridID    string                   `json:"grid_id"`
	Stack     *inventory.StackSnapshot `json:"stack,omitempty"`
	Intent    string                   `json:"intent,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// EventBus manages event subscriptions and delivery.
type EventBus interface {
	// Subscribe registers a handler under name, replacing any previous one.
	Subscribe(name string, handler func(Event))

	// Unsubscribe removes the handler registered under name.
	Unsubscribe(name string)

	// Publish sends an event to subscribed handlers.
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation.
// Handlers run synchronously in subscription-name order, so events arrive in
// the order the grid changed.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates a new event bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{handlers: make(map[string]func(Event))}
}

// Subscribe registers a handler under name.
func (bus *SimpleEventBus) Subscribe(name string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[name] = handler
}

// Unsubscribe removes the handler registered under name.
func (bus *SimpleEventBus) Unsubscribe(name string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, name)
}

// Publish sends an event to every subscribed handler.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	names := make([]string, 0, len(bus.handlers))
	for name := range bus.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	handlers := make([]func(Event), 0, len(names))
	for _, name := range names {
		handlers = append(handlers, bus.handlers[name])
	}
	bus.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// NullEventBus is an event bus that does nothing (for testing or when events not needed).
type NullEventBus struct{}

// NewNullEventBus creates a new null event bus.
func NewNullEventBus() *NullEventBus {
	return &NullEventBus{}
}

// Subscribe does nothing.
func (bus *NullEventBus) Subscribe(name string, handler func(Event)) {}

// Unsubscribe does nothing.
func (bus *NullEventBus) Unsubscribe(name string) {}

// Publish does nothing.
func (bus *NullEventBus) Publish(event Event) {}

// diffEvents compares stacks before and after a mutation. A stack whose cells
// changed is reported as removed and created.
func diffEvents(before, after []inventory.Stack) []Event {
	prev := make(map[inventory.CellSetKey]inventory.Stack, len(before))
	for _, st := range before {
		prev[st.Cells.Key()] = st
	}
	next := make(map[inventory.CellSetKey]bool, len(after))

	var events []Event
	for _, st := range after {
		key := st.Cells.Key()
		next[key] = true
		old, existed := prev[key]
		switch {
		case !existed:
			events = append(events, Event{Type: EventStackCreated, Stack: stackView(st)})
		case old.Quantity != st.Quantity || old.Code() != st.Code():
			events = append(events, Event{Type: EventStackChanged, Stack: stackView(st)})
		}
	}
	for _, st := range before {
		if !next[st.Cells.Key()] {
			events = append(events, Event{Type: EventStackRemoved, Stack: stackView(st)})
		}
	}
	return events
}

func stackView(st inventory.Stack) *inventory.StackSnapshot {
	return &inventory.StackSnapshot{
		Item:     st.Code(),
		Qty:      st.Quantity,
		Position: st.Position,
		Rotation: st.Rotation,
		Cells:    st.Cells,
	}
}
