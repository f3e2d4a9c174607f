package telemetry

import (
	"sync"
	"time"

	"github.com/odvcencio/userint/pkg/userint"
)

// EventType identifies the kind of telemetry event.
type EventType string

const (
	EventWidget    EventType = "widget.event"
	EventPropagate EventType = "state.propagate"
	EventUpdate    EventType = "state.update"
	EventScene     EventType = "scene.reloaded"
)

// Event describes interaction telemetry that live viewers can consume.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"sessionId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Hub fan-outs telemetry events to any number of subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	closed      bool
	sessionID   string
	name        Namer
}

var _ userint.Observer = (*Hub)(nil)

// NewHub constructs a telemetry hub. Events published through the observer methods carry
// sessionID and name widgets with TagNamer.
func NewHub(sessionID string) *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		sessionID:   sessionID,
		name:        TagNamer,
	}
}

// Publish notifies all subscribers of an event. Non-blocking; drops if buffer full.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.SessionID == "" {
		event.SessionID = h.sessionID
	}
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			// Drop if subscriber can't keep up; the protocol must not block on viewers.
		}
	}
}

// Subscribe returns a channel that will receive future events and a cleanup func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		empty := make(chan Event)
		close(empty)
		return empty, func() {}
	}
	ch := make(chan Event, 64)
	h.subscribers[ch] = struct{}{}
	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close unsubscribes all listeners and prevents future publications.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
}

// SceneReloaded publishes a scene replacement.
func (h *Hub) SceneReloaded(name string, widgets int) {
	h.Publish(Event{
		Type: EventScene,
		Data: map[string]any{
			"scene":   name,
			"widgets": widgets,
		},
	})
}

// ObserveEvent publishes a widget event.
func (h *Hub) ObserveEvent(w *userint.Widget, ev userint.Event) {
	h.Publish(Event{
		Type: EventWidget,
		Data: map[string]any{
			"widget": h.name(w),
			"kind":   w.Kind().String(),
			"event":  ev.String(),
		},
	})
}

// ObserveTick publishes a tick summary.
func (h *Hub) ObserveTick(t userint.Tick) {
	data := map[string]any{
		"visited":    t.Visited,
		"elapsed_us": t.Elapsed.Microseconds(),
	}
	if t.Choice != nil {
		data["choice"] = h.name(t.Choice)
	}

	typ := EventUpdate
	if t.Kind == userint.TickPropagate {
		typ = EventPropagate
		data["pressed"] = t.Pressed
		data["aborted"] = t.Aborted
	}
	h.Publish(Event{Type: typ, Data: data})
}
