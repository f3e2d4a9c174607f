package logging

import (
	"fmt"
	"sync"

	"github.com/odvcencio/userint/pkg/userint"
)

// Journal records the interaction protocol as structured events. Widget events are logged at
// info level under CategoryInteraction; tick summaries are logged at debug level under
// CategoryFrame.
type Journal struct {
	logger     *Logger
	transcript *Transcript

	mu      sync.Mutex
	names   map[*userint.Widget]string
	pending []string
	ticks   int
}

var _ userint.Observer = (*Journal)(nil)

// NewJournal creates a journal writing to logger. transcript may be nil.
func NewJournal(logger *Logger, transcript *Transcript) *Journal {
	return &Journal{
		logger:     logger,
		transcript: transcript,
		names:      make(map[*userint.Widget]string),
	}
}

// Name returns the widget's tag, or a stable ordinal name for untagged widgets.
func (j *Journal) Name(w *userint.Widget) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nameLocked(w)
}

func (j *Journal) nameLocked(w *userint.Widget) string {
	if w == nil {
		return ""
	}
	if tag, ok := w.Tag(); ok {
		return tag
	}
	if name, ok := j.names[w]; ok {
		return name
	}
	name := fmt.Sprintf("%s#%d", w.Kind(), len(j.names)+1)
	j.names[w] = name
	return name
}

// Ticks returns the number of ticks observed.
func (j *Journal) Ticks() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.ticks
}

// ObserveEvent logs one widget event.
func (j *Journal) ObserveEvent(w *userint.Widget, ev userint.Event) {
	j.mu.Lock()
	name := j.nameLocked(w)
	j.pending = append(j.pending, name+":"+ev.String())
	j.mu.Unlock()

	details := map[string]any{
		"widget": name,
		"kind":   w.Kind().String(),
	}
	if r, ok := w.Range(); ok && ev.IsItemEvent() {
		if item, ok := itemFor(r, ev); ok {
			details["item"] = item
		}
	}
	if c, ok := w.Composite(); ok && ev.IsPartEvent() {
		if idx := partIndex(c, partFor(c, ev)); idx >= 0 {
			details["part"] = idx
		}
	}

	_ = j.logger.Info(CategoryInteraction, ev.String(), "", details)
}

// ObserveTick logs a tick summary and flushes the tick's events to the transcript.
func (j *Journal) ObserveTick(t userint.Tick) {
	j.mu.Lock()
	j.ticks++
	tick := j.ticks
	events := j.pending
	j.pending = nil
	signal := j.nameLocked(t.Signal)
	choice := j.nameLocked(t.Choice)
	j.mu.Unlock()

	details := map[string]any{
		"tick":       tick,
		"visited":    t.Visited,
		"events":     len(events),
		"elapsed_us": t.Elapsed.Microseconds(),
	}
	if t.Kind == userint.TickPropagate {
		details["pressed"] = t.Pressed
		details["aborted"] = t.Aborted
		if signal != "" {
			details["signal"] = signal
		}
	}
	if choice != "" {
		details["choice"] = choice
	}
	_ = j.logger.Debug(CategoryFrame, t.Kind.String(), "", details)

	if j.transcript != nil && t.Kind == userint.TickPropagate {
		_ = j.transcript.WriteTick(j.logger.SessionID(), tick, events)
	}
}

// itemFor reports the item an item event refers to. Leave and drop events fire before the
// spot is cleared, so the entered and grabbed items are still readable.
func itemFor(r *userint.Range, ev userint.Event) (int, bool) {
	switch ev {
	case userint.EventGrabItem, userint.EventDropItem:
		return r.GrabbedItem()
	default:
		return r.EnteredItem()
	}
}

func partFor(c *userint.Composite, ev userint.Event) *userint.Part {
	switch ev {
	case userint.EventGrabPart:
		return c.GrabbedPart()
	case userint.EventEnterPart:
		return c.EnteredPart()
	default:
		// Leave and drop fire after the pointer is cleared.
		return nil
	}
}

func partIndex(c *userint.Composite, p *userint.Part) int {
	if p == nil {
		return -1
	}
	for i, q := range c.Parts() {
		if q == p {
			return i
		}
	}
	return -1
}
