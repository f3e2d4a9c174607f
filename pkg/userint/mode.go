package userint

// Mode is the phase of the interaction protocol a State is in.
type Mode int

const (
	// ModeNormal is the resting mode between ticks.
	ModeNormal Mode = iota
	// ModeSignalTesting is active while signal callbacks run.
	ModeSignalTesting
	// ModeIssuingEvents is active while the resolved signal is turned into events.
	ModeIssuingEvents
	// ModeUpdating is active while update callbacks run.
	ModeUpdating
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSignalTesting:
		return "signal_testing"
	case ModeIssuingEvents:
		return "issuing_events"
	case ModeUpdating:
		return "updating"
	default:
		return "unknown"
	}
}

// Event identifies a lifecycle notification delivered to the host.
type Event int

const (
	// Widget events
	EventPreChoose Event = iota
	EventPostChoose
	EventGrab
	EventDrop
	EventEnter
	EventLeave
	EventPreUpkeep
	EventPostUpkeep
	EventAbandon

	// Composite events
	EventGrabPart
	EventDropPart
	EventEnterPart
	EventLeavePart

	// Range events
	EventGrabItem
	EventDropItem
	EventEnterItem
	EventLeaveItem
)

var eventNames = [...]string{
	EventPreChoose:  "pre_choose",
	EventPostChoose: "post_choose",
	EventGrab:       "grab",
	EventDrop:       "drop",
	EventEnter:      "enter",
	EventLeave:      "leave",
	EventPreUpkeep:  "pre_upkeep",
	EventPostUpkeep: "post_upkeep",
	EventAbandon:    "abandon",
	EventGrabPart:   "grab_part",
	EventDropPart:   "drop_part",
	EventEnterPart:  "enter_part",
	EventLeavePart:  "leave_part",
	EventGrabItem:   "grab_item",
	EventDropItem:   "drop_item",
	EventEnterItem:  "enter_item",
	EventLeaveItem:  "leave_item",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// IsPartEvent reports whether the event concerns a composite part.
func (e Event) IsPartEvent() bool {
	return e >= EventGrabPart && e <= EventLeavePart
}

// IsItemEvent reports whether the event concerns a range item.
func (e Event) IsItemEvent() bool {
	return e >= EventGrabItem && e <= EventLeaveItem
}

// Kind is the closed set of widget variants.
type Kind int

const (
	KindComposite Kind = iota
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "composite":
		return KindComposite, true
	case "range":
		return KindRange, true
	default:
		return 0, false
	}
}
