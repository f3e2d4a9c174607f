package userint

import (
	"container/list"
	"time"
)

// EventFunc receives every lifecycle event issued to a widget.
type EventFunc func(w *Widget, ev Event)

// SignalFunc is invoked on each widget during signal testing. It reports a hit by calling
// Widget.Signal, Range.SignalItem or Part.Signal.
type SignalFunc func(w *Widget)

// UpdateFunc is invoked on each widget during the update pass.
type UpdateFunc func(w *Widget)

// TickKind distinguishes the two host-driven passes.
type TickKind int

const (
	TickPropagate TickKind = iota
	TickUpdate
)

func (k TickKind) String() string {
	if k == TickUpdate {
		return "update"
	}
	return "propagate"
}

// Tick summarizes one completed PropagateSignal or Update call.
type Tick struct {
	Kind    TickKind
	Pressed bool
	// Visited counts the signal or update callbacks invoked.
	Visited int
	// Signal is the widget that won signal testing, if any.
	Signal  *Widget
	Aborted bool
	// Choice is the choice once the tick finished.
	Choice  *Widget
	Elapsed time.Duration
}

// Observer watches the protocol without taking part in it. Observers must not mutate the State.
type Observer interface {
	ObserveEvent(w *Widget, ev Event)
	ObserveTick(t Tick)
}

// Option configures a State.
type Option func(*State)

// WithContext binds a host-defined context to the State.
func WithContext(ctx any) Option {
	return func(s *State) { s.context = ctx }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *State) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// State owns every widget and resolves one choice per input tick.
type State struct {
	frame   *list.List // front is tested first
	tags    map[string]*Widget
	widgets map[*Widget]struct{}

	choice *Widget
	signal *Widget
	mode   Mode

	wasPressed bool
	isPressed  bool

	eventFunc  EventFunc
	signalFunc SignalFunc
	updateFunc UpdateFunc
	observers  []Observer
	context    any

	visited int
}

// New creates a State. Nil callbacks default to no-ops.
func New(eventFunc EventFunc, signalFunc SignalFunc, updateFunc UpdateFunc, opts ...Option) *State {
	s := &State{
		frame:      list.New(),
		tags:       make(map[string]*Widget),
		widgets:    make(map[*Widget]struct{}),
		mode:       ModeNormal,
		eventFunc:  eventFunc,
		signalFunc: signalFunc,
		updateFunc: updateFunc,
	}
	if s.eventFunc == nil {
		s.eventFunc = func(*Widget, Event) {}
	}
	if s.signalFunc == nil {
		s.signalFunc = func(*Widget) {}
	}
	if s.updateFunc == nil {
		s.updateFunc = func(*Widget) {}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the current protocol mode.
func (s *State) Mode() Mode {
	return s.mode
}

// SetContext binds a host-defined context.
func (s *State) SetContext(ctx any) {
	s.context = ctx
}

// Context returns the host-defined context.
func (s *State) Context() any {
	return s.context
}

// AddObserver registers an observer after construction.
func (s *State) AddObserver(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// CreateWidget constructs an unloaded widget of the given kind.
func (s *State) CreateWidget(kind Kind) (*Widget, error) {
	if s.mode == ModeSignalTesting || s.mode == ModeIssuingEvents {
		return nil, errWrongMode("CreateWidget", s.mode)
	}

	w := newWidget(s)
	switch kind {
	case KindComposite:
		w.variant = newComposite(w)
	case KindRange:
		w.variant = newRange(w)
	default:
		return nil, errInvalidInput("CreateWidget", "unknown widget kind")
	}

	s.widgets[w] = struct{}{}
	return w, nil
}

// CreateComposite constructs an unloaded composite.
func (s *State) CreateComposite() (*Composite, error) {
	w, err := s.CreateWidget(KindComposite)
	if err != nil {
		return nil, err
	}
	return w.variant.(*Composite), nil
}

// CreateRange constructs an unloaded, empty range.
func (s *State) CreateRange() (*Range, error) {
	w, err := s.CreateWidget(KindRange)
	if err != nil {
		return nil, err
	}
	return w.variant.(*Range), nil
}

// FindWidget looks up a widget by tag.
func (s *State) FindWidget(tag string) *Widget {
	return s.tags[tag]
}

// Choice returns the current choice, or nil.
func (s *State) Choice() *Widget {
	return s.choice
}

// Signal returns the current signal, or nil. It is only non-nil during a propagation.
func (s *State) Signal() *Widget {
	return s.signal
}

// FrameHead returns the frontmost framed widget, or nil.
func (s *State) FrameHead() *Widget {
	if e := s.frame.Front(); e != nil {
		return e.Value.(*Widget)
	}
	return nil
}

// FrameSize returns the number of framed widgets.
func (s *State) FrameSize() int {
	return s.frame.Len()
}

// Frame returns the framed widgets front to back.
func (s *State) Frame() []*Widget {
	out := make([]*Widget, 0, s.frame.Len())
	for e := s.frame.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Widget))
	}
	return out
}

// WidgetCount returns the number of live widgets.
func (s *State) WidgetCount() int {
	return len(s.widgets)
}

// Press reports the press state of the propagation in progress.
func (s *State) Press() (pressed bool, ok bool) {
	if s.mode == ModeNormal || s.mode == ModeUpdating {
		return false, false
	}
	return s.isPressed, true
}

// AbortSignalTests stops the signal test pass in progress. No events are issued for the tick.
func (s *State) AbortSignalTests() error {
	if s.mode != ModeSignalTesting {
		return errWrongMode("AbortSignalTests", s.mode)
	}

	s.Unsignal()
	s.mode = ModeNormal
	return nil
}

// ClearInput drops the current choice and forgets the previous press.
func (s *State) ClearInput() error {
	if s.mode == ModeSignalTesting || s.mode == ModeIssuingEvents {
		return errWrongMode("ClearInput", s.mode)
	}

	s.clearChoice()
	s.wasPressed = false
	return nil
}

// Unsignal clears the current signal. It has no effect while events are being issued.
func (s *State) Unsignal() {
	if s.mode == ModeIssuingEvents {
		return
	}
	if s.signal != nil {
		s.signal.variant.clearSignals()
	}
	s.signal = nil
}

// PropagateSignal runs one input tick: signal testing front to back, then event issuance
// against the previous and new choice.
func (s *State) PropagateSignal(pressed bool) error {
	if s.mode != ModeNormal {
		return errWrongMode("PropagateSignal", s.mode)
	}

	start := time.Now()
	s.isPressed = pressed
	s.visited = 0

	s.mode = ModeSignalTesting
	for e := s.frame.Front(); e != nil; e = e.Next() {
		if s.signalTest(e.Value.(*Widget)) != walkContinue {
			break
		}
	}

	tick := Tick{Kind: TickPropagate, Pressed: pressed, Signal: s.signal}
	if s.mode == ModeNormal {
		tick.Aborted = true
	} else {
		s.resolveSignal()
	}
	tick.Visited = s.visited
	tick.Choice = s.choice
	tick.Elapsed = time.Since(start)
	s.notifyTick(tick)

	return nil
}

// Update runs the update callback over the frame back to front.
func (s *State) Update() error {
	if s.mode != ModeNormal {
		return errWrongMode("Update", s.mode)
	}

	start := time.Now()
	s.visited = 0

	s.mode = ModeUpdating
	for e := s.frame.Back(); e != nil; e = e.Prev() {
		e.Value.(*Widget).update()
	}
	s.mode = ModeNormal

	s.notifyTick(Tick{
		Kind:    TickUpdate,
		Visited: s.visited,
		Choice:  s.choice,
		Elapsed: time.Since(start),
	})
	return nil
}

// Close destroys every widget.
func (s *State) Close() error {
	if s.mode != ModeNormal {
		return errWrongMode("Close", s.mode)
	}
	for w := range s.widgets {
		w.destroy()
	}
	return nil
}

// walkResult threads the outcome of a signal test back up the dock recursion.
type walkResult int

const (
	walkContinue walkResult = iota
	walkFound
	walkAborted
)

// signalTest tests the dock depth first, then the widget itself.
func (s *State) signalTest(w *Widget) walkResult {
	if !w.cannotDockSignalTest {
		for e := w.dock.Front(); e != nil; e = e.Next() {
			if r := s.signalTest(e.Value.(*Widget)); r != walkContinue {
				return r
			}
		}
	}

	if w.cannotSignalTest {
		return walkContinue
	}

	s.visited++
	s.signalFunc(w)

	if s.signal != nil {
		return walkFound
	}
	if s.mode == ModeNormal {
		return walkAborted
	}
	return walkContinue
}

// resolveSignal performs upkeep on the choice and chooses the signal if the choice is gone.
func (s *State) resolveSignal() {
	s.mode = ModeIssuingEvents

	// A press that began over nothing cannot start an interaction until it is released.
	if !s.wasPressed || s.choice != nil {
		if s.choice != nil {
			s.choice.upkeep(s.isPressed)
		}
		if s.signal != nil && s.choice == nil {
			s.choice = s.signal
			s.signal.choose(s.isPressed)
		}
	}

	s.wasPressed = s.isPressed
	s.mode = ModeNormal

	s.Unsignal()
}

func (s *State) clearChoice() {
	if s.choice != nil {
		s.choice.variant.clear()
	}
	s.choice = nil
}

func (s *State) issue(w *Widget, ev Event) {
	s.eventFunc(w, ev)
	for _, o := range s.observers {
		o.ObserveEvent(w, ev)
	}
}

func (s *State) notifyTick(t Tick) {
	for _, o := range s.observers {
		o.ObserveTick(t)
	}
}
