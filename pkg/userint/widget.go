package userint

import "container/list"

// variant is the behavior that differs between composites and ranges.
type variant interface {
	kind() Kind
	clear()
	clearSignals()
	drop()
	enter()
	grab()
	leave()
	isChosen() bool
	teardown()
}

// Widget is a node of the interaction tree. It is loaded when it is either framed at the top
// level or docked under exactly one parent.
type Widget struct {
	state   *State
	variant variant
	context any

	entered bool
	grabbed bool
	framed  bool

	cannotSignalTest     bool
	cannotUpdate         bool
	cannotDockSignalTest bool
	cannotDockUpdate     bool

	tag    string
	tagged bool

	dock   *list.List
	elem   *list.Element // position in the frame or in the parent's dock
	parent *Widget

	destroyed bool
}

func newWidget(s *State) *Widget {
	return &Widget{state: s, dock: list.New()}
}

// State returns the owning State.
func (w *Widget) State() *State {
	return w.state
}

// Kind returns the widget variant.
func (w *Widget) Kind() Kind {
	return w.variant.kind()
}

// Composite narrows the widget to its composite variant.
func (w *Widget) Composite() (*Composite, bool) {
	c, ok := w.variant.(*Composite)
	return c, ok
}

// Range narrows the widget to its range variant.
func (w *Widget) Range() (*Range, bool) {
	r, ok := w.variant.(*Range)
	return r, ok
}

// SetContext binds a host-defined context.
func (w *Widget) SetContext(ctx any) {
	w.context = ctx
}

// Context returns the host-defined context.
func (w *Widget) Context() any {
	return w.context
}

// IsDestroyed reports whether Destroy has run.
func (w *Widget) IsDestroyed() bool {
	return w.destroyed
}

// AddToFrame unloads the widget and appends it to the back of the frame.
func (w *Widget) AddToFrame() error {
	if w.destroyed {
		return errDestroyed("AddToFrame", "widget")
	}
	if m := w.state.mode; m == ModeSignalTesting || m == ModeUpdating {
		return errWrongMode("AddToFrame", m)
	}

	w.unload()
	w.elem = w.state.frame.PushBack(w)
	w.framed = true
	return nil
}

// Dock unloads child and appends it to the back of this widget's dock.
func (w *Widget) Dock(child *Widget) error {
	if w.destroyed {
		return errDestroyed("Dock", "widget")
	}
	if child == nil || child.destroyed {
		return errInvalidHandle("Dock", "child is nil or destroyed")
	}
	if child == w {
		return errInvalidInput("Dock", "widget cannot dock itself")
	}
	if child.state != w.state {
		return errInvalidHandle("Dock", "child belongs to another state")
	}
	if m := w.state.mode; m == ModeSignalTesting || m == ModeUpdating {
		return errWrongMode("Dock", m)
	}
	for p := w.parent; p != nil; p = p.parent {
		if p == child {
			return errInvalidInput("Dock", "child is an ancestor of the widget")
		}
	}

	child.unload()
	child.elem = w.dock.PushBack(child)
	child.parent = w
	return nil
}

// Unload removes the widget from the frame or its parent's dock. Its own dock is kept.
func (w *Widget) Unload() error {
	if w.destroyed {
		return errDestroyed("Unload", "widget")
	}
	if m := w.state.mode; m == ModeSignalTesting || m == ModeUpdating {
		return errWrongMode("Unload", m)
	}

	w.unload()
	return nil
}

func (w *Widget) unload() {
	if !w.IsLoaded() {
		return
	}

	if w.state.choice == w {
		w.state.clearChoice()
	}

	if w.parent != nil {
		w.parent.dock.Remove(w.elem)
		w.parent = nil
	} else {
		w.state.frame.Remove(w.elem)
		w.framed = false
	}
	w.elem = nil
}

// Destroy unloads and frees the widget. Docked children are unloaded, not destroyed.
func (w *Widget) Destroy() error {
	if w.destroyed {
		return errDestroyed("Destroy", "widget")
	}
	if m := w.state.mode; m != ModeNormal {
		return errWrongMode("Destroy", m)
	}

	w.destroy()
	return nil
}

func (w *Widget) destroy() {
	w.unload()
	w.untag()
	if w.state.choice == w {
		w.state.clearChoice()
	}

	for e := w.dock.Front(); e != nil; e = w.dock.Front() {
		e.Value.(*Widget).unload()
	}

	w.variant.teardown()
	delete(w.state.widgets, w)
	w.destroyed = true
}

// PromoteToDockHead moves the widget to the front of its parent's dock.
func (w *Widget) PromoteToDockHead() error {
	if w.destroyed {
		return errDestroyed("PromoteToDockHead", "widget")
	}
	if !w.IsDocked() {
		return errInvalidInput("PromoteToDockHead", "widget is not docked")
	}
	if m := w.state.mode; m == ModeSignalTesting || m == ModeUpdating {
		return errWrongMode("PromoteToDockHead", m)
	}

	w.parent.dock.MoveToFront(w.elem)
	return nil
}

// PromoteToFrameHead moves the widget to the front of the frame.
func (w *Widget) PromoteToFrameHead() error {
	if w.destroyed {
		return errDestroyed("PromoteToFrameHead", "widget")
	}
	if !w.framed {
		return errInvalidInput("PromoteToFrameHead", "widget is not framed")
	}
	if m := w.state.mode; m == ModeSignalTesting || m == ModeUpdating {
		return errWrongMode("PromoteToFrameHead", m)
	}

	w.state.frame.MoveToFront(w.elem)
	return nil
}

// SetTag associates a unique tag with the widget. A tag held by another widget is taken over.
func (w *Widget) SetTag(tag string) error {
	if w.destroyed {
		return errDestroyed("SetTag", "widget")
	}
	if tag == "" {
		return errInvalidInput("SetTag", "empty tag")
	}

	w.untag()

	if holder, ok := w.state.tags[tag]; ok {
		holder.tagged = false
		holder.tag = ""
	}

	w.state.tags[tag] = w
	w.tag = tag
	w.tagged = true
	return nil
}

// Untag removes the widget's tag, if any.
func (w *Widget) Untag() error {
	if w.destroyed {
		return errDestroyed("Untag", "widget")
	}
	w.untag()
	return nil
}

func (w *Widget) untag() {
	if !w.tagged {
		return
	}
	delete(w.state.tags, w.tag)
	w.tag = ""
	w.tagged = false
}

// Tag returns the widget's tag.
func (w *Widget) Tag() (string, bool) {
	return w.tag, w.tagged
}

// AllowSignalTest toggles signal testing of the widget itself.
func (w *Widget) AllowSignalTest(allow bool) error {
	if w.state.mode == ModeSignalTesting {
		return errWrongMode("AllowSignalTest", w.state.mode)
	}
	w.cannotSignalTest = !allow
	return nil
}

// AllowDockSignalTest toggles signal testing of every widget docked beneath this one.
func (w *Widget) AllowDockSignalTest(allow bool) error {
	if w.state.mode == ModeSignalTesting {
		return errWrongMode("AllowDockSignalTest", w.state.mode)
	}
	w.cannotDockSignalTest = !allow
	return nil
}

// AllowUpdate toggles updating of the widget itself.
func (w *Widget) AllowUpdate(allow bool) error {
	if w.state.mode == ModeUpdating {
		return errWrongMode("AllowUpdate", w.state.mode)
	}
	w.cannotUpdate = !allow
	return nil
}

// AllowDockUpdate toggles updating of every widget docked beneath this one.
func (w *Widget) AllowDockUpdate(allow bool) error {
	if w.state.mode == ModeUpdating {
		return errWrongMode("AllowDockUpdate", w.state.mode)
	}
	w.cannotDockUpdate = !allow
	return nil
}

// Signal makes the widget the current signal, evicting any previous one.
func (w *Widget) Signal() error {
	if w.state.mode != ModeSignalTesting {
		return errWrongMode("Signal", w.state.mode)
	}
	if w.destroyed {
		return errDestroyed("Signal", "widget")
	}

	w.state.Unsignal()
	w.state.signal = w
	return nil
}

// DockHead returns the first docked child, or nil.
func (w *Widget) DockHead() *Widget {
	if e := w.dock.Front(); e != nil {
		return e.Value.(*Widget)
	}
	return nil
}

// DockSize returns the number of docked children.
func (w *Widget) DockSize() int {
	return w.dock.Len()
}

// Docked returns the docked children front to back.
func (w *Widget) Docked() []*Widget {
	out := make([]*Widget, 0, w.dock.Len())
	for e := w.dock.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*Widget))
	}
	return out
}

// NextDockLink returns the sibling after this widget in its parent's dock, or nil.
func (w *Widget) NextDockLink() *Widget {
	if !w.IsDocked() {
		return nil
	}
	if e := w.elem.Next(); e != nil {
		return e.Value.(*Widget)
	}
	return nil
}

// NextFrameLink returns the widget after this one in the frame, or nil.
func (w *Widget) NextFrameLink() *Widget {
	if !w.framed {
		return nil
	}
	if e := w.elem.Next(); e != nil {
		return e.Value.(*Widget)
	}
	return nil
}

// Parent returns the widget this one is docked in, or nil.
func (w *Widget) Parent() *Widget {
	return w.parent
}

func (w *Widget) IsDocked() bool   { return w.parent != nil }
func (w *Widget) IsFramed() bool   { return w.framed }
func (w *Widget) IsLoaded() bool   { return w.parent != nil || w.framed }
func (w *Widget) IsEntered() bool  { return w.entered }
func (w *Widget) IsGrabbed() bool  { return w.grabbed }
func (w *Widget) IsTagged() bool   { return w.tagged }
func (w *Widget) IsSignaled() bool { return w.state.signal == w }

// IsChosen reports whether the widget would keep the choice without being signaled.
func (w *Widget) IsChosen() bool {
	return w.variant.isChosen()
}

// IsSignalTestAllowed reports whether the widget is loaded, testable, and not shut off by an
// ancestor's dock permission.
func (w *Widget) IsSignalTestAllowed() bool {
	if !w.IsLoaded() || w.cannotSignalTest {
		return false
	}
	for p := w.parent; p != nil; p = p.parent {
		if p.cannotDockSignalTest {
			return false
		}
	}
	return true
}

// IsUpdateAllowed reports whether the widget is loaded, updatable, and not shut off by an
// ancestor's dock permission.
func (w *Widget) IsUpdateAllowed() bool {
	if !w.IsLoaded() || w.cannotUpdate {
		return false
	}
	for p := w.parent; p != nil; p = p.parent {
		if p.cannotDockUpdate {
			return false
		}
	}
	return true
}

// update runs the update callback on the widget, then on its dock back to front.
func (w *Widget) update() {
	if !w.cannotUpdate {
		w.state.visited++
		w.state.updateFunc(w)
	}
	if w.cannotDockUpdate {
		return
	}
	for e := w.dock.Back(); e != nil; e = e.Prev() {
		e.Value.(*Widget).update()
	}
}

// choose activates a newly resolved choice.
func (w *Widget) choose(pressed bool) {
	w.issue(EventPreChoose)

	w.variant.enter()
	if pressed {
		w.variant.grab()
	}

	w.issue(EventPostChoose)
}

// upkeep reconciles the current choice with this tick's signal and press.
func (w *Widget) upkeep(pressed bool) {
	w.issue(EventPreUpkeep)

	w.variant.leave()

	if w.IsSignaled() {
		w.variant.enter()
		if pressed {
			w.variant.grab()
		}
	}

	if !pressed {
		w.variant.drop()
	}

	if !w.IsSignaled() && !w.variant.isChosen() {
		w.state.clearChoice()
		w.issue(EventAbandon)
	} else {
		w.issue(EventPostUpkeep)
	}
}

func (w *Widget) issue(ev Event) {
	w.state.issue(w, ev)
}

// Base transitions. Each fires its event only on an actual change.

func (w *Widget) clear() {
	w.grabbed = false
	w.entered = false
}

func (w *Widget) drop() {
	if !w.grabbed {
		return
	}
	w.grabbed = false
	w.issue(EventDrop)
}

func (w *Widget) enter() {
	if w.entered {
		return
	}
	w.entered = true
	w.issue(EventEnter)
}

func (w *Widget) grab() {
	if w.grabbed {
		return
	}
	w.grabbed = true
	w.issue(EventGrab)
}

func (w *Widget) leave() {
	if w.IsSignaled() || !w.entered {
		return
	}
	w.entered = false
	w.issue(EventLeave)
}
