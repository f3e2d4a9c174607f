package scene

import (
	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/userint"
)

// Node binds a declared widget to the widget built for it.
type Node struct {
	Spec   WidgetSpec
	Widget *userint.Widget
	Parts  []*userint.Part
}

// Rect returns the widget's screen rectangle.
func (n *Node) Rect() Rect { return n.Spec.Rect }

// PartRect returns the screen rectangle of part i.
func (n *Node) PartRect(i int) Rect {
	return n.Spec.Parts[i].Rect.Translate(n.Spec.Rect.X, n.Spec.Rect.Y).Intersection(n.Spec.Rect)
}

// ItemRect returns the screen rectangle of item row i, which may be empty when the row falls
// below the widget.
func (n *Node) ItemRect(i int) Rect {
	return n.Spec.Rect.Row(i, n.Spec.itemHeight())
}

// Scene is a State populated from a Spec, with a geometric signal test driven by a pointer.
type Scene struct {
	state    *userint.State
	spec     *Spec
	nodes    []*Node
	byWidget map[*userint.Widget]*Node
	pointer  Point
	inside   bool
}

// New creates a State whose signal test is the scene's hit test and builds spec into it.
func New(spec *Spec, eventFunc userint.EventFunc, updateFunc userint.UpdateFunc, opts ...userint.Option) (*Scene, error) {
	sc := &Scene{byWidget: make(map[*userint.Widget]*Node)}
	sc.state = userint.New(eventFunc, sc.SignalTest, updateFunc, opts...)
	if err := sc.Reload(spec); err != nil {
		return nil, err
	}
	return sc, nil
}

// Build populates state from spec. state must be in normal mode and its signal callback must
// forward to the returned scene's SignalTest for hit testing to take effect.
func Build(state *userint.State, spec *Spec) (*Scene, error) {
	sc := &Scene{state: state, byWidget: make(map[*userint.Widget]*Node)}
	if err := sc.Reload(spec); err != nil {
		return nil, err
	}
	return sc, nil
}

// State returns the scene's state.
func (s *Scene) State() *userint.State { return s.state }

// Spec returns the spec the scene was last built from.
func (s *Scene) Spec() *Spec { return s.spec }

// Nodes returns the built widgets in declaration order.
func (s *Scene) Nodes() []*Node { return s.nodes }

// Node returns the node built for w.
func (s *Scene) Node(w *userint.Widget) (*Node, bool) {
	n, ok := s.byWidget[w]
	return n, ok
}

// Lookup returns the node for tag.
func (s *Scene) Lookup(tag string) (*Node, bool) {
	w := s.state.FindWidget(tag)
	if w == nil {
		return nil, false
	}
	return s.Node(w)
}

// SetPointer moves the pointer used by the next signal test.
func (s *Scene) SetPointer(x, y int) {
	s.pointer = Point{X: x, Y: y}
	s.inside = true
}

// ClearPointer makes the next signal tests miss every widget.
func (s *Scene) ClearPointer() {
	s.inside = false
}

// Pointer returns the pointer position and whether it is set.
func (s *Scene) Pointer() (Point, bool) {
	return s.pointer, s.inside
}

// SignalTest is the userint.SignalFunc for the scene. A widget under the pointer signals
// through its topmost part (the last declared one that contains the pointer) or the item row
// under the pointer; otherwise it signals as a whole. Rows below the last item signal the
// end slot.
func (s *Scene) SignalTest(w *userint.Widget) {
	n, ok := s.byWidget[w]
	if !ok || !s.inside || !n.Rect().Contains(s.pointer) {
		return
	}

	if r, ok := w.Range(); ok {
		row := (s.pointer.Y - n.Spec.Rect.Y) / n.Spec.itemHeight()
		_ = r.SignalItem(min(row, r.ItemCount()))
		return
	}

	for i := len(n.Parts) - 1; i >= 0; i-- {
		if n.PartRect(i).Contains(s.pointer) {
			_ = n.Parts[i].Signal()
			return
		}
	}
	_ = w.Signal()
}

// Reload destroys the widgets built for the previous spec and builds spec in their place.
// The state must be in normal mode. If spec fails to build, the previous spec is rebuilt and
// the build error is returned.
func (s *Scene) Reload(spec *Spec) error {
	if spec == nil {
		return apperrors.New(apperrors.ErrCodeSceneInvalid, "scene spec is nil")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if m := s.state.Mode(); m != userint.ModeNormal {
		return apperrors.Newf(apperrors.ErrCodeWrongMode, "scene reload requires normal mode, state is %s", m).
			WithRetryable(true)
	}

	s.teardown()
	if err := s.load(spec); err != nil {
		s.teardown()
		if s.spec != nil {
			if rerr := s.load(s.spec); rerr != nil {
				s.teardown()
				s.spec = nil
				return apperrors.Wrap(rerr, apperrors.ErrCodeSceneInvalid, "restoring previous scene").
					WithContext("reload_error", err.Error())
			}
		}
		return err
	}
	s.spec = spec
	return nil
}

// Close destroys every widget the scene built.
func (s *Scene) Close() error {
	if m := s.state.Mode(); m != userint.ModeNormal {
		return apperrors.Newf(apperrors.ErrCodeWrongMode, "scene close requires normal mode, state is %s", m)
	}
	s.teardown()
	s.spec = nil
	return nil
}

func (s *Scene) load(spec *Spec) error {
	for _, ws := range spec.Widgets {
		n, err := s.create(ws)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "building widget").
				WithContext("tag", ws.Tag)
		}
		s.nodes = append(s.nodes, n)
		s.byWidget[n.Widget] = n

		switch {
		case ws.Frame:
			err = n.Widget.AddToFrame()
		case ws.Parent != "":
			parent := s.state.FindWidget(ws.Parent)
			if parent == nil {
				return apperrors.New(apperrors.ErrCodeSceneInvalid, "parent not built").
					WithContext("tag", ws.Tag).
					WithContext("parent", ws.Parent)
			}
			err = parent.Dock(n.Widget)
		}
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeSceneInvalid, "loading widget").
				WithContext("tag", ws.Tag)
		}
	}
	return nil
}

func (s *Scene) create(ws WidgetSpec) (*Node, error) {
	kind, _ := userint.ParseKind(ws.Kind)
	n := &Node{Spec: ws}

	switch kind {
	case userint.KindComposite:
		c, err := s.state.CreateComposite()
		if err != nil {
			return nil, err
		}
		n.Widget = c.Widget
		for range ws.Parts {
			p, err := c.CreatePart()
			if err != nil {
				_ = c.Destroy()
				return nil, err
			}
			n.Parts = append(n.Parts, p)
		}
	case userint.KindRange:
		r, err := s.state.CreateRange()
		if err != nil {
			return nil, err
		}
		n.Widget = r.Widget
		if ws.Items > 0 {
			if err := r.InsertItems(0, ws.Items); err != nil {
				_ = r.Destroy()
				return nil, err
			}
		}
	}

	if err := n.Widget.SetTag(ws.Tag); err != nil {
		_ = n.Widget.Destroy()
		return nil, err
	}
	if ws.SignalTest != nil {
		_ = n.Widget.AllowSignalTest(*ws.SignalTest)
	}
	if ws.Update != nil {
		_ = n.Widget.AllowUpdate(*ws.Update)
	}
	return n, nil
}

func (s *Scene) teardown() {
	for _, n := range s.nodes {
		if !n.Widget.IsDestroyed() {
			_ = n.Widget.Destroy()
		}
	}
	s.nodes = nil
	clear(s.byWidget)
}
