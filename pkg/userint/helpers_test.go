package userint

import (
	"fmt"
	"strings"
	"testing"
)

// recorder captures events as "tag:event" strings.
type recorder struct {
	events []string
}

func (r *recorder) record(w *Widget, ev Event) {
	tag, _ := w.Tag()
	r.events = append(r.events, tag+":"+ev.String())
}

func (r *recorder) reset() {
	r.events = nil
}

func (r *recorder) String() string {
	return strings.Join(r.events, " ")
}

// hitTester signals whatever the test points it at.
type hitTester struct {
	widget *Widget
	part   *Part
	item   int // -1 for none
	visits []string
	hook   func(w *Widget)
}

func newHitTester() *hitTester {
	return &hitTester{item: -1}
}

func (h *hitTester) test(w *Widget) {
	tag, _ := w.Tag()
	h.visits = append(h.visits, tag)
	if h.hook != nil {
		h.hook(w)
	}
	if w != h.widget {
		return
	}
	switch {
	case h.part != nil:
		_ = h.part.Signal()
	case h.item >= 0:
		r, _ := w.Range()
		_ = r.SignalItem(h.item)
	default:
		_ = w.Signal()
	}
}

func (h *hitTester) point(w *Widget) {
	h.widget, h.part, h.item = w, nil, -1
}

func (h *hitTester) pointPart(p *Part) {
	h.widget, h.part, h.item = p.Owner().Widget, p, -1
}

func (h *hitTester) pointItem(r *Range, item int) {
	h.widget, h.part, h.item = r.Widget, nil, item
}

func (h *hitTester) away() {
	h.widget, h.part, h.item = nil, nil, -1
}

type fixture struct {
	t     *testing.T
	state *State
	rec   *recorder
	hits  *hitTester
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, rec: &recorder{}, hits: newHitTester()}
	f.state = New(f.rec.record, f.hits.test, nil)
	return f
}

func (f *fixture) composite(tag string) *Composite {
	f.t.Helper()
	c, err := f.state.CreateComposite()
	if err != nil {
		f.t.Fatalf("CreateComposite() error = %v", err)
	}
	if err := c.SetTag(tag); err != nil {
		f.t.Fatalf("SetTag(%q) error = %v", tag, err)
	}
	return c
}

func (f *fixture) rangeWidget(tag string, items int) *Range {
	f.t.Helper()
	r, err := f.state.CreateRange()
	if err != nil {
		f.t.Fatalf("CreateRange() error = %v", err)
	}
	if err := r.SetTag(tag); err != nil {
		f.t.Fatalf("SetTag(%q) error = %v", tag, err)
	}
	if items > 0 {
		if err := r.InsertItems(0, items); err != nil {
			f.t.Fatalf("InsertItems(0, %d) error = %v", items, err)
		}
	}
	return r
}

func (f *fixture) frame(ws ...*Widget) {
	f.t.Helper()
	for _, w := range ws {
		if err := w.AddToFrame(); err != nil {
			f.t.Fatalf("AddToFrame() error = %v", err)
		}
	}
}

func (f *fixture) dock(parent *Widget, children ...*Widget) {
	f.t.Helper()
	for _, c := range children {
		if err := parent.Dock(c); err != nil {
			f.t.Fatalf("Dock() error = %v", err)
		}
	}
}

// tick propagates one input sample and returns the events it produced.
func (f *fixture) tick(pressed bool) string {
	f.t.Helper()
	f.rec.reset()
	f.hits.visits = nil
	if err := f.state.PropagateSignal(pressed); err != nil {
		f.t.Fatalf("PropagateSignal(%v) error = %v", pressed, err)
	}
	return f.rec.String()
}

func expectEvents(t *testing.T, label, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s events =\n  %q\nwant\n  %q", label, got, want)
	}
}

func tags(ws []*Widget) string {
	names := make([]string, len(ws))
	for i, w := range ws {
		tag, _ := w.Tag()
		names[i] = tag
	}
	return fmt.Sprint(names)
}
