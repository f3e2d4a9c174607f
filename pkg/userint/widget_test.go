package userint

import "testing"

func TestAddToFrame_AppendsAndReloads(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")
	f.frame(a.Widget, b.Widget)

	if got := tags(f.state.Frame()); got != "[a b]" {
		t.Errorf("Frame() = %s, want [a b]", got)
	}
	if f.state.FrameHead() != a.Widget {
		t.Error("FrameHead() should be a")
	}
	if a.NextFrameLink() != b.Widget || b.NextFrameLink() != nil {
		t.Error("frame links are wrong")
	}

	// Re-adding moves the widget to the back.
	f.frame(a.Widget)
	if got := tags(f.state.Frame()); got != "[b a]" {
		t.Errorf("Frame() after re-add = %s, want [b a]", got)
	}
	if f.state.FrameSize() != 2 {
		t.Errorf("FrameSize() = %d, want 2", f.state.FrameSize())
	}
}

func TestDock_MovesBetweenContainers(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	q := f.composite("q")
	c := f.composite("c")
	f.frame(p.Widget, q.Widget, c.Widget)

	f.dock(p.Widget, c.Widget)
	if c.IsFramed() || !c.IsDocked() || c.Parent() != p.Widget {
		t.Error("c should move from the frame into p's dock")
	}
	if got := tags(f.state.Frame()); got != "[p q]" {
		t.Errorf("Frame() = %s, want [p q]", got)
	}

	f.dock(q.Widget, c.Widget)
	if p.DockSize() != 0 || q.DockHead() != c.Widget {
		t.Error("c should move from p's dock into q's dock")
	}

	if err := c.Unload(); err != nil {
		t.Fatalf("Unload() error = %v", err)
	}
	if c.IsLoaded() || c.Parent() != nil || q.DockSize() != 0 {
		t.Error("c should be unloaded")
	}
}

func TestDock_KeepsOwnDockOnUnload(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	c := f.composite("c")
	f.frame(p.Widget)
	f.dock(p.Widget, c.Widget)

	if err := p.Unload(); err != nil {
		t.Fatal(err)
	}
	if p.DockHead() != c.Widget || c.Parent() != p.Widget {
		t.Error("unloading a widget should keep its dock")
	}
	if !c.IsLoaded() {
		t.Error("c is still docked, so it counts as loaded")
	}
}

func TestDock_Refusals(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")
	c := f.composite("c")
	f.frame(a.Widget)
	f.dock(a.Widget, b.Widget)
	f.dock(b.Widget, c.Widget)

	if err := a.Dock(a.Widget); err == nil {
		t.Error("Dock(self) should fail")
	}
	if err := c.Dock(a.Widget); err == nil {
		t.Error("docking an ancestor should fail")
	}
	if err := a.Dock(nil); !IsInvalidHandle(err) {
		t.Errorf("Dock(nil) error = %v, want invalid handle", err)
	}

	other := New(nil, nil, nil)
	foreign, _ := other.CreateComposite()
	if err := a.Dock(foreign.Widget); !IsInvalidHandle(err) {
		t.Errorf("Dock(foreign) error = %v, want invalid handle", err)
	}

	if c.Parent() != b.Widget || a.Parent() != nil {
		t.Error("refused docks must not change the tree")
	}
}

func TestDock_OrderAndPromote(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	x := f.composite("x")
	y := f.composite("y")
	z := f.composite("z")
	f.frame(p.Widget)
	f.dock(p.Widget, x.Widget, y.Widget, z.Widget)

	if got := tags(p.Docked()); got != "[x y z]" {
		t.Errorf("Docked() = %s, want [x y z]", got)
	}
	if x.NextDockLink() != y.Widget || z.NextDockLink() != nil {
		t.Error("dock links are wrong")
	}

	if err := z.PromoteToDockHead(); err != nil {
		t.Fatal(err)
	}
	if got := tags(p.Docked()); got != "[z x y]" {
		t.Errorf("Docked() after promote = %s, want [z x y]", got)
	}

	if err := p.PromoteToDockHead(); err == nil {
		t.Error("PromoteToDockHead() on a framed widget should fail")
	}
	if err := x.PromoteToFrameHead(); err == nil {
		t.Error("PromoteToFrameHead() on a docked widget should fail")
	}
}

func TestPromoteToFrameHead(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")
	c := f.composite("c")
	f.frame(a.Widget, b.Widget, c.Widget)

	if err := c.PromoteToFrameHead(); err != nil {
		t.Fatal(err)
	}
	if got := tags(f.state.Frame()); got != "[c a b]" {
		t.Errorf("Frame() = %s, want [c a b]", got)
	}

	// The promoted widget is now tested first.
	f.hits.hook = func(w *Widget) { _ = w.Signal() }
	f.tick(false)
	if f.state.Choice() != c.Widget {
		t.Error("the frame head should win")
	}
}

func TestStructuralChangesDuringSignalTest(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")
	f.frame(a.Widget)
	f.dock(a.Widget, b.Widget)

	var errs []error
	f.hits.hook = func(w *Widget) {
		if w != a.Widget {
			return
		}
		errs = append(errs,
			b.AddToFrame(),
			a.Dock(b.Widget),
			b.Unload(),
			b.PromoteToDockHead(),
			a.PromoteToFrameHead(),
			a.Destroy(),
			a.AllowSignalTest(false),
			a.AllowDockSignalTest(false),
		)
		_, err := f.state.CreateWidget(KindComposite)
		errs = append(errs, err)
		_, err = a.CreatePart()
		errs = append(errs, err)
	}
	f.tick(false)

	for i, err := range errs {
		if !IsWrongMode(err) {
			t.Errorf("call %d during signal testing error = %v, want wrong mode", i, err)
		}
	}
	if b.Parent() != a.Widget || !a.IsFramed() || a.IsDestroyed() {
		t.Error("refused calls must not change the tree")
	}
}

func TestStructuralChangesDuringEvents(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")
	f.frame(a.Widget, b.Widget)

	var frameErr, destroyErr, createErr error
	f.state.eventFunc = func(w *Widget, ev Event) {
		if ev != EventPostChoose {
			return
		}
		// Reordering is allowed while events are issued.
		frameErr = b.PromoteToFrameHead()
		destroyErr = b.Destroy()
		_, createErr = f.state.CreateRange()
	}
	f.hits.point(a.Widget)
	f.tick(false)

	if frameErr != nil {
		t.Errorf("PromoteToFrameHead() during events error = %v", frameErr)
	}
	if !IsWrongMode(destroyErr) {
		t.Errorf("Destroy() during events error = %v, want wrong mode", destroyErr)
	}
	if !IsWrongMode(createErr) {
		t.Errorf("CreateRange() during events error = %v, want wrong mode", createErr)
	}
	if f.state.FrameHead() != b.Widget {
		t.Error("b should be the frame head")
	}
}

func TestSetTag(t *testing.T) {
	f := newFixture(t)
	a := f.composite("a")
	b := f.composite("b")

	if f.state.FindWidget("a") != a.Widget {
		t.Fatal("FindWidget(a) should find a")
	}

	// Taking a held tag strips it from the previous holder.
	if err := b.SetTag("a"); err != nil {
		t.Fatal(err)
	}
	if f.state.FindWidget("a") != b.Widget {
		t.Error("FindWidget(a) should find b")
	}
	if a.IsTagged() {
		t.Error("a should have lost its tag")
	}
	if f.state.FindWidget("b") != nil {
		t.Error("b's old tag should be released")
	}

	if err := a.SetTag(""); err == nil {
		t.Error("SetTag(\"\") should fail")
	}

	if err := b.Untag(); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Tag(); ok || f.state.FindWidget("a") != nil {
		t.Error("Untag() should release the tag")
	}
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	c := f.composite("c")
	grandchild := f.composite("g")
	f.frame(p.Widget)
	f.dock(p.Widget, c.Widget)
	f.dock(c.Widget, grandchild.Widget)

	f.hits.point(p.Widget)
	f.tick(false)
	if f.state.Choice() != p.Widget {
		t.Fatal("p should be chosen")
	}

	if err := p.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if !p.IsDestroyed() || p.IsLoaded() {
		t.Error("p should be destroyed and unloaded")
	}
	if f.state.Choice() != nil {
		t.Error("destroying the choice should clear it")
	}
	if f.state.FindWidget("p") != nil {
		t.Error("destroy should release the tag")
	}
	if c.IsDestroyed() || c.IsLoaded() {
		t.Error("docked children are unloaded, not destroyed")
	}
	if grandchild.Parent() != c.Widget {
		t.Error("grandchildren stay docked under their parent")
	}
	if f.state.WidgetCount() != 2 {
		t.Errorf("WidgetCount() = %d, want 2", f.state.WidgetCount())
	}

	if err := p.Destroy(); err == nil {
		t.Error("second Destroy() should fail")
	}
	if err := p.AddToFrame(); err == nil {
		t.Error("AddToFrame() on a destroyed widget should fail")
	}
	if err := c.Dock(p.Widget); !IsInvalidHandle(err) {
		t.Errorf("Dock(destroyed) error = %v, want invalid handle", err)
	}
}

func TestUnloadClearsChoice(t *testing.T) {
	f := newFixture(t)
	c := f.composite("c")
	f.frame(c.Widget)
	f.hits.point(c.Widget)
	f.tick(true)

	if err := c.Unload(); err != nil {
		t.Fatal(err)
	}
	if f.state.Choice() != nil {
		t.Error("unloading the choice should clear it")
	}
	if c.IsGrabbed() || c.IsEntered() {
		t.Error("input flags should be reset")
	}
}

func TestSignalTestPermissions(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	c := f.composite("c")
	g := f.composite("g")
	f.frame(p.Widget)
	f.dock(p.Widget, c.Widget)
	f.dock(c.Widget, g.Widget)

	if err := p.AllowDockSignalTest(false); err != nil {
		t.Fatal(err)
	}
	f.tick(false)
	if got := tags(visitedWidgets(f)); got != "[p]" {
		t.Errorf("visits = %s, want [p]", got)
	}
	if c.IsSignalTestAllowed() || g.IsSignalTestAllowed() {
		t.Error("a closed ancestor dock should deny all descendants")
	}
	if !p.IsSignalTestAllowed() {
		t.Error("p itself is still testable")
	}

	_ = p.AllowDockSignalTest(true)
	_ = c.AllowSignalTest(false)
	f.tick(false)
	if got := tags(visitedWidgets(f)); got != "[g p]" {
		t.Errorf("visits = %s, want [g p]", got)
	}
	if !g.IsSignalTestAllowed() {
		t.Error("a widget's own flag does not affect its dock")
	}
}

func TestUpdatePermissions(t *testing.T) {
	f := newFixture(t)
	p := f.composite("p")
	c := f.composite("c")
	f.frame(p.Widget)
	f.dock(p.Widget, c.Widget)

	_ = p.AllowDockUpdate(false)
	if c.IsUpdateAllowed() {
		t.Error("closed dock should deny update")
	}
	if !p.IsUpdateAllowed() {
		t.Error("p should still update")
	}

	loose := f.composite("loose")
	if loose.IsUpdateAllowed() || loose.IsSignalTestAllowed() {
		t.Error("unloaded widgets are never tested or updated")
	}
}

func TestSignal_RequiresSignalTesting(t *testing.T) {
	f := newFixture(t)
	c := f.composite("c")

	if err := c.Signal(); !IsWrongMode(err) {
		t.Errorf("Signal() outside testing error = %v, want wrong mode", err)
	}
}

func TestKindNarrowing(t *testing.T) {
	f := newFixture(t)
	c := f.composite("c")
	r := f.rangeWidget("r", 0)

	if c.Kind() != KindComposite || r.Kind() != KindRange {
		t.Error("Kind() mismatch")
	}
	if got, ok := c.Widget.Composite(); !ok || got != c {
		t.Error("Composite() should return the composite")
	}
	if _, ok := c.Widget.Range(); ok {
		t.Error("Range() on a composite should fail")
	}
	if got, ok := r.Widget.Range(); !ok || got != r {
		t.Error("Range() should return the range")
	}
	if _, err := f.state.CreateWidget(Kind(99)); err == nil {
		t.Error("CreateWidget(unknown) should fail")
	}
}

func TestWidgetContext(t *testing.T) {
	f := newFixture(t)
	c := f.composite("c")
	c.SetContext("payload")
	if c.Context() != "payload" {
		t.Errorf("Context() = %v", c.Context())
	}
	if c.State() != f.state {
		t.Error("State() should return the owner")
	}
}

// visitedWidgets resolves the tags recorded by the hit tester.
func visitedWidgets(f *fixture) []*Widget {
	out := make([]*Widget, 0, len(f.hits.visits))
	for _, tag := range f.hits.visits {
		out = append(out, f.state.FindWidget(tag))
	}
	return out
}
