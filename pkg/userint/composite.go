package userint

// Composite is a widget whose sub-elements are host-defined parts.
type Composite struct {
	*Widget

	parts    []*Part
	entered  *Part
	grabbed  *Part
	signaled *Part
}

func newComposite(w *Widget) *Composite {
	return &Composite{Widget: w}
}

// CreatePart adds a part owned by the composite.
func (c *Composite) CreatePart() (*Part, error) {
	if c.destroyed {
		return nil, errDestroyed("CreatePart", "composite")
	}
	if m := c.state.mode; m == ModeSignalTesting || m == ModeIssuingEvents {
		return nil, errWrongMode("CreatePart", m)
	}

	p := &Part{owner: c}
	c.parts = append(c.parts, p)
	return p, nil
}

// Parts returns the live parts in creation order.
func (c *Composite) Parts() []*Part {
	out := make([]*Part, len(c.parts))
	copy(out, c.parts)
	return out
}

// EnteredPart returns the entered part, or nil.
func (c *Composite) EnteredPart() *Part { return c.entered }

// GrabbedPart returns the grabbed part, or nil.
func (c *Composite) GrabbedPart() *Part { return c.grabbed }

// SignaledPart returns the part signaled during the current signal test, or nil.
func (c *Composite) SignaledPart() *Part { return c.signaled }

func (c *Composite) kind() Kind { return KindComposite }

func (c *Composite) clear() {
	c.Widget.clear()
	c.grabbed = nil
	c.entered = nil
}

func (c *Composite) clearSignals() {
	c.signaled = nil
}

func (c *Composite) drop() {
	c.Widget.drop()
	if c.grabbed != nil {
		c.grabbed.drop()
	}
}

func (c *Composite) enter() {
	c.Widget.enter()
	if c.signaled != nil {
		c.signaled.enter()
	}
}

// grab prefers the signaled part over the composite itself.
func (c *Composite) grab() {
	if c.signaled != nil {
		c.signaled.grab()
		return
	}
	c.Widget.grab()
}

// leave leaves the entered part only when no part is signaled. Moving straight to another
// part is reported by its enter_part alone.
func (c *Composite) leave() {
	if c.entered != nil && c.signaled == nil {
		c.entered.leave()
	}
	c.Widget.leave()
}

func (c *Composite) isChosen() bool {
	return c.grabbed != nil || c.Widget.grabbed
}

func (c *Composite) teardown() {
	for _, p := range c.parts {
		p.removed = true
	}
	c.parts = nil
	c.entered, c.grabbed, c.signaled = nil, nil, nil
}

func (c *Composite) detach(p *Part) {
	if c.grabbed == p {
		c.grabbed = nil
	}
	if c.entered == p {
		c.entered = nil
	}
	if c.signaled == p {
		c.signaled = nil
	}
	for i, q := range c.parts {
		if q == p {
			c.parts = append(c.parts[:i], c.parts[i+1:]...)
			break
		}
	}
}
