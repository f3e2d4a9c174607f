package userint

// Part is a hit-testable sub-region of a composite. It has no children.
type Part struct {
	owner   *Composite
	context any
	removed bool
}

// Owner returns the composite the part belongs to.
func (p *Part) Owner() *Composite {
	return p.owner
}

// State returns the State of the owning composite.
func (p *Part) State() *State {
	return p.owner.state
}

// SetContext binds a host-defined context.
func (p *Part) SetContext(ctx any) {
	p.context = ctx
}

// Context returns the host-defined context.
func (p *Part) Context() any {
	return p.context
}

// IsRemoved reports whether the part was removed or its owner destroyed.
func (p *Part) IsRemoved() bool {
	return p.removed
}

// Signal makes the owning composite the signal with this part as its signaled part.
func (p *Part) Signal() error {
	if p.removed {
		return errDestroyed("Part.Signal", "part")
	}
	if err := p.owner.Widget.Signal(); err != nil {
		return err
	}
	p.owner.signaled = p
	return nil
}

// Remove detaches the part from its owner. Refused while a propagation is in progress.
func (p *Part) Remove() error {
	if p.removed {
		return errDestroyed("Part.Remove", "part")
	}
	if m := p.owner.state.mode; m == ModeSignalTesting || m == ModeIssuingEvents {
		return errWrongMode("Part.Remove", m)
	}

	p.owner.detach(p)
	p.removed = true
	return nil
}

func (p *Part) IsEntered() bool { return !p.removed && p.owner.entered == p }
func (p *Part) IsGrabbed() bool { return !p.removed && p.owner.grabbed == p }

// IsSignaled reports whether the part is the owner's signaled part while the owner is the signal.
func (p *Part) IsSignaled() bool {
	return !p.removed && p.owner.signaled == p && p.owner.IsSignaled()
}

func (p *Part) drop() {
	p.owner.grabbed = nil
	p.owner.issue(EventDropPart)
}

func (p *Part) enter() {
	if p.owner.entered == p {
		return
	}
	p.owner.entered = p
	p.owner.issue(EventEnterPart)
}

func (p *Part) grab() {
	if p.owner.grabbed == p {
		return
	}
	p.owner.grabbed = p
	p.owner.issue(EventGrabPart)
}

func (p *Part) leave() {
	p.owner.entered = nil
	p.owner.issue(EventLeavePart)
}
