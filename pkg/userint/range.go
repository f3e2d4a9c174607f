package userint

// MaxItems bounds the item sequence of a range. Inserts that would grow past it are refused
// before any spot or interval moves.
const MaxItems = 1 << 24

// Range is a widget whose sub-elements are an ordered sequence of items, each carrying an
// opaque host context. Spots and intervals created on the range follow the sequence through
// every insert and delete.
type Range struct {
	*Widget

	items     []uint64
	spots     []*Spot
	intervals []*Interval

	enteredSpot *Spot
	grabbedSpot *Spot

	signaledItem int
	itemSignaled bool
}

func newRange(w *Widget) *Range {
	r := &Range{Widget: w}
	// The built-in spots may sit one past the end and never migrate.
	r.enteredSpot = &Spot{rng: r, addSpot: true, builtin: true}
	r.grabbedSpot = &Spot{rng: r, addSpot: true, builtin: true}
	r.spots = []*Spot{r.enteredSpot, r.grabbedSpot}
	return r
}

// ItemCount returns the number of items.
func (r *Range) ItemCount() int {
	return len(r.items)
}

// IsItemValid reports whether where indexes an item, or the slot one past the end when
// allowEnd is set.
func (r *Range) IsItemValid(where int, allowEnd bool) bool {
	extent := len(r.items)
	if allowEnd {
		extent++
	}
	return where >= 0 && where < extent
}

// Trim clamps count so that [start, start+count) does not run past the end.
func (r *Range) Trim(start, count int) int {
	size := len(r.items)
	if count > size-start {
		count = size - start
	}
	if count < 0 {
		return 0
	}
	return count
}

// InsertItems inserts count items with zero context before where. where may equal the item
// count to append.
func (r *Range) InsertItems(where, count int) error {
	if r.destroyed {
		return errDestroyed("InsertItems", "range")
	}
	if m := r.state.mode; m != ModeNormal {
		return errWrongMode("InsertItems", m)
	}
	if count < 0 {
		return errInvalidInput("InsertItems", "negative count")
	}
	if !r.IsItemValid(where, true) {
		return errOutOfRange("InsertItems", where, len(r.items))
	}
	if count > MaxItems-len(r.items) {
		return errInvalidInput("InsertItems", "range would exceed MaxItems")
	}

	// Bookkeeping is adjusted against the sequence as it was before the insert.
	for _, s := range r.spots {
		s.adjustForInsert(where, count)
	}
	for _, iv := range r.intervals {
		iv.adjustForInsert(where, count)
	}

	grown := make([]uint64, len(r.items)+count)
	copy(grown, r.items[:where])
	copy(grown[where+count:], r.items[where:])
	r.items = grown
	return nil
}

// DeleteItems deletes up to count items starting at where and returns how many were deleted.
func (r *Range) DeleteItems(where, count int) (int, error) {
	if r.destroyed {
		return 0, errDestroyed("DeleteItems", "range")
	}
	if m := r.state.mode; m != ModeNormal {
		return 0, errWrongMode("DeleteItems", m)
	}
	if count < 0 {
		return 0, errInvalidInput("DeleteItems", "negative count")
	}
	if !r.IsItemValid(where, false) {
		return 0, errOutOfRange("DeleteItems", where, len(r.items))
	}

	count = r.Trim(where, count)

	for _, s := range r.spots {
		s.adjustForDelete(where, count)
	}
	for _, iv := range r.intervals {
		iv.adjustForDelete(where, count)
	}

	r.items = append(r.items[:where], r.items[where+count:]...)
	return count, nil
}

// ItemContext returns the context of the item at where.
func (r *Range) ItemContext(where int) (uint64, bool) {
	if !r.IsItemValid(where, false) {
		return 0, false
	}
	return r.items[where], true
}

// SetItemContext sets the context of the item at where.
func (r *Range) SetItemContext(where int, ctx uint64) error {
	if r.destroyed {
		return errDestroyed("SetItemContext", "range")
	}
	if !r.IsItemValid(where, false) {
		return errOutOfRange("SetItemContext", where, len(r.items))
	}
	r.items[where] = ctx
	return nil
}

// EnteredItem returns the index of the entered item.
func (r *Range) EnteredItem() (int, bool) {
	return r.enteredSpot.Get()
}

// GrabbedItem returns the index of the grabbed item.
func (r *Range) GrabbedItem() (int, bool) {
	return r.grabbedSpot.Get()
}

// CreateSpot adds a spot at index 0. An add spot may sit one past the last item; a migratory
// spot slides instead of being invalidated when its item is deleted.
func (r *Range) CreateSpot(addSpot, migrate bool) (*Spot, error) {
	if r.destroyed {
		return nil, errDestroyed("CreateSpot", "range")
	}
	if m := r.state.mode; m == ModeSignalTesting || m == ModeIssuingEvents {
		return nil, errWrongMode("CreateSpot", m)
	}

	s := &Spot{rng: r, addSpot: addSpot, migrate: migrate}
	if migrate {
		s.valid = s.Valid()
	}
	r.spots = append(r.spots, s)
	return s, nil
}

// CreateInterval adds an empty interval.
func (r *Range) CreateInterval() (*Interval, error) {
	if r.destroyed {
		return nil, errDestroyed("CreateInterval", "range")
	}
	if m := r.state.mode; m == ModeSignalTesting || m == ModeIssuingEvents {
		return nil, errWrongMode("CreateInterval", m)
	}

	iv := &Interval{rng: r}
	r.intervals = append(r.intervals, iv)
	return iv, nil
}

// SignalItem makes the range the signal with where as its signaled item. where may be one past
// the last item.
func (r *Range) SignalItem(where int) error {
	if m := r.state.mode; m != ModeSignalTesting {
		return errWrongMode("SignalItem", m)
	}
	if !r.IsItemValid(where, true) {
		return errOutOfRange("SignalItem", where, len(r.items))
	}
	if err := r.Widget.Signal(); err != nil {
		return err
	}

	r.signaledItem = where
	r.itemSignaled = true
	return nil
}

// SignaledItem returns the signaled item while signal testing.
func (r *Range) SignaledItem() (int, bool) {
	if r.state.mode != ModeSignalTesting || !r.itemSignaled {
		return 0, false
	}
	return r.signaledItem, true
}

// isSwitch reports whether the entered spot has to change. Enter tests fail without a signaled
// item and pass without an entered spot; leave tests fail without an entered spot and pass
// without a signaled item.
func (r *Range) isSwitch(entering bool) bool {
	if entering {
		if !r.itemSignaled {
			return false
		}
		if !r.enteredSpot.Valid() {
			return true
		}
	} else {
		if !r.enteredSpot.Valid() {
			return false
		}
		if !r.itemSignaled {
			return true
		}
	}
	return r.enteredSpot.where != r.signaledItem
}

func (r *Range) kind() Kind { return KindRange }

func (r *Range) clear() {
	r.Widget.clear()
	r.grabbedSpot.clear()
	r.enteredSpot.clear()
}

func (r *Range) clearSignals() {
	r.itemSignaled = false
}

func (r *Range) drop() {
	r.Widget.drop()
	if r.grabbedSpot.Valid() {
		r.issue(EventDropItem)
		r.grabbedSpot.clear()
	}
}

func (r *Range) enter() {
	r.Widget.enter()
	if r.isSwitch(true) {
		r.enteredSpot.set(r.signaledItem)
		r.issue(EventEnterItem)
	}
}

// grab prefers the signaled item over the range itself.
func (r *Range) grab() {
	if r.itemSignaled {
		if r.grabbedSpot.Valid() {
			return
		}
		r.grabbedSpot.set(r.signaledItem)
		r.issue(EventGrabItem)
		return
	}
	r.Widget.grab()
}

func (r *Range) leave() {
	if r.isSwitch(false) {
		r.issue(EventLeaveItem)
		r.enteredSpot.clear()
	}
	r.Widget.leave()
}

func (r *Range) isChosen() bool {
	return r.Widget.grabbed || r.grabbedSpot.Valid()
}

func (r *Range) teardown() {
	for _, s := range r.spots {
		s.removed = true
	}
	for _, iv := range r.intervals {
		iv.removed = true
	}
	r.spots = nil
	r.intervals = nil
	r.items = nil
	r.itemSignaled = false
}

func (r *Range) removeSpot(s *Spot) {
	for i, q := range r.spots {
		if q == s {
			r.spots = append(r.spots[:i], r.spots[i+1:]...)
			return
		}
	}
}

func (r *Range) removeInterval(iv *Interval) {
	for i, q := range r.intervals {
		if q == iv {
			r.intervals = append(r.intervals[:i], r.intervals[i+1:]...)
			return
		}
	}
}
