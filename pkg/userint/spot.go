package userint

// Spot marks a position in a range's item sequence and follows it through inserts and deletes.
//
// A non-migratory spot is invalid until Set and becomes invalid again when cleared or when its
// item is deleted. A migratory spot always holds a position; it is valid whenever that position
// indexes an item (or the end slot, for an add spot).
type Spot struct {
	rng     *Range
	where   int
	addSpot bool
	migrate bool
	valid   bool
	builtin bool
	removed bool
}

// Range returns the owning range.
func (s *Spot) Range() *Range {
	return s.rng
}

// IsAddSpot reports whether the spot may sit one past the last item.
func (s *Spot) IsAddSpot() bool { return s.addSpot }

// IsMigratory reports whether the spot slides instead of being invalidated on delete.
func (s *Spot) IsMigratory() bool { return s.migrate }

// Valid reports whether the spot currently indexes the range.
func (s *Spot) Valid() bool {
	if s.removed {
		return false
	}
	if !s.migrate && !s.valid {
		return false
	}
	return s.rng.IsItemValid(s.where, s.addSpot)
}

// Get returns the spot's position if it is valid.
func (s *Spot) Get() (int, bool) {
	if !s.Valid() {
		return 0, false
	}
	return s.where, true
}

// Set moves the spot to where and marks it valid.
func (s *Spot) Set(where int) error {
	if s.removed {
		return errDestroyed("Spot.Set", "spot")
	}
	if s.builtin {
		return errInvalidInput("Spot.Set", "built-in spots are managed by the range")
	}
	if !s.rng.IsItemValid(where, s.addSpot) {
		return errOutOfRange("Spot.Set", where, len(s.rng.items))
	}
	s.set(where)
	return nil
}

// Clear invalidates a non-migratory spot.
func (s *Spot) Clear() error {
	if s.removed {
		return errDestroyed("Spot.Clear", "spot")
	}
	if s.builtin {
		return errInvalidInput("Spot.Clear", "built-in spots are managed by the range")
	}
	s.clear()
	return nil
}

// Remove detaches the spot from its range.
func (s *Spot) Remove() error {
	if s.removed {
		return errDestroyed("Spot.Remove", "spot")
	}
	if s.builtin {
		return errInvalidInput("Spot.Remove", "built-in spots live as long as the range")
	}
	s.rng.removeSpot(s)
	s.removed = true
	return nil
}

func (s *Spot) set(where int) {
	s.where = where
	s.valid = true
}

func (s *Spot) clear() {
	s.valid = false
}

// adjustForDelete runs before count items at where are erased.
func (s *Spot) adjustForDelete(where, count int) {
	if !s.Valid() {
		return
	}

	if !s.migrate {
		if s.where >= where && s.where-where >= count {
			s.where -= count
		} else if s.where >= where {
			s.clear()
		}
		return
	}

	// A migratory spot after the deletion point moves back by the lesser of the deleted
	// count and its distance from the deletion point.
	if s.where > where {
		s.where -= min(s.where-where, count)
	}

	// If the deleted run reached the end and took the spot with it, the spot now sits one
	// past the end. Pull it back onto the last item unless that slot is allowed or nothing
	// remains.
	size := len(s.rng.items)
	if size-s.where == count {
		if s.addSpot || count == size {
			return
		}
		s.where--
	}
}

// adjustForInsert runs before count items are inserted at where.
func (s *Spot) adjustForInsert(where, count int) {
	if !s.Valid() {
		return
	}

	if s.where >= where {
		s.where += count
	}

	// Emptiness is measured before the insert. A valid non-add spot cannot exist in an empty
	// range, so this only guards the invariant.
	if len(s.rng.items) == 0 && !s.addSpot && s.where > 0 {
		s.where--
	}
}
