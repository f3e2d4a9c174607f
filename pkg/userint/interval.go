package userint

// Interval is a contiguous run [where, where+count) of a range's items. A zero count means the
// interval is cleared.
type Interval struct {
	rng     *Range
	where   int
	count   int
	removed bool
}

// Range returns the owning range.
func (iv *Interval) Range() *Range {
	return iv.rng
}

// Get returns the interval if it is not cleared.
func (iv *Interval) Get() (where, count int, ok bool) {
	if iv.removed || iv.count == 0 {
		return 0, 0, false
	}
	return iv.where, iv.count, true
}

// Set starts the interval at the item where and clamps count to the end of the sequence.
// It returns the stored count.
func (iv *Interval) Set(where, count int) (int, error) {
	if iv.removed {
		return 0, errDestroyed("Interval.Set", "interval")
	}
	if count < 0 {
		return 0, errInvalidInput("Interval.Set", "negative count")
	}
	if !iv.rng.IsItemValid(where, false) {
		return 0, errOutOfRange("Interval.Set", where, len(iv.rng.items))
	}

	iv.where = where
	iv.count = iv.rng.Trim(where, count)
	return iv.count, nil
}

// Clear empties the interval.
func (iv *Interval) Clear() {
	iv.count = 0
}

// Remove detaches the interval from its range.
func (iv *Interval) Remove() error {
	if iv.removed {
		return errDestroyed("Interval.Remove", "interval")
	}
	iv.rng.removeInterval(iv)
	iv.removed = true
	return nil
}

// adjustForDelete runs before count items at where are erased. The overlap shrink and the
// start pull-back are independent and may both apply.
func (iv *Interval) adjustForDelete(where, count int) {
	if iv.count == 0 {
		return
	}

	// count is trimmed to the sequence, so where+count cannot overflow.
	begin, end := where, where+count
	if end > iv.where && begin < iv.where+iv.count {
		begin = max(begin, iv.where)
		end = min(end, iv.where+iv.count)
		iv.count -= end - begin
	}

	if iv.where > where {
		iv.where -= min(iv.where-where, count)
	}
}

// adjustForInsert runs before count items are inserted at where. Inserting at the start or
// inside the interval grows it; inserting before it shifts it.
func (iv *Interval) adjustForInsert(where, count int) {
	if iv.count == 0 {
		return
	}

	if where < iv.where {
		iv.where += count
	} else if where < iv.where+iv.count {
		iv.count += count
	}
}
