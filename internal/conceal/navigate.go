package conceal

// MoveVertical computes the destination row for a count-fold vertical step,
// skipping rows that are concealed in full. Each repetition advances one row
// in dir (+1 or -1) and then keeps advancing while the row is hidden. If a
// search runs off the buffer the result clamps to the boundary row, which is
// returned even when itself hidden, and repetition stops. With concealment
// inactive this is plain stepping clamped to [0, totalLines-1].
func (st *State) MoveVertical(id BufferID, row, dir, count, totalLines int) int {
	if totalLines < 1 {
		return 0
	}
	last := totalLines - 1
	cur := clamp(row, 0, last)
	set := st.sets[id]
	for i := 0; i < count; i++ {
		next := cur + dir
		if next < 0 || next > last {
			break
		}
		if set != nil {
			for next >= 0 && next <= last && set.IsRowHidden(next) {
				next += dir
			}
			if next < 0 {
				return 0
			}
			if next > last {
				return last
			}
		}
		if next == cur {
			break
		}
		cur = next
	}
	return cur
}

// MoveHorizontal computes the destination column for a count-fold horizontal
// step on one row, skipping columns covered by a partial concealed range.
// A concealed span is cleared in one jump: rightwards to the span's end,
// leftwards to just before its start. Column domain is [0, rowLength];
// running off either edge clamps and stops repetition. With concealment
// inactive this is plain stepping clamped to the domain.
func (st *State) MoveHorizontal(id BufferID, row, col, dir, count, rowLength int) int {
	if rowLength < 0 {
		rowLength = 0
	}
	cur := clamp(col, 0, rowLength)
	set := st.sets[id]
	for i := 0; i < count; i++ {
		next := cur + dir
		if next < 0 {
			return 0
		}
		if next > rowLength {
			return rowLength
		}
		if set != nil {
			for {
				r, ok := set.partialAt(row, next)
				if !ok {
					break
				}
				if dir > 0 {
					next = r.EndCol
				} else {
					next = r.StartCol - 1
				}
				if next < 0 {
					return 0
				}
				if next > rowLength {
					return rowLength
				}
			}
		}
		if next == cur {
			break
		}
		cur = next
	}
	return cur
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
