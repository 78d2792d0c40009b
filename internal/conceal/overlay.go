package conceal

// BufferID identifies a buffer registered with the host. IDs are opaque;
// validation against the registry happens at the boundary.
type BufferID int

// Stats summarizes how much of a buffer is concealed.
type Stats struct {
	TotalLines       int
	ConcealedLines   int
	ConcealedPercent float64
}

// State holds the installed Concealment Set per buffer. A buffer with no
// entry is inactive; the entry itself is the sole enabled flag. State is
// single-writer per buffer: Activate and Deactivate must not race for the
// same buffer, navigators only read.
type State struct {
	sets map[BufferID]*Set
}

func NewState() *State {
	return &State{sets: make(map[BufferID]*Set)}
}

// Activate builds a fresh Set from spans and installs it, replacing any
// prior set for the buffer. An empty span list installs an empty set:
// concealment is on with nothing hidden.
func (st *State) Activate(id BufferID, spans []Span, line LineFunc) *Set {
	set := Build(spans, line)
	st.sets[id] = set
	return set
}

// Deactivate removes the buffer's set. Idempotent; also used on buffer
// teardown.
func (st *State) Deactivate(id BufferID) {
	delete(st.sets, id)
}

// IsActive reports whether a Concealment Set is installed for the buffer,
// including the empty one.
func (st *State) IsActive(id BufferID) bool {
	_, ok := st.sets[id]
	return ok
}

// Set returns the installed Concealment Set for rendering.
func (st *State) Set(id BufferID) (*Set, bool) {
	set, ok := st.sets[id]
	return set, ok
}

// IsLineHidden reports whether the row is concealed in full. False when the
// buffer is inactive.
func (st *State) IsLineHidden(id BufferID, row int) bool {
	set, ok := st.sets[id]
	return ok && set.IsRowHidden(row)
}

// IsPositionHidden reports whether the column falls inside a concealed
// range on the row. Whole-line rows hide every column.
func (st *State) IsPositionHidden(id BufferID, row, col int) bool {
	set, ok := st.sets[id]
	if !ok {
		return false
	}
	if set.IsRowHidden(row) {
		return true
	}
	_, ok = set.partialAt(row, col)
	return ok
}

// Stats reports concealment coverage for the buffer. An inactive buffer
// counts zero concealed lines.
func (st *State) Stats(id BufferID, totalLines int) Stats {
	s := Stats{TotalLines: totalLines}
	set, ok := st.sets[id]
	if !ok {
		return s
	}
	s.ConcealedLines = set.HiddenRowCount()
	if totalLines > 0 {
		s.ConcealedPercent = float64(s.ConcealedLines) / float64(totalLines) * 100
	}
	return s
}
