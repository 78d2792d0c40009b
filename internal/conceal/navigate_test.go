package conceal

import "testing"

// Rows 1, 2 and 4 of the six-line buffer are concealed in full.

func TestMoveVerticalSkipsHiddenRows(t *testing.T) {
	st := activeState(t)
	if got := st.MoveVertical(buf, 0, +1, 1, 6); got != 3 {
		t.Fatalf("down from 0 = %d, want 3", got)
	}
	if got := st.MoveVertical(buf, 3, +1, 1, 6); got != 5 {
		t.Fatalf("down from 3 = %d, want 5", got)
	}
	if got := st.MoveVertical(buf, 5, -1, 1, 6); got != 3 {
		t.Fatalf("up from 5 = %d, want 3", got)
	}
	if got := st.MoveVertical(buf, 3, -1, 1, 6); got != 0 {
		t.Fatalf("up from 3 = %d, want 0", got)
	}
}

func TestMoveVerticalCount(t *testing.T) {
	st := activeState(t)
	if got := st.MoveVertical(buf, 0, +1, 2, 6); got != 5 {
		t.Fatalf("down count=2 from 0 = %d, want 5", got)
	}
	if got := st.MoveVertical(buf, 5, -1, 2, 6); got != 0 {
		t.Fatalf("up count=2 from 5 = %d, want 0", got)
	}
	// Counts past the edge clamp to the boundary and stop early.
	if got := st.MoveVertical(buf, 0, +1, 10, 6); got != 5 {
		t.Fatalf("down count=10 from 0 = %d, want 5", got)
	}
}

func TestMoveVerticalBoundary(t *testing.T) {
	st := activeState(t)
	if got := st.MoveVertical(buf, 0, -1, 1, 6); got != 0 {
		t.Fatalf("up from 0 = %d, want 0", got)
	}
	if got := st.MoveVertical(buf, 5, +1, 1, 6); got != 5 {
		t.Fatalf("down from 5 = %d, want 5", got)
	}

	// A search that exits the buffer lands on the boundary row even when
	// that row is itself hidden.
	edge := NewState()
	lines := []string{"-- top", "code", "-- bottom"}
	edge.Activate(buf, []Span{
		{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 6},
		{StartRow: 2, StartCol: 0, EndRow: 2, EndCol: 9},
	}, lineFunc(lines...))
	if got := edge.MoveVertical(buf, 1, -1, 1, 3); got != 0 {
		t.Fatalf("up into hidden top = %d, want boundary 0", got)
	}
	if got := edge.MoveVertical(buf, 1, +1, 1, 3); got != 2 {
		t.Fatalf("down into hidden bottom = %d, want boundary 2", got)
	}
}

func TestMoveVerticalFullyHiddenBuffer(t *testing.T) {
	st := NewState()
	lines := []string{"-- a", "-- b", "-- c"}
	st.Activate(buf, []Span{
		{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 4},
		{StartRow: 1, StartCol: 0, EndRow: 1, EndCol: 4},
		{StartRow: 2, StartCol: 0, EndRow: 2, EndCol: 4},
	}, lineFunc(lines...))
	if got := st.MoveVertical(buf, 0, +1, 1, 3); got != 2 {
		t.Fatalf("fully hidden down = %d, want 2", got)
	}
	if got := st.MoveVertical(buf, 2, -1, 1, 3); got != 0 {
		t.Fatalf("fully hidden up = %d, want 0", got)
	}
}

func TestMoveVerticalInactive(t *testing.T) {
	st := NewState()
	// Plain count-fold stepping with the boundary clamp.
	if got := st.MoveVertical(buf, 0, +1, 1, 6); got != 1 {
		t.Fatalf("inactive down = %d, want 1", got)
	}
	if got := st.MoveVertical(buf, 1, +1, 3, 6); got != 4 {
		t.Fatalf("inactive down count=3 = %d, want 4", got)
	}
	if got := st.MoveVertical(buf, 4, +1, 5, 6); got != 5 {
		t.Fatalf("inactive clamp = %d, want 5", got)
	}
	if got := st.MoveVertical(buf, 0, -1, 2, 6); got != 0 {
		t.Fatalf("inactive up at top = %d, want 0", got)
	}
}

func TestMoveHorizontalSkipsConcealedSpan(t *testing.T) {
	line := "local x = 2 -- end comment"
	st := NewState()
	st.Activate(buf, []Span{{StartRow: 0, StartCol: 12, EndRow: 0, EndCol: 26}}, lineFunc(line))
	rowLen := len([]rune(line))

	// Stepping right from the end of the code jumps the whole span.
	if got := st.MoveHorizontal(buf, 0, 11, +1, 1, rowLen); got != 26 {
		t.Fatalf("right from 11 = %d, want 26", got)
	}
	// Stepping left from past the span jumps back before it.
	if got := st.MoveHorizontal(buf, 0, 26, -1, 1, rowLen); got != 11 {
		t.Fatalf("left from 26 = %d, want 11", got)
	}
	// The destination is never inside the concealed columns.
	for col := 0; col <= rowLen; col++ {
		for _, dir := range []int{+1, -1} {
			got := st.MoveHorizontal(buf, 0, col, dir, 1, rowLen)
			if got >= 12 && got < 26 {
				t.Fatalf("from %d dir %+d landed at %d, inside concealed span", col, dir, got)
			}
		}
	}
}

func TestMoveHorizontalCount(t *testing.T) {
	line := "ab -- c; de"
	st := NewState()
	st.Activate(buf, []Span{{StartRow: 0, StartCol: 3, EndRow: 0, EndCol: 8}}, lineFunc(line))
	rowLen := len([]rune(line))
	// Two steps: 2 -> 8 (skipping the span), 8 -> 9.
	if got := st.MoveHorizontal(buf, 0, 2, +1, 2, rowLen); got != 9 {
		t.Fatalf("right count=2 from 2 = %d, want 9", got)
	}
}

func TestMoveHorizontalBoundary(t *testing.T) {
	st := NewState()
	line := "-- lead; x"
	st.Activate(buf, []Span{{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 8}}, lineFunc(line))
	rowLen := len([]rune(line))
	// Leftwards into a span anchored at column 0 clamps to 0.
	if got := st.MoveHorizontal(buf, 0, 9, -1, 1, rowLen); got != 0 {
		t.Fatalf("left into leading span = %d, want 0", got)
	}
	if got := st.MoveHorizontal(buf, 0, rowLen, +1, 3, rowLen); got != rowLen {
		t.Fatalf("right at end = %d, want %d", got, rowLen)
	}
}

func TestMoveHorizontalInactive(t *testing.T) {
	st := NewState()
	if got := st.MoveHorizontal(buf, 0, 3, +1, 2, 10); got != 5 {
		t.Fatalf("inactive right = %d, want 5", got)
	}
	if got := st.MoveHorizontal(buf, 0, 1, -1, 4, 10); got != 0 {
		t.Fatalf("inactive left clamp = %d, want 0", got)
	}
	if got := st.MoveHorizontal(buf, 0, 9, +1, 4, 10); got != 10 {
		t.Fatalf("inactive right clamp = %d, want 10", got)
	}
}

func TestMoveInactiveMatchesPlainSteppingOnScenario(t *testing.T) {
	st := NewState() // concealment inactive, no hidden rows
	for row := 0; row < 6; row++ {
		want := row + 1
		if want > 5 {
			want = 5
		}
		if got := st.MoveVertical(buf, row, +1, 1, 6); got != want {
			t.Fatalf("inactive down from %d = %d, want %d", row, got, want)
		}
	}
}
