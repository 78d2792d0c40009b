// Package conceal computes which comment regions of a buffer should be
// hidden and provides skip-aware cursor navigation over the hidden regions.
// All rows and columns are 0-based; column values are rune indices.
package conceal

import "sort"

type Kind int

const (
	WholeLine Kind = iota
	Partial
)

func (k Kind) String() string {
	if k == WholeLine {
		return "whole-line"
	}
	return "partial"
}

// Span is a comment range reported by the syntax source. Half-open,
// row-major, start <= end lexicographically. Spans may cover multiple rows
// and are assumed non-overlapping.
type Span struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Range is one concealed region on a single row.
type Range struct {
	Row      int
	StartCol int
	EndCol   int
	Kind     Kind
}

// LineFunc returns the text of a row. Out-of-range rows yield "".
type LineFunc func(row int) string

// Set is the full concealment result for one buffer revision. It is built
// once and never mutated afterwards; Overlay State swaps whole sets.
type Set struct {
	ranges    []Range
	byRow     map[int][]Range
	wholeRows map[int]struct{}
}

// Build derives a Set from the comment spans of one buffer revision.
// Each row touched by a span is classified independently: the first row of a
// multi-row span has an open end, the last an open start, and interior rows
// are open on both sides (always whole-line). An empty span list yields an
// empty Set, which is a valid "nothing to conceal" result.
func Build(spans []Span, line LineFunc) *Set {
	s := &Set{
		byRow:     make(map[int][]Range),
		wholeRows: make(map[int]struct{}),
	}
	for _, sp := range spans {
		startRow, endRow, endCol := sp.StartRow, sp.EndRow, sp.EndCol
		if endRow > startRow && endCol == 0 {
			// Half-open span ending at column 0 does not touch the end row.
			endRow--
			endCol = OpenCol
		}
		if startRow == endRow {
			s.add(startRow, sp.StartCol, endCol, line)
			continue
		}
		s.add(startRow, sp.StartCol, OpenCol, line)
		for row := startRow + 1; row < endRow; row++ {
			s.add(row, OpenCol, OpenCol, line)
		}
		s.add(endRow, OpenCol, endCol, line)
	}
	sort.SliceStable(s.ranges, func(i, j int) bool {
		if s.ranges[i].Row != s.ranges[j].Row {
			return s.ranges[i].Row < s.ranges[j].Row
		}
		return s.ranges[i].StartCol < s.ranges[j].StartCol
	})
	for i := range s.ranges {
		r := s.ranges[i]
		s.byRow[r.Row] = append(s.byRow[r.Row], r)
	}
	return s
}

func (s *Set) add(row, startCol, endCol int, line LineFunc) {
	text := line(row)
	kind := Classify(text, startCol, endCol)
	width := len([]rune(text))
	if kind == WholeLine {
		s.wholeRows[row] = struct{}{}
		startCol, endCol = 0, width
	} else {
		if startCol == OpenCol {
			startCol = 0
		}
		if endCol == OpenCol || endCol > width {
			endCol = width
		}
	}
	s.ranges = append(s.ranges, Range{Row: row, StartCol: startCol, EndCol: endCol, Kind: kind})
}

// Ranges returns every concealed range, ordered by row then start column.
// Callers must not modify the slice.
func (s *Set) Ranges() []Range {
	return s.ranges
}

// RowRanges returns the concealed ranges on one row, if any.
func (s *Set) RowRanges(row int) []Range {
	return s.byRow[row]
}

// IsRowHidden reports whether the row is concealed in full.
func (s *Set) IsRowHidden(row int) bool {
	_, ok := s.wholeRows[row]
	return ok
}

// HiddenRowCount returns how many rows are concealed in full.
func (s *Set) HiddenRowCount() int {
	return len(s.wholeRows)
}

// HiddenRows returns the fully concealed rows in ascending order.
func (s *Set) HiddenRows() []int {
	rows := make([]int, 0, len(s.wholeRows))
	for row := range s.wholeRows {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// partialAt returns the Partial range on row containing col, if one exists.
func (s *Set) partialAt(row, col int) (Range, bool) {
	for _, r := range s.byRow[row] {
		if r.Kind != Partial {
			continue
		}
		if col >= r.StartCol && col < r.EndCol {
			return r, true
		}
	}
	return Range{}, false
}
