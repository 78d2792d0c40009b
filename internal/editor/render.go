package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qmute/internal/conceal"
)

// Render paints the buffer, eliding concealed regions: rows hidden in full
// are collapsed out of the view and partial ranges are replaced by the
// conceal marker. Line numbers stay true to the buffer, so elisions show up
// as gaps in the gutter.
func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	statusY := h - 2
	cmdY := h - 1
	viewHeight := h - 2
	if h < 2 {
		statusY = h - 1
		cmdY = h - 1
	}
	if viewHeight < 0 {
		viewHeight = 0
	}
	e.viewHeight = viewHeight
	e.ensureCursorVisible(viewHeight)

	s.SetStyle(e.styleMain)
	s.Clear()

	gutterWidth := e.gutterWidth()
	rows := e.visibleRows(e.scroll, viewHeight)
	cursorY := -1
	prevRow := e.scroll - 1
	for y, lineIdx := range rows {
		elided := lineIdx > prevRow+1
		e.drawLineWithGutter(s, y, w, gutterWidth, lineIdx, elided)
		if lineIdx == e.cursor.Row {
			cursorY = y
		}
		prevRow = lineIdx
	}
	for y := len(rows); y < viewHeight; y++ {
		clearLine(s, y, w, e.styleMain)
	}

	var cx, cy int
	if statusY >= 0 {
		e.renderStatusline(s, w, statusY)
	}
	if cmdY >= 0 {
		cmdCursor := e.renderCommandline(s, w, cmdY)
		if e.mode == ModeCommand {
			cx = cmdCursor
			cy = cmdY
		}
	}
	cursorVisible := true
	if e.mode != ModeCommand {
		cy = cursorY
		if cy < 0 {
			cursorVisible = false
		}
		cx = gutterWidth + e.displayCol(e.cursor.Row, e.cursor.Col)
		if cx >= w {
			cx = w - 1
		}
	}
	if !cursorVisible {
		s.HideCursor()
		s.Show()
		return
	}
	cursorStyle := tcell.CursorStyleSteadyBlock
	if e.mode == ModeInsert || e.mode == ModeCommand {
		cursorStyle = tcell.CursorStyleSteadyBar
	}
	s.SetCursorStyle(cursorStyle)
	s.ShowCursor(cx, cy)
	s.Show()
}

// visibleRows lists the buffer rows shown starting at scroll, skipping rows
// concealed in full, up to max entries.
func (e *Editor) visibleRows(scroll, max int) []int {
	rows := make([]int, 0, max)
	for lineIdx := scroll; lineIdx < len(e.lines) && len(rows) < max; lineIdx++ {
		if e.concealActive() && e.overlay.IsLineHidden(e.bufID, lineIdx) && lineIdx != e.cursor.Row {
			continue
		}
		rows = append(rows, lineIdx)
	}
	return rows
}

func (e *Editor) ensureCursorVisible(viewHeight int) {
	if viewHeight <= 0 {
		return
	}
	if e.cursor.Row < e.scroll {
		e.scroll = e.cursor.Row
		return
	}
	// Count visible rows between scroll and cursor; advance scroll past
	// visible rows until the cursor fits.
	for {
		visible := 0
		for lineIdx := e.scroll; lineIdx <= e.cursor.Row && lineIdx < len(e.lines); lineIdx++ {
			if e.concealActive() && e.overlay.IsLineHidden(e.bufID, lineIdx) && lineIdx != e.cursor.Row {
				continue
			}
			visible++
		}
		if visible <= viewHeight {
			return
		}
		e.scroll++
	}
}

func (e *Editor) drawLineWithGutter(s tcell.Screen, y, w, gutterWidth, lineIdx int, elided bool) {
	if gutterWidth > 0 {
		digits := gutterWidth - 2
		if digits < 1 {
			digits = 1
		}
		num := lineIdx + 1
		if e.lineNumberMode == LineNumberRelative && lineIdx != e.cursor.Row {
			diff := lineIdx - e.cursor.Row
			if diff < 0 {
				diff = -diff
			}
			num = diff
		}
		numStr := fmt.Sprintf("%*d", digits, num)
		style := e.styleLineNumber
		if lineIdx == e.cursor.Row {
			style = e.styleLineNumberActive
		} else if elided {
			// A gap in the numbering: the rows above this one are hidden.
			style = e.styleConcealGutter
		}
		if w > 0 {
			s.SetContent(0, y, ' ', nil, e.styleMain)
		}
		for i, r := range numStr {
			x := 1 + i
			if x >= gutterWidth-1 || x >= w {
				break
			}
			s.SetContent(x, y, r, nil, style)
		}
		if gutterWidth-1 < w {
			s.SetContent(gutterWidth-1, y, ' ', nil, e.styleMain)
		}
	}
	if gutterWidth >= w {
		return
	}
	e.drawLine(s, y, w, gutterWidth, lineIdx)
}

func (e *Editor) drawLine(s tcell.Screen, y, w, gutterWidth, lineIdx int) {
	line := e.lines[lineIdx]
	var ranges []conceal.Range
	if e.concealActive() {
		if set, ok := e.overlay.Set(e.bufID); ok {
			ranges = set.RowRanges(lineIdx)
		}
	}

	x := gutterWidth
	col := 0
	for col < len(line) && x < w {
		if r, ok := partialRangeAt(ranges, col); ok {
			for _, mr := range e.marker {
				if x >= w {
					break
				}
				s.SetContent(x, y, mr, nil, e.styleConcealMarker)
				x++
			}
			col = r.EndCol
			continue
		}
		ch := line[col]
		if ch == '\t' {
			pad := e.tabWidth - ((x - gutterWidth) % e.tabWidth)
			for i := 0; i < pad && x < w; i++ {
				s.SetContent(x, y, ' ', nil, e.styleMain)
				x++
			}
		} else {
			s.SetContent(x, y, ch, nil, e.styleMain)
			x++
		}
		col++
	}
	for ; x < w; x++ {
		s.SetContent(x, y, ' ', nil, e.styleMain)
	}
}

func partialRangeAt(ranges []conceal.Range, col int) (conceal.Range, bool) {
	for _, r := range ranges {
		if r.Kind != conceal.Partial {
			continue
		}
		if col >= r.StartCol && col < r.EndCol {
			return r, true
		}
	}
	return conceal.Range{}, false
}

// displayCol maps a buffer column to its screen column on the row,
// accounting for tab expansion and for concealed ranges drawn as markers.
func (e *Editor) displayCol(row, col int) int {
	if row < 0 || row >= len(e.lines) {
		return 0
	}
	line := e.lines[row]
	if col > len(line) {
		col = len(line)
	}
	var ranges []conceal.Range
	if e.concealActive() {
		if set, ok := e.overlay.Set(e.bufID); ok {
			ranges = set.RowRanges(row)
		}
	}
	x := 0
	i := 0
	for i < col {
		if r, ok := partialRangeAt(ranges, i); ok && r.EndCol <= col {
			x += len(e.marker)
			i = r.EndCol
			continue
		}
		if line[i] == '\t' {
			x += e.tabWidth - (x % e.tabWidth)
		} else {
			x++
		}
		i++
	}
	return x
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	mode := "NORMAL"
	if e.mode == ModeInsert {
		mode = "INSERT"
	} else if e.mode == ModeCommand {
		mode = "COMMAND"
	}
	name := e.filename
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if e.dirty {
		dirty = "*"
	}

	status := fmt.Sprintf(" %s | %s%s ", mode, name, dirty)
	if e.statusMessage != "" {
		status = fmt.Sprintf(" %s | %s%s | %s ", mode, name, dirty, e.statusMessage)
	}
	right := fmt.Sprintf(" Ln %d, Col %d ", e.cursor.Row+1, e.displayCol(e.cursor.Row, e.cursor.Col)+1)
	if e.concealActive() {
		st := e.overlay.Stats(e.bufID, len(e.lines))
		right = fmt.Sprintf(" conceal %d/%d (%.0f%%) |%s", st.ConcealedLines, st.TotalLines, st.ConcealedPercent, right)
	}

	line := composeStatusLine(status, right, w)
	for x, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, e.styleStatus)
	}
}

func (e *Editor) renderCommandline(s tcell.Screen, w, y int) int {
	var cmdRunes []rune
	if e.mode == ModeCommand {
		cmdRunes = append([]rune{':'}, e.cmd...)
	}
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(cmdRunes) {
			r = cmdRunes[x]
		}
		s.SetContent(x, y, r, nil, e.styleCommand)
	}
	cursorX := len(cmdRunes)
	if cursorX >= w {
		cursorX = w - 1
	}
	return cursorX
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := width - len(leftRunes) - len(rightRunes)
	if spaceCount < 0 {
		spaceCount = 0
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

func parseLineNumberMode(value string) LineNumberMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "relative", "rel":
		return LineNumberRelative
	case "off", "none", "false":
		return LineNumberOff
	default:
		return LineNumberAbsolute
	}
}

func (e *Editor) gutterWidth() int {
	if e.lineNumberMode == LineNumberOff {
		return 0
	}
	maxLine := len(e.lines)
	if maxLine < 1 {
		maxLine = 1
	}
	digits := len(strconv.Itoa(maxLine))
	if digits < 2 {
		digits = 2
	}
	return 1 + digits + 1
}
