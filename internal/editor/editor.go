package editor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qmute/internal/conceal"
	"github.com/kobzarvs/qmute/internal/config"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeCommand
)

const (
	actionMoveLeft          = "move_left"
	actionMoveRight         = "move_right"
	actionMoveUp            = "move_up"
	actionMoveDown          = "move_down"
	actionLineStart         = "line_start"
	actionLineEnd           = "line_end"
	actionFileStart         = "file_start"
	actionFileEnd           = "file_end"
	actionPageUp            = "page_up"
	actionPageDown          = "page_down"
	actionEnterInsert       = "enter_insert"
	actionEnterNormal       = "enter_normal"
	actionEnterCommand      = "enter_command"
	actionQuit              = "quit"
	actionBackspace         = "backspace"
	actionNewline           = "newline"
	actionToggleLineNumbers = "toggle_line_numbers"
	actionToggleConceal     = "toggle_conceal"
	actionSave              = "save"
)

type Cursor struct {
	Row int
	Col int
}

type keymapSet struct {
	normal map[string]string
	insert map[string]string
}

type LineNumberMode int

const (
	LineNumberOff LineNumberMode = iota
	LineNumberAbsolute
	LineNumberRelative
)

type Editor struct {
	lines    [][]rune
	cursor   Cursor
	scroll   int
	mode     Mode
	filename string
	dirty    bool
	keymap   keymapSet
	cmd      []rune

	statusMessage string
	tabWidth      int
	viewHeight    int

	styleMain             tcell.Style
	styleStatus           tcell.Style
	styleCommand          tcell.Style
	styleLineNumber       tcell.Style
	styleLineNumberActive tcell.Style
	styleConcealMarker    tcell.Style
	styleConcealGutter    tcell.Style

	lineNumberMode LineNumberMode
	marker         []rune
	changeTick     uint64
	pendingCount   int

	overlay    *conceal.State
	bufID      conceal.BufferID
	navEnabled bool

	concealRequest string
}

func New(cfg config.Config) *Editor {
	normal := make(map[string]string, len(cfg.Keymap.Normal))
	for k, v := range cfg.Keymap.Normal {
		normal[k] = v
	}
	insert := make(map[string]string, len(cfg.Keymap.Insert))
	for k, v := range cfg.Keymap.Insert {
		insert[k] = v
	}
	tabWidth := cfg.Editor.TabWidth
	if tabWidth < 1 {
		tabWidth = 1
	}
	marker := []rune(cfg.Conceal.Marker)
	if len(marker) == 0 {
		marker = []rune{'…'}
	}
	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	statusFg := parseColor(cfg.Theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatuslineBackground, tcell.ColorGray)
	commandFg := parseColor(cfg.Theme.CommandlineForeground, statusFg)
	commandBg := parseColor(cfg.Theme.CommandlineBackground, statusBg)
	lineNumberFg := parseColor(cfg.Theme.LineNumberForeground, tcell.ColorGray)
	lineNumberActiveFg := parseColor(cfg.Theme.LineNumberActiveForeground, mainFg)
	markerFg := parseColor(cfg.Theme.ConcealMarkerForeground, tcell.ColorGray)
	gutterFg := parseColor(cfg.Theme.ConcealGutterForeground, tcell.ColorYellow)
	return &Editor{
		lines:                 [][]rune{{}},
		mode:                  ModeNormal,
		keymap:                keymapSet{normal: normal, insert: insert},
		tabWidth:              tabWidth,
		marker:                marker,
		styleMain:             tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
		styleStatus:           tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		styleCommand:          tcell.StyleDefault.Foreground(commandFg).Background(commandBg),
		styleLineNumber:       tcell.StyleDefault.Foreground(lineNumberFg).Background(mainBg),
		styleLineNumberActive: tcell.StyleDefault.Foreground(lineNumberActiveFg).Background(mainBg),
		styleConcealMarker:    tcell.StyleDefault.Foreground(markerFg).Background(mainBg),
		styleConcealGutter:    tcell.StyleDefault.Foreground(gutterFg).Background(mainBg),
		lineNumberMode:        parseLineNumberMode(cfg.Editor.LineNumbers),
	}
}

func (e *Editor) OpenFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	e.lines = splitLines(data)
	if len(e.lines) == 0 {
		e.lines = [][]rune{{}}
	}
	e.cursor = Cursor{}
	e.scroll = 0
	e.mode = ModeNormal
	e.filename = path
	e.dirty = false
	return nil
}

func (e *Editor) Save(path string) error {
	if path == "" {
		path = e.filename
	}
	if path == "" {
		return fmt.Errorf("no file name")
	}
	if err := os.WriteFile(path, []byte(e.Content()), 0o644); err != nil {
		return err
	}
	e.filename = path
	e.dirty = false
	return nil
}

// SetConceal wires the overlay state this editor renders and navigates
// against. The navigation flag gates skip-aware movement only; rendering
// always honors the installed set.
func (e *Editor) SetConceal(state *conceal.State, id conceal.BufferID, navigation bool) {
	e.overlay = state
	e.bufID = id
	e.navEnabled = navigation
}

func (e *Editor) Content() string {
	return joinLines(e.lines)
}

func (e *Editor) Line(row int) string {
	if row < 0 || row >= len(e.lines) {
		return ""
	}
	return string(e.lines[row])
}

func (e *Editor) LineCount() int {
	return len(e.lines)
}

func (e *Editor) Filename() string {
	return e.filename
}

func (e *Editor) Cursor() Cursor {
	return e.cursor
}

// ChangeTick increments on every text mutation; the host watches it to
// schedule reparses.
func (e *Editor) ChangeTick() uint64 {
	return e.changeTick
}

func (e *Editor) SetStatusMessage(msg string) {
	e.statusMessage = msg
}

// ConsumeConcealRequest returns a pending enable/disable/toggle/stats
// request issued from a key or command, clearing it.
func (e *Editor) ConsumeConcealRequest() (string, bool) {
	if e.concealRequest == "" {
		return "", false
	}
	req := e.concealRequest
	e.concealRequest = ""
	return req, true
}

// HandleKey processes one key event. Returns true when the editor should
// quit.
func (e *Editor) HandleKey(ev *tcell.EventKey) bool {
	if e.mode != ModeCommand && e.statusMessage != "" {
		e.statusMessage = ""
	}
	switch e.mode {
	case ModeInsert:
		return e.handleInsert(ev)
	case ModeCommand:
		return e.handleCommand(ev)
	default:
		return e.handleNormal(ev)
	}
}

func (e *Editor) handleNormal(ev *tcell.EventKey) bool {
	key := keyString(ev)
	// Digits accumulate a repeat count for motions, vim-style. A leading
	// zero is line_start, not a count.
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && !(key == "0" && e.pendingCount == 0) {
		e.pendingCount = e.pendingCount*10 + int(key[0]-'0')
		return false
	}
	count := e.pendingCount
	e.pendingCount = 0
	if count < 1 {
		count = 1
	}
	action, ok := e.keymap.normal[key]
	if !ok {
		if key == "0" {
			action = actionLineStart
		} else {
			return false
		}
	}
	return e.execAction(action, count)
}

func (e *Editor) handleInsert(ev *tcell.EventKey) bool {
	key := keyString(ev)
	if action, ok := e.keymap.insert[key]; ok {
		return e.execAction(action, 1)
	}
	if ev.Key() == tcell.KeyRune {
		e.insertRune(ev.Rune())
	} else if ev.Key() == tcell.KeyTab {
		e.insertRune('\t')
	}
	return false
}

func (e *Editor) handleCommand(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		e.cmd = nil
		e.mode = ModeNormal
	case tcell.KeyEnter:
		cmd := strings.TrimSpace(string(e.cmd))
		e.cmd = nil
		e.mode = ModeNormal
		return e.execCommand(cmd)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(e.cmd) > 0 {
			e.cmd = e.cmd[:len(e.cmd)-1]
		} else {
			e.mode = ModeNormal
		}
	case tcell.KeyRune:
		e.cmd = append(e.cmd, ev.Rune())
	}
	return false
}

func (e *Editor) execAction(action string, count int) bool {
	switch action {
	case actionMoveLeft:
		e.moveHorizontal(-1, count)
	case actionMoveRight:
		e.moveHorizontal(+1, count)
	case actionMoveUp:
		e.moveVertical(-1, count)
	case actionMoveDown:
		e.moveVertical(+1, count)
	case actionLineStart:
		e.cursor.Col = 0
	case actionLineEnd:
		e.cursor.Col = len(e.lines[e.cursor.Row])
	case actionFileStart:
		e.cursor.Row = e.firstVisibleRow()
		e.cursor.Col = 0
	case actionFileEnd:
		e.cursor.Row = e.lastVisibleRow()
		e.clampCursorCol()
	case actionPageUp:
		e.moveVertical(-1, e.viewHeightCached())
	case actionPageDown:
		e.moveVertical(+1, e.viewHeightCached())
	case actionEnterInsert:
		e.mode = ModeInsert
	case actionEnterNormal:
		e.mode = ModeNormal
	case actionEnterCommand:
		e.mode = ModeCommand
		e.cmd = nil
	case actionQuit:
		return true
	case actionBackspace:
		e.backspace()
	case actionNewline:
		e.newline()
	case actionToggleLineNumbers:
		if e.lineNumberMode == LineNumberOff {
			e.lineNumberMode = LineNumberAbsolute
		} else {
			e.lineNumberMode = LineNumberOff
		}
	case actionToggleConceal:
		e.concealRequest = "toggle"
	case actionSave:
		if err := e.Save(""); err != nil {
			e.statusMessage = err.Error()
		} else {
			e.statusMessage = "saved"
		}
	}
	return false
}

func (e *Editor) execCommand(cmd string) bool {
	switch {
	case cmd == "q", cmd == "q!":
		return true
	case cmd == "w":
		if err := e.Save(""); err != nil {
			e.statusMessage = err.Error()
		} else {
			e.statusMessage = "saved"
		}
	case cmd == "wq":
		if err := e.Save(""); err != nil {
			e.statusMessage = err.Error()
			return false
		}
		return true
	case cmd == "conceal", cmd == "conceal toggle":
		e.concealRequest = "toggle"
	case cmd == "conceal on":
		e.concealRequest = "enable"
	case cmd == "conceal off":
		e.concealRequest = "disable"
	case cmd == "conceal stats":
		e.concealRequest = "stats"
	default:
		if n, err := strconv.Atoi(cmd); err == nil {
			e.gotoLine(n)
		} else if cmd != "" {
			e.statusMessage = "unknown command: " + cmd
		}
	}
	return false
}

// gotoLine jumps to a 1-based line number, settling on a visible row when
// the target is concealed.
func (e *Editor) gotoLine(n int) {
	row := n - 1
	if row < 0 {
		row = 0
	}
	if row >= len(e.lines) {
		row = len(e.lines) - 1
	}
	if e.concealActive() && e.overlay.IsLineHidden(e.bufID, row) {
		row = e.overlay.MoveVertical(e.bufID, row, +1, 1, len(e.lines))
	}
	e.cursor.Row = row
	e.clampCursorCol()
}

func (e *Editor) concealActive() bool {
	return e.overlay != nil && e.overlay.IsActive(e.bufID)
}

func (e *Editor) skipNav() bool {
	return e.navEnabled && e.concealActive()
}

func (e *Editor) moveVertical(dir, count int) {
	if e.skipNav() {
		e.cursor.Row = e.overlay.MoveVertical(e.bufID, e.cursor.Row, dir, count, len(e.lines))
	} else {
		e.cursor.Row = clamp(e.cursor.Row+dir*count, 0, len(e.lines)-1)
	}
	e.clampCursorCol()
}

func (e *Editor) moveHorizontal(dir, count int) {
	lineLen := len(e.lines[e.cursor.Row])
	// Wrap across line boundaries like plain h/l, landing on visible rows.
	if dir < 0 && e.cursor.Col == 0 {
		if e.cursor.Row > 0 {
			prev := e.prevVisibleRow(e.cursor.Row)
			if prev != e.cursor.Row {
				e.cursor.Row = prev
				e.cursor.Col = len(e.lines[e.cursor.Row])
			}
		}
		return
	}
	if dir > 0 && e.cursor.Col >= lineLen {
		if e.cursor.Row < len(e.lines)-1 {
			next := e.nextVisibleRow(e.cursor.Row)
			if next != e.cursor.Row {
				e.cursor.Row = next
				e.cursor.Col = 0
			}
		}
		return
	}
	if e.skipNav() {
		e.cursor.Col = e.overlay.MoveHorizontal(e.bufID, e.cursor.Row, e.cursor.Col, dir, count, lineLen)
	} else {
		e.cursor.Col = clamp(e.cursor.Col+dir*count, 0, lineLen)
	}
}

func (e *Editor) firstVisibleRow() int {
	if e.concealActive() && e.overlay.IsLineHidden(e.bufID, 0) {
		return e.overlay.MoveVertical(e.bufID, 0, +1, 1, len(e.lines))
	}
	return 0
}

func (e *Editor) lastVisibleRow() int {
	last := len(e.lines) - 1
	if e.concealActive() && e.overlay.IsLineHidden(e.bufID, last) {
		return e.overlay.MoveVertical(e.bufID, last, -1, 1, len(e.lines))
	}
	return last
}

func (e *Editor) nextVisibleRow(row int) int {
	if e.skipNav() {
		return e.overlay.MoveVertical(e.bufID, row, +1, 1, len(e.lines))
	}
	return clamp(row+1, 0, len(e.lines)-1)
}

func (e *Editor) prevVisibleRow(row int) int {
	if e.skipNav() {
		return e.overlay.MoveVertical(e.bufID, row, -1, 1, len(e.lines))
	}
	return clamp(row-1, 0, len(e.lines)-1)
}

func (e *Editor) insertRune(r rune) {
	line := e.lines[e.cursor.Row]
	col := clamp(e.cursor.Col, 0, len(line))
	newLine := make([]rune, 0, len(line)+1)
	newLine = append(newLine, line[:col]...)
	newLine = append(newLine, r)
	newLine = append(newLine, line[col:]...)
	e.lines[e.cursor.Row] = newLine
	e.cursor.Col = col + 1
	e.markChanged()
}

func (e *Editor) backspace() {
	if e.cursor.Col > 0 {
		line := e.lines[e.cursor.Row]
		col := clamp(e.cursor.Col, 1, len(line))
		e.lines[e.cursor.Row] = append(line[:col-1], line[col:]...)
		e.cursor.Col = col - 1
		e.markChanged()
		return
	}
	if e.cursor.Row == 0 {
		return
	}
	prev := e.lines[e.cursor.Row-1]
	e.cursor.Col = len(prev)
	e.lines[e.cursor.Row-1] = append(prev, e.lines[e.cursor.Row]...)
	e.lines = append(e.lines[:e.cursor.Row], e.lines[e.cursor.Row+1:]...)
	e.cursor.Row--
	e.markChanged()
}

func (e *Editor) newline() {
	line := e.lines[e.cursor.Row]
	col := clamp(e.cursor.Col, 0, len(line))
	tail := make([]rune, len(line)-col)
	copy(tail, line[col:])
	e.lines[e.cursor.Row] = line[:col]
	e.lines = append(e.lines[:e.cursor.Row+1], append([][]rune{tail}, e.lines[e.cursor.Row+1:]...)...)
	e.cursor.Row++
	e.cursor.Col = 0
	e.markChanged()
}

func (e *Editor) markChanged() {
	e.dirty = true
	e.changeTick++
}

func (e *Editor) clampCursorCol() {
	lineLen := len(e.lines[e.cursor.Row])
	if e.cursor.Col > lineLen {
		e.cursor.Col = lineLen
	}
}

func (e *Editor) viewHeightCached() int {
	if e.viewHeight < 1 {
		return 1
	}
	return e.viewHeight
}

func splitLines(data []byte) [][]rune {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

func joinLines(lines [][]rune) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(line))
	}
	return b.String()
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
