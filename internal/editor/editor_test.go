package editor

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qmute/internal/conceal"
	"github.com/kobzarvs/qmute/internal/config"
)

func newTestEditor(text string) *Editor {
	ed := New(config.Default())
	ed.lines = splitLines([]byte(text))
	ed.viewHeight = 10
	return ed
}

// commentedBuffer is six lines with comments on rows 1, 2 and 4.
func commentedBuffer() (*Editor, []conceal.Span) {
	ed := newTestEditor("a\n-- c1\n-- c2\nb\n-- c3\nc")
	spans := []conceal.Span{
		{StartRow: 1, StartCol: 0, EndRow: 1, EndCol: 5},
		{StartRow: 2, StartCol: 0, EndRow: 2, EndCol: 5},
		{StartRow: 4, StartCol: 0, EndRow: 4, EndCol: 5},
	}
	return ed, spans
}

func attachConceal(ed *Editor, spans []conceal.Span, navigation bool) {
	st := conceal.NewState()
	st.Activate(1, spans, func(row int) string { return ed.Line(row) })
	ed.SetConceal(st, 1, navigation)
}

func press(ed *Editor, keys ...string) {
	for _, k := range keys {
		switch k {
		case "esc":
			ed.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
		case "enter":
			ed.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
		case "backspace":
			ed.HandleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
		case "ctrl+t":
			ed.HandleKey(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))
		default:
			for _, r := range k {
				ed.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
			}
		}
	}
}

func TestVerticalMotionSkipsConcealedLines(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	press(ed, "j")
	if ed.Cursor().Row != 3 {
		t.Fatalf("row after j = %d, want 3", ed.Cursor().Row)
	}
	press(ed, "j")
	if ed.Cursor().Row != 5 {
		t.Fatalf("row after jj = %d, want 5", ed.Cursor().Row)
	}
	press(ed, "k", "k")
	if ed.Cursor().Row != 0 {
		t.Fatalf("row after kk = %d, want 0", ed.Cursor().Row)
	}
}

func TestCountedVerticalMotion(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	press(ed, "2j")
	if ed.Cursor().Row != 5 {
		t.Fatalf("row after 2j = %d, want 5", ed.Cursor().Row)
	}
}

func TestVerticalMotionWithoutNavigation(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, false)

	press(ed, "j")
	if ed.Cursor().Row != 1 {
		t.Fatalf("row after j with navigation off = %d, want 1", ed.Cursor().Row)
	}
}

func TestHorizontalMotionSkipsConcealedSpan(t *testing.T) {
	ed := newTestEditor("local x = 2 -- end comment")
	attachConceal(ed, []conceal.Span{{StartRow: 0, StartCol: 12, EndRow: 0, EndCol: 26}}, true)

	ed.cursor.Col = 11
	press(ed, "l")
	if ed.Cursor().Col != 26 {
		t.Fatalf("col after l = %d, want 26", ed.Cursor().Col)
	}
	press(ed, "h")
	if ed.Cursor().Col != 11 {
		t.Fatalf("col after h = %d, want 11", ed.Cursor().Col)
	}
}

func TestHorizontalWrapLandsOnVisibleRow(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	ed.cursor.Col = len(ed.lines[0])
	press(ed, "l")
	if ed.Cursor().Row != 3 || ed.Cursor().Col != 0 {
		t.Fatalf("cursor after wrap = %v, want {3 0}", ed.Cursor())
	}
	press(ed, "h")
	if ed.Cursor().Row != 0 {
		t.Fatalf("row after wrap back = %d, want 0", ed.Cursor().Row)
	}
}

func TestGotoLineSettlesOnVisibleRow(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	press(ed, ":2", "enter")
	if ed.Cursor().Row != 3 {
		t.Fatalf("row after :2 = %d, want 3", ed.Cursor().Row)
	}
	press(ed, ":4", "enter")
	if ed.Cursor().Row != 3 {
		t.Fatalf("row after :4 = %d, want 3", ed.Cursor().Row)
	}
}

func TestFileStartAndEndLandOnVisibleRows(t *testing.T) {
	ed := newTestEditor("-- top\nb\nc\n-- tail")
	attachConceal(ed, []conceal.Span{
		{StartRow: 0, StartCol: 0, EndRow: 0, EndCol: 6},
		{StartRow: 3, StartCol: 0, EndRow: 3, EndCol: 7},
	}, true)

	press(ed, "G")
	if ed.Cursor().Row != 2 {
		t.Fatalf("row after G = %d, want 2", ed.Cursor().Row)
	}
	press(ed, "g")
	if ed.Cursor().Row != 1 {
		t.Fatalf("row after g = %d, want 1", ed.Cursor().Row)
	}
}

func TestZeroIsLineStartUnlessCounting(t *testing.T) {
	ed := newTestEditor("abcdef\nsecond")

	ed.cursor.Col = 4
	press(ed, "0")
	if ed.Cursor().Col != 0 {
		t.Fatalf("col after 0 = %d, want 0", ed.Cursor().Col)
	}
	press(ed, "10l")
	if ed.Cursor().Col != 6 {
		t.Fatalf("col after 10l = %d, want clamp to 6", ed.Cursor().Col)
	}
}

func TestToggleConcealKeyIssuesRequest(t *testing.T) {
	ed := newTestEditor("a")

	press(ed, "ctrl+t")
	req, ok := ed.ConsumeConcealRequest()
	if !ok || req != "toggle" {
		t.Fatalf("request = %q, %v, want toggle, true", req, ok)
	}
	if _, ok := ed.ConsumeConcealRequest(); ok {
		t.Fatal("request should be consumed")
	}
}

func TestConcealCommands(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"conceal on", "enable"},
		{"conceal off", "disable"},
		{"conceal toggle", "toggle"},
		{"conceal", "toggle"},
		{"conceal stats", "stats"},
	}
	for _, tt := range tests {
		ed := newTestEditor("a")
		press(ed, ":"+tt.cmd, "enter")
		req, ok := ed.ConsumeConcealRequest()
		if !ok || req != tt.want {
			t.Fatalf(":%s request = %q, %v, want %q, true", tt.cmd, req, ok, tt.want)
		}
	}
}

func TestUnknownCommandSetsMessage(t *testing.T) {
	ed := newTestEditor("a")

	press(ed, ":bogus", "enter")
	if !strings.Contains(ed.statusMessage, "unknown command") {
		t.Fatalf("statusMessage = %q, want unknown command", ed.statusMessage)
	}
}

func TestInsertEditingBumpsChangeTick(t *testing.T) {
	ed := newTestEditor("ab")

	before := ed.ChangeTick()
	press(ed, "i")
	if ed.mode != ModeInsert {
		t.Fatalf("mode = %v, want insert", ed.mode)
	}
	press(ed, "x")
	if ed.ChangeTick() != before+1 {
		t.Fatalf("changeTick = %d, want %d", ed.ChangeTick(), before+1)
	}
	if ed.Line(0) != "xab" {
		t.Fatalf("line = %q, want %q", ed.Line(0), "xab")
	}
	press(ed, "enter", "backspace", "esc")
	if ed.mode != ModeNormal {
		t.Fatalf("mode = %v, want normal", ed.mode)
	}
	if ed.ChangeTick() <= before+1 {
		t.Fatalf("changeTick = %d, want > %d", ed.ChangeTick(), before+1)
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	ed := newTestEditor("ab\ncd")

	ed.cursor = Cursor{Row: 1, Col: 0}
	press(ed, "i", "backspace")
	if got := ed.Content(); got != "abcd" {
		t.Fatalf("content = %q, want %q", got, "abcd")
	}
	if ed.Cursor() != (Cursor{Row: 0, Col: 2}) {
		t.Fatalf("cursor = %v, want {0 2}", ed.Cursor())
	}
}

func TestDisplayColCountsMarkerForConcealedText(t *testing.T) {
	ed := newTestEditor("local x = 2 -- end comment")
	attachConceal(ed, []conceal.Span{{StartRow: 0, StartCol: 12, EndRow: 0, EndCol: 26}}, true)

	if got := ed.displayCol(0, 12); got != 12 {
		t.Fatalf("displayCol(0, 12) = %d, want 12", got)
	}
	// Past the range only the marker is on screen.
	if got := ed.displayCol(0, 26); got != 13 {
		t.Fatalf("displayCol(0, 26) = %d, want 13", got)
	}
}

func TestDisplayColExpandsTabs(t *testing.T) {
	ed := newTestEditor("\tx")
	ed.tabWidth = 4

	if got := ed.displayCol(0, 1); got != 4 {
		t.Fatalf("displayCol(0, 1) = %d, want 4", got)
	}
	if got := ed.displayCol(0, 2); got != 5 {
		t.Fatalf("displayCol(0, 2) = %d, want 5", got)
	}
}

func TestVisibleRowsElideHidden(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	got := ed.visibleRows(0, 10)
	want := []int{0, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("visibleRows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visibleRows = %v, want %v", got, want)
		}
	}
}

func TestEnsureCursorVisibleCountsOnlyVisibleRows(t *testing.T) {
	ed, spans := commentedBuffer()
	attachConceal(ed, spans, true)

	ed.cursor.Row = 5
	ed.ensureCursorVisible(2)
	// Rows 0, 3, 5 are visible; a two-line view showing 3 and 5 keeps
	// scroll at the first row that fits.
	if ed.scroll != 1 {
		t.Fatalf("scroll = %d, want 1", ed.scroll)
	}
}
