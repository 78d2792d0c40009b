package editor

import (
	"github.com/gdamore/tcell/v2"
)

func keyString(ev *tcell.EventKey) string {
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		switch ev.Key() {
		case tcell.KeyHome:
			return "ctrl+home"
		case tcell.KeyEnd:
			return "ctrl+end"
		}
	}
	switch ev.Key() {
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyDelete:
		return "delete"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyRune:
		return string(ev.Rune())
	}
	if name := ctrlKeyName(ev.Key()); name != "" {
		return name
	}
	return ""
}

// ctrlKeyName maps tcell's dedicated ctrl key codes. Tab and enter alias
// ctrl+i and ctrl+m, so those are resolved before this is consulted.
func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	switch key {
	case tcell.KeyCtrlSpace:
		return "ctrl+space"
	case tcell.KeyCtrlUnderscore:
		return "ctrl+_"
	}
	return ""
}
