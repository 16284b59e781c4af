package term

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var keyNames = map[tcell.Key]string{
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBacktab:    "shift+tab",
	tcell.KeyEsc:        "esc",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdown",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyInsert:     "insert",
	tcell.KeyDelete:     "delete",
	tcell.KeyNUL:        "ctrl+@",
	tcell.KeyFS:         "ctrl+\\",
	tcell.KeyGS:         "ctrl+]",
	tcell.KeyRS:         "ctrl+^",
	tcell.KeyUS:         "ctrl+_",
}

// KeyName spells a tcell key the way bubbletea does, so one key map serves
// both frontends. Keys without a name return "".
func KeyName(ev *tcell.EventKey) string {
	mod := ev.Modifiers()
	var name string

	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if mod&tcell.ModCtrl != 0 && r < unicode.MaxASCII {
			name = "ctrl+" + strings.ToLower(string(r))
			break
		}
		if r == ' ' {
			name = " "
			break
		}
		name = string(r)

	case keyNames[k] != "":
		name = keyNames[k]
		if k >= tcell.KeyUp && k <= tcell.KeyDelete {
			name = modPrefix(mod) + name
		}

	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		name = "ctrl+" + string(rune('a'+int(k-tcell.KeyCtrlA)))

	case k >= tcell.KeyF1 && k <= tcell.KeyF20:
		name = modPrefix(mod) + "f" + strconv.Itoa(int(k-tcell.KeyF1)+1)

	default:
		return ""
	}

	if mod&tcell.ModAlt != 0 {
		name = "alt+" + name
	}
	return name
}

func modPrefix(mod tcell.ModMask) string {
	var b strings.Builder
	if mod&tcell.ModCtrl != 0 {
		b.WriteString("ctrl+")
	}
	if mod&tcell.ModShift != 0 {
		b.WriteString("shift+")
	}
	return b.String()
}
