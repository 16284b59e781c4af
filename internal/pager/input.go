package pager

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/TimelordUK/mpage/internal/search"
)

// argKind is what the text being read will be used for.
type argKind int

const (
	argNone argKind = iota
	argSetMark
	argGotoMark
	argColon
	argToggle
	argSearchForward
	argSearchBackward
	argExamine
	argShell
	argWrite
	argTabWidth
)

// single reports whether the argument is one character, taken without enter.
func (k argKind) single() bool {
	return k >= argSetMark && k <= argToggle
}

func (k argKind) label() string {
	switch k {
	case argSetMark:
		return "mark: "
	case argGotoMark:
		return "goto mark: "
	case argColon:
		return ":"
	case argToggle:
		return "-"
	}
	return ""
}

func (c *Controller) beginChar(kind argKind) {
	c.state = StateArgument
	c.arg = kind
	c.input.Prompt = kind.label()
	c.input.SetValue("")
}

func (c *Controller) beginLine(kind argKind, prompt string) {
	c.state = StateArgument
	c.arg = kind
	c.input.Prompt = prompt
	c.input.SetValue("")
	c.input.Focus()
}

func (c *Controller) endArgument() {
	c.state = StateIdle
	c.arg = argNone
	c.input.Blur()
	c.input.SetValue("")
}

// handleArgument feeds a key to the argument being read.
func (c *Controller) handleArgument(ev Event) Outcome {
	kind := c.arg
	if kind.single() {
		return c.handleChar(kind, ev.Key)
	}

	switch ev.Key {
	case "esc", "ctrl+c", "ctrl+g":
		c.endArgument()
		return Outcome{}
	case "enter":
		value := c.input.Value()
		c.endArgument()
		return c.submit(kind, value)
	case "backspace":
		if c.input.Value() == "" {
			c.endArgument()
			return Outcome{}
		}
	}

	c.input, _ = c.input.Update(keyMsg(ev.Key))
	return Outcome{}
}

// submit runs the command waiting for a line argument.
func (c *Controller) submit(kind argKind, value string) Outcome {
	switch kind {
	case argSearchForward:
		c.startSearch(search.Forward, value)
	case argSearchBackward:
		c.startSearch(search.Backward, value)
	case argExamine:
		c.examine(value)
	case argWrite:
		c.writeOut(value)
	case argTabWidth:
		c.setTabWidth(value)
	case argShell:
		return c.shell(value)
	}
	return Outcome{}
}

// editKeys maps the key names understood by the line editor onto key types.
var editKeys = map[string]tea.KeyType{
	"backspace": tea.KeyBackspace,
	"delete":    tea.KeyDelete,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"tab":       tea.KeyTab,
	"ctrl+a":    tea.KeyCtrlA,
	"ctrl+b":    tea.KeyCtrlB,
	"ctrl+d":    tea.KeyCtrlD,
	"ctrl+e":    tea.KeyCtrlE,
	"ctrl+f":    tea.KeyCtrlF,
	"ctrl+h":    tea.KeyCtrlH,
	"ctrl+k":    tea.KeyCtrlK,
	"ctrl+u":    tea.KeyCtrlU,
	"ctrl+w":    tea.KeyCtrlW,
}

// keyMsg rebuilds a key message from its name so the line editor can
// interpret it.
func keyMsg(name string) tea.KeyMsg {
	alt := false
	if strings.HasPrefix(name, "alt+") && len(name) > len("alt+") {
		alt = true
		name = strings.TrimPrefix(name, "alt+")
	}
	if t, ok := editKeys[name]; ok {
		return tea.KeyMsg{Type: t, Alt: alt}
	}
	if name == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}, Alt: alt}
	}
	if utf8.RuneCountInString(name) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name), Alt: alt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Alt: alt}
}
