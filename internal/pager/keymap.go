package pager

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/mpage/internal/config"
)

// KeyMap holds the bindings of every single-key command.
type KeyMap struct {
	Quit         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	ScrollLeft   key.Binding
	ScrollRight  key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Percent      key.Binding
	SetMark      key.Binding
	GotoMark     key.Binding
	Search       key.Binding
	SearchBack   key.Binding
	NextMatch    key.Binding
	PrevMatch    key.Binding
	Examine      key.Binding
	Colon        key.Binding
	Edit         key.Binding
	Shell        key.Binding
	Toggle       key.Binding
	Write        key.Binding
	Repaint      key.Binding
	Reload       key.Binding
	Info         key.Binding
	ClearSearch  key.Binding
	Help         key.Binding
}

func binding(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func helpKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if keys[0] == " " {
		return "space"
	}
	return keys[0]
}

// NewKeyMap builds bindings from configured key lists.
func NewKeyMap(kb config.KeybindingConfig) KeyMap {
	b := func(keys []string, desc string) key.Binding {
		return binding(keys, helpKey(keys), desc)
	}
	return KeyMap{
		Quit:         b(kb.Quit, "quit"),
		ScrollUp:     b(kb.ScrollUp, "up"),
		ScrollDown:   b(kb.ScrollDown, "down"),
		PageUp:       b(kb.PageUp, "page up"),
		PageDown:     b(kb.PageDown, "page down"),
		HalfPageUp:   b(kb.HalfPageUp, "half up"),
		HalfPageDown: b(kb.HalfPageDown, "half down"),
		ScrollLeft:   b(kb.ScrollLeft, "left"),
		ScrollRight:  b(kb.ScrollRight, "right"),
		Top:          b(kb.Top, "top/line"),
		Bottom:       b(kb.Bottom, "end"),
		Percent:      b(kb.Percent, "percent"),
		SetMark:      b(kb.SetMark, "mark"),
		GotoMark:     b(kb.GotoMark, "goto mark"),
		Search:       b(kb.Search, "search"),
		SearchBack:   b(kb.SearchBack, "search back"),
		NextMatch:    b(kb.NextMatch, "next"),
		PrevMatch:    b(kb.PrevMatch, "prev"),
		Examine:      b(kb.Examine, "examine"),
		Colon:        b(kb.Colon, "command"),
		Edit:         b(kb.Edit, "edit"),
		Shell:        b(kb.Shell, "shell"),
		Toggle:       b(kb.Toggle, "option"),
		Write:        b(kb.Write, "save"),
		Repaint:      b(kb.Repaint, "repaint"),
		Reload:       b(kb.Reload, "reload"),
		Info:         b(kb.Info, "info"),
		ClearSearch:  b(kb.ClearSearch, "clear search"),
		Help:         b(kb.Help, "help"),
	}
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.DefaultConfig().Keybindings)
}

// ShortHelp lists the bindings shown in the chyron.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Quit, k.PageDown, k.PageUp, k.Search, k.NextMatch, k.Top, k.Bottom,
		k.SetMark, k.Examine, k.Toggle, k.Edit, k.Shell, k.Write, k.Help,
	}
}

// FullHelp groups every binding for the help page.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollDown, k.ScrollUp, k.PageDown, k.PageUp, k.HalfPageDown, k.HalfPageUp, k.ScrollLeft, k.ScrollRight},
		{k.Top, k.Bottom, k.Percent, k.SetMark, k.GotoMark},
		{k.Search, k.SearchBack, k.NextMatch, k.PrevMatch, k.ClearSearch},
		{k.Examine, k.Colon, k.Edit, k.Shell, k.Toggle, k.Write},
		{k.Repaint, k.Reload, k.Info, k.Help, k.Quit},
	}
}
