package monitor

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the dashboard bindings
type keyMap struct {
	QuickAdd  []key.Binding
	Custom    key.Binding
	Undo      key.Binding
	Toggle    key.Binding
	NextPanel key.Binding
	PrevPanel key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap(presets int) keyMap {
	km := keyMap{
		Custom:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add amount")),
		Undo:      key.NewBinding(key.WithKeys("u", "x"), key.WithHelp("u", "undo last")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle reminder")),
		NextPanel: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PrevWeek:  key.NewBinding(key.WithKeys("[", "h", "left"), key.WithHelp("[", "prev week")),
		NextWeek:  key.NewBinding(key.WithKeys("]", "l", "right"), key.WithHelp("]", "next week")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for i := 0; i < presets && i < 9; i++ {
		k := string(rune('1' + i))
		km.QuickAdd = append(km.QuickAdd, key.NewBinding(key.WithKeys(k), key.WithHelp(k, "quick add")))
	}
	return km
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	bindings := []key.Binding{k.Custom, k.Undo, k.NextPanel, k.Help, k.Quit}
	if len(k.QuickAdd) > 0 {
		first := k.QuickAdd[0].Help().Key
		last := k.QuickAdd[len(k.QuickAdd)-1].Help().Key
		quick := key.NewBinding(key.WithKeys(first), key.WithHelp(first+"-"+last, "quick add"))
		bindings = append([]key.Binding{quick}, bindings...)
	}
	return bindings
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.QuickAdd,
		{k.Custom, k.Undo, k.Toggle, k.Refresh},
		{k.NextPanel, k.PrevPanel, k.Up, k.Down},
		{k.PrevWeek, k.NextWeek, k.Help, k.Quit},
	}
}
