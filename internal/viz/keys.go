package viz

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Proton   key.Binding
	Electron key.Binding
	Neutron  key.Binding
	Pop      key.Binding
	Clear    key.Binding
	Reset    key.Binding
	Branch   key.Binding
	Denser   key.Binding
	Sparser  key.Binding
	Theme    key.Binding
	Pause    key.Binding
	Record   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Proton:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "inject proton")),
		Electron: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "inject electron")),
		Neutron:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "inject neutron")),
		Pop:      key.NewBinding(key.WithKeys("x", "backspace"), key.WithHelp("x", "remove last")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset scene")),
		Branch:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle branch")),
		Denser:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "denser")),
		Sparser:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "sparser")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Record:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "record gif")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Proton, k.Electron, k.Neutron, k.Pop, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Proton, k.Electron, k.Neutron, k.Pop},
		{k.Clear, k.Reset, k.Branch, k.Theme},
		{k.Denser, k.Sparser, k.Pause, k.Record},
		{k.Help, k.Quit},
	}
}
