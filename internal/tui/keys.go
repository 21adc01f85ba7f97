package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Toggle    key.Binding
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	Select    key.Binding
	Dismiss   key.Binding
	Save      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Toggle:    key.NewBinding(key.WithKeys("enter", "ctrl+o"), key.WithHelp("enter", "open picker")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev week")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next week")),
		PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		PrevYear:  key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "prev year")),
		NextYear:  key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "next year")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Dismiss:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// formKeys and pickerKeys are the help.KeyMap views for each mode.
type formKeys struct{ k keyMap }

func (f formKeys) ShortHelp() []key.Binding {
	return []key.Binding{f.k.Next, f.k.Toggle, f.k.Save, f.k.Help, f.k.Quit}
}

func (f formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{f.k.Next, f.k.Prev, f.k.Toggle}, {f.k.Save, f.k.Help, f.k.Quit}}
}

type pickerKeys struct{ k keyMap }

func (p pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{p.k.PrevMonth, p.k.NextMonth, p.k.PrevYear, p.k.NextYear, p.k.Select, p.k.Dismiss}
}

func (p pickerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{p.k.Left, p.k.Right, p.k.Up, p.k.Down},
		{p.k.PrevMonth, p.k.NextMonth, p.k.PrevYear, p.k.NextYear},
		{p.k.Select, p.k.Dismiss, p.k.Quit},
	}
}
