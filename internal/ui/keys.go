package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap определяет клавиатурные сокращения мастера.
type KeyMap struct {
	Quit       key.Binding
	NextStep   key.Binding
	PrevStep   key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	AddRule    key.Binding
	DeleteRule key.Binding
	ToggleMode key.Binding
	Edit       key.Binding
	Revalidate key.Binding
	Generate   key.Binding
	Dismiss    key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// ShortHelp реализует help.KeyMap интерфейс.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.NextStep, km.PrevStep, km.ToggleMode, km.Generate, km.Quit}
}

// FullHelp реализует help.KeyMap интерфейс.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.NextStep, km.PrevStep, km.Left, km.Right, km.Up, km.Down},
		{km.AddRule, km.DeleteRule, km.ToggleMode, km.Edit, km.Revalidate, km.Generate},
		{km.Dismiss, km.ScrollUp, km.ScrollDown, km.Quit},
	}
}

// DefaultKeyMap возвращает дефолтный KeyMap.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "quit")),
		NextStep:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "next step")),
		PrevStep:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("Shift+Tab", "prev step")),
		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "group id left")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "group id right")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "select")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "select")),
		AddRule:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add rule")),
		DeleteRule: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete rule")),
		ToggleMode: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "simple/advanced")),
		Edit:       key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "edit pattern")),
		Revalidate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "revalidate")),
		Generate:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		Dismiss:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "dismiss tip")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "apply")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "cancel")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("PgUp", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("PgDn", "scroll down")),
	}
}
