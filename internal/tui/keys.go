package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the application
type KeyMap struct {
	// Forms
	NextField key.Binding
	Submit    key.Binding
	ToSignUp  key.Binding
	ToLogin   key.Binding

	// Task list
	Up      key.Binding
	Down    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Dismiss key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		ToSignUp: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "create account"),
		),
		ToLogin: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "back to login"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// LoginHelp returns the bindings shown on the login screen
func (k KeyMap) LoginHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.ToSignUp, k.Quit}
}

// SignUpHelp returns the bindings shown on the sign up screen
func (k KeyMap) SignUpHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextField, k.ToLogin, k.Quit}
}

// TaskListHelp returns the bindings shown on the task list
func (k KeyMap) TaskListHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Up, k.Down, k.Delete, k.Refresh, k.Quit}
}
