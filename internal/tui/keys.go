package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/starford/lumina/internal/ai"
)

type keyMap struct {
	Quit     key.Binding
	New      key.Binding
	Delete   key.Binding
	AI       key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Search   key.Binding
	Back     key.Binding
	Run      key.Binding
	Accept   key.Binding
	Dismiss  key.Binding
	Yes      key.Binding
	No       key.Binding
	ListQuit key.Binding
	ListDel  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		AI:       key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "AI tools")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:     key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "edit")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Run:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Accept:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Yes:      key.NewBinding(key.WithKeys("y", "Y", "enter"), key.WithHelp("y", "delete")),
		No:       key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "cancel")),
		ListQuit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ListDel:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	}
}

// hints returns the footer bindings for the focused pane.
func (m *Model) hints() []key.Binding {
	k := m.keys
	switch m.focus {
	case focusList:
		return []key.Binding{k.Up, k.Down, k.Open, k.Search, k.New, k.ListDel, k.AI, k.ListQuit}
	case focusSearch:
		return []key.Binding{k.Back, k.Next}
	case focusAI:
		if m.ai.result != "" && !m.ai.loading {
			if ai.IsFallback(m.ai.result) {
				return []key.Binding{k.Dismiss, k.Back}
			}
			return []key.Binding{k.Accept, k.Dismiss, k.Back}
		}
		return []key.Binding{k.Up, k.Down, k.Run, k.Back}
	default:
		return []key.Binding{k.Next, k.New, k.Delete, k.AI, k.Quit}
	}
}
