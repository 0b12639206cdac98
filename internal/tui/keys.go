package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/newsdesk/internal/config"
)

// keyMap holds every binding the app reacts to. Bindings with a modifier
// come from the configured modifier plus the configured letter.
type keyMap struct {
	Quit     key.Binding
	Search   key.Binding
	Saved    key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Toggle   key.Binding
	Open     key.Binding
	Save     key.Binding
	Share    key.Binding
	Variant  key.Binding
	Filters  key.Binding
	Reset    key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Find     key.Binding
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings

	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys(b.Quit, "ctrl+c"),
			key.WithHelp(b.Quit, "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys(mod+b.Search, "/"),
			key.WithHelp("/", "search"),
		),
		Saved: key.NewBinding(
			key.WithKeys(mod+b.Saved),
			key.WithHelp(mod+b.Saved, "saved"),
		),
		Back: key.NewBinding(
			key.WithKeys(b.Back),
			key.WithHelp(b.Back, "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Open: key.NewBinding(
			key.WithKeys(mod+b.Open),
			key.WithHelp(mod+b.Open, "open"),
		),
		Save: key.NewBinding(
			key.WithKeys(b.Save),
			key.WithHelp(b.Save, "save"),
		),
		Share: key.NewBinding(
			key.WithKeys(b.Share),
			key.WithHelp(b.Share, "share"),
		),
		Variant: key.NewBinding(
			key.WithKeys(b.Variant),
			key.WithHelp(b.Variant, "density"),
		),
		Filters: key.NewBinding(
			key.WithKeys("tab", b.Filters),
			key.WithHelp("tab", "filters"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset filters"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right", "l"),
			key.WithHelp("]", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left", "h"),
			key.WithHelp("[", "prev page"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find"),
		),
	}
}
