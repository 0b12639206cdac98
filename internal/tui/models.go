package tui

type View int

const (
	ViewResults View = iota
	ViewSearch
	ViewReader
	ViewSaved
)

// Focus says which pane of the results view receives navigation keys.
type Focus int

const (
	FocusCards Focus = iota
	FocusSidebar
)

// CardVariant selects how dense an article card renders.
type CardVariant string

const (
	CardDefault CardVariant = "default"
	CardCompact CardVariant = "compact"
)

func (v CardVariant) Toggle() CardVariant {
	if v == CardCompact {
		return CardDefault
	}
	return CardCompact
}

func parseVariant(s string) CardVariant {
	if s == string(CardCompact) {
		return CardCompact
	}
	return CardDefault
}
