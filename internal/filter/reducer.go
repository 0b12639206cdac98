package filter

import "fmt"

// ActionKind enumerates the mutations the sidebar can request.
type ActionKind int

const (
	ToggleCategory ActionKind = iota
	ToggleSource
	ToggleCompany
	SetMinTrust
	Reset
)

func (k ActionKind) String() string {
	switch k {
	case ToggleCategory:
		return "toggle-category"
	case ToggleSource:
		return "toggle-source"
	case ToggleCompany:
		return "toggle-company"
	case SetMinTrust:
		return "set-min-trust"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is a single filter mutation. Value is used by the toggles, Score by
// SetMinTrust.
type Action struct {
	Kind  ActionKind
	Value string
	Score int
}

// Reduce applies a to c and returns the next state. c is never modified and
// the result never shares slice storage with it.
func Reduce(c Criteria, a Action) Criteria {
	next := c.Clone()
	switch a.Kind {
	case ToggleCategory:
		next.Category = toggle(next.Category, a.Value)
	case ToggleSource:
		next.Source = toggle(next.Source, a.Value)
	case ToggleCompany:
		next.Companies = toggle(next.Companies, a.Value)
	case SetMinTrust:
		next.MinTrustScore = a.Score
	case Reset:
		next = Default()
	}
	return next
}

// toggle removes every occurrence of v when present and appends it
// otherwise, so the result is duplicate free even if the input was not.
func toggle(list []string, v string) []string {
	if v == "" {
		return dedupe(list)
	}
	out := make([]string, 0, len(list)+1)
	found := false
	for _, s := range list {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	out = dedupe(out)
	if !found {
		out = append(out, v)
	}
	return out
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := list[:0:0]
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
