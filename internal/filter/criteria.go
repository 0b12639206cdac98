package filter

import "slices"

// DefaultMinTrustScore is the lowest selectable threshold; it does not count
// as an active filter.
const DefaultMinTrustScore = 40

// Thresholds are the selectable minimum trust scores, ascending.
var Thresholds = []int{40, 60, 75, 85}

// Criteria is the filter object sent with every search request.
type Criteria struct {
	Category      []string `json:"category"`
	Source        []string `json:"source"`
	Companies     []string `json:"companies"`
	MinTrustScore int      `json:"minTrustScore"`
}

// Default returns the reset state. Slices are non-nil so they encode as [].
func Default() Criteria {
	return Criteria{
		Category:      []string{},
		Source:        []string{},
		Companies:     []string{},
		MinTrustScore: DefaultMinTrustScore,
	}
}

// ActiveCount is the number of selected options plus one when the trust
// threshold is raised above the default.
func ActiveCount(c Criteria) int {
	n := len(c.Category) + len(c.Source) + len(c.Companies)
	if c.MinTrustScore > DefaultMinTrustScore {
		n++
	}
	return n
}

// Equal compares field by field, treating nil and empty slices alike.
func Equal(a, b Criteria) bool {
	return a.MinTrustScore == b.MinTrustScore &&
		slices.Equal(a.Category, b.Category) &&
		slices.Equal(a.Source, b.Source) &&
		slices.Equal(a.Companies, b.Companies)
}

// Clone deep-copies c.
func (c Criteria) Clone() Criteria {
	return Criteria{
		Category:      cloneStrings(c.Category),
		Source:        cloneStrings(c.Source),
		Companies:     cloneStrings(c.Companies),
		MinTrustScore: c.MinTrustScore,
	}
}

func (c Criteria) HasCategory(id string) bool { return slices.Contains(c.Category, id) }
func (c Criteria) HasSource(id string) bool   { return slices.Contains(c.Source, id) }
func (c Criteria) HasCompany(id string) bool  { return slices.Contains(c.Companies, id) }

// IsThreshold reports whether score is one of the selectable thresholds.
func IsThreshold(score int) bool {
	return slices.Contains(Thresholds, score)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
