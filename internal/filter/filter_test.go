package filter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Empty(t, d.Category)
	assert.Empty(t, d.Source)
	assert.Empty(t, d.Companies)
	assert.Equal(t, 40, d.MinTrustScore)
	assert.Equal(t, 0, ActiveCount(d))

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":[],"source":[],"companies":[],"minTrustScore":40}`, string(data))
}

func TestReduceTogglesAreSetLike(t *testing.T) {
	c := Default()
	c = Reduce(c, Action{Kind: ToggleCategory, Value: "ai-ml"})
	c = Reduce(c, Action{Kind: ToggleCategory, Value: "cloud"})
	assert.Equal(t, []string{"ai-ml", "cloud"}, c.Category)

	c = Reduce(c, Action{Kind: ToggleCategory, Value: "ai-ml"})
	assert.Equal(t, []string{"cloud"}, c.Category)

	c = Reduce(c, Action{Kind: ToggleSource, Value: "reuters"})
	c = Reduce(c, Action{Kind: ToggleCompany, Value: "ibm"})
	assert.Equal(t, []string{"reuters"}, c.Source)
	assert.Equal(t, []string{"ibm"}, c.Companies)
}

func TestToggleTwiceRestoresPrior(t *testing.T) {
	start := Reduce(Default(), Action{Kind: ToggleCategory, Value: "fintech"})
	for _, v := range []string{"ai-ml", "fintech", "cloud"} {
		once := Reduce(start, Action{Kind: ToggleCategory, Value: v})
		twice := Reduce(once, Action{Kind: ToggleCategory, Value: v})
		assert.Equal(t, start.Category, twice.Category, "toggle %q twice", v)
	}
}

func TestReduceNeverMutatesInput(t *testing.T) {
	prev := Criteria{
		Category:      make([]string, 1, 8),
		Source:        []string{"reuters"},
		Companies:     []string{},
		MinTrustScore: 40,
	}
	prev.Category[0] = "cloud"

	next := Reduce(prev, Action{Kind: ToggleCategory, Value: "ai-ml"})
	assert.Equal(t, []string{"cloud"}, prev.Category)
	assert.Equal(t, []string{"cloud", "ai-ml"}, next.Category)

	// storage must not be shared either
	next.Source[0] = "changed"
	assert.Equal(t, "reuters", prev.Source[0])
}

func TestReduceRemovesDuplicates(t *testing.T) {
	dirty := Criteria{Category: []string{"a", "b", "a"}, Source: []string{}, Companies: []string{}, MinTrustScore: 40}
	next := Reduce(dirty, Action{Kind: ToggleCategory, Value: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, next.Category)

	next = Reduce(dirty, Action{Kind: ToggleCategory, Value: "a"})
	assert.Equal(t, []string{"b"}, next.Category)
}

func TestSetMinTrustAndActiveCount(t *testing.T) {
	c := Reduce(Default(), Action{Kind: SetMinTrust, Score: 75})
	assert.Equal(t, 75, c.MinTrustScore)
	assert.Equal(t, 1, ActiveCount(c))

	c = Reduce(c, Action{Kind: ToggleSource, Value: "wired"})
	c = Reduce(c, Action{Kind: ToggleCompany, Value: "oracle"})
	assert.Equal(t, 3, ActiveCount(c))

	c = Reduce(c, Action{Kind: SetMinTrust, Score: 40})
	assert.Equal(t, 2, ActiveCount(c))
}

func TestResetRestoresDefaults(t *testing.T) {
	c := Reduce(Default(), Action{Kind: ToggleCategory, Value: "ai-ml"})
	c = Reduce(c, Action{Kind: SetMinTrust, Score: 75})
	require.Equal(t, 2, ActiveCount(c))

	c = Reduce(c, Action{Kind: Reset})
	assert.True(t, Equal(Default(), c))
	assert.Equal(t, 0, ActiveCount(c))
}

func TestStoreNotifiesWithFreshValues(t *testing.T) {
	s := NewStore(Default())
	var seen []Criteria
	s.OnChange(func(c Criteria) { seen = append(seen, c) })

	s.Dispatch(Action{Kind: ToggleCategory, Value: "ai-ml"})
	s.Dispatch(Action{Kind: ToggleCategory, Value: "cloud"})
	require.Len(t, seen, 2)

	seen[0].Category = append(seen[0].Category[:0], "mutated")
	assert.Equal(t, []string{"ai-ml", "cloud"}, s.Current().Category)
	assert.Equal(t, []string{"ai-ml", "cloud"}, seen[1].Category)
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, []int{40, 60, 75, 85}, Thresholds)
	assert.True(t, IsThreshold(85))
	assert.False(t, IsThreshold(50))
}

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Categories)
	assert.NotEmpty(t, cat.Sources)
	assert.NotEmpty(t, cat.Companies)
	assert.Equal(t, "AI & Machine Learning", Label(cat.Categories, "ai-ml"))
	assert.Equal(t, "unknown", Label(cat.Categories, "unknown"))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadCatalog(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.NotEmpty(t, missing.Categories)

	path := filepath.Join(dir, "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[categories]]\nid = \"x\"\nlabel = \"X\"\n"), 0o644))
	custom, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, custom.Categories, 1)
	assert.Equal(t, "X", custom.Categories[0].Label)
	assert.Empty(t, custom.Sources)

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}

func testCatalog() *Catalog {
	return &Catalog{
		Categories: []Option{{ID: "ai-ml", Label: "AI"}, {ID: "cloud", Label: "Cloud"}},
		Sources:    []Option{{ID: "reuters", Label: "Reuters"}},
		Companies:  []Option{{ID: "ibm", Label: "IBM"}},
	}
}

func TestSidebarRows(t *testing.T) {
	s := NewSidebar(testCatalog())
	rows := s.Rows(Default())

	// categories header + 2, trust header + 4, sources header, companies header
	require.Len(t, rows, 10)
	assert.Equal(t, RowHeader, rows[0].Kind)
	assert.Equal(t, SectionCategories, rows[0].Section)
	assert.Equal(t, RowThreshold, rows[4].Kind)
	assert.Equal(t, 40, rows[4].Score)
	assert.Equal(t, SectionSources, rows[8].Section)
	assert.Equal(t, SectionCompanies, rows[9].Section)

	s.ToggleSection(SectionSources)
	assert.Len(t, s.Rows(Default()), 11)

	active := Reduce(Default(), Action{Kind: ToggleCategory, Value: "cloud"})
	rows = s.Rows(active)
	assert.Equal(t, RowReset, rows[0].Kind)
}

func TestSidebarActivate(t *testing.T) {
	s := NewSidebar(testCatalog())
	c := Default()

	// header collapses its section without an action
	_, ok := s.Activate(c)
	assert.False(t, ok)
	assert.False(t, s.Expanded(SectionCategories))

	s.ToggleSection(SectionCategories)
	s.Move(1, c)
	a, ok := s.Activate(c)
	require.True(t, ok)
	assert.Equal(t, Action{Kind: ToggleCategory, Value: "ai-ml"}, a)

	next := Reduce(c, a)
	s.Sync(c, next)
	assert.Equal(t, 2, s.Cursor(), "cursor follows the row after the reset row appears")
	assert.True(t, IsSelected(s.Rows(next)[2], next))

	s.Move(-10, next)
	assert.Equal(t, 0, s.Cursor())
	a, ok = s.Activate(next)
	require.True(t, ok)
	assert.Equal(t, Reset, a.Kind)
}

func TestSidebarThresholdIsRadio(t *testing.T) {
	s := NewSidebar(testCatalog())
	c := Default()
	s.Move(5, c) // row 5 is the 60 threshold
	a, ok := s.Activate(c)
	require.True(t, ok)
	assert.Equal(t, SetMinTrust, a.Kind)
	assert.Equal(t, 60, a.Score)

	c = Reduce(c, a)
	rows := s.Rows(c)
	selected := 0
	for _, r := range rows {
		if r.Kind == RowThreshold && IsSelected(r, c) {
			selected++
		}
	}
	assert.Equal(t, 1, selected)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"The Verge":         "the-verge",
		"  Reuters ":        "reuters",
		"AI & ML":           "ai-ml",
		"ZDNet!":            "zdnet",
		"Data -- Analytics": "data-analytics",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}
