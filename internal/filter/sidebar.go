package filter

// Section identifies one collapsible block of the sidebar.
type Section int

const (
	SectionCategories Section = iota
	SectionTrust
	SectionSources
	SectionCompanies
	sectionCount
)

func (s Section) Title() string {
	switch s {
	case SectionCategories:
		return "Categories"
	case SectionTrust:
		return "Trust Score"
	case SectionSources:
		return "Sources"
	case SectionCompanies:
		return "Companies"
	default:
		return ""
	}
}

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{SectionCategories, SectionTrust, SectionSources, SectionCompanies}
}

// RowKind distinguishes the lines the sidebar renders.
type RowKind int

const (
	RowReset RowKind = iota
	RowHeader
	RowOption
	RowThreshold
)

// Row is one selectable line. Option is set for RowOption, Score for
// RowThreshold.
type Row struct {
	Kind    RowKind
	Section Section
	Option  Option
	Score   int
}

// Sidebar keeps the accordion and cursor state of the filter panel. It never
// holds Criteria; the caller passes the current value in.
type Sidebar struct {
	catalog  *Catalog
	expanded [sectionCount]bool
	cursor   int
}

func NewSidebar(catalog *Catalog) *Sidebar {
	if catalog == nil {
		catalog = &Catalog{}
	}
	s := &Sidebar{catalog: catalog}
	s.expanded[SectionCategories] = true
	s.expanded[SectionTrust] = true
	return s
}

func (s *Sidebar) Catalog() *Catalog { return s.catalog }

func (s *Sidebar) Expanded(sec Section) bool {
	if sec < 0 || sec >= sectionCount {
		return false
	}
	return s.expanded[sec]
}

// ToggleSection flips a section between collapsed and expanded.
func (s *Sidebar) ToggleSection(sec Section) {
	if sec < 0 || sec >= sectionCount {
		return
	}
	s.expanded[sec] = !s.expanded[sec]
}

func (s *Sidebar) Cursor() int { return s.cursor }

// Rows flattens the visible sidebar for c. A reset row leads the list while
// any filter is active.
func (s *Sidebar) Rows(c Criteria) []Row {
	var rows []Row
	if ActiveCount(c) > 0 {
		rows = append(rows, Row{Kind: RowReset})
	}
	for _, sec := range Sections() {
		rows = append(rows, Row{Kind: RowHeader, Section: sec})
		if !s.expanded[sec] {
			continue
		}
		switch sec {
		case SectionTrust:
			for _, t := range Thresholds {
				rows = append(rows, Row{Kind: RowThreshold, Section: sec, Score: t})
			}
		default:
			for _, o := range s.options(sec) {
				rows = append(rows, Row{Kind: RowOption, Section: sec, Option: o})
			}
		}
	}
	return rows
}

// Move shifts the cursor by delta, clamped to the visible rows.
func (s *Sidebar) Move(delta int, c Criteria) {
	s.cursor = clampIndex(s.cursor+delta, len(s.Rows(c)))
}

// Activate acts on the row under the cursor. Headers toggle their section
// and yield no action; everything else yields the filter action to dispatch.
func (s *Sidebar) Activate(c Criteria) (Action, bool) {
	rows := s.Rows(c)
	if len(rows) == 0 {
		return Action{}, false
	}
	s.cursor = clampIndex(s.cursor, len(rows))
	row := rows[s.cursor]

	switch row.Kind {
	case RowReset:
		s.cursor = 0
		return Action{Kind: Reset}, true
	case RowHeader:
		s.ToggleSection(row.Section)
		s.cursor = clampIndex(s.cursor, len(s.Rows(c)))
		return Action{}, false
	case RowThreshold:
		return Action{Kind: SetMinTrust, Score: row.Score}, true
	case RowOption:
		switch row.Section {
		case SectionCategories:
			return Action{Kind: ToggleCategory, Value: row.Option.ID}, true
		case SectionSources:
			return Action{Kind: ToggleSource, Value: row.Option.ID}, true
		case SectionCompanies:
			return Action{Kind: ToggleCompany, Value: row.Option.ID}, true
		}
	}
	return Action{}, false
}

// Sync re-clamps the cursor after the criteria changed the row count, for
// example when the reset row appears or disappears.
func (s *Sidebar) Sync(before, after Criteria) {
	hadReset := ActiveCount(before) > 0
	hasReset := ActiveCount(after) > 0
	switch {
	case hasReset && !hadReset:
		s.cursor++
	case hadReset && !hasReset && s.cursor > 0:
		s.cursor--
	}
	s.cursor = clampIndex(s.cursor, len(s.Rows(after)))
}

// IsSelected reports whether row is currently chosen in c.
func IsSelected(row Row, c Criteria) bool {
	switch row.Kind {
	case RowThreshold:
		return c.MinTrustScore == row.Score
	case RowOption:
		switch row.Section {
		case SectionCategories:
			return c.HasCategory(row.Option.ID)
		case SectionSources:
			return c.HasSource(row.Option.ID)
		case SectionCompanies:
			return c.HasCompany(row.Option.ID)
		}
	}
	return false
}

func (s *Sidebar) options(sec Section) []Option {
	switch sec {
	case SectionCategories:
		return s.catalog.Categories
	case SectionSources:
		return s.catalog.Sources
	case SectionCompanies:
		return s.catalog.Companies
	}
	return nil
}

func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
