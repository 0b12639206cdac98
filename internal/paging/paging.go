// Package paging holds the page arithmetic used by the results view.
package paging

// PageSize is the number of results requested per page.
const PageSize = 10

// MaxButtons caps how many page numbers the pager shows at once.
const MaxButtons = 5

// TotalPages is ceil(total/limit). A non-positive limit yields 0.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Clamp bounds page to [1, totalPages]. With no pages, the only valid page
// is 1.
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Skip is the result offset for a 1-based page.
func Skip(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// Window returns the page numbers to show as buttons: up to maxButtons pages,
// starting at 1 while current <= 3 and centred on current afterwards, never
// running past totalPages.
func Window(current, totalPages, maxButtons int) []int {
	if totalPages < 1 || maxButtons < 1 {
		return nil
	}
	current = Clamp(current, totalPages)
	n := maxButtons
	if totalPages < n {
		n = totalPages
	}

	start := 1
	if current > 3 {
		start = current - maxButtons/2
	}
	if start+n-1 > totalPages {
		start = totalPages - n + 1
	}
	if start < 1 {
		start = 1
	}

	pages := make([]int, n)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}

// Pager bundles the current page with the last known total.
type Pager struct {
	Page  int
	Total int
	Limit int
}

func New() Pager {
	return Pager{Page: 1, Limit: PageSize}
}

func (p Pager) TotalPages() int { return TotalPages(p.Total, p.Limit) }

func (p Pager) Skip() int { return Skip(p.Page, p.Limit) }

// Goto returns p moved to page, clamped against the known total.
func (p Pager) Goto(page int) Pager {
	p.Page = Clamp(page, p.TotalPages())
	return p
}

func (p Pager) Next() Pager { return p.Goto(p.Page + 1) }
func (p Pager) Prev() Pager { return p.Goto(p.Page - 1) }

func (p Pager) HasNext() bool { return p.Page < p.TotalPages() }
func (p Pager) HasPrev() bool { return p.Page > 1 }

func (p Pager) Buttons() []int { return Window(p.Page, p.TotalPages(), MaxButtons) }
