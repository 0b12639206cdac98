package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/newsdesk/internal/filter"
	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/paging"
)

// staggerStep is the entrance delay added per card position.
const staggerStep = 50 * time.Millisecond

// maxCardInsights caps the key insights a default card lists.
const maxCardInsights = 2

// maxSourceWidth bounds the link shown when an article has no source name.
const maxSourceWidth = 32

// StaggerDelay is how long after a page arrives the card at index becomes
// visible. It affects presentation only.
func StaggerDelay(index int) time.Duration {
	if index < 0 {
		index = 0
	}
	return time.Duration(index) * staggerStep
}

// CardOptions carries the per-card UI state that is not part of the article.
type CardOptions struct {
	Selected     bool
	Saved        bool
	Shared       bool
	SummaryLimit int
}

// RenderCard renders a as a bordered card of the given outer width. It is a
// pure function of its arguments.
func RenderCard(a news.ArticleSummary, variant CardVariant, width int, now time.Time, opts CardOptions) string {
	if width < 20 {
		width = 20
	}
	inner := width - 4

	var body string
	if variant == CardCompact {
		body = compactCardBody(a, inner, now)
	} else {
		body = defaultCardBody(a, inner, now, opts)
	}

	style := CardStyle
	if opts.Selected {
		style = CardSelectedStyle
	}
	return style.Width(width - 2).Render(body)
}

func defaultCardBody(a news.ArticleSummary, inner int, now time.Time, opts CardOptions) string {
	left := metaLine(a, now)
	if chip := categoryChip(a.Category); chip != "" {
		left = chip + " " + left
	}
	header := spread(left, trustBadge(a.TrustScore.Overall), inner)

	title := CardTitleStyle.Width(inner).Render(a.Title)

	rows := []string{header, title}

	limit := opts.SummaryLimit
	if limit <= 0 {
		limit = 180
	}
	if s := strings.TrimSpace(a.Summary); s != "" {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(TextColor).
			Width(inner).
			Render(truncateEnd(s, limit)))
	}

	if a.AIAnalysis != nil {
		for i, insight := range a.AIAnalysis.KeyInsights {
			if i == maxCardInsights {
				break
			}
			rows = append(rows, renderMuted(truncateEnd("› "+insight, inner)))
		}
	}

	rows = append(rows, "", spread(engagement(a), actionLabels(opts), inner))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func compactCardBody(a news.ArticleSummary, inner int, now time.Time) string {
	title := CardTitleStyle.Render(truncateEnd(a.Title, inner))
	tier := news.TierFor(a.TrustScore.Overall)
	meta := metaLine(a, now) + renderMuted(" • ") +
		lipgloss.NewStyle().Foreground(tier.Color()).Render(tier.String())
	return lipgloss.JoinVertical(lipgloss.Left, title, meta)
}

func metaLine(a news.ArticleSummary, now time.Time) string {
	source := a.Source.Name
	if source == "" {
		source = truncateMiddle(displayURL(a.URL), maxSourceWidth)
	}
	return renderMuted(source) + TimeStyle.Render(" • "+news.RelativeTime(a.PublishedDate, now))
}

func categoryChip(category string) string {
	if category == "" {
		return ""
	}
	return ChipStyle.Background(news.CategoryColor(category)).Render(category)
}

func trustBadge(score float64) string {
	tier := news.TierFor(score)
	return lipgloss.NewStyle().
		Foreground(tier.Color()).
		Bold(true).
		Render(fmt.Sprintf("● %s %d", tier, int(score)))
}

func engagement(a news.ArticleSummary) string {
	var parts []string
	if a.Views != nil {
		parts = append(parts, fmt.Sprintf("%d views", *a.Views))
	}
	if a.Shares != nil {
		parts = append(parts, fmt.Sprintf("%d shares", *a.Shares))
	}
	return renderMuted(strings.Join(parts, " • "))
}

func actionLabels(opts CardOptions) string {
	save := renderMuted("☆ save")
	if opts.Saved {
		save = lipgloss.NewStyle().Foreground(HighlightColor).Render("★ saved")
	}
	share := renderMuted("↗ share")
	if opts.Shared {
		share = lipgloss.NewStyle().Foreground(SuccessColor).Render("✓ " + MsgShared)
	}
	return save + "  " + share
}

// spread places left and right on one line of the given width, falling back
// to two lines when they do not fit.
func spread(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderPager draws the page buttons for p, or nothing for a single page.
func renderPager(p paging.Pager) string {
	total := p.TotalPages()
	if total <= 1 {
		return ""
	}

	var parts []string
	prev := "‹ prev"
	if p.HasPrev() {
		parts = append(parts, PageButtonStyle.Render(prev))
	} else {
		parts = append(parts, PageButtonStyle.Faint(true).Render(prev))
	}
	for _, n := range p.Buttons() {
		label := fmt.Sprintf("%d", n)
		if n == p.Page {
			parts = append(parts, PageCurrentStyle.Render(label))
		} else {
			parts = append(parts, PageButtonStyle.Render(label))
		}
	}
	next := "next ›"
	if p.HasNext() {
		parts = append(parts, PageButtonStyle.Render(next))
	} else {
		parts = append(parts, PageButtonStyle.Faint(true).Render(next))
	}
	parts = append(parts, renderMuted("  "+MsgPage(p.Page, total)))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// renderSidebar draws the filter accordion for c. The cursor row is
// highlighted only while the sidebar has focus.
func renderSidebar(sb *filter.Sidebar, c filter.Criteria, width int, focused bool) string {
	if width < 12 {
		width = 12
	}
	inner := width - 2

	lines := []string{HeaderStyle.Render("Filters")}
	for i, row := range sb.Rows(c) {
		var line string
		switch row.Kind {
		case filter.RowReset:
			line = fmt.Sprintf("↺ Reset (%d)", filter.ActiveCount(c))
		case filter.RowHeader:
			marker := "▸"
			if sb.Expanded(row.Section) {
				marker = "▾"
			}
			line = marker + " " + row.Section.Title()
			if n := sectionCount(row.Section, c); n > 0 {
				line += fmt.Sprintf(" (%d)", n)
			}
		case filter.RowThreshold:
			mark := "( )"
			if filter.IsSelected(row, c) {
				mark = "(•)"
			}
			line = fmt.Sprintf("  %s %d+", mark, row.Score)
		case filter.RowOption:
			mark := "[ ]"
			if filter.IsSelected(row, c) {
				mark = "[x]"
			}
			label := row.Option.Label
			if label == "" {
				label = row.Option.ID
			}
			line = "  " + mark + " " + label
		}
		line = truncateEnd(line, inner)

		switch {
		case focused && i == sb.Cursor():
			line = SelectedItemStyle.Render(line)
		case row.Kind == filter.RowHeader:
			line = lipgloss.NewStyle().Foreground(SecondaryColor).Render(line)
		case row.Kind == filter.RowReset:
			line = lipgloss.NewStyle().Foreground(PrimaryColor).Render(line)
		}
		lines = append(lines, line)
	}
	return SidebarStyle.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func sectionCount(sec filter.Section, c filter.Criteria) int {
	switch sec {
	case filter.SectionCategories:
		return len(c.Category)
	case filter.SectionSources:
		return len(c.Source)
	case filter.SectionCompanies:
		return len(c.Companies)
	case filter.SectionTrust:
		if c.MinTrustScore > filter.DefaultMinTrustScore {
			return 1
		}
	}
	return 0
}
