package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching      = "Searching…"
	MsgLoadingArticle = "Loading article…"
	MsgNoQuery        = "No query"
	MsgNoQueryHint    = "Enter a search query to find news"
	MsgNoResults      = "No results"
	MsgNoResultsHint  = "Try a different query or loosen the filters"
	MsgSearchFailed   = "Failed to load search results. Please try again."
	MsgNoSaved        = "No saved articles yet"
	MsgShared         = "Link copied"
	MsgFiltersReset   = "Filters reset"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgSavedToggle(title string, saved bool) string {
	title = strings.TrimSpace(title)
	if saved {
		return fmt.Sprintf("Saved '%s'", title)
	}
	return fmt.Sprintf("Removed '%s'", title)
}

func MsgPage(page, total int) string {
	return fmt.Sprintf("page %d/%d", page, total)
}

// MsgActiveFilters reports how many filters narrow the results.
func MsgActiveFilters(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 filter"
	default:
		return fmt.Sprintf("%d filters", n)
	}
}
