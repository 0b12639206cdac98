package storage

import (
	"time"

	"github.com/pders01/newsdesk/internal/news"
)

// SavedArticle is an article the user bookmarked, kept locally so the saved
// list works without the search service.
type SavedArticle struct {
	Article news.ArticleSummary `json:"article"`
	SavedAt time.Time           `json:"saved_at"`
}

// QueryRecord is one entry of the local search history.
type QueryRecord struct {
	Query    string    `json:"query"`
	LastUsed time.Time `json:"last_used"`
	Count    int       `json:"count"`
}
