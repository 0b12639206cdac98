package search

import "github.com/pders01/newsdesk/internal/storage"

// Searcher is the local search API used by the saved view.
type Searcher interface {
	Search(query string, limit int) ([]*Result, error)
}

// SavedSource lists the articles the local engine searches over.
type SavedSource interface {
	SavedArticles(limit int) ([]*storage.SavedArticle, error)
}
