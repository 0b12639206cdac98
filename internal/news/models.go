package news

import (
	"time"
)

type Source struct {
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type TrustScore struct {
	Overall float64 `json:"overall"`
}

type AIAnalysis struct {
	KeyInsights []string `json:"keyInsights"`
	Sentiment   string   `json:"sentiment"`
}

// ArticleSummary is a single search hit as returned by the news search
// service. Values are treated as immutable once decoded.
type ArticleSummary struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Summary       string      `json:"summary"`
	URL           string      `json:"url"`
	Source        Source      `json:"source"`
	TrustScore    TrustScore  `json:"trustScore"`
	PublishedDate time.Time   `json:"publishedDate"`
	Category      string      `json:"category"`
	Companies     []string    `json:"companies,omitempty"`
	AIAnalysis    *AIAnalysis `json:"aiAnalysis,omitempty"`
	Views         *int        `json:"views,omitempty"`
	Shares        *int        `json:"shares,omitempty"`
}

// SearchResultPage is one page of search output plus the trending list the
// service returns alongside it.
type SearchResultPage struct {
	Results  []ArticleSummary `json:"results"`
	Total    int              `json:"total"`
	Trending []ArticleSummary `json:"trending"`
}

// ViewCount returns the view counter or 0 when the service omitted it.
func (a ArticleSummary) ViewCount() int {
	if a.Views == nil {
		return 0
	}
	return *a.Views
}

func (a ArticleSummary) ShareCount() int {
	if a.Shares == nil {
		return 0
	}
	return *a.Shares
}
