package news

import (
	"net/url"
	"strings"
)

const (
	SearchPath  = "/news-search"
	ArticleBase = "/article/"
)

// SearchURL is the navigation target for a submitted query.
func SearchURL(query string) string {
	v := url.Values{}
	v.Set("q", query)
	return SearchPath + "?" + v.Encode()
}

func ArticlePath(id string) string {
	return ArticleBase + url.PathEscape(id)
}

// ParseRoute splits a navigation target into its kind and argument: the
// query for a search route or the id for an article route. ok is false for
// anything else.
func ParseRoute(target string) (kind, arg string, ok bool) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", false
	}
	switch {
	case u.Path == SearchPath:
		return "search", u.Query().Get("q"), true
	case strings.HasPrefix(u.Path, ArticleBase):
		id := strings.TrimPrefix(u.Path, ArticleBase)
		if id == "" {
			return "", "", false
		}
		return "article", id, true
	}
	return "", "", false
}
