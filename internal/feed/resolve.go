package feed

import (
	"net/url"
	"strings"

	"github.com/pders01/newsdesk/internal/config"
)

// Resolver turns a site URL a user configured into the URL of its feed.
type Resolver interface {
	Name() string
	CanHandle(u *url.URL) bool
	// Resolve rewrites sc in place. Name is only filled when empty.
	Resolve(u *url.URL, sc *config.SourceConfig)
	// Priority breaks ties when several resolvers match; higher wins.
	Priority() int
}

// Resolvers holds the host-specific resolvers consulted by AddSource.
type Resolvers struct {
	list []Resolver
}

func NewResolvers(rs ...Resolver) *Resolvers {
	return &Resolvers{list: rs}
}

// DefaultResolvers knows about hosts that publish feeds at a predictable
// path next to the page people usually copy.
func DefaultResolvers() *Resolvers {
	return NewResolvers(redditResolver{}, mediumResolver{})
}

func (r *Resolvers) Register(res Resolver) {
	r.list = append(r.list, res)
}

func (r *Resolvers) find(u *url.URL) Resolver {
	var best Resolver
	highest := -1
	for _, res := range r.list {
		if res.CanHandle(u) && res.Priority() > highest {
			best = res
			highest = res.Priority()
		}
	}
	return best
}

// Resolve returns sc with its URL pointing at a feed. Unknown hosts and
// unparsable URLs are returned unchanged.
func (r *Resolvers) Resolve(sc config.SourceConfig) config.SourceConfig {
	if r == nil {
		return sc
	}
	u, err := url.Parse(sc.URL)
	if err != nil || u.Host == "" {
		return sc
	}
	if res := r.find(u); res != nil {
		res.Resolve(u, &sc)
	}
	return sc
}

func hostIs(u *url.URL, domain string) bool {
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// redditResolver maps /r/<name> pages onto their .rss listing.
type redditResolver struct{}

func (redditResolver) Name() string  { return "reddit" }
func (redditResolver) Priority() int { return 50 }

func (redditResolver) CanHandle(u *url.URL) bool {
	return hostIs(u, "reddit.com") && strings.HasPrefix(u.Path, "/r/") && !strings.HasSuffix(u.Path, ".rss")
}

func (redditResolver) Resolve(u *url.URL, sc *config.SourceConfig) {
	path := strings.TrimSuffix(u.Path, "/")
	sub := strings.SplitN(strings.TrimPrefix(path, "/r/"), "/", 2)[0]

	feedURL := *u
	feedURL.Path = path + ".rss"
	feedURL.RawQuery = ""
	sc.URL = feedURL.String()
	if sc.Name == "" {
		sc.Name = "Reddit r/" + sub
	}
}

// mediumResolver maps publication and profile pages onto medium.com/feed/.
type mediumResolver struct{}

func (mediumResolver) Name() string  { return "medium" }
func (mediumResolver) Priority() int { return 40 }

func (mediumResolver) CanHandle(u *url.URL) bool {
	return hostIs(u, "medium.com") && !strings.HasPrefix(u.Path, "/feed")
}

func (mediumResolver) Resolve(u *url.URL, sc *config.SourceConfig) {
	feedURL := *u
	feedURL.RawQuery = ""
	publication := strings.Trim(u.Path, "/")

	if host := strings.ToLower(u.Hostname()); host != "medium.com" && host != "www.medium.com" {
		// Custom subdomain publications serve their feed at /feed.
		feedURL.Path = "/feed"
		if sc.Name == "" {
			sc.Name = strings.TrimSuffix(host, ".medium.com")
		}
		sc.URL = feedURL.String()
		return
	}

	if publication == "" {
		return
	}
	feedURL.Path = "/feed/" + publication
	sc.URL = feedURL.String()
	if sc.Name == "" {
		sc.Name = "Medium " + publication
	}
}
