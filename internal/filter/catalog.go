package filter

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var catalogTOML []byte

// Option is one selectable entry in a sidebar section.
type Option struct {
	ID    string `toml:"id"`
	Label string `toml:"label"`
}

// Catalog lists the options offered for each multi-select section.
type Catalog struct {
	Categories []Option `toml:"categories"`
	Sources    []Option `toml:"sources"`
	Companies  []Option `toml:"companies"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(catalogTOML)
}

// LoadCatalog reads a catalog from path, falling back to the embedded one
// when path is empty or missing.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog()
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &c, nil
}

// Label returns the display label for id in opts, or id itself.
func Label(opts []Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Label
		}
	}
	return id
}

// Slug turns a display name into an option id: "The Verge" becomes
// "the-verge".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
