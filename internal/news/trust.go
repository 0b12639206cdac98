package news

import (
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// TrustTier buckets an overall trust score into one of three labels.
type TrustTier int

const (
	ModerateTrust TrustTier = iota
	Trusted
	HighlyTrusted
)

func (t TrustTier) String() string {
	switch t {
	case HighlyTrusted:
		return "Highly Trusted"
	case Trusted:
		return "Trusted"
	default:
		return "Moderate Trust"
	}
}

// Color returns the badge color for the tier.
func (t TrustTier) Color() lipgloss.Color {
	switch t {
	case HighlyTrusted:
		return lipgloss.Color("#10B981")
	case Trusted:
		return lipgloss.Color("#3B82F6")
	default:
		return lipgloss.Color("#F59E0B")
	}
}

// TierFor maps a 0-100 score onto its tier. 80 and 60 are inclusive lower
// bounds.
func TierFor(score float64) TrustTier {
	switch {
	case score >= 80:
		return HighlyTrusted
	case score >= 60:
		return Trusted
	default:
		return ModerateTrust
	}
}

// NeutralCategoryColor is used for categories outside the palette.
const NeutralCategoryColor = lipgloss.Color("#94A3B8")

// categoryPalette is matched in order against the lowercased category.
// Keys marked token only match a whole word of the category, so "ai" does
// not color "retail".
var categoryPalette = []struct {
	key   string
	token bool
	color lipgloss.Color
}{
	{"ai", true, lipgloss.Color("#A855F7")},
	{"ml", true, lipgloss.Color("#A855F7")},
	{"cloud", false, lipgloss.Color("#0EA5E9")},
	{"security", false, lipgloss.Color("#EF4444")},
	{"cyber", false, lipgloss.Color("#EF4444")},
	{"data", false, lipgloss.Color("#14B8A6")},
	{"fintech", false, lipgloss.Color("#22C55E")},
	{"finance", false, lipgloss.Color("#22C55E")},
	{"digital", false, lipgloss.Color("#6366F1")},
	{"blockchain", false, lipgloss.Color("#F97316")},
	{"iot", true, lipgloss.Color("#EAB308")},
	{"partnership", false, lipgloss.Color("#EC4899")},
	{"press", false, lipgloss.Color("#F472B6")},
}

// CategoryColor picks the palette color for a category.
func CategoryColor(category string) lipgloss.Color {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return NeutralCategoryColor
	}
	tokens := strings.FieldsFunc(c, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, p := range categoryPalette {
		if p.token {
			if slices.Contains(tokens, p.key) {
				return p.color
			}
		} else if strings.Contains(c, p.key) {
			return p.color
		}
	}
	return NeutralCategoryColor
}
