package registry

import (
	"strings"
	"unicode"
)

// NormalizeTitle normalizes a heading for registry matching:
// lowercase, strip every rune that is not a letter, digit, space, or
// ampersand (this removes emoji and numbering punctuation), then collapse
// whitespace. "## Gameplay Mechanics 🎮" and "Gameplay Mechanics" normalize
// to the same string.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' {
			b.WriteRune(r)
		} else if unicode.IsSpace(r) {
			b.WriteByte(' ')
		}
		// Everything else (emoji, punctuation) is dropped.
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchTitle maps a raw heading to a registry section id by exact equality
// of normalized titles. Returns false when no entry matches; loose or
// partial resemblance is deliberately not a match.
func MatchTitle(heading string) (SectionID, bool) {
	norm := NormalizeTitle(heading)
	if norm == "" {
		return "", false
	}
	for _, def := range sections {
		if NormalizeTitle(def.Title) == norm {
			return def.ID, true
		}
	}
	return "", false
}

// SynthesizeID derives a stable id from a non-registry heading, used when
// markdown import falls back to level-1 boundaries. Spaces and ampersands
// become hyphens.
func SynthesizeID(heading string) SectionID {
	norm := NormalizeTitle(heading)
	norm = strings.ReplaceAll(norm, "&", "and")
	norm = strings.Join(strings.Fields(norm), "-")
	return SectionID(norm)
}
