package document

import (
	"strings"

	"github.com/berkgokcam/gddstudio/internal/registry"
)

// GenreUnspecified is stored when the user picks no genre tags.
const GenreUnspecified = "Unspecified"

// KnownPlatforms lists the platform tags offered by the UI. The set is
// closed, unlike genres which are user-extensible.
var KnownPlatforms = []string{"PC", "Console", "Mobile", "Web", "VR"}

// Project holds the document's metadata.
type Project struct {
	// ID is a ULID that uniquely identifies this project
	ID string `json:"id"`

	// Name is the project name, never empty
	Name string `json:"name"`

	// Genre is a comma-joined tag set, "Unspecified" when none picked
	Genre string `json:"genre"`

	// Platforms is the set of target platform tags
	Platforms []string `json:"platforms"`

	// Description is free text entered at creation
	Description string `json:"description"`

	// CreatedAt is the Unix timestamp when the project was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last content mutation
	UpdatedAt int64 `json:"updated_at"`
}

// Chat turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one entry in the append-only chat log.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Diagram is one saved diagram, newest-first in the store.
type Diagram struct {
	// ID is a ULID, so ids sort by creation time
	ID string `json:"id"`

	Type   registry.DiagramType `json:"type"`
	Label  string               `json:"label"`
	Source string               `json:"source"`

	CreatedAt int64 `json:"created_at"`
}

// MaxDiagrams bounds the saved diagram list; saving beyond the bound
// evicts the oldest entry.
const MaxDiagrams = 20

// SnapshotVersion tags exported archives.
const SnapshotVersion = "1.0"

// UnfilledPlaceholder is rendered for unfilled sections in markdown export
// and recognized (and skipped) on import, so export/import round-trips.
const UnfilledPlaceholder = "_This section has not been written yet._"

// Snapshot is the durable serialization of the store. The persisted form
// omits Version and Chat; the full-fidelity export archive carries both.
type Snapshot struct {
	Version       string                        `json:"version,omitempty"`
	Project       *Project                      `json:"project"`
	GDD           map[registry.SectionID]string `json:"gdd"`
	SelectedModel string                        `json:"selected_model,omitempty"`
	DarkTheme     bool                          `json:"dark_theme,omitempty"`
	Diagrams      []Diagram                     `json:"diagrams,omitempty"`
	Instructions  map[registry.SectionID]string `json:"instructions,omitempty"`
	Chat          []ChatTurn                    `json:"chat,omitempty"`
}

// JoinGenres comma-joins genre tags, substituting "Unspecified" for an
// empty set.
func JoinGenres(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return GenreUnspecified
	}
	return strings.Join(cleaned, ", ")
}

// OverviewSeed builds the prefilled overview section content for a newly
// created project.
func OverviewSeed(name string, platforms []string, description string) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(name)
	b.WriteString("\n\n")
	b.WriteString("**Platforms:** ")
	if len(platforms) == 0 {
		b.WriteString("TBD")
	} else {
		b.WriteString(strings.Join(platforms, ", "))
	}
	b.WriteString("\n\n")
	if strings.TrimSpace(description) != "" {
		b.WriteString(strings.TrimSpace(description))
		b.WriteString("\n")
	}
	return b.String()
}
