// Package export renders the working document into portable formats:
// headed markdown, print-ready HTML, the full snapshot archive, and raw
// Mermaid diagram source. All renderers are pure functions over a
// snapshot; writing the bytes anywhere is the caller's job.
package export

import (
	"sort"
	"strings"
	"time"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

const dateLayout = "2006-01-02"

// Markdown renders the document as headed markdown: a title line, bold
// metadata, then one level-2 heading per registry section in registry
// order. Unfilled sections carry the placeholder line so the document
// survives an import round trip without inventing content.
func Markdown(snap document.Snapshot) []byte {
	var b strings.Builder
	p := snap.Project

	b.WriteString("# " + p.Name + " - Game Design Document\n\n")
	b.WriteString("**Created:** " + time.Unix(p.CreatedAt, 0).UTC().Format(dateLayout) + "\n")
	b.WriteString("**Updated:** " + time.Unix(p.UpdatedAt, 0).UTC().Format(dateLayout) + "\n")
	b.WriteString("**Genre:** " + p.Genre + "\n")
	if len(p.Platforms) > 0 {
		b.WriteString("**Platform(s):** " + strings.Join(p.Platforms, ", ") + "\n")
	}
	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	b.WriteString("\n---\n")

	for _, def := range registry.All() {
		b.WriteString("\n## " + def.Title + "\n\n")
		content := strings.TrimSpace(snap.GDD[def.ID])
		if content == "" {
			content = document.UnfilledPlaceholder
		}
		b.WriteString(content + "\n")
	}

	// Sections carried in from imports under synthesized ids go after
	// the catalog, with a title derived from the id.
	for _, id := range extraSections(snap.GDD) {
		b.WriteString("\n## " + derivedTitle(id) + "\n\n")
		b.WriteString(strings.TrimSpace(snap.GDD[id]) + "\n")
	}

	return []byte(b.String())
}

// extraSections returns non-registry ids with content, sorted.
func extraSections(gdd map[registry.SectionID]string) []registry.SectionID {
	var out []registry.SectionID
	for id, content := range gdd {
		if !registry.Valid(id) && strings.TrimSpace(content) != "" {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// derivedTitle turns a synthesized id back into a heading.
func derivedTitle(id registry.SectionID) string {
	words := strings.Split(string(id), "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		if w == "and" {
			words[i] = "&"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
